package manager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hoppxi/backlighter/pkg/brightness"
	"github.com/spf13/viper"
)

const (
	WriteSysfs  = "sysfs"
	WriteLogind = "logind"
)

// Settings is the resolved configuration for one invocation.
type Settings struct {
	BacklightRoot string        `mapstructure:"backlight_root" yaml:"backlight_root"`
	KeylightRoot  string        `mapstructure:"keylight_root" yaml:"keylight_root"`
	WriteMethod   string        `mapstructure:"write_method" yaml:"write_method"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`
	WatchInterval time.Duration `mapstructure:"watch_interval" yaml:"watch_interval"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		BacklightRoot: brightness.DefaultBacklightRoot,
		KeylightRoot:  brightness.DefaultKeylightRoot,
		WriteMethod:   WriteSysfs,
		LogLevel:      "warn",
		WatchInterval: time.Second,
	}
}

// Root returns the configured directory for class.
func (s Settings) Root(class brightness.Class) string {
	if class == brightness.Keyboard {
		return s.KeylightRoot
	}
	return s.BacklightRoot
}

type ConfigManager struct {
	v *viper.Viper
}

// ConfigDir returns the directory holding backlighter.yaml.
func ConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "backlighter")
}

// DefaultConfigPath is where setup writes the config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "backlighter.yaml")
}

// NewConfig prepares a config manager. An empty path searches the user config
// directory, where a missing file is not an error.
func NewConfig(path string) *ConfigManager {
	v := viper.New()

	d := Defaults()
	v.SetDefault("backlight_root", d.BacklightRoot)
	v.SetDefault("keylight_root", d.KeylightRoot)
	v.SetDefault("write_method", d.WriteMethod)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("watch_interval", d.WatchInterval)

	v.SetEnvPrefix("backlighter")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("backlighter")
		v.SetConfigType("yaml")
		if dir := ConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	return &ConfigManager{v: v}
}

// Viper exposes the underlying viper instance for flag binding.
func (c *ConfigManager) Viper() *viper.Viper {
	return c.v
}

// Load reads the config file, if any, and returns the merged settings.
func (c *ConfigManager) Load() (Settings, error) {
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s Settings
	if err := c.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode config: %w", err)
	}

	switch s.WriteMethod {
	case WriteSysfs, WriteLogind:
	default:
		return Settings{}, fmt.Errorf("invalid write_method %q (want %s or %s)", s.WriteMethod, WriteSysfs, WriteLogind)
	}
	if s.WatchInterval <= 0 {
		return Settings{}, fmt.Errorf("invalid watch_interval %s", s.WatchInterval)
	}

	return s, nil
}

// Used returns the config file that was read, or "".
func (c *ConfigManager) Used() string {
	return c.v.ConfigFileUsed()
}
