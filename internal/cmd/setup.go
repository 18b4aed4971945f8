package cmd

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hoppxi/backlighter/internal/manager"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk layout of backlighter.yaml.
type fileConfig struct {
	BacklightRoot string `yaml:"backlight_root"`
	KeylightRoot  string `yaml:"keylight_root"`
	WriteMethod   string `yaml:"write_method"`
	LogLevel      string `yaml:"log_level"`
	WatchInterval string `yaml:"watch_interval"`
}

func newSetupCmd(a *app) *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Write a backlighter.yaml config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = manager.DefaultConfigPath()
			}
			force, _ := cmd.Flags().GetBool("force")
			useDefaults, _ := cmd.Flags().GetBool("defaults")

			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if exists, _ := afero.Exists(a.fs, path); exists && !force {
				if useDefaults || !confirm(reader, out, fmt.Sprintf("%s already exists. Overwrite?", path)) {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}

			d := manager.Defaults()
			conf := fileConfig{
				BacklightRoot: d.BacklightRoot,
				KeylightRoot:  d.KeylightRoot,
				WriteMethod:   d.WriteMethod,
				LogLevel:      d.LogLevel,
				WatchInterval: d.WatchInterval.String(),
			}
			if !useDefaults {
				conf.WriteMethod = prompt(reader, out, "Write method (sysfs needs root, logind does not)", conf.WriteMethod)
				conf.BacklightRoot = prompt(reader, out, "Backlight directory", conf.BacklightRoot)
				conf.KeylightRoot = prompt(reader, out, "Keylight directory", conf.KeylightRoot)
			}

			if err := writeConfig(a.fs, path, conf); err != nil {
				return err
			}
			fmt.Fprintf(out, "Config written to %s\n", path)
			return nil
		},
	}

	setupCmd.Flags().Bool("force", false, "overwrite an existing config file")
	setupCmd.Flags().BoolP("defaults", "y", false, "write defaults without asking")
	return setupCmd
}

func writeConfig(fs afero.Fs, path string, conf fileConfig) error {
	d, err := yaml.Marshal(&conf)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, path, append([]byte("# backlighter configuration\n"), d...), 0o644)
}

func prompt(r *bufio.Reader, w io.Writer, label, defaultValue string) string {
	fmt.Fprintf(w, "%s [%s]: ", label, defaultValue)
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

func confirm(r *bufio.Reader, w io.Writer, message string) bool {
	fmt.Fprintf(w, "%s (y/N): ", message)
	input, _ := r.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}
