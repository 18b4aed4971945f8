package brightnessinfo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hoppxi/backlighter/pkg/brightness"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type DeviceInfo struct {
	Class   string `json:"class" yaml:"class"`
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Level   int64  `json:"level" yaml:"level"`
	Max     int64  `json:"max" yaml:"max"`
	Percent int    `json:"percent" yaml:"percent"`
}

// GetDeviceInfo selects the device for class and reads a snapshot of it.
func GetDeviceInfo(c *brightness.Controller, class brightness.Class) (*DeviceInfo, error) {
	dev, err := c.Select(class)
	if err != nil {
		return nil, err
	}

	maxVal, err := c.Accessor.MaxLevel(dev)
	if err != nil {
		return nil, err
	}
	current, err := c.Accessor.Level(dev)
	if err != nil {
		return nil, err
	}

	info := &DeviceInfo{
		Class:   class.String(),
		Name:    dev.Name,
		Path:    dev.Path,
		Level:   current,
		Max:     maxVal,
		Percent: brightness.Percent(current, maxVal),
	}

	// type is optional and only informative here
	if data, err := afero.ReadFile(c.Accessor.Fs, dev.File(brightness.ControlType)); err == nil {
		info.Type = strings.TrimSpace(string(data))
	}

	return info, nil
}

// Marshal renders info as "json" or "yaml".
func Marshal(info *DeviceInfo, format string) ([]byte, error) {
	switch format {
	case "", "json":
		return json.MarshalIndent(info, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(info)
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
