package brightness

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// LevelWriter stores a raw level into a device.
type LevelWriter interface {
	WriteLevel(dev Device, level int64) error
}

// SysfsWriter writes the level straight into the device's brightness entry.
type SysfsWriter struct {
	Fs afero.Fs
}

func (w SysfsWriter) WriteLevel(dev Device, level int64) error {
	path := dev.File(ControlCurrent)
	text := strconv.FormatInt(level, 10) + "\n"

	f, err := w.Fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return &Error{Kind: KindIO, Class: dev.Class, Path: path, Err: err}
	}
	if _, err := f.Write([]byte(text)); err != nil {
		f.Close()
		return &Error{Kind: KindIO, Class: dev.Class, Path: path, Value: strings.TrimSpace(text), Err: err}
	}
	if err := f.Close(); err != nil {
		return &Error{Kind: KindIO, Class: dev.Class, Path: path, Value: strings.TrimSpace(text), Err: err}
	}
	return nil
}

// Accessor reads and writes the level of a selected device.
type Accessor struct {
	Fs     afero.Fs
	Writer LevelWriter
	Log    zerolog.Logger
}

// Percent converts a raw level to a percentage of maxVal, rounded to the nearest
// integer. Levels outside [0,maxVal] are not clamped.
func Percent(level, maxVal int64) int {
	return int(math.Round(100 * float64(level) / float64(maxVal)))
}

// RawLevel converts a percentage to a raw level, truncating toward zero.
func RawLevel(pct int, maxVal int64) int64 {
	return int64(pct) * maxVal / 100
}

// MaxLevel reads the device's maximum level. A maximum below 1 is an error.
func (a *Accessor) MaxLevel(dev Device) (int64, error) {
	maxVal, err := a.readInt(dev, ControlMax)
	if err != nil {
		return 0, err
	}
	if maxVal < 1 {
		path := dev.File(ControlMax)
		return 0, &Error{Kind: KindIO, Class: dev.Class, Path: path, Value: strconv.FormatInt(maxVal, 10), Err: errZeroMax}
	}
	return maxVal, nil
}

// Level reads the device's current level.
func (a *Accessor) Level(dev Device) (int64, error) {
	return a.readInt(dev, ControlCurrent)
}

// GetPercentage reports the current level of dev as a percentage.
func (a *Accessor) GetPercentage(dev Device) (int, error) {
	maxVal, err := a.MaxLevel(dev)
	if err != nil {
		return 0, err
	}
	cur, err := a.Level(dev)
	if err != nil {
		return 0, err
	}

	pct := Percent(cur, maxVal)
	a.Log.Debug().Str("device", dev.Path).Int64("level", cur).Int64("max", maxVal).Int("percent", pct).Msg("read level")
	return pct, nil
}

// SetPercentage sets dev to pct percent of its maximum level.
func (a *Accessor) SetPercentage(dev Device, pct int) error {
	if err := ValidatePercent(pct); err != nil {
		return err
	}
	maxVal, err := a.MaxLevel(dev)
	if err != nil {
		return err
	}

	raw := RawLevel(pct, maxVal)
	a.Log.Debug().Str("device", dev.Path).Int("percent", pct).Int64("max", maxVal).Int64("level", raw).Msg("write level")
	return a.writer().WriteLevel(dev, raw)
}

func (a *Accessor) writer() LevelWriter {
	if a.Writer != nil {
		return a.Writer
	}
	return SysfsWriter{Fs: a.Fs}
}

func (a *Accessor) readInt(dev Device, control string) (int64, error) {
	path := dev.File(control)
	data, err := afero.ReadFile(a.Fs, path)
	if err != nil {
		return 0, &Error{Kind: KindIO, Class: dev.Class, Path: path, Err: err}
	}

	text := strings.TrimSpace(string(data))
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &Error{Kind: KindIO, Class: dev.Class, Path: path, Value: text, Err: err}
	}
	return v, nil
}
