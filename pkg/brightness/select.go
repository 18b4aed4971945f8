package brightness

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Control entries every brightness device exports.
const (
	ControlCurrent = "brightness"
	ControlMax     = "max_brightness"
	ControlType    = "type"
)

// Device is the control directory chosen for one invocation.
type Device struct {
	Class Class
	Root  string
	Name  string
	Path  string
}

// File returns the path of one of the device's control entries.
func (d Device) File(control string) string {
	return filepath.Join(d.Path, control)
}

// Candidate describes one entry under a class root as seen by the selector.
type Candidate struct {
	Name       string
	HasCurrent bool
	HasMax     bool
	// Type is the content of the type entry, empty when absent or unreadable.
	Type string
}

// choice is the state carried across candidates while scanning a root.
type choice struct {
	best    Candidate
	found   bool
	decided bool
}

// next applies the selection rules to one more candidate. Once a strong hint
// decided the outcome the state no longer changes.
func (s choice) next(class Class, c Candidate) (choice, string) {
	switch {
	case s.decided:
		return s, "scan already decided"
	case class == Keyboard && strings.Contains(c.Name, "lock"):
		return s, "lock indicator"
	case !c.HasMax:
		return s, "no " + ControlMax
	case !c.HasCurrent:
		return s, "no " + ControlCurrent
	case strings.Contains(c.Type, "raw"):
		return choice{best: c, found: true, decided: true}, "raw type"
	case class == Keyboard && strings.Contains(c.Name, "light"):
		return choice{best: c, found: true, decided: true}, "light in name"
	default:
		return choice{best: c, found: true}, "fallback"
	}
}

// Choose runs the selection rules over candidates in the given order and
// returns the winner. A raw type, or "light" in a keyboard device name, wins
// at once; otherwise the last valid candidate does.
func Choose(class Class, candidates []Candidate) (Candidate, bool) {
	var st choice
	for _, c := range candidates {
		st, _ = st.next(class, c)
		if st.decided {
			break
		}
	}
	return st.best, st.found
}

// Selector finds the device directory to use under a class root.
type Selector struct {
	Fs  afero.Fs
	Log zerolog.Logger
}

// Select scans root and returns the best device for class.
func (s *Selector) Select(class Class, root string) (Device, error) {
	entries, err := afero.ReadDir(s.Fs, root)
	if err != nil {
		return Device{}, &Error{Kind: KindEnvironment, Class: class, Path: root, Err: err}
	}

	var st choice
	for _, fi := range entries {
		if !isDeviceEntry(fi) {
			continue
		}
		c := s.inspect(root, fi.Name())

		var why string
		st, why = st.next(class, c)
		s.Log.Debug().
			Str("class", class.String()).
			Str("candidate", c.Name).
			Str("type", c.Type).
			Str("verdict", why).
			Msg("selector: candidate")
		if st.decided {
			break
		}
	}

	if !st.found {
		return Device{}, &Error{Kind: KindNotFound, Class: class, Path: root}
	}

	return Device{
		Class: class,
		Root:  root,
		Name:  st.best.Name,
		Path:  filepath.Join(root, st.best.Name),
	}, nil
}

// Devices are exported as symlinks into /sys/devices; plain directories are
// accepted too.
func isDeviceEntry(fi os.FileInfo) bool {
	return fi.Mode()&os.ModeSymlink != 0 || fi.IsDir()
}

func (s *Selector) inspect(root, name string) Candidate {
	dir := filepath.Join(root, name)
	c := Candidate{
		Name:       name,
		HasMax:     s.isRegular(filepath.Join(dir, ControlMax)),
		HasCurrent: s.isRegular(filepath.Join(dir, ControlCurrent)),
	}
	if !c.HasMax || !c.HasCurrent {
		return c
	}

	if data, err := afero.ReadFile(s.Fs, filepath.Join(dir, ControlType)); err == nil {
		c.Type = strings.TrimSpace(string(data))
	}
	return c
}

func (s *Selector) isRegular(path string) bool {
	fi, err := s.Fs.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
