package brightness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

type fakeDevice struct {
	name    string
	max     string
	current string
	typ     string
	noMax   bool
	noCur   bool
}

func writeDevice(t *testing.T, fs afero.Fs, root string, d fakeDevice) string {
	t.Helper()
	dir := filepath.Join(root, d.name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	write := func(name, content string) {
		if err := afero.WriteFile(fs, filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if !d.noMax {
		write(ControlMax, d.max+"\n")
	}
	if !d.noCur {
		write(ControlCurrent, d.current+"\n")
	}
	if d.typ != "" {
		write(ControlType, d.typ+"\n")
	}
	return dir
}

func memRoot(t *testing.T, root string, devices ...fakeDevice) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", root, err)
	}
	for _, d := range devices {
		writeDevice(t, fs, root, d)
	}
	return fs
}

// trapFs fails the test on any filesystem access.
type trapFs struct {
	afero.Fs
	t *testing.T
}

func (f trapFs) Open(name string) (afero.File, error) {
	f.t.Errorf("unexpected Open(%q)", name)
	return f.Fs.Open(name)
}

func (f trapFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f.t.Errorf("unexpected OpenFile(%q)", name)
	return f.Fs.OpenFile(name, flag, perm)
}

func (f trapFs) Stat(name string) (os.FileInfo, error) {
	f.t.Errorf("unexpected Stat(%q)", name)
	return f.Fs.Stat(name)
}
