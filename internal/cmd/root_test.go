package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hoppxi/backlighter/internal/manager"
)

type sysfs struct {
	backlight string
	leds      string
}

// newSysfs builds fake backlight and leds roots and points the config at them.
func newSysfs(t *testing.T) sysfs {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))

	s := sysfs{backlight: filepath.Join(base, "backlight"), leds: filepath.Join(base, "leds")}
	t.Setenv("BACKLIGHTER_BACKLIGHT_ROOT", s.backlight)
	t.Setenv("BACKLIGHTER_KEYLIGHT_ROOT", s.leds)
	return s
}

func addDevice(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for f, content := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("backlighter")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func readLevel(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "brightness"))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRoot_ShowDefaultsToBacklight(t *testing.T) {
	s := newSysfs(t)
	addDevice(t, s.backlight, "acme0", map[string]string{"max_brightness": "255\n", "brightness": "128\n"})

	for _, args := range [][]string{nil, {"-b"}, {"--backlight"}} {
		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if out != " 50\n" {
			t.Errorf("%v: output %q, want %q", args, out, " 50\n")
		}
	}
}

func TestRoot_SetForms(t *testing.T) {
	tests := [][]string{
		{"50"},
		{"-b", "50"},
		{"-b=50"},
		{"--backlight=50"},
		{"-b=10", "50"},
		{"50%"},
	}
	for _, args := range tests {
		s := newSysfs(t)
		dir := addDevice(t, s.backlight, "acme0", map[string]string{"max_brightness": "255\n", "brightness": "3\n"})

		out, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if out != "" {
			t.Errorf("%v: unexpected output %q", args, out)
		}
		if got := readLevel(t, dir); got != "127\n" {
			t.Errorf("%v: brightness = %q, want %q", args, got, "127\n")
		}
	}
}

func TestRoot_Keylight(t *testing.T) {
	s := newSysfs(t)
	caps := addDevice(t, s.leds, "input3::capslock", map[string]string{"max_brightness": "1\n", "brightness": "0\n"})
	kbd := addDevice(t, s.leds, "kbd_backlight", map[string]string{"max_brightness": "3\n", "brightness": "1\n"})

	out, err := run(t, "-k")
	if err != nil {
		t.Fatal(err)
	}
	if out != " 33\n" {
		t.Errorf("output %q, want %q", out, " 33\n")
	}

	if _, err := run(t, "-k", "100"); err != nil {
		t.Fatal(err)
	}
	if got := readLevel(t, kbd); got != "3\n" {
		t.Errorf("kbd_backlight = %q, want 3", got)
	}
	if got := readLevel(t, caps); got != "0\n" {
		t.Errorf("capslock changed to %q", got)
	}
}

func TestRoot_ExitCodes(t *testing.T) {
	s := newSysfs(t)
	// leds root is missing, backlight root is empty
	if err := os.MkdirAll(s.backlight, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args []string
		code int
	}{
		{[]string{"150"}, 2},
		{[]string{"-k", "150"}, 2},
		{[]string{"-5"}, 2},
		{[]string{"bright"}, 2},
		{[]string{"-b", "-k"}, 2},
		{[]string{"1", "2"}, 1},
		{[]string{}, 4},
		{[]string{"-k"}, 3},
	}
	for _, tt := range tests {
		_, err := run(t, tt.args...)
		if got := ExitCode(err); got != tt.code {
			t.Errorf("%v: exit code %d (err %v), want %d", tt.args, got, err, tt.code)
		}
	}
}

func TestRoot_MalformedLevelIsIOError(t *testing.T) {
	s := newSysfs(t)
	addDevice(t, s.backlight, "acme0", map[string]string{"max_brightness": "255\n", "brightness": "n/a\n"})

	_, err := run(t)
	if ExitCode(err) != 5 {
		t.Errorf("exit code %d (err %v), want 5", ExitCode(err), err)
	}
}

func TestInfo(t *testing.T) {
	s := newSysfs(t)
	addDevice(t, s.backlight, "intel_backlight", map[string]string{"max_brightness": "1000\n", "brightness": "250\n", "type": "raw\n"})

	out, err := run(t, "info")
	if err != nil {
		t.Fatal(err)
	}
	var info struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Percent int    `json:"percent"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Name != "intel_backlight" || info.Type != "raw" || info.Percent != 25 {
		t.Errorf("info = %+v", info)
	}

	out, err = run(t, "info", "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "percent: 25") {
		t.Errorf("yaml output %q", out)
	}

	if _, err := run(t, "info", "--format", "xml"); ExitCode(err) != 2 {
		t.Errorf("unknown format: err %v", err)
	}
}

func TestSetup(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "conf", "backlighter.yaml")

	out, err := run(t, "setup", "--defaults", "--config", path)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output %q does not name %s", out, path)
	}

	settings, err := manager.NewConfig(path).Load()
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if settings.BacklightRoot != manager.Defaults().BacklightRoot || settings.WatchInterval != manager.Defaults().WatchInterval {
		t.Errorf("settings = %+v", settings)
	}

	if _, err := run(t, "setup", "--defaults", "--config", path); err == nil {
		t.Error("second setup without --force succeeded")
	}
	if _, err := run(t, "setup", "--defaults", "--force", "--config", path); err != nil {
		t.Errorf("setup --force: %v", err)
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("nil error must exit 0")
	}
}

func TestRoot_InvalidPercentBeforeConfig(t *testing.T) {
	s := newSysfs(t)
	addDevice(t, s.backlight, "acme0", map[string]string{"max_brightness": "255\n", "brightness": "128\n"})
	broken := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(broken, []byte("write_method: setuid\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{{"--config", broken, "150"}, {"--config", broken, "-k=abc"}} {
		_, err := run(t, args...)
		if got := ExitCode(err); got != 2 {
			t.Errorf("%v: exit code %d (err %v), want 2", args, got, err)
		}
	}

	// a valid request still reports the broken config
	if _, err := run(t, "--config", broken, "50"); ExitCode(err) != 1 {
		t.Errorf("valid percent with broken config: err %v, want config error", err)
	}
}
