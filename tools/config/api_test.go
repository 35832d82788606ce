// License: GPLv3 Copyright: 2023, Kovid Goyal, <kovid at kovidgoyal.net>

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
)

var _ = fmt.Print

func TestConfigParsing(t *testing.T) {
	tdir := t.TempDir()
	conf_file := filepath.Join(tdir, "a.conf")
	os.Mkdir(filepath.Join(tdir, "sub"), 0o700)
	os.WriteFile(conf_file, []byte(`
# ignore me
a one
#: other
include sub/b.conf
b
include non-existent
globinclude sub/c?.conf
long first
\ second
error bad value
=oops
`), 0o600)
	os.WriteFile(filepath.Join(tdir, "sub/b.conf"), []byte("incb cool\ninclude a.conf"), 0o600)
	os.WriteFile(filepath.Join(tdir, "sub/c1.conf"), []byte("inc1 cool"), 0o600)
	os.WriteFile(filepath.Join(tdir, "sub/c2.conf"), []byte("inc2 cool\nenvinclude ENVINCLUDE"), 0o600)
	os.WriteFile(filepath.Join(tdir, "sub/c.conf"), []byte("inc notcool"), 0o600)

	var parsed_lines []string
	pl := func(key, val string) error {
		if key == "error" {
			return fmt.Errorf("%s", val)
		}
		parsed_lines = append(parsed_lines, key+" "+val)
		return nil
	}

	p := ConfigParser{LineHandler: pl, override_env: []string{"ENVINCLUDE=env cool\ninclude c.conf"}}
	err := p.ParseFiles(conf_file)
	if err != nil {
		t.Fatal(err)
	}
	diff := cmp.Diff([]string{"a one", "incb cool", "b ", "inc1 cool", "inc2 cool", "env cool", "inc notcool", "long first second"}, parsed_lines)
	if diff != "" {
		t.Fatalf("Unexpected parsed config values:\n%s", diff)
	}
	bad := []string{}
	for _, b := range p.BadLines() {
		bad = append(bad, fmt.Sprintf("%d %s", b.Line_number, b.Line))
	}
	if diff := cmp.Diff([]string{"11 error bad value", "12 =oops"}, bad); diff != "" {
		t.Fatalf("Unexpected bad lines:\n%s", diff)
	}

	parsed_lines = nil
	if err = p.ParseOverrides("x=1", "y 2"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"x 1", "y 2"}, parsed_lines); diff != "" {
		t.Fatalf("Unexpected overrides:\n%s", diff)
	}
}

func TestOptions(t *testing.T) {
	tdir := t.TempDir()
	t.Setenv("FCITX5_FBTERM_CONFIG_DIRECTORY", tdir)
	os.WriteFile(filepath.Join(tdir, "fcitx5-fbterm.conf"), []byte(`
foreground White
background purple
raw_keyboard no
log_level debug
colour Red
`), 0o600)
	opts, bad, err := Load(nil, []string{"kernel_keymap=false"})
	if err != nil {
		t.Fatal(err)
	}
	expected := &Options{Foreground: overlay.WHITE, Background: overlay.GRAY, LogLevel: slog.LevelDebug}
	if diff := cmp.Diff(expected, opts); diff != "" {
		t.Fatalf("Unexpected options:\n%s", diff)
	}
	if len(bad) != 2 || bad[0].Line != "background purple" || bad[1].Line != "colour Red" {
		t.Fatalf("Unexpected bad lines: %v", bad)
	}

	env := map[string]string{FOREGROUND_ENV: "yellow", BACKGROUND_ENV: "nonsense"}
	opts.ApplyEnv(func(k string) string { return env[k] })
	if opts.Foreground != overlay.YELLOW || opts.Background != overlay.GRAY {
		t.Fatalf("Environment not applied: %s %s", opts.Foreground, opts.Background)
	}
	if !opts.ApplyProgramName("/usr/bin/fcitx5-fbterm-White-DarkBlue") || opts.Palette() != (overlay.Palette{Foreground: overlay.WHITE, Background: overlay.DARK_BLUE}) {
		t.Fatalf("Program name theme not applied: %v", opts.Palette())
	}
	if opts.ApplyProgramName("fcitx5-fbterm") || opts.ApplyProgramName("fcitx5-fbterm-Pink-Black") {
		t.Fatalf("Program name theme applied for a name without valid colours")
	}

	// missing files are not an error
	if opts, _, err = Load([]string{filepath.Join(tdir, "missing.conf")}, nil); err != nil || *opts != *DefaultOptions() {
		t.Fatalf("Missing config file not ignored: %v %v", opts, err)
	}
}
