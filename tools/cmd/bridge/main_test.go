// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package bridge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	fcitx5_fbterm "github.com/fcitx/fcitx5-fbterm"
	"github.com/fcitx/fcitx5-fbterm/tools/config"
	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
)

var _ = fmt.Print

func TestResolveOptions(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "test.conf")
	if err := os.WriteFile(conf, []byte("foreground White\nbackground Blue\nraw_keyboard no\nlog_file /tmp/x.log\nnonsense 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	test := func(argv0 string, args []string, expected config.Options) {
		t.Helper()
		opts := Options{Config: []string{conf}}
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.BoolVar(&opts.Raw, "raw", true, "")
		flags.BoolVar(&opts.KernelKeymap, "kernel-keymap", true, "")
		flags.StringVar(&opts.Foreground, "foreground", "", "")
		flags.StringVar(&opts.Background, "background", "", "")
		flags.StringVar(&opts.LogLevel, "log-level", "", "")
		if err := flags.Parse(args); err != nil {
			t.Fatal(err)
		}
		actual, bad_lines, err := resolve(&opts, flags, argv0, getenv)
		if err != nil {
			t.Fatal(err)
		}
		if len(bad_lines) != 1 || bad_lines[0].Line_number != 5 {
			t.Fatalf("Unexpected bad lines: %v", bad_lines)
		}
		if diff := cmp.Diff(expected, *actual); diff != "" {
			t.Fatalf("Options for %s %v are incorrect:\n%s", argv0, args, diff)
		}
	}
	from_file := config.Options{
		Foreground: overlay.WHITE, Background: overlay.BLUE, KernelKeymap: true, LogLevel: slog.LevelWarn, LogFile: "/tmp/x.log",
	}
	with := func(f func(*config.Options)) config.Options {
		ans := from_file
		f(&ans)
		return ans
	}

	test("/usr/bin/fcitx5-fbterm", nil, from_file)
	test("fcitx5-fbterm-Red-Green", nil, with(func(o *config.Options) { o.Foreground, o.Background = overlay.RED, overlay.GREEN }))
	// an unknown colour in the program name leaves the theme alone
	test("fcitx5-fbterm-Red-Pink", nil, from_file)
	env[config.FOREGROUND_ENV] = "cyan"
	test("fcitx5-fbterm-Red-Green", nil, with(func(o *config.Options) { o.Foreground, o.Background = overlay.CYAN, overlay.GREEN }))
	test("fcitx5-fbterm-Red-Green", []string{"--background=Yellow", "--foreground", "Black"},
		with(func(o *config.Options) { o.Foreground, o.Background = overlay.BLACK, overlay.YELLOW }))
	delete(env, config.FOREGROUND_ENV)
	test("fcitx5-fbterm", []string{"--raw", "--kernel-keymap=false", "--log-level", "debug"},
		with(func(o *config.Options) { o.RawKeyboard, o.KernelKeymap, o.LogLevel = true, false, slog.LevelDebug }))
}

func TestCommandLine(t *testing.T) {
	run := func(args ...string) (string, error) {
		root := EntryPoint()
		var out strings.Builder
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(args)
		err := root.Execute()
		return out.String(), err
	}

	out, err := run("--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, fcitx5_fbterm.VersionString) {
		t.Fatalf("Version output does not contain the version: %#v", out)
	}
	if out, err = run("--help"); err != nil {
		t.Fatal(err)
	}
	for _, q := range []string{"Usage", "--foreground", "--kernel-keymap", "DarkMagenta", "fcitx5-fbterm-White-DarkBlue"} {
		if !strings.Contains(out, q) {
			t.Fatalf("Help output does not contain %#v:\n%s", q, out)
		}
	}
	if _, err = run("--foreground", "Purple"); err == nil || !strings.Contains(err.Error(), "Invalid value") {
		t.Fatalf("An invalid colour gave: %v", err)
	}
	if _, err = run("--log-level", "loud"); err == nil || !strings.Contains(err.Error(), "Invalid value") {
		t.Fatalf("An invalid log level gave: %v", err)
	}
	if _, err = run("extra"); err == nil {
		t.Fatalf("A positional argument was accepted")
	}
}
