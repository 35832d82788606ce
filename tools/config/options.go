// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
	"github.com/fcitx/fcitx5-fbterm/tools/utils"
)

const (
	FOREGROUND_ENV = "FCITX5_FBTERM_FOREGROUND"
	BACKGROUND_ENV = "FCITX5_FBTERM_BACKGROUND"
)

type Options struct {
	Foreground, Background overlay.Color
	// ask the terminal for raw keycodes instead of translated bytes
	RawKeyboard bool
	// translate keycodes with the console keymap instead of the built-in
	// US layout
	KernelKeymap bool
	LogLevel     slog.Level
	LogFile      string
}

func DefaultOptions() *Options {
	return &Options{
		Foreground: overlay.DEFAULT_FOREGROUND, Background: overlay.DEFAULT_BACKGROUND,
		RawKeyboard: true, KernelKeymap: true, LogLevel: slog.LevelWarn,
	}
}

func (self *Options) Palette() overlay.Palette {
	return overlay.Palette{Foreground: self.Foreground, Background: self.Background}
}

func set_color(dest *overlay.Color, val string, fallback overlay.Color) error {
	c, err := overlay.ParseColor(val)
	if err != nil {
		*dest = fallback
		return err
	}
	*dest = c
	return nil
}

// Set applies a single config file setting
func (self *Options) Set(key, val string) (err error) {
	switch key {
	case "foreground":
		return set_color(&self.Foreground, val, overlay.DEFAULT_FOREGROUND)
	case "background":
		return set_color(&self.Background, val, overlay.DEFAULT_BACKGROUND)
	case "raw_keyboard":
		self.RawKeyboard = StringToBool(val)
	case "kernel_keymap":
		self.KernelKeymap = StringToBool(val)
	case "log_level":
		self.LogLevel, err = utils.ParseLogLevel(val)
	case "log_file":
		self.LogFile = val
	default:
		return fmt.Errorf("Unknown setting: %s", key)
	}
	return
}

// ApplyEnv applies the colour environment variables, unknown names select
// the default colour
func (self *Options) ApplyEnv(getenv func(string) string) {
	if q := getenv(FOREGROUND_ENV); q != "" {
		self.Foreground = overlay.ColorFromName(q, overlay.DEFAULT_FOREGROUND)
	}
	if q := getenv(BACKGROUND_ENV); q != "" {
		self.Background = overlay.ColorFromName(q, overlay.DEFAULT_BACKGROUND)
	}
}

// ApplyProgramName picks the colours from an executable named like
// fcitx5-fbterm-<foreground>-<background>, the way themed links are made
func (self *Options) ApplyProgramName(argv0 string) bool {
	parts := strings.Split(filepath.Base(argv0), "-")
	if len(parts) != 4 {
		return false
	}
	fg, ferr := overlay.ParseColor(parts[2])
	bg, berr := overlay.ParseColor(parts[3])
	if ferr != nil || berr != nil {
		return false
	}
	self.Foreground, self.Background = fg, bg
	return true
}

// Load reads the config files and overrides on top of the defaults. Bad
// lines are returned rather than treated as errors.
func Load(paths []string, overrides []string) (*Options, []ConfigLine, error) {
	opts := DefaultOptions()
	p := ConfigParser{LineHandler: opts.Set}
	if err := p.LoadConfig(paths, overrides); err != nil {
		return nil, nil, err
	}
	return opts, p.BadLines(), nil
}
