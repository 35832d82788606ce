// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package utils

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

const APP_NAME = "fcitx5-fbterm"
const CONFIG_FILE_NAME = APP_NAME + ".conf"

func Expanduser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		if usr, uerr := user.Current(); uerr == nil {
			home, err = usr.HomeDir, nil
		}
	}
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	parts := strings.Split(strings.ReplaceAll(path, string(os.PathSeparator), "/"), "/")
	if parts[0] == "~" {
		parts[0] = home
	} else if uname := parts[0][1:]; uname != "" {
		if u, err := user.Lookup(uname); err == nil && u.HomeDir != "" {
			parts[0] = u.HomeDir
		}
	}
	return strings.Join(parts, string(os.PathSeparator))
}

func Abspath(path string) string {
	if q, err := filepath.Abs(path); err == nil {
		return q
	}
	return path
}

// ConfigDir is $FCITX5_FBTERM_CONFIG_DIRECTORY if set, otherwise the
// fcitx5-fbterm directory under $XDG_CONFIG_HOME or ~/.config
func ConfigDir() string {
	if q := os.Getenv("FCITX5_FBTERM_CONFIG_DIRECTORY"); q != "" {
		return Abspath(Expanduser(q))
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = Expanduser("~/.config")
	}
	return filepath.Join(base, APP_NAME)
}

func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), CONFIG_FILE_NAME)
}
