// License: GPLv3 Copyright: 2023, Kovid Goyal, <kovid at kovidgoyal.net>

package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fcitx/fcitx5-fbterm/tools/utils"
)

var _ = fmt.Print

const MAX_INCLUDE_DEPTH = 32

func StringToBool(x string) bool {
	x = strings.ToLower(strings.TrimSpace(x))
	return x == "y" || x == "yes" || x == "true" || x == "on" || x == "1"
}

type ConfigLine struct {
	Src_file, Line string
	Line_number    int
	Err            error
}

func (self ConfigLine) String() string {
	return fmt.Sprintf("%s:%d: %s", self.Src_file, self.Line_number, self.Err)
}

// ConfigParser reads files of `key value` lines. Lines starting with # are
// comments, a line starting with \ continues the previous line and the
// include, globinclude and envinclude directives pull in other sources.
// Lines the handler rejects are collected, not fatal.
type ConfigParser struct {
	LineHandler func(key, val string) error

	bad_lines     []ConfigLine
	seen_includes map[string]bool
	override_env  []string
}

func (self *ConfigParser) BadLines() []ConfigLine {
	return self.bad_lines
}

var key_pat = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_-]*)(?:\s+(.*))?$`)
})

type logical_line struct {
	text   string
	number int
}

// logical_lines joins continuation lines and drops blank ones
func logical_lines(r io.Reader) ([]logical_line, error) {
	scanner := bufio.NewScanner(r)
	var ans []logical_line
	lnum := 0
	for scanner.Scan() {
		lnum++
		line := strings.TrimLeft(scanner.Text(), " \t")
		if strings.HasPrefix(line, `\`) && len(ans) > 0 {
			ans[len(ans)-1].text += line[1:]
			continue
		}
		if line != "" {
			ans = append(ans, logical_line{line, lnum})
		}
	}
	return ans, scanner.Err()
}

func (self *ConfigParser) bad_line(name string, l logical_line, err error) {
	self.bad_lines = append(self.bad_lines, ConfigLine{Src_file: name, Line: l.text, Line_number: l.number, Err: err})
}

func (self *ConfigParser) parse(r io.Reader, name, base_path_for_includes string, depth int) error {
	if self.seen_includes[name] { // avoid include loops
		return nil
	}
	self.seen_includes[name] = true
	if depth > MAX_INCLUDE_DEPTH {
		return fmt.Errorf("Too many nested include directives while processing config file: %s", name)
	}
	lines, err := logical_lines(r)
	if err != nil {
		return fmt.Errorf("Failed to read config from %s with error: %w", name, err)
	}

	include_file := func(path string) error {
		raw, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("Failed to process include %#v with error: %w", path, err)
		}
		return self.parse(bytes.NewReader(raw), path, filepath.Dir(path), depth+1)
	}

	for _, l := range lines {
		if l.text[0] == '#' {
			continue
		}
		m := key_pat().FindStringSubmatch(l.text)
		if m == nil {
			self.bad_line(name, l, fmt.Errorf("Invalid config line: %#v", l.text))
			continue
		}
		key, val := m[1], strings.TrimSpace(m[2])
		switch key {
		case "include", "globinclude":
			if val == "" {
				self.bad_line(name, l, fmt.Errorf("Empty include paths not allowed"))
				continue
			}
			path := utils.Expanduser(val)
			if !filepath.IsAbs(path) {
				path = filepath.Join(base_path_for_includes, path)
			}
			paths := []string{path}
			if key == "globinclude" {
				if paths, err = filepath.Glob(path); err != nil {
					self.bad_line(name, l, err)
					continue
				}
			}
			for _, p := range paths {
				if err = include_file(p); err != nil {
					return err
				}
			}
		case "envinclude":
			env := self.override_env
			if env == nil {
				env = os.Environ()
			}
			for _, x := range env {
				ekey, eval, _ := strings.Cut(x, "=")
				if is_match, merr := filepath.Match(val, ekey); is_match && merr == nil {
					if err = self.parse(strings.NewReader(eval), "<env var: "+ekey+">", base_path_for_includes, depth+1); err != nil {
						return err
					}
				}
			}
		default:
			if err = self.LineHandler(key, val); err != nil {
				self.bad_line(name, l, err)
			}
		}
	}
	return nil
}

func (self *ConfigParser) ParseFiles(paths ...string) error {
	for _, path := range paths {
		path = utils.Abspath(path)
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		self.seen_includes = make(map[string]bool)
		if err = self.parse(bytes.NewReader(raw), path, filepath.Dir(path), 0); err != nil {
			return err
		}
	}
	return nil
}

// ParseOverrides parses key=value or key value strings as though they
// were lines in a config file
func (self *ConfigParser) ParseOverrides(overrides ...string) error {
	lines := make([]string, len(overrides))
	for i, x := range overrides {
		lines[i] = strings.Replace(x, "=", " ", 1)
	}
	self.seen_includes = make(map[string]bool)
	return self.parse(strings.NewReader(strings.Join(lines, "\n")), "<overrides>", utils.ConfigDir(), 0)
}

const SYSTEM_CONF_DIR = "/etc/xdg/" + utils.APP_NAME

// LoadConfig parses the system wide config file then either the specified
// paths or the default per user config file. Missing files are skipped.
func (self *ConfigParser) LoadConfig(paths []string, overrides []string) (err error) {
	add_if_exists := func(q string) error {
		if err := self.ParseFiles(q); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	if err = add_if_exists(filepath.Join(SYSTEM_CONF_DIR, utils.CONFIG_FILE_NAME)); err != nil {
		return err
	}
	if len(paths) == 0 {
		paths = []string{utils.DefaultConfigFile()}
	}
	for _, path := range paths {
		if err = add_if_exists(path); err != nil {
			return err
		}
	}
	if len(overrides) > 0 {
		err = self.ParseOverrides(overrides...)
	}
	return
}
