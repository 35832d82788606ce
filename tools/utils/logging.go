// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var LogLevelChoices = []string{"debug", "info", "warn", "error"}

func ParseLogLevel(name string) (slog.Level, error) {
	var ans slog.Level
	if err := ans.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelWarn, fmt.Errorf("%#v is not a valid log level, choose from: %s", name, strings.Join(LogLevelChoices, ", "))
	}
	return ans, nil
}

type nop_closer struct{ io.Writer }

func (nop_closer) Close() error { return nil }

// SetupLogging creates the process logger. Output goes to path when not
// empty, stderr otherwise. Close the returned closer at exit.
func SetupLogging(level slog.Level, path string) (*slog.Logger, io.Closer, error) {
	var out io.WriteCloser = nop_closer{os.Stderr}
	if path != "" {
		f, err := os.OpenFile(Expanduser(path), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("Failed to open log file: %w", err)
		}
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})).With("app", APP_NAME)
	return logger, out, nil
}
