// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package overlay

import (
	"fmt"
	"strings"
)

// Color is an index into the 16 colour console palette
type Color uint8

const (
	BLACK Color = iota
	DARK_RED
	DARK_GREEN
	DARK_YELLOW
	DARK_BLUE
	DARK_MAGENTA
	DARK_CYAN
	GRAY
	DARK_GRAY
	RED
	GREEN
	YELLOW
	BLUE
	MAGENTA
	CYAN
	WHITE
)

var ColorNames = [...]string{
	"Black", "DarkRed", "DarkGreen", "DarkYellow", "DarkBlue", "DarkMagenta", "DarkCyan", "Gray",
	"DarkGray", "Red", "Green", "Yellow", "Blue", "Magenta", "Cyan", "White",
}

const (
	DEFAULT_FOREGROUND = BLACK
	DEFAULT_BACKGROUND = GRAY
)

func (self Color) String() string {
	if int(self) < len(ColorNames) {
		return ColorNames[self]
	}
	return fmt.Sprintf("Color(%d)", uint8(self))
}

// ParseColor matches a colour name ignoring case
func ParseColor(name string) (Color, error) {
	name = strings.TrimSpace(name)
	for i, q := range ColorNames {
		if strings.EqualFold(q, name) {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("%#v is not a known color, choose from: %s", name, strings.Join(ColorNames[:], ", "))
}

// ColorFromName is ParseColor returning fallback for unknown or empty names
func ColorFromName(name string, fallback Color) Color {
	if c, err := ParseColor(name); err == nil {
		return c
	}
	return fallback
}

type Palette struct {
	Foreground, Background Color
}

var DefaultPalette = Palette{Foreground: DEFAULT_FOREGROUND, Background: DEFAULT_BACKGROUND}
var NoticePalette = Palette{Foreground: WHITE, Background: RED}
