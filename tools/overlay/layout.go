// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package overlay

import (
	"fmt"

	"github.com/fcitx/fcitx5-fbterm/tools/wcswidth"
)

var _ = fmt.Print

const CANNOT_CONNECT_MESSAGE = "ERROR: Can't connect to fcitx5! Is daemon running?"

type Rect struct {
	X, Y, Width, Height int
}

func (self Rect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", self.Width, self.Height, self.X, self.Y)
}

type Point struct {
	X, Y int
}

// ScreenMetrics are the font cell and screen sizes in pixels
type ScreenMetrics struct {
	FontWidth, FontHeight, ScreenWidth, ScreenHeight int
}

func (self ScreenMetrics) HalfFontHeight() int { return self.FontHeight / 2 }

type Text struct {
	X, Y int
	Text string
}

// Frame is everything needed to paint one overlay window
type Frame struct {
	Window  Rect
	Palette Palette
	Lines   []Text
	// a caret is drawn in the foreground colour when set
	Caret *Rect
}

// Place positions a window of the given size next to the cursor. The window
// goes right of and below the cursor unless that would leave the screen, in
// which case it is flipped to the left or above.
func Place(content_width, content_height, cursor_x, cursor_y int, screen ScreenMetrics) (ans Rect) {
	ans.Width, ans.Height = content_width, content_height
	hfh := screen.HalfFontHeight()
	if cursor_x+screen.FontWidth+content_width > screen.ScreenWidth {
		ans.X = cursor_x - content_width - screen.FontWidth
	} else {
		ans.X = cursor_x + screen.FontWidth
	}
	if cursor_y+hfh+content_height > screen.ScreenHeight {
		ans.Y = cursor_y - content_height - hfh*3
	} else {
		ans.Y = cursor_y + hfh
	}
	return
}

// ContentSize is the pixel size of a window showing the two lines of text
// with a one cell margin on either side
func ContentSize(upper, lower string, screen ScreenMetrics) (width, height int) {
	width = (max(wcswidth.Stringwidth(upper), wcswidth.Stringwidth(lower)) + 2) * screen.FontWidth
	height = screen.FontHeight * 2
	if lower != "" {
		height = screen.FontHeight * 3
	}
	return
}

func text_frame(upper, lower string, cursor Point, screen ScreenMetrics, palette Palette) Frame {
	w, h := ContentSize(upper, lower, screen)
	r := Place(w, h, cursor.X, cursor.Y, screen)
	hfh := screen.HalfFontHeight()
	return Frame{Window: r, Palette: palette, Lines: []Text{
		{X: r.X + screen.FontWidth, Y: r.Y + hfh, Text: upper},
		{X: r.X + screen.FontWidth, Y: r.Y + hfh*3, Text: lower},
	}}
}

// Compose lays out the composition window. It returns false when there is
// nothing to show.
func Compose(comp *Composition, cursor Point, screen ScreenMetrics, palette Palette) (Frame, bool) {
	upper, lower := comp.UpperLine(), comp.LowerLine()
	if upper == "" && lower == "" {
		return Frame{}, false
	}
	ans := text_frame(upper, lower, cursor, screen, palette)
	if col := comp.CaretColumn(); col >= 0 {
		ans.Caret = &Rect{X: ans.Window.X + screen.FontWidth*(1+col), Y: ans.Window.Y + screen.HalfFontHeight(), Width: 1, Height: screen.FontHeight}
	}
	return ans, true
}

// Notice lays out a single line message window
func Notice(message string, cursor Point, screen ScreenMetrics) Frame {
	ans := text_frame(message, "", cursor, screen, NoticePalette)
	ans.Lines = ans.Lines[:1]
	return ans
}
