// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package session

import (
	"errors"

	"github.com/fcitx/fcitx5-fbterm/tools/keymap"
	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
)

type WindowID uint32

const (
	IM_WINDOW     WindowID = 0
	NOTICE_WINDOW WindowID = 1
)

// Host is the terminal that owns the screen and keyboard. An overlay
// window is hidden by giving it an empty rectangle.
type Host interface {
	SetOverlayWindow(id WindowID, r overlay.Rect) error
	FillRect(r overlay.Rect, c overlay.Color) error
	DrawText(x, y int, fg, bg overlay.Color, text string) error
	WriteOutput(data []byte) error
}

type IMState uint8

const (
	DISCONNECTED IMState = iota
	CONNECTED
)

func (self IMState) String() string {
	if self == CONNECTED {
		return "connected"
	}
	return "disconnected"
}

// InputMethod is the composing service. SubmitKey reports whether the key
// was consumed, unconsumed keys are written to the host as is.
type InputMethod interface {
	State() IMState
	SubmitKey(keysym uint32, code uint16, mods keymap.Modifiers, pressed bool) (bool, error)
	FocusIn() error
	FocusOut() error
}

// Disconnected is an InputMethod that is never available
type Disconnected struct{}

var ErrNoInputMethod = errors.New("No input method available")

func (Disconnected) State() IMState { return DISCONNECTED }
func (Disconnected) SubmitKey(uint32, uint16, keymap.Modifiers, bool) (bool, error) {
	return false, ErrNoInputMethod
}
func (Disconnected) FocusIn() error  { return ErrNoInputMethod }
func (Disconnected) FocusOut() error { return ErrNoInputMethod }
