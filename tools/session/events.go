// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package session

import (
	"github.com/fcitx/fcitx5-fbterm/tools/keymap"
	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
)

// Event is anything the controller reacts to, either from the terminal host
// or from the input method
type Event interface {
	is_event()
}

// Host events

type KeyBytes struct{ Data []byte }
type ScreenMetricsChanged struct{ Metrics overlay.ScreenMetrics }
type CursorMoved struct{ X, Y int }
type TermModeChanged struct{ Mode keymap.TermMode }
type FocusIn struct{}
type FocusOut struct{}
type Redraw struct{}

// Input method events

type IMCommit struct{ Text string }
type IMCompositionUpdate struct{ Composition overlay.Composition }
type IMActiveChanged struct{ Name, UniqueName, LangCode string }
type IMConnected struct{}
type IMDisconnected struct{}

func (KeyBytes) is_event()             {}
func (ScreenMetricsChanged) is_event() {}
func (CursorMoved) is_event()          {}
func (TermModeChanged) is_event()      {}
func (FocusIn) is_event()              {}
func (FocusOut) is_event()             {}
func (Redraw) is_event()               {}
func (IMCommit) is_event()             {}
func (IMCompositionUpdate) is_event()  {}
func (IMActiveChanged) is_event()      {}
func (IMConnected) is_event()          {}
func (IMDisconnected) is_event()       {}
