// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package session

import (
	"fmt"
	"log/slog"

	"github.com/fcitx/fcitx5-fbterm/tools/keycode"
	"github.com/fcitx/fcitx5-fbterm/tools/keymap"
	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
)

var _ = fmt.Print

type State uint8

const (
	INACTIVE State = iota
	ACTIVE
	COMPOSING
)

func (self State) String() string {
	switch self {
	case ACTIVE:
		return "active"
	case COMPOSING:
		return "composing"
	}
	return "inactive"
}

type Options struct {
	Palette    overlay.Palette
	Translator *keymap.Translator
	// Console, when set, is queried for the lock state whenever focus is
	// gained
	Console keymap.Console
	// NoticeText returns the message shown when the input method is not
	// available
	NoticeText func() string
	// PassThrough is for terminals sending already translated bytes instead
	// of raw keycodes, they are written back unchanged
	PassThrough bool
	Logger      *slog.Logger
}

type Controller struct {
	host Host
	im   InputMethod
	opts Options
	log  *slog.Logger

	state       State
	decoder     keycode.Decoder
	modifiers   keymap.Modifiers
	composition overlay.Composition
	screen      overlay.ScreenMetrics
	cursor      overlay.Point
	term_mode   keymap.TermMode

	notice_armed, notice_visible, im_window_visible bool
}

func NewController(host Host, im InputMethod, opts Options) *Controller {
	if im == nil {
		im = Disconnected{}
	}
	if opts.Translator == nil {
		opts.Translator = keymap.NewTranslator(nil)
	}
	if opts.NoticeText == nil {
		opts.NoticeText = func() string { return overlay.CANNOT_CONNECT_MESSAGE }
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		host: host, im: im, opts: opts, log: opts.Logger,
		composition: overlay.Composition{Cursor: -1}, notice_armed: true,
	}
}

func (self *Controller) State() State                     { return self.state }
func (self *Controller) Modifiers() keymap.Modifiers      { return self.modifiers }
func (self *Controller) Composition() overlay.Composition { return self.composition }

func (self *Controller) SetModifiers(m keymap.Modifiers) { self.modifiers = m }

// Dispatch processes a single event to completion. The only errors returned
// are failures to send output to the host, everything else is logged.
func (self *Controller) Dispatch(ev Event) error {
	switch e := ev.(type) {
	case KeyBytes:
		return self.on_key_bytes(e.Data)
	case ScreenMetricsChanged:
		self.screen = e.Metrics
		self.cursor = overlay.Point{}
		self.log.Debug("Screen metrics changed", "metrics", e.Metrics)
	case CursorMoved:
		self.cursor = overlay.Point{X: e.X, Y: e.Y}
		self.redraw()
	case TermModeChanged:
		self.term_mode = e.Mode
	case FocusIn:
		self.on_focus_in()
	case FocusOut:
		self.on_focus_out()
	case Redraw:
		self.redraw()
	case IMCommit:
		if err := self.host.WriteOutput([]byte(e.Text)); err != nil {
			return fmt.Errorf("Failed to send committed text to the terminal: %w", err)
		}
	case IMCompositionUpdate:
		self.composition = e.Composition
		if self.state != INACTIVE {
			self.state = ACTIVE
			if !self.composition.IsEmpty() {
				self.state = COMPOSING
			}
		}
		self.redraw()
	case IMActiveChanged:
		self.log.Info("Input method changed", "name", e.Name, "lang", e.LangCode)
		self.modifiers = keymap.ResetTransient(self.modifiers)
	case IMConnected:
		self.log.Info("Connected to input method")
		self.hide(NOTICE_WINDOW)
		self.notice_armed = true
		if self.state != INACTIVE {
			self.log_failure("focus in", self.im.FocusIn())
		}
	case IMDisconnected:
		self.log.Info("Disconnected from input method")
		self.composition = overlay.Composition{Cursor: -1}
		self.hide(IM_WINDOW)
		if self.state != INACTIVE {
			self.state = ACTIVE
			self.show_notice()
		}
	default:
		self.log.Warn("Ignoring unknown event", "event", fmt.Sprintf("%T", ev))
	}
	return nil
}

func (self *Controller) log_failure(action string, err error) {
	if err != nil {
		self.log.Warn("Input method request failed", "action", action, "error", err)
	}
}

func (self *Controller) on_key_bytes(data []byte) error {
	if self.opts.PassThrough {
		if err := self.host.WriteOutput(data); err != nil {
			return fmt.Errorf("Failed to send key to the terminal: %w", err)
		}
		return nil
	}
	for _, ev := range self.decoder.Feed(data) {
		sym := self.opts.Translator.KeySymbol(ev.Code, self.modifiers)
		if !self.submit_to_im(ev, sym) {
			if text, ok := keymap.TermString(sym, ev.Code, ev.Pressed, self.term_mode); ok {
				if err := self.host.WriteOutput([]byte(text)); err != nil {
					return fmt.Errorf("Failed to send key to the terminal: %w", err)
				}
			}
		}
		self.modifiers = keymap.NextState(self.modifiers, sym, ev.Pressed)
	}
	return nil
}

// submit_to_im returns true when the input method consumed the key
func (self *Controller) submit_to_im(ev keycode.KeyEvent, sym keymap.KeySymbol) bool {
	if self.im.State() != CONNECTED {
		return false
	}
	// the input method gets Ctrl and Alt in the state mask, not folded
	// into the keysym
	im_sym := sym
	if self.modifiers.Has(keymap.CTRL | keymap.ALT) {
		im_sym = self.opts.Translator.KeySymbol(ev.Code, self.modifiers&^(keymap.CTRL|keymap.ALT))
	}
	keysym := keymap.X11Keysym(im_sym, ev.Code)
	self.log.Debug("Key event", "key", ev, "symbol", sym, "keysym", keysym, "modifiers", self.modifiers)
	if keysym == keymap.XK_NoSymbol {
		return false
	}
	consumed, err := self.im.SubmitKey(keysym, ev.Code, self.modifiers, ev.Pressed)
	if err != nil {
		self.log_failure("process key", err)
		return false
	}
	return consumed
}

func (self *Controller) on_focus_in() {
	self.state = ACTIVE
	if !self.composition.IsEmpty() {
		self.state = COMPOSING
	}
	self.decoder.Reset()
	if self.opts.Console != nil {
		if locks, err := keymap.KernelLockState(self.opts.Console); err == nil {
			self.modifiers = self.modifiers&^keymap.LOCK_MODIFIERS | locks
		} else {
			self.log.Debug("Could not read the console lock state", "error", err)
		}
	}
	if self.im.State() == CONNECTED {
		self.log_failure("focus in", self.im.FocusIn())
	} else {
		self.show_notice()
	}
}

func (self *Controller) on_focus_out() {
	self.state = INACTIVE
	self.hide(IM_WINDOW)
	self.hide(NOTICE_WINDOW)
	if self.im.State() == CONNECTED {
		self.log_failure("focus out", self.im.FocusOut())
	}
}

func (self *Controller) window_visible(id WindowID) *bool {
	if id == NOTICE_WINDOW {
		return &self.notice_visible
	}
	return &self.im_window_visible
}

func (self *Controller) hide(id WindowID) {
	v := self.window_visible(id)
	if !*v {
		return
	}
	*v = false
	if err := self.host.SetOverlayWindow(id, overlay.Rect{}); err != nil {
		self.log.Warn("Failed to hide overlay window", "window", id, "error", err)
	}
}

func (self *Controller) paint(id WindowID, frame overlay.Frame) {
	*self.window_visible(id) = true
	err := self.host.SetOverlayWindow(id, frame.Window)
	if err == nil {
		err = self.host.FillRect(frame.Window, frame.Palette.Background)
	}
	for _, line := range frame.Lines {
		if err != nil {
			break
		}
		err = self.host.DrawText(line.X, line.Y, frame.Palette.Foreground, frame.Palette.Background, line.Text)
	}
	if err == nil && frame.Caret != nil {
		err = self.host.FillRect(*frame.Caret, frame.Palette.Foreground)
	}
	if err != nil {
		self.log.Warn("Failed to draw overlay window", "window", id, "error", err)
	}
}

func (self *Controller) redraw() {
	if self.state == INACTIVE {
		return
	}
	frame, ok := overlay.Compose(&self.composition, self.cursor, self.screen, self.opts.Palette)
	if !ok {
		self.hide(IM_WINDOW)
		return
	}
	self.hide(NOTICE_WINDOW)
	self.paint(IM_WINDOW, frame)
}

// show_notice tells the user the input method is unavailable, once until
// the next successful connection
func (self *Controller) show_notice() {
	if !self.notice_armed {
		return
	}
	self.notice_armed = false
	self.paint(NOTICE_WINDOW, overlay.Notice(self.opts.NoticeText(), self.cursor, self.screen))
}
