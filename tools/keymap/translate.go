// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package keymap

import (
	"fmt"
)

var _ = fmt.Print

// TermMode holds the terminal modes that change the bytes a key produces
type TermMode struct {
	CRWithLF     bool
	ApplicKeypad bool
	CursorEscO   bool
}

var function_key_strings = [...]string{
	"\x1b[[A", "\x1b[[B", "\x1b[[C", "\x1b[[D", "\x1b[[E",
	"\x1b[17~", "\x1b[18~", "\x1b[19~", "\x1b[20~", "\x1b[21~",
	"\x1b[23~", "\x1b[24~", "\x1b[25~", "\x1b[26~", "\x1b[28~",
	"\x1b[29~", "\x1b[31~", "\x1b[32~", "\x1b[33~", "\x1b[34~",
	"\x1b[1~", "\x1b[2~", "\x1b[3~", "\x1b[4~", "\x1b[5~",
	"\x1b[6~", "\x1b[M", "", "", "\x1b[P",
}

const (
	PAD_CHARS             = "0123456789+-*/\r,.?()#"
	APPLICATION_PAD_CHARS = "pqrstuvwxylSRQMnnmPQS"
	CURSOR_CHARS          = "BDCA"
)

// Keypad keys that act as editing keys when NumLock is off
var pad_navigation = map[uint8]KeySymbol{
	0: K_INSERT, 1: K_SELECT, 2: K_DOWN, 3: K_PGDN, 4: K_LEFT,
	6: K_RIGHT, 7: K_FIND, 8: K_UP, 9: K_PGUP, PAD_DOT: K_REMOVE,
}

type Translator struct {
	keymap *Keymap
}

func NewTranslator(km *Keymap) *Translator {
	if km == nil {
		km = USKeymap
	}
	return &Translator{keymap: km}
}

func (self *Translator) Keymap() *Keymap { return self.keymap }

// KeySymbol maps a keycode to its console symbol under the given modifiers.
// Unknown keycodes give K_HOLE.
func (self *Translator) KeySymbol(code uint16, mods Modifiers) KeySymbol {
	if int(code) >= len(self.keymap) {
		return K_HOLE
	}
	e := &self.keymap[code]
	shifted := mods.Has(SHIFT)
	if e.Plain.Type() == KT_LETTER && mods.Has(CAPS_LOCK) {
		shifted = !shifted
	}
	var sym KeySymbol
	switch {
	case mods.Has(CTRL):
		sym = e.Ctrl
	case mods.Has(ALTGR):
		sym = e.AltGr
	case shifted:
		sym = e.Shift
	default:
		sym = e.Plain
	}
	switch sym.Type() {
	case KT_LATIN, KT_LETTER:
		if mods.Has(ALT) {
			sym = K(KT_META, sym.Value())
		}
	case KT_PAD:
		if !mods.Has(NUM_LOCK) || mods.Has(SHIFT) {
			if nav, found := pad_navigation[sym.Value()]; found {
				sym = nav
			}
		}
	}
	return sym
}

func enter_string(mode TermMode) string {
	if mode.CRWithLF {
		return "\r\n"
	}
	return "\r"
}

// ControlString gives the bytes a console writes for sym. Releases and
// symbols that only change state produce nothing.
func ControlString(sym KeySymbol, pressed bool, mode TermMode) (string, bool) {
	if !pressed {
		return "", false
	}
	v := sym.Value()
	switch sym.Type() {
	case KT_LATIN, KT_LETTER:
		return string(rune(v)), true
	case KT_META:
		return "\x1b" + string(rune(v)), true
	case KT_FN:
		if int(v) < len(function_key_strings) && function_key_strings[v] != "" {
			return function_key_strings[v], true
		}
	case KT_SPEC:
		if sym == K_ENTER {
			return enter_string(mode), true
		}
	case KT_PAD:
		if int(v) >= len(PAD_CHARS) {
			break
		}
		if mode.ApplicKeypad {
			return "\x1bO" + APPLICATION_PAD_CHARS[v:v+1], true
		}
		if v == PAD_ENTER {
			return enter_string(mode), true
		}
		return PAD_CHARS[v : v+1], true
	case KT_CUR:
		if int(v) >= len(CURSOR_CHARS) {
			break
		}
		if mode.CursorEscO {
			return "\x1bO" + CURSOR_CHARS[v:v+1], true
		}
		return "\x1b[" + CURSOR_CHARS[v:v+1], true
	}
	return "", false
}

// FallbackString is used for keys without a console symbol: a keycode in
// the printable ASCII range is passed through as is. The Windows keys never
// produce text.
func FallbackString(code uint16, pressed bool) (string, bool) {
	if !pressed || code < 0x20 || code >= 0x7f || code == KEY_LEFTMETA || code == KEY_RIGHTMETA {
		return "", false
	}
	return string(rune(code)), true
}

// TermString is ControlString for sym falling back to FallbackString for
// keys without a symbol
func TermString(sym KeySymbol, code uint16, pressed bool, mode TermMode) (string, bool) {
	if sym == K_HOLE {
		return FallbackString(code, pressed)
	}
	return ControlString(sym, pressed, mode)
}
