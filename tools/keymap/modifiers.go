// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package keymap

import (
	"strings"
)

// Modifiers uses the bit layout of the X11 state mask so that it can be
// passed to the input method unchanged.
type Modifiers uint32

const (
	SHIFT     Modifiers = 1 << 0
	CAPS_LOCK Modifiers = 1 << 1
	CTRL      Modifiers = 1 << 2
	ALT       Modifiers = 1 << 3
	NUM_LOCK  Modifiers = 1 << 4
	ALTGR     Modifiers = 1 << 7

	LOCK_MODIFIERS = CAPS_LOCK | NUM_LOCK
)

func (self Modifiers) String() string {
	ans := make([]string, 0, 6)
	for _, x := range []struct {
		m    Modifiers
		name string
	}{{SHIFT, "shift"}, {CAPS_LOCK, "caps_lock"}, {CTRL, "ctrl"}, {ALT, "alt"}, {NUM_LOCK, "num_lock"}, {ALTGR, "altgr"}} {
		if self&x.m != 0 {
			ans = append(ans, x.name)
		}
	}
	return strings.Join(ans, "+")
}

func (self Modifiers) Has(m Modifiers) bool { return self&m != 0 }

func modifier_for_shift_value(value uint8) Modifiers {
	switch value {
	case KG_SHIFT, KG_SHIFTL, KG_SHIFTR, KG_CAPSSHIFT:
		return SHIFT
	case KG_CTRL, KG_CTRLL, KG_CTRLR:
		return CTRL
	case KG_ALT:
		return ALT
	case KG_ALTGR:
		return ALTGR
	}
	return 0
}

// NextState returns the modifier state after sym is pressed or released
func NextState(state Modifiers, sym KeySymbol, pressed bool) Modifiers {
	switch sym.Type() {
	case KT_SHIFT:
		m := modifier_for_shift_value(sym.Value())
		if pressed {
			return state | m
		}
		return state &^ m
	case KT_SPEC:
		if !pressed {
			break
		}
		switch sym {
		case K_CAPS:
			return state ^ CAPS_LOCK
		case K_NUM, K_BARENUMLOCK:
			return state ^ NUM_LOCK
		}
	case KT_LOCK:
		if !pressed {
			break
		}
		if sym.Value() == KG_CAPSSHIFT {
			return state ^ CAPS_LOCK
		}
		return state ^ modifier_for_shift_value(sym.Value())
	}
	return state
}

// ResetTransient drops every modifier except the locks
func ResetTransient(state Modifiers) Modifiers {
	return state & LOCK_MODIFIERS
}
