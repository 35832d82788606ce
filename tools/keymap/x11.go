// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package keymap

// X11 keysyms understood by the input method
const (
	XK_NoSymbol         uint32 = 0
	XK_BackSpace        uint32 = 0xff08
	XK_Tab              uint32 = 0xff09
	XK_Return           uint32 = 0xff0d
	XK_Pause            uint32 = 0xff13
	XK_Scroll_Lock      uint32 = 0xff14
	XK_Escape           uint32 = 0xff1b
	XK_Multi_key        uint32 = 0xff20
	XK_Home             uint32 = 0xff50
	XK_Left             uint32 = 0xff51
	XK_Up               uint32 = 0xff52
	XK_Right            uint32 = 0xff53
	XK_Down             uint32 = 0xff54
	XK_Prior            uint32 = 0xff55
	XK_Next             uint32 = 0xff56
	XK_End              uint32 = 0xff57
	XK_Insert           uint32 = 0xff63
	XK_Menu             uint32 = 0xff67
	XK_Help             uint32 = 0xff6a
	XK_Num_Lock         uint32 = 0xff7f
	XK_KP_Enter         uint32 = 0xff8d
	XK_KP_Multiply      uint32 = 0xffaa
	XK_KP_Add           uint32 = 0xffab
	XK_KP_Separator     uint32 = 0xffac
	XK_KP_Subtract      uint32 = 0xffad
	XK_KP_Decimal       uint32 = 0xffae
	XK_KP_Divide        uint32 = 0xffaf
	XK_KP_0             uint32 = 0xffb0
	XK_F1               uint32 = 0xffbe
	XK_Shift_L          uint32 = 0xffe1
	XK_Shift_R          uint32 = 0xffe2
	XK_Control_L        uint32 = 0xffe3
	XK_Control_R        uint32 = 0xffe4
	XK_Caps_Lock        uint32 = 0xffe5
	XK_Alt_L            uint32 = 0xffe9
	XK_Alt_R            uint32 = 0xffea
	XK_Super_L          uint32 = 0xffeb
	XK_Super_R          uint32 = 0xffec
	XK_Delete           uint32 = 0xffff
	XK_ISO_Level3_Shift uint32 = 0xfe03
)

var fn_keysyms = map[KeySymbol]uint32{
	K_FIND: XK_Home, K_INSERT: XK_Insert, K_REMOVE: XK_Delete, K_SELECT: XK_End,
	K_PGUP: XK_Prior, K_PGDN: XK_Next, K_HELP: XK_Help, K_PAUSE: XK_Pause,
}

var spec_keysyms = map[KeySymbol]uint32{
	K_ENTER: XK_Return, K_CAPS: XK_Caps_Lock, K_NUM: XK_Num_Lock, K_BARENUMLOCK: XK_Num_Lock,
	K_HOLD: XK_Scroll_Lock, K_COMPOSE: XK_Multi_key,
}

var pad_keysyms = map[uint8]uint32{
	PAD_PLUS: XK_KP_Add, PAD_MINUS: XK_KP_Subtract, PAD_STAR: XK_KP_Multiply, PAD_SLASH: XK_KP_Divide,
	PAD_ENTER: XK_KP_Enter, PAD_COMMA: XK_KP_Separator, PAD_DOT: XK_KP_Decimal,
	PAD_PLUSMINUS: 0xb1, PAD_PARENL: '(', PAD_PARENR: ')',
}

var cursor_keysyms = [...]uint32{XK_Down, XK_Left, XK_Right, XK_Up}

func latin_keysym(v uint8) uint32 {
	switch v {
	case '\b', 0x7f:
		return XK_BackSpace
	case '\t':
		return XK_Tab
	case '\r', '\n':
		return XK_Return
	case 0x1b:
		return XK_Escape
	}
	if (v >= 0x20 && v < 0x7f) || v >= 0xa0 {
		return uint32(v)
	}
	return XK_NoSymbol
}

func shift_keysym(v uint8, code uint16) uint32 {
	switch v {
	case KG_SHIFT, KG_CAPSSHIFT, KG_SHIFTL, KG_SHIFTR:
		if v == KG_SHIFTR || (v != KG_SHIFTL && code == KEY_RIGHTSHIFT) {
			return XK_Shift_R
		}
		return XK_Shift_L
	case KG_CTRL, KG_CTRLL, KG_CTRLR:
		if v == KG_CTRLR || (v != KG_CTRLL && code == KEY_RIGHTCTRL) {
			return XK_Control_R
		}
		return XK_Control_L
	case KG_ALT:
		if code == KEY_RIGHTALT {
			return XK_Alt_R
		}
		return XK_Alt_L
	case KG_ALTGR:
		return XK_ISO_Level3_Shift
	}
	return XK_NoSymbol
}

// X11Keysym converts a console symbol into the keysym sent to the input
// method. Modifiers are not folded in, the input method gets them in the
// state mask. Keys without an equivalent give XK_NoSymbol.
func X11Keysym(sym KeySymbol, code uint16) uint32 {
	switch code {
	case KEY_LEFTMETA:
		return XK_Super_L
	case KEY_RIGHTMETA:
		return XK_Super_R
	case KEY_COMPOSE:
		if sym == K_HOLE {
			return XK_Menu
		}
	}
	v := sym.Value()
	switch sym.Type() {
	case KT_LATIN, KT_LETTER, KT_META:
		return latin_keysym(v)
	case KT_FN:
		if v < 20 {
			return XK_F1 + uint32(v)
		}
		return fn_keysyms[sym]
	case KT_SPEC:
		return spec_keysyms[sym]
	case KT_PAD:
		if v < 10 {
			return XK_KP_0 + uint32(v)
		}
		return pad_keysyms[v]
	case KT_CUR:
		if int(v) < len(cursor_keysyms) {
			return cursor_keysyms[v]
		}
	case KT_SHIFT:
		return shift_keysym(v, code)
	case KT_LOCK:
		if v == KG_CAPSSHIFT {
			return XK_Caps_Lock
		}
		return shift_keysym(v, code)
	}
	return XK_NoSymbol
}
