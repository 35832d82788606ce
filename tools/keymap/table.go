// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package keymap

const NR_KEYS = 128

// Entry holds the symbols of one keycode in each of the console keymap
// tables used for translation
type Entry struct {
	Plain, Shift, AltGr, Ctrl KeySymbol
}

type Keymap [NR_KEYS]Entry

// Kernel keymap table numbers for the columns of Entry
const (
	TABLE_PLAIN uint8 = 0
	TABLE_SHIFT uint8 = 1 << KG_SHIFT
	TABLE_ALTGR uint8 = 1 << KG_ALTGR
	TABLE_CTRL  uint8 = 1 << KG_CTRL
)

// Keycodes with special handling outside the keymap
const (
	KEY_ESC        = 1
	KEY_BACKSPACE  = 14
	KEY_TAB        = 15
	KEY_ENTER      = 28
	KEY_LEFTCTRL   = 29
	KEY_A          = 30
	KEY_LEFTSHIFT  = 42
	KEY_RIGHTSHIFT = 54
	KEY_LEFTALT    = 56
	KEY_SPACE      = 57
	KEY_CAPSLOCK   = 58
	KEY_NUMLOCK    = 69
	KEY_KPENTER    = 96
	KEY_RIGHTCTRL  = 97
	KEY_RIGHTALT   = 100
	KEY_LEFTMETA   = 125
	KEY_RIGHTMETA  = 126
	KEY_COMPOSE    = 127
)

var control_chars = map[byte]byte{
	'2': 0, ' ': 0, '`': 0, '@': 0,
	'3': 27, '[': 27,
	'4': 28, '\\': 28,
	'5': 29, ']': 29,
	'6': 30, '^': 30,
	'7': 31, '-': 31, '/': 31,
	'8': 127,
}

func set_latin(km *Keymap, code int, plain, shifted byte) {
	e := &km[code]
	if plain >= 'a' && plain <= 'z' {
		e.Plain, e.Shift, e.AltGr = Letter(plain), Letter(shifted), Letter(plain)
		e.Ctrl = Latin(plain & 0x1f)
		return
	}
	e.Plain, e.Shift, e.AltGr, e.Ctrl = Latin(plain), Latin(shifted), Latin(plain), Latin(plain)
	if c, found := control_chars[plain]; found {
		e.Ctrl = Latin(c)
	}
}

func set_all(km *Keymap, code int, sym KeySymbol) {
	km[code] = Entry{sym, sym, sym, sym}
}

func us_keymap() *Keymap {
	km := Keymap{}
	for i := range km {
		set_all(&km, i, K_HOLE)
	}
	for code, pair := range map[int]string{
		2: "1!", 3: "2@", 4: "3#", 5: "4$", 6: "5%", 7: "6^", 8: "7&", 9: "8*", 10: "9(", 11: "0)",
		12: "-_", 13: "=+", 26: "[{", 27: "]}", 39: ";:", 40: "'\"", 41: "`~", 43: "\\|",
		51: ",<", 52: ".>", 53: "/?", 57: "  ", 86: "<>",
	} {
		set_latin(&km, code, pair[0], pair[1])
	}
	for i, ch := range []byte("qwertyuiop") {
		set_latin(&km, 16+i, ch, ch-32)
	}
	for i, ch := range []byte("asdfghjkl") {
		set_latin(&km, 30+i, ch, ch-32)
	}
	for i, ch := range []byte("zxcvbnm") {
		set_latin(&km, 44+i, ch, ch-32)
	}
	set_all(&km, KEY_ESC, Latin(27))
	set_all(&km, KEY_BACKSPACE, Latin(127))
	set_all(&km, KEY_TAB, Latin('\t'))
	set_all(&km, KEY_ENTER, K_ENTER)
	set_all(&km, KEY_LEFTCTRL, K_CTRL)
	set_all(&km, KEY_RIGHTCTRL, K_CTRL)
	set_all(&km, KEY_LEFTSHIFT, K_SHIFT)
	set_all(&km, KEY_RIGHTSHIFT, K_SHIFT)
	set_all(&km, KEY_LEFTALT, K_ALT)
	set_all(&km, KEY_RIGHTALT, K_ALTGR)
	set_all(&km, KEY_CAPSLOCK, K_CAPS)
	set_all(&km, KEY_NUMLOCK, K_NUM)
	set_all(&km, 70, K_HOLD)
	for i := 0; i < 10; i++ {
		set_all(&km, 59+i, K_F(i+1))
	}
	set_all(&km, 87, K_F(11))
	set_all(&km, 88, K_F(12))
	// shifted function keys give F13 to F20 like the kernel default map
	for i := 0; i < 8; i++ {
		km[59+i].Shift = K_F(13 + i)
	}
	for code, v := range map[int]uint8{
		71: 7, 72: 8, 73: 9, 74: PAD_MINUS, 75: 4, 76: 5, 77: 6, 78: PAD_PLUS,
		79: 1, 80: 2, 81: 3, 82: 0, 83: PAD_DOT, 55: PAD_STAR, 98: PAD_SLASH, KEY_KPENTER: PAD_ENTER,
	} {
		set_all(&km, code, K_P(v))
	}
	for code, sym := range map[int]KeySymbol{
		102: K_FIND, 103: K_UP, 104: K_PGUP, 105: K_LEFT, 106: K_RIGHT, 107: K_SELECT,
		108: K_DOWN, 109: K_PGDN, 110: K_INSERT, 111: K_REMOVE, 119: K_PAUSE,
	} {
		set_all(&km, code, sym)
	}
	return &km
}

// USKeymap is the built-in fallback used when the console keymap cannot
// be read
var USKeymap = us_keymap()
