// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package keymap

import (
	"fmt"
)

var _ = fmt.Print

// KeySymbol is a Linux console keysym, the key type in the high byte and
// the value in the low byte, as returned by the KDGKBENT ioctl.
type KeySymbol uint16

func K(key_type, value uint8) KeySymbol { return KeySymbol(key_type)<<8 | KeySymbol(value) }

func (self KeySymbol) Type() uint8  { return uint8(self >> 8) }
func (self KeySymbol) Value() uint8 { return uint8(self) }

// Key types
const (
	KT_LATIN uint8 = iota
	KT_FN
	KT_SPEC
	KT_PAD
	KT_DEAD
	KT_CONS
	KT_CUR
	KT_SHIFT
	KT_META
	KT_ASCII
	KT_LOCK
	KT_LETTER
	KT_SLOCK

	NR_TYPES
)

var type_names = [NR_TYPES]string{"latin", "fn", "spec", "pad", "dead", "cons", "cur", "shift", "meta", "ascii", "lock", "letter", "slock"}

func (self KeySymbol) String() string {
	if t := self.Type(); t < NR_TYPES {
		return fmt.Sprintf("%s:%d", type_names[t], self.Value())
	}
	return fmt.Sprintf("0x%04x", uint16(self))
}

// Function keys
const (
	K_FIND   = KeySymbol(KT_FN)<<8 | 20
	K_INSERT = KeySymbol(KT_FN)<<8 | 21
	K_REMOVE = KeySymbol(KT_FN)<<8 | 22
	K_SELECT = KeySymbol(KT_FN)<<8 | 23
	K_PGUP   = KeySymbol(KT_FN)<<8 | 24
	K_PGDN   = KeySymbol(KT_FN)<<8 | 25
	K_MACRO  = KeySymbol(KT_FN)<<8 | 26
	K_HELP   = KeySymbol(KT_FN)<<8 | 27
	K_DO     = KeySymbol(KT_FN)<<8 | 28
	K_PAUSE  = KeySymbol(KT_FN)<<8 | 29
)

func K_F(n int) KeySymbol { return K(KT_FN, uint8(n-1)) }

// Special keys
const (
	K_HOLE        = KeySymbol(KT_SPEC)<<8 | 0
	K_ENTER       = KeySymbol(KT_SPEC)<<8 | 1
	K_CAPS        = KeySymbol(KT_SPEC)<<8 | 7
	K_NUM         = KeySymbol(KT_SPEC)<<8 | 8
	K_HOLD        = KeySymbol(KT_SPEC)<<8 | 9
	K_COMPOSE     = KeySymbol(KT_SPEC)<<8 | 14
	K_BARENUMLOCK = KeySymbol(KT_SPEC)<<8 | 19
)

// Keypad values
const (
	PAD_PLUS uint8 = 10 + iota
	PAD_MINUS
	PAD_STAR
	PAD_SLASH
	PAD_ENTER
	PAD_COMMA
	PAD_DOT
	PAD_PLUSMINUS
	PAD_PARENL
	PAD_PARENR
	PAD_HASH
)

func K_P(value uint8) KeySymbol { return K(KT_PAD, value) }

// Cursor keys
const (
	K_DOWN  = KeySymbol(KT_CUR)<<8 | 0
	K_LEFT  = KeySymbol(KT_CUR)<<8 | 1
	K_RIGHT = KeySymbol(KT_CUR)<<8 | 2
	K_UP    = KeySymbol(KT_CUR)<<8 | 3
)

// Shift keys, the value is the bit number in the kernel shift state
const (
	KG_SHIFT uint8 = iota
	KG_ALTGR
	KG_CTRL
	KG_ALT
	KG_SHIFTL
	KG_SHIFTR
	KG_CTRLL
	KG_CTRLR
	KG_CAPSSHIFT
)

const (
	K_SHIFT     = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_SHIFT)
	K_ALTGR     = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_ALTGR)
	K_CTRL      = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_CTRL)
	K_ALT       = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_ALT)
	K_SHIFTL    = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_SHIFTL)
	K_SHIFTR    = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_SHIFTR)
	K_CTRLL     = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_CTRLL)
	K_CTRLR     = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_CTRLR)
	K_CAPSSHIFT = KeySymbol(KT_SHIFT)<<8 | KeySymbol(KG_CAPSSHIFT)
)

func Latin(ch byte) KeySymbol  { return K(KT_LATIN, ch) }
func Letter(ch byte) KeySymbol { return K(KT_LETTER, ch) }
