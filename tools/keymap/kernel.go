// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package keymap

import (
	"fmt"
)

// Console is the part of a virtual console used to read its keyboard setup
type Console interface {
	KeymapEntry(table, index uint8) (uint16, error)
	LEDState() (uint8, error)
}

// LED flags as returned by KDGKBLED
const (
	LED_SCR uint8 = 0x01
	LED_NUM uint8 = 0x02
	LED_CAP uint8 = 0x04
)

// LoadKernelKeymap reads the active keymap of the console so that layouts
// other than US are translated correctly
func LoadKernelKeymap(c Console) (*Keymap, error) {
	km := Keymap{}
	for code := range km {
		e := &km[code]
		for _, x := range []struct {
			table uint8
			dest  *KeySymbol
		}{{TABLE_PLAIN, &e.Plain}, {TABLE_SHIFT, &e.Shift}, {TABLE_ALTGR, &e.AltGr}, {TABLE_CTRL, &e.Ctrl}} {
			val, err := c.KeymapEntry(x.table, uint8(code))
			if err != nil {
				return nil, fmt.Errorf("failed to read entry %d of console keymap table %d: %w", code, x.table, err)
			}
			*x.dest = KeySymbol(val)
			if x.dest.Type() >= NR_TYPES {
				*x.dest = K_HOLE
			}
		}
	}
	return &km, nil
}

// KernelLockState returns the lock modifiers currently set on the console
func KernelLockState(c Console) (Modifiers, error) {
	flags, err := c.LEDState()
	if err != nil {
		return 0, fmt.Errorf("failed to read console keyboard flags: %w", err)
	}
	var ans Modifiers
	if flags&LED_NUM != 0 {
		ans |= NUM_LOCK
	}
	if flags&LED_CAP != 0 {
		ans |= CAPS_LOCK
	}
	return ans, nil
}
