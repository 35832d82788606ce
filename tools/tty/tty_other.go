// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

//go:build !linux

package tty

import (
	"errors"
)

func get_keymap_entry(fd int, table, index uint8) (uint16, error) {
	return 0, errors.ErrUnsupported
}

func get_led_state(fd int) (uint8, error) {
	return 0, errors.ErrUnsupported
}
