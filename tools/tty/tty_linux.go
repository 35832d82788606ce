// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package tty

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	KDGKBENT = 0x4B46
	KDGKBLED = 0x4B64
)

type kbentry struct {
	kb_table uint8
	kb_index uint8
	kb_value uint16
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	return eintr_retry_noret(func() error {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
		if errno != 0 {
			return errno
		}
		return nil
	})
}

func get_keymap_entry(fd int, table, index uint8) (uint16, error) {
	e := kbentry{kb_table: table, kb_index: index}
	if err := ioctl(fd, KDGKBENT, unsafe.Pointer(&e)); err != nil {
		return 0, fmt.Errorf("KDGKBENT ioctl failed with error: %w", err)
	}
	return e.kb_value, nil
}

func get_led_state(fd int) (uint8, error) {
	var flags uint8
	if err := ioctl(fd, KDGKBLED, unsafe.Pointer(&flags)); err != nil {
		return 0, fmt.Errorf("KDGKBLED ioctl failed with error: %w", err)
	}
	return flags, nil
}
