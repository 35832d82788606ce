// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package tty

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Console is a handle to a virtual console, used to query its keyboard
// setup
type Console struct {
	fd      int
	name    string
	os_file *os.File
}

func eintr_retry_noret(f func() error) error {
	for {
		qerr := f()
		if qerr == unix.EINTR {
			continue
		}
		return qerr
	}
}

func eintr_retry_intret(f func() (int, error)) (int, error) {
	for {
		q, qerr := f()
		if qerr == unix.EINTR {
			continue
		}
		return q, qerr
	}
}

// WrapConsole uses an already open file descriptor, it is not closed by
// Close
func WrapConsole(fd int, name string) (self *Console, err error) {
	if fd < 0 {
		return nil, os.ErrInvalid
	}
	if name == "" {
		name = fmt.Sprintf("<fd: %d>", fd)
	}
	return &Console{fd: fd, name: name}, nil
}

func OpenConsole(name string) (self *Console, err error) {
	fd, err := eintr_retry_intret(func() (int, error) {
		return unix.Open(name, unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_RDONLY, 0)
	})
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return &Console{fd: fd, name: name, os_file: os.NewFile(uintptr(fd), name)}, nil
}

func OpenControllingConsole() (self *Console, err error) {
	return OpenConsole(Ctermid())
}

func (self *Console) Name() string { return self.name }
func (self *Console) Fd() int      { return self.fd }

func (self *Console) Close() (err error) {
	if self.os_file != nil {
		err = eintr_retry_noret(func() error { return self.os_file.Close() })
		self.os_file = nil
	}
	self.fd = -1
	return
}

// KeymapEntry returns the symbol at index in the given kernel keymap table
func (self *Console) KeymapEntry(table, index uint8) (uint16, error) {
	if self.fd < 0 {
		return 0, os.ErrClosed
	}
	return get_keymap_entry(self.Fd(), table, index)
}

// LEDState returns the keyboard lock flags of the console
func (self *Console) LEDState() (uint8, error) {
	if self.fd < 0 {
		return 0, os.ErrClosed
	}
	return get_led_state(self.Fd())
}

func Ctermid() string { return "/dev/tty" }
