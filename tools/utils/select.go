// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package utils

import (
	"time"

	"golang.org/x/sys/unix"
)

// Selector waits for a set of file descriptors to become readable
type Selector struct {
	read_set unix.FdSet
	read_fds map[int]bool
}

func CreateSelect(expected_number_of_fds int) *Selector {
	return &Selector{read_fds: make(map[int]bool, expected_number_of_fds)}
}

func (self *Selector) RegisterRead(fd int) {
	self.read_fds[fd] = true
}

func (self *Selector) UnRegisterRead(fd int) {
	delete(self.read_fds, fd)
}

// Wait blocks until at least one registered descriptor is readable or
// timeout expires. A negative timeout waits forever.
func (self *Selector) Wait(timeout time.Duration) (num_ready int, err error) {
	max_fd_num := -1
	self.read_set.Zero()
	for fd, enabled := range self.read_fds {
		if fd > -1 && enabled {
			max_fd_num = max(max_fd_num, fd)
			self.read_set.Set(fd)
		}
	}
	num_ready, err = Select(max_fd_num+1, &self.read_set, nil, nil, timeout)
	if err == unix.EINTR {
		self.read_set.Zero()
		return 0, err
	}
	return
}

func (self *Selector) WaitForever() (num_ready int, err error) {
	return self.Wait(-1)
}

func (self *Selector) IsReadyToRead(fd int) bool {
	return fd > -1 && self.read_set.IsSet(fd)
}
