// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package fbterm

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/fcitx/fcitx5-fbterm/tools/session"
	"github.com/fcitx/fcitx5-fbterm/tools/utils"
)

var _ = fmt.Print

const READ_BUFFER_SIZE = 4096

// Start launches the reader goroutine. The returned channel is closed when
// the reader stops.
func (self *Conn) Start() (<-chan session.Event, error) {
	if self.reader_started {
		return nil, fmt.Errorf("The terminal reader is already running")
	}
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, fmt.Errorf("Failed to create the reader quit pipe: %w", err)
	}
	unix.CloseOnExec(fds[0])
	unix.CloseOnExec(fds[1])
	self.quit_r, self.quit_w = fds[0], fds[1]
	self.reader_started = true
	events := make(chan session.Event, 64)
	self.reader_done.Add(1)
	go func() {
		defer self.reader_done.Done()
		defer close(events)
		defer unix.Close(self.quit_r)
		if err := self.read_loop(events); err != nil {
			self.log.Warn("Reading from the terminal failed", "error", err)
			self.read_err_lock.Lock()
			self.read_err = err
			self.read_err_lock.Unlock()
		}
	}()
	return events, nil
}

func (self *Conn) read_loop(events chan<- session.Event) error {
	selector := utils.CreateSelect(2)
	selector.RegisterRead(self.fd)
	selector.RegisterRead(self.quit_r)
	buf := make([]byte, READ_BUFFER_SIZE)
	var pending []byte

	for {
		n, err := selector.WaitForever()
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}
		if selector.IsReadyToRead(self.quit_r) {
			return nil
		}
		n, err = unix.Read(self.fd, buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return err
		}
		if n == 0 {
			if len(pending) > 0 {
				return fmt.Errorf("The terminal closed the connection in the middle of a message: %w", io.ErrUnexpectedEOF)
			}
			self.log.Debug("The terminal closed the connection")
			return nil
		}
		pending = append(pending, buf[:n]...)
		msgs, consumed, perr := ParseMessages(pending)
		pending = pending[:copy(pending, pending[consumed:])]
		for _, m := range msgs {
			if keep_going, err := self.handle_message(m, events); !keep_going || err != nil {
				return err
			}
		}
		if perr != nil {
			return perr
		}
	}
}

func (self *Conn) handle_message(m Message, events chan<- session.Event) (keep_going bool, err error) {
	switch m.Type {
	case DISCONNECT:
		self.log.Debug("The terminal asked us to disconnect")
		return false, nil
	case PING:
		if err = self.AckPing(); err != nil {
			return false, err
		}
		return true, nil
	}
	ev, err := m.ToEvent()
	if err != nil {
		self.log.Warn("Ignoring a bad message from the terminal", "error", err)
		return true, nil
	}
	if ev == nil {
		return true, nil
	}
	select {
	case events <- ev:
		return true, nil
	case <-self.quit:
		return false, nil
	}
}
