// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package fbterm

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
	"github.com/fcitx/fcitx5-fbterm/tools/session"
)

var _ = fmt.Print

const SOCKET_ENV = "FBTERM_IM_SOCKET"

var ErrNoHostSocket = errors.New("No terminal socket found in the environment")

// Conn is the connection to the terminal over the socket it passes to its
// input method child process
type Conn struct {
	fd         int
	write_lock sync.Mutex
	log        *slog.Logger

	reader_started   bool
	reader_done      sync.WaitGroup
	quit_r, quit_w   int
	quit             chan struct{}
	close_once       sync.Once
	read_err_lock    sync.Mutex
	read_err         error
	max_text_payload int
}

// Open uses the socket named by the FBTERM_IM_SOCKET environment variable
func Open(getenv func(string) string, log *slog.Logger) (*Conn, error) {
	val := strings.TrimSpace(getenv(SOCKET_ENV))
	if val == "" {
		return nil, ErrNoHostSocket
	}
	fd, err := strconv.Atoi(val)
	if err != nil || fd < 0 {
		return nil, fmt.Errorf("%w: invalid value %#v for %s", ErrNoHostSocket, val, SOCKET_ENV)
	}
	if _, err = unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); err != nil {
		return nil, fmt.Errorf("%w: file descriptor %d is not open: %s", ErrNoHostSocket, fd, err)
	}
	return NewConn(fd, log)
}

func NewConn(fd int, log *slog.Logger) (*Conn, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		return nil, fmt.Errorf("Failed to make the terminal socket blocking: %w", err)
	}
	ans := Conn{fd: fd, log: log, quit_r: -1, quit_w: -1, quit: make(chan struct{}), max_text_payload: MAX_MESSAGE_SIZE - DRAW_TEXT_OFFSET}
	return &ans, nil
}

func (self *Conn) Fd() int { return self.fd }

func (self *Conn) Send(m Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	self.write_lock.Lock()
	defer self.write_lock.Unlock()
	if self.fd < 0 {
		return unix.EBADF
	}
	for len(data) > 0 {
		n, err := unix.Write(self.fd, data)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return fmt.Errorf("Failed to send %s to the terminal: %w", m.Type, err)
		}
		data = data[n:]
	}
	return nil
}

// Connect tells the terminal we are ready, raw selects raw keycode mode
// instead of already translated bytes
func (self *Conn) Connect(raw bool) error { return self.Send(ConnectMessage(raw)) }

// AckPing answers a keepalive from the terminal
func (self *Conn) AckPing() error { return self.Send(SimpleMessage(ACK_PING)) }

// Disconnect tells the terminal we are going away and closes the connection
func (self *Conn) Disconnect() error {
	err := self.Send(SimpleMessage(DISCONNECT))
	if cerr := self.Close(); err == nil {
		err = cerr
	}
	return err
}

func (self *Conn) SetOverlayWindow(id session.WindowID, r overlay.Rect) error {
	return self.Send(SetWinMessage(id, r))
}

func (self *Conn) FillRect(r overlay.Rect, c overlay.Color) error {
	return self.Send(FillRectMessage(r, c))
}

func (self *Conn) DrawText(x, y int, fg, bg overlay.Color, text string) error {
	if len(text) > self.max_text_payload {
		text = text[:self.max_text_payload]
	}
	return self.Send(DrawTextMessage(x, y, fg, bg, text))
}

// WriteOutput sends bytes to the program running in the terminal, splitting
// them over several messages if needed
func (self *Conn) WriteOutput(data []byte) error {
	for len(data) > 0 {
		chunk := data[:min(len(data), MAX_MESSAGE_SIZE-HEADER_SIZE)]
		if err := self.Send(PutTextMessage(chunk)); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return nil
}

// ReadError is the error that stopped the reader, if any. A clean
// disconnect by the terminal is not an error.
func (self *Conn) ReadError() error {
	self.read_err_lock.Lock()
	defer self.read_err_lock.Unlock()
	return self.read_err
}

// Close stops the reader and closes the socket
func (self *Conn) Close() (err error) {
	self.close_once.Do(func() {
		close(self.quit)
		if self.quit_w > -1 {
			unix.Close(self.quit_w)
			self.quit_w = -1
		}
		self.reader_done.Wait()
		self.write_lock.Lock()
		defer self.write_lock.Unlock()
		if self.fd > -1 {
			err = unix.Close(self.fd)
			self.fd = -1
		}
	})
	return
}
