// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package fcitx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kovidgoyal/dbus"

	"github.com/fcitx/fcitx5-fbterm/tools/keymap"
	"github.com/fcitx/fcitx5-fbterm/tools/session"
)

var _ = fmt.Print

const (
	CAPABILITY_CLIENT_SIDE_INPUT_PANEL uint64 = 1 << 39
	// fcitx uses X11 keycodes which are offset from the kernel ones
	KEYCODE_OFFSET    = 8
	KEY_EVENT_TIMEOUT = time.Second
	CLIENT_NAME       = "fbterm"
)

var ErrNotConnected = errors.New("Not connected to fcitx5")

// bus is the part of the D-Bus connection the client needs
type bus interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
	AddMatchSignal(options ...dbus.MatchOption) error
	Signal(ch chan<- *dbus.Signal)
	Close() error
}

// Client is an fcitx5 input context. It follows the daemon across restarts,
// creating a new input context whenever the service name gets a new owner.
type Client struct {
	bus         bus
	log         *slog.Logger
	key_timeout time.Duration

	lock     sync.Mutex
	ic       dbus.BusObject
	ic_path  dbus.ObjectPath
	ic_uuid  uuid.UUID
	start_ts time.Time

	signals    chan *dbus.Signal
	events     chan session.Event
	quit       chan struct{}
	done       sync.WaitGroup
	close_once sync.Once
}

// Connect opens the session bus and starts following the fcitx5 service.
// A missing daemon is not an error, the client reports IMConnected once it
// appears.
func Connect(log *slog.Logger) (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("Could not connect to the session D-Bus: %w", err)
	}
	ans, err := new_client(conn, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ans, nil
}

func new_client(b bus, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	self := &Client{
		bus: b, log: log, key_timeout: KEY_EVENT_TIMEOUT, start_ts: time.Now(),
		signals: make(chan *dbus.Signal, 64), events: make(chan session.Event, 64), quit: make(chan struct{}),
	}
	if err := b.AddMatchSignal(
		dbus.WithMatchSender(DBUS_SERVICE), dbus.WithMatchInterface(DBUS_INTERFACE),
		dbus.WithMatchMember(NAME_OWNER_CHANGED_SIGNAL), dbus.WithMatchArg(0, SERVICE),
	); err != nil {
		return nil, fmt.Errorf("Failed to watch the %s service: %w", SERVICE, err)
	}
	if err := b.AddMatchSignal(dbus.WithMatchInterface(IC_INTERFACE)); err != nil {
		return nil, fmt.Errorf("Failed to watch input context signals: %w", err)
	}
	b.Signal(self.signals)
	if err := self.create_input_context(); err != nil {
		self.log.Info("fcitx5 is not available yet", "error", err)
	} else {
		self.events <- session.IMConnected{}
	}
	self.done.Add(1)
	go self.run()
	return self, nil
}

// Events carries IMConnected, IMDisconnected and the decoded input context
// signals. It is closed when the bus connection is lost or Close is called.
func (self *Client) Events() <-chan session.Event { return self.events }

func (self *Client) run() {
	defer self.done.Done()
	defer close(self.events)
	for {
		select {
		case <-self.quit:
			return
		case sig, more := <-self.signals:
			if !more {
				self.log.Warn("Lost the connection to the session D-Bus")
				return
			}
			for _, ev := range self.handle_signal(sig) {
				select {
				case self.events <- ev:
				case <-self.quit:
					return
				}
			}
		}
	}
}

func (self *Client) handle_signal(sig *dbus.Signal) []session.Event {
	if owner, ok := DecodeNameOwnerChanged(sig); ok {
		was_connected := self.State() == session.CONNECTED
		self.drop_input_context()
		var ans []session.Event
		if was_connected {
			ans = append(ans, session.IMDisconnected{})
		}
		if owner != "" {
			if err := self.create_input_context(); err != nil {
				self.log.Warn("Failed to create an input context", "error", err)
			} else {
				ans = append(ans, session.IMConnected{})
			}
		}
		return ans
	}
	self.lock.Lock()
	ours := self.ic != nil && sig.Path == self.ic_path
	self.lock.Unlock()
	if !ours {
		return nil
	}
	ev, err := DecodeSignal(sig)
	if err != nil {
		self.log.Warn("Ignoring a bad signal from fcitx5", "error", err)
		return nil
	}
	if ev == nil {
		return nil
	}
	return []session.Event{ev}
}

func (self *Client) create_input_context() error {
	im := self.bus.Object(SERVICE, OBJECT_PATH)
	args := [][]string{{"program", CLIENT_NAME}, {"display", CLIENT_NAME}}
	var path dbus.ObjectPath
	var id []byte
	ctx, cancel := context.WithTimeout(context.Background(), self.key_timeout*5)
	defer cancel()
	if err := im.CallWithContext(ctx, IM_INTERFACE+".CreateInputContext", 0, args).Store(&path, &id); err != nil {
		return fmt.Errorf("CreateInputContext failed: %w", err)
	}
	ic := self.bus.Object(SERVICE, path)
	if call := ic.CallWithContext(ctx, IC_INTERFACE+".SetCapability", 0, CAPABILITY_CLIENT_SIDE_INPUT_PANEL); call.Err != nil {
		return fmt.Errorf("SetCapability failed: %w", call.Err)
	}
	ic_uuid, err := uuid.FromBytes(id)
	if err != nil {
		ic_uuid = uuid.Nil
	}
	self.lock.Lock()
	self.ic, self.ic_path, self.ic_uuid = ic, path, ic_uuid
	self.lock.Unlock()
	self.log.Info("Created fcitx5 input context", "path", path, "uuid", ic_uuid)
	return nil
}

func (self *Client) drop_input_context() {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.ic, self.ic_path, self.ic_uuid = nil, "", uuid.Nil
}

func (self *Client) input_context() (dbus.BusObject, error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	if self.ic == nil {
		return nil, ErrNotConnected
	}
	return self.ic, nil
}

func (self *Client) State() session.IMState {
	self.lock.Lock()
	defer self.lock.Unlock()
	if self.ic == nil {
		return session.DISCONNECTED
	}
	return session.CONNECTED
}

// InputContextID is the fcitx5 id of the current input context
func (self *Client) InputContextID() uuid.UUID {
	self.lock.Lock()
	defer self.lock.Unlock()
	return self.ic_uuid
}

func (self *Client) call(method string, args ...any) *dbus.Call {
	ic, err := self.input_context()
	if err != nil {
		return &dbus.Call{Err: err}
	}
	ctx, cancel := context.WithTimeout(context.Background(), self.key_timeout)
	defer cancel()
	return ic.CallWithContext(ctx, IC_INTERFACE+"."+method, 0, args...)
}

// SubmitKey sends a key to fcitx5 and waits a bounded time for the answer
func (self *Client) SubmitKey(keysym uint32, code uint16, mods keymap.Modifiers, pressed bool) (consumed bool, err error) {
	ts := uint32(time.Since(self.start_ts).Milliseconds())
	err = self.call("ProcessKeyEvent", keysym, uint32(code)+KEYCODE_OFFSET, uint32(mods), !pressed, ts).Store(&consumed)
	return
}

func (self *Client) FocusIn() error  { return self.call("FocusIn").Err }
func (self *Client) FocusOut() error { return self.call("FocusOut").Err }

// Close destroys the input context and closes the bus connection
func (self *Client) Close() (err error) {
	self.close_once.Do(func() {
		if ic, ierr := self.input_context(); ierr == nil {
			ic.Go(IC_INTERFACE+".DestroyIC", dbus.FlagNoReplyExpected, nil)
		}
		close(self.quit)
		self.done.Wait()
		self.drop_input_context()
		err = self.bus.Close()
	})
	return
}
