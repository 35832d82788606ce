// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package fbterm

import (
	"encoding/binary"
	"fmt"

	"github.com/fcitx/fcitx5-fbterm/tools/keymap"
	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
	"github.com/fcitx/fcitx5-fbterm/tools/session"
)

var _ = fmt.Print

type MessageType uint16

const (
	CONNECT MessageType = iota
	DISCONNECT
	ACTIVE
	DEACTIVE
	SHOW_UI
	HIDE_UI
	SEND_KEY
	PUT_TEXT
	SET_WIN
	ACK_WIN
	CURSOR_POSITION
	FBTERM_INFO
	TERM_MODE
	FILL_RECT
	DRAW_TEXT
	PING
	ACK_PING
)

var message_type_names = [...]string{
	"Connect", "Disconnect", "Active", "Deactive", "ShowUI", "HideUI", "SendKey", "PutText", "SetWin",
	"AckWin", "CursorPosition", "FbTermInfo", "TermMode", "FillRect", "DrawText", "Ping", "AckPing",
}

func (self MessageType) String() string {
	if int(self) < len(message_type_names) {
		return message_type_names[self]
	}
	return fmt.Sprintf("MessageType(%d)", uint16(self))
}

const (
	HEADER_SIZE = 4
	// size of the header plus the largest member of the payload union, used
	// for every fixed size message
	FIXED_MESSAGE_SIZE = HEADER_SIZE + 20
	DRAW_TEXT_OFFSET   = HEADER_SIZE + 10
	MAX_MESSAGE_SIZE   = 0xffff
	SHOW_ALL_WINDOWS   = 0xffffffff
)

var byte_order = binary.NativeEndian

type Message struct {
	Type    MessageType
	Payload []byte
}

func (self Message) String() string {
	return fmt.Sprintf("%s(%d bytes)", self.Type, len(self.Payload))
}

func (self Message) Size() int { return HEADER_SIZE + len(self.Payload) }

// Encode serializes the message, the length field counts the header
func (self Message) Encode() ([]byte, error) {
	sz := self.Size()
	if sz > MAX_MESSAGE_SIZE {
		return nil, fmt.Errorf("The %s message is too large: %d bytes", self.Type, sz)
	}
	ans := make([]byte, sz)
	byte_order.PutUint16(ans, uint16(self.Type))
	byte_order.PutUint16(ans[2:], uint16(sz))
	copy(ans[HEADER_SIZE:], self.Payload)
	return ans, nil
}

// ParseMessages splits buf into complete messages. consumed is the number of
// bytes used, anything after it is the start of an incomplete message.
func ParseMessages(buf []byte) (msgs []Message, consumed int, err error) {
	for len(buf)-consumed >= HEADER_SIZE {
		b := buf[consumed:]
		sz := int(byte_order.Uint16(b[2:]))
		if sz < HEADER_SIZE {
			return msgs, consumed, fmt.Errorf("Invalid message length %d for message of type %s", sz, MessageType(byte_order.Uint16(b)))
		}
		if sz > len(b) {
			break
		}
		payload := make([]byte, sz-HEADER_SIZE)
		copy(payload, b[HEADER_SIZE:sz])
		msgs = append(msgs, Message{Type: MessageType(byte_order.Uint16(b)), Payload: payload})
		consumed += sz
	}
	return
}

func fixed(mt MessageType) Message {
	return Message{Type: mt, Payload: make([]byte, FIXED_MESSAGE_SIZE-HEADER_SIZE)}
}

func coord(x int) uint32 { return uint32(max(0, x)) }

func put_rect(b []byte, r overlay.Rect) {
	byte_order.PutUint32(b, coord(r.X))
	byte_order.PutUint32(b[4:], coord(r.Y))
	byte_order.PutUint32(b[8:], coord(r.Width))
	byte_order.PutUint32(b[12:], coord(r.Height))
}

func ConnectMessage(raw bool) Message {
	ans := fixed(CONNECT)
	if raw {
		ans.Payload[0] = 1
	}
	return ans
}

func SetWinMessage(id session.WindowID, r overlay.Rect) Message {
	ans := fixed(SET_WIN)
	byte_order.PutUint32(ans.Payload, uint32(id))
	put_rect(ans.Payload[4:], r)
	return ans
}

func FillRectMessage(r overlay.Rect, c overlay.Color) Message {
	ans := fixed(FILL_RECT)
	put_rect(ans.Payload, r)
	ans.Payload[16] = byte(c)
	return ans
}

func DrawTextMessage(x, y int, fg, bg overlay.Color, text string) Message {
	p := make([]byte, DRAW_TEXT_OFFSET-HEADER_SIZE+len(text))
	byte_order.PutUint32(p, coord(x))
	byte_order.PutUint32(p[4:], coord(y))
	p[8], p[9] = byte(fg), byte(bg)
	copy(p[10:], text)
	return Message{Type: DRAW_TEXT, Payload: p}
}

func PutTextMessage(data []byte) Message {
	return Message{Type: PUT_TEXT, Payload: append([]byte(nil), data...)}
}

func SimpleMessage(mt MessageType) Message { return fixed(mt) }

func (self Message) need(n int) error {
	if len(self.Payload) < n {
		return fmt.Errorf("The %s message is truncated, need %d payload bytes, have %d", self.Type, n, len(self.Payload))
	}
	return nil
}

func (self Message) Info() (ans overlay.ScreenMetrics, err error) {
	if err = self.need(8); err != nil {
		return
	}
	p := self.Payload
	ans.FontHeight = int(byte_order.Uint16(p))
	ans.FontWidth = int(byte_order.Uint16(p[2:]))
	ans.ScreenHeight = int(byte_order.Uint16(p[4:]))
	ans.ScreenWidth = int(byte_order.Uint16(p[6:]))
	return
}

func (self Message) CursorPosition() (x, y int, err error) {
	if err = self.need(8); err != nil {
		return
	}
	return int(byte_order.Uint32(self.Payload)), int(byte_order.Uint32(self.Payload[4:])), nil
}

func (self Message) TermMode() (ans keymap.TermMode, err error) {
	if err = self.need(3); err != nil {
		return
	}
	p := self.Payload
	return keymap.TermMode{CRWithLF: p[0] != 0, ApplicKeypad: p[1] != 0, CursorEscO: p[2] != 0}, nil
}

func (self Message) WindowID() (uint32, error) {
	if err := self.need(4); err != nil {
		return 0, err
	}
	return byte_order.Uint32(self.Payload), nil
}

// ToEvent converts a message from the terminal into a session event. A nil
// event with a nil error means the message needs no controller action.
func (self Message) ToEvent() (session.Event, error) {
	switch self.Type {
	case ACTIVE:
		return session.FocusIn{}, nil
	case DEACTIVE:
		return session.FocusOut{}, nil
	case SHOW_UI:
		// every ShowUI repaints all our windows whatever window id it names
		if _, err := self.WindowID(); err != nil {
			return nil, err
		}
		return session.Redraw{}, nil
	case SEND_KEY:
		return session.KeyBytes{Data: self.Payload}, nil
	case CURSOR_POSITION:
		x, y, err := self.CursorPosition()
		if err != nil {
			return nil, err
		}
		return session.CursorMoved{X: x, Y: y}, nil
	case FBTERM_INFO:
		m, err := self.Info()
		if err != nil {
			return nil, err
		}
		return session.ScreenMetricsChanged{Metrics: m}, nil
	case TERM_MODE:
		m, err := self.TermMode()
		if err != nil {
			return nil, err
		}
		return session.TermModeChanged{Mode: m}, nil
	case HIDE_UI, ACK_WIN, PING, DISCONNECT:
		return nil, nil
	}
	return nil, fmt.Errorf("Unexpected message from the terminal: %s", self)
}
