// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package keycode

import (
	"fmt"
)

var _ = fmt.Print

const (
	RELEASE_BIT byte = 0x80
	CODE_MASK   byte = 0x7f
)

type KeyEvent struct {
	Code    uint16
	Pressed bool
}

func (self KeyEvent) String() string {
	if self.Pressed {
		return fmt.Sprintf("press(%d)", self.Code)
	}
	return fmt.Sprintf("release(%d)", self.Code)
}

// Decode converts raw medium raw keyboard bytes into key events. A zero code
// introduces a three byte sequence whose two continuation bytes carry seven
// bits each. A sequence cut short by the end of buf stops decoding, those
// bytes are not counted in consumed. A sequence with a continuation byte
// missing the high bit is discarded whole.
func Decode(buf []byte) (events []KeyEvent, consumed int) {
	events = make([]KeyEvent, 0, len(buf))
	for consumed < len(buf) {
		b := buf[consumed]
		ev := KeyEvent{Pressed: b&RELEASE_BIT == 0, Code: uint16(b & CODE_MASK)}
		if ev.Code != 0 {
			consumed++
			events = append(events, ev)
			continue
		}
		if consumed+2 >= len(buf) {
			break
		}
		hi, lo := buf[consumed+1], buf[consumed+2]
		consumed += 3
		if hi&RELEASE_BIT == 0 || lo&RELEASE_BIT == 0 {
			continue
		}
		ev.Code = uint16(hi&CODE_MASK)<<7 | uint16(lo&CODE_MASK)
		events = append(events, ev)
	}
	return
}

// Decoder carries an incomplete trailing sequence over to the next Feed
type Decoder struct {
	pending []byte
}

func (self *Decoder) Feed(data []byte) []KeyEvent {
	if len(self.pending) > 0 {
		data = append(self.pending, data...)
	}
	events, consumed := Decode(data)
	self.pending = append(self.pending[:0:0], data[consumed:]...)
	return events
}

func (self *Decoder) Pending() int { return len(self.pending) }

func (self *Decoder) Reset() {
	self.pending = nil
}
