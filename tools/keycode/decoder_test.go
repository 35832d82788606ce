// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package keycode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	test := func(input []byte, consumed int, expected ...KeyEvent) {
		actual, c := Decode(input)
		if expected == nil {
			expected = []KeyEvent{}
		}
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Fatalf("Decoding %#v failed:\n%s", input, diff)
		}
		if c != consumed {
			t.Fatalf("Decoding %#v consumed %d instead of %d", input, c, consumed)
		}
	}
	p := func(code uint16) KeyEvent { return KeyEvent{Code: code, Pressed: true} }
	r := func(code uint16) KeyEvent { return KeyEvent{Code: code} }

	test(nil, 0)
	test([]byte{30}, 1, p(30))
	test([]byte{30 | 0x80}, 1, r(30))
	test([]byte{42, 30, 30 | 0x80, 42 | 0x80}, 4, p(42), p(30), r(30), r(42))
	test([]byte{0x00, 0x85, 0x90}, 3, p(0x05<<7|0x10))
	test([]byte{0x80, 0x81, 0x82}, 3, r(1<<7|2))
	// malformed continuation drops the sequence but not what follows
	test([]byte{0x00, 0x05, 0x90, 30}, 4, p(30))
	test([]byte{0x00, 0x85, 0x10, 31, 31 | 0x80}, 5, p(31), r(31))
	// truncated sequences are left unconsumed
	test([]byte{30, 0x00}, 1, p(30))
	test([]byte{30, 0x00, 0x85}, 1, p(30))
}

func TestDecoderSplitFeeds(t *testing.T) {
	stream := []byte{42, 0x00, 0x85, 0x90, 30, 0x80, 0x81, 0x82, 30 | 0x80, 0x00, 0x01, 0x82, 42 | 0x80}
	whole, consumed := Decode(stream)
	if consumed != len(stream) {
		t.Fatalf("Whole stream not consumed: %d", consumed)
	}
	for split := 0; split <= len(stream); split++ {
		d := Decoder{}
		actual := d.Feed(stream[:split])
		actual = append(actual, d.Feed(stream[split:])...)
		if diff := cmp.Diff(whole, actual); diff != "" {
			t.Fatalf("Splitting at %d gave different events:\n%s", split, diff)
		}
		if d.Pending() != 0 {
			t.Fatalf("Splitting at %d left %d pending bytes", split, d.Pending())
		}
	}
	// byte at a time
	d := Decoder{}
	actual := []KeyEvent{}
	for _, b := range stream {
		actual = append(actual, d.Feed([]byte{b})...)
	}
	if diff := cmp.Diff(whole, actual); diff != "" {
		t.Fatalf("Byte at a time feeding gave different events:\n%s", diff)
	}
}

func TestDecoderReset(t *testing.T) {
	d := Decoder{}
	if ev := d.Feed([]byte{0x00, 0x85}); len(ev) != 0 {
		t.Fatalf("Unexpected events: %v", ev)
	}
	if d.Pending() != 2 {
		t.Fatalf("Expected 2 pending bytes, got %d", d.Pending())
	}
	d.Reset()
	if diff := cmp.Diff([]KeyEvent{{Code: 16, Pressed: false}}, d.Feed([]byte{0x90})); diff != "" {
		t.Fatalf("Reset did not discard pending bytes:\n%s", diff)
	}
}
