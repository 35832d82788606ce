// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package wcswidth

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

var _ = fmt.Print

type char_range struct {
	first, last rune
}

// Ranges of code points drawn in two cells by the console font renderer.
// Sorted and non-overlapping.
var double_width = [...]char_range{
	{0x1100, 0x115f},
	{0x2329, 0x232a},
	{0x2e80, 0x303e},
	{0x3040, 0xa4cf},
	{0xac00, 0xd7a3},
	{0xf900, 0xfaff},
	{0xfe10, 0xfe19},
	{0xfe30, 0xfe6f},
	{0xff00, 0xff60},
	{0xffe0, 0xffe6},
	{0x20000, 0x2fffd},
	{0x30000, 0x3fffd},
}

func IsDoubleWidth(ch rune) bool {
	if ch < double_width[0].first || ch > double_width[len(double_width)-1].last {
		return false
	}
	_, found := slices.BinarySearchFunc(double_width[:], ch, func(r char_range, ch rune) int {
		switch {
		case r.last < ch:
			return -1
		case r.first > ch:
			return 1
		}
		return 0
	})
	return found
}

func Runewidth(ch rune) int {
	if IsDoubleWidth(ch) {
		return 2
	}
	return 1
}

// Stringwidth returns the number of cells needed to display text. Measuring
// stops at the first byte that is not valid UTF-8, the width of the prefix
// before it is returned.
func Stringwidth(text string) (ans int) {
	for len(text) > 0 {
		ch, sz := utf8.DecodeRuneInString(text)
		if ch == utf8.RuneError && sz < 2 {
			break
		}
		ans += Runewidth(ch)
		text = text[sz:]
	}
	return
}

// PrefixWidth is the width of the first byte_offset bytes of text
func PrefixWidth(text string, byte_offset int) int {
	byte_offset = max(0, min(byte_offset, len(text)))
	return Stringwidth(text[:byte_offset])
}
