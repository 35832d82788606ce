// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package overlay

import (
	"strings"

	"github.com/fcitx/fcitx5-fbterm/tools/wcswidth"
)

type Candidate struct {
	Label, Text string
	Highlighted bool
}

// Composition is what the input method is currently showing. Cursor is a
// byte offset into Preedit, negative when there is no cursor.
type Composition struct {
	AuxUp      string
	Preedit    string
	Cursor     int
	AuxDown    string
	Candidates []Candidate
}

func (self *Composition) UpperLine() string {
	return self.AuxUp + self.Preedit
}

func (self *Composition) LowerLine() string {
	if len(self.Candidates) == 0 {
		return self.AuxDown
	}
	b := strings.Builder{}
	b.WriteString(self.AuxDown)
	for _, c := range self.Candidates {
		if c.Highlighted {
			b.WriteByte('*')
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(c.Label)
		b.WriteString(c.Text)
	}
	return b.String()
}

func (self *Composition) IsEmpty() bool {
	return self.UpperLine() == "" && self.LowerLine() == ""
}

// CaretColumn is the display column of the cursor inside the upper line or
// -1 when there is no cursor
func (self *Composition) CaretColumn() int {
	if self.Cursor < 0 {
		return -1
	}
	return wcswidth.PrefixWidth(self.UpperLine(), len(self.AuxUp)+self.Cursor)
}
