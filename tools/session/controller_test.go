// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fcitx/fcitx5-fbterm/tools/keymap"
	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
)

var _ = fmt.Print

type fake_host struct {
	calls     []string
	output    string
	write_err error
	painted   chan WindowID
}

func (self *fake_host) SetOverlayWindow(id WindowID, r overlay.Rect) error {
	self.calls = append(self.calls, fmt.Sprintf("win %d %s", id, r))
	if self.painted != nil {
		self.painted <- id
	}
	return nil
}

func (self *fake_host) FillRect(r overlay.Rect, c overlay.Color) error {
	self.calls = append(self.calls, fmt.Sprintf("fill %s %s", r, c))
	return nil
}

func (self *fake_host) DrawText(x, y int, fg, bg overlay.Color, text string) error {
	self.calls = append(self.calls, fmt.Sprintf("text %d,%d %s/%s %q", x, y, fg, bg, text))
	return nil
}

func (self *fake_host) WriteOutput(data []byte) error {
	if self.write_err != nil {
		return self.write_err
	}
	self.output += string(data)
	return nil
}

func (self *fake_host) reset() {
	self.calls = nil
	self.output = ""
}

type submitted struct {
	Keysym  uint32
	Code    uint16
	Mods    keymap.Modifiers
	Pressed bool
}

type fake_im struct {
	state               IMState
	consume             bool
	err                 error
	keys                []submitted
	focus_in, focus_out int
}

func (self *fake_im) State() IMState { return self.state }

func (self *fake_im) SubmitKey(keysym uint32, code uint16, mods keymap.Modifiers, pressed bool) (bool, error) {
	self.keys = append(self.keys, submitted{keysym, code, mods, pressed})
	return self.consume, self.err
}

func (self *fake_im) FocusIn() error  { self.focus_in++; return nil }
func (self *fake_im) FocusOut() error { self.focus_out++; return nil }

type fake_console struct{ leds uint8 }

func (self *fake_console) KeymapEntry(table, index uint8) (uint16, error) {
	return 0, errors.New("not implemented")
}
func (self *fake_console) LEDState() (uint8, error) { return self.leds, nil }

var screen = overlay.ScreenMetrics{FontWidth: 8, FontHeight: 16, ScreenWidth: 800, ScreenHeight: 600}

func new_controller(im InputMethod) (*Controller, *fake_host) {
	h := &fake_host{}
	c := NewController(h, im, Options{Palette: overlay.DefaultPalette})
	if err := c.Dispatch(ScreenMetricsChanged{Metrics: screen}); err != nil {
		panic(err)
	}
	return c, h
}

func dispatch(t *testing.T, c *Controller, events ...Event) {
	t.Helper()
	for _, ev := range events {
		if err := c.Dispatch(ev); err != nil {
			t.Fatalf("Dispatching %#v failed: %s", ev, err)
		}
	}
}

func TestKeysWithoutInputMethod(t *testing.T) {
	c, h := new_controller(nil)
	test := func(expected string, data ...byte) {
		t.Helper()
		h.reset()
		dispatch(t, c, KeyBytes{Data: data})
		if diff := cmp.Diff(expected, h.output); diff != "" {
			t.Fatalf("Output for %v is wrong:\n%s", data, diff)
		}
		if len(h.calls) != 0 {
			t.Fatalf("Key handling issued window commands: %v", h.calls)
		}
	}
	test("a", 30, 30|0x80)
	test("A", 42, 30, 30|0x80, 42|0x80)
	test("b", 48, 48|0x80)
	test("\x01", 29, 30, 30|0x80, 29|0x80)
	test("\x1bx", 56, 45, 45|0x80, 56|0x80)
	test("\r", 28, 28|0x80)
	test("\x1b[A", 103, 103|0x80)
	// caps lock toggles on press only
	test("Q", 58, 58|0x80, 16, 16|0x80)
	test("1", 2)
	test("q", 58, 58|0x80, 16)
	// split escaped sequence
	test("", 0x00)
	test("", 0x85)
	test("", 0x90)
	dispatch(t, c, TermModeChanged{Mode: keymap.TermMode{CursorEscO: true, CRWithLF: true}})
	test("\x1bOA", 103)
	test("\r\n", 28)
	// keys the console has no symbol for
	test("", 125, 125|0x80)
}

func TestPassThrough(t *testing.T) {
	im := &fake_im{state: CONNECTED, consume: true}
	h := &fake_host{}
	c := NewController(h, im, Options{PassThrough: true})
	dispatch(t, c, FocusIn{}, KeyBytes{Data: []byte("ab\x00\x85")})
	if h.output != "ab\x00\x85" || len(im.keys) != 0 {
		t.Fatalf("Translated bytes were not passed through: %#v %v", h.output, im.keys)
	}
}

func TestKeysWithInputMethod(t *testing.T) {
	im := &fake_im{state: CONNECTED, consume: true}
	c, h := new_controller(im)
	test := func(expected_output string, expected []submitted, data ...byte) {
		t.Helper()
		h.reset()
		im.keys = nil
		dispatch(t, c, KeyBytes{Data: data})
		if diff := cmp.Diff(expected_output, h.output); diff != "" {
			t.Fatalf("Output for %v is wrong:\n%s", data, diff)
		}
		if diff := cmp.Diff(expected, im.keys); diff != "" {
			t.Fatalf("Keys sent to the input method for %v are wrong:\n%s", data, diff)
		}
		if len(h.calls) != 0 {
			t.Fatalf("Key handling issued window commands: %v", h.calls)
		}
	}
	test("", []submitted{{'a', 30, 0, true}, {'a', 30, 0, false}}, 30, 30|0x80)
	test("", []submitted{{keymap.XK_Shift_L, 42, 0, true}, {'A', 30, keymap.SHIFT, true}, {keymap.XK_Shift_L, 42, keymap.SHIFT, false}}, 42, 30, 42|0x80)
	test("", []submitted{{keymap.XK_Control_L, 29, 0, true}, {'a', 30, keymap.CTRL, true}, {keymap.XK_Control_L, 29, keymap.CTRL, false}}, 29, 30, 29|0x80)
	im.consume = false
	test("a", []submitted{{'a', 30, 0, true}, {'a', 30, 0, false}}, 30, 30|0x80)
	test("\x01", []submitted{{keymap.XK_Control_L, 29, 0, true}, {'a', 30, keymap.CTRL, true}, {keymap.XK_Control_L, 29, keymap.CTRL, false}}, 29, 30, 29|0x80)
	// keys without an X11 keysym are never sent to the input method
	test("", nil, 0x00, 0xff, 0xff)
	// a failing input method falls back to direct output
	im.consume, im.err = true, errors.New("timed out")
	test("z", []submitted{{'z', 44, 0, true}}, 44)
}

func TestComposition(t *testing.T) {
	im := &fake_im{state: CONNECTED}
	c, h := new_controller(im)
	dispatch(t, c, FocusIn{}, CursorMoved{X: 100, Y: 200})
	if im.focus_in != 1 || c.State() != ACTIVE {
		t.Fatalf("Focus in not handled: %d %s", im.focus_in, c.State())
	}
	if len(h.calls) != 0 {
		t.Fatalf("Unexpected window commands: %v", h.calls)
	}
	comp := overlay.Composition{Preedit: "ni", Cursor: 2, Candidates: []overlay.Candidate{
		{Label: "1.", Text: "你", Highlighted: true}, {Label: "2.", Text: "泥"}}}
	dispatch(t, c, IMCompositionUpdate{Composition: comp})
	if diff := cmp.Diff([]string{
		"win 0 96x48@108,208",
		"fill 96x48@108,208 Gray",
		`text 116,216 Black/Gray "ni"`,
		`text 116,232 Black/Gray "*1.你 2.泥"`,
		"fill 1x16@132,216 Black",
	}, h.calls); diff != "" {
		t.Fatalf("Composition drawn incorrectly:\n%s", diff)
	}
	if c.State() != COMPOSING {
		t.Fatalf("State is %s", c.State())
	}

	h.reset()
	dispatch(t, c, IMCompositionUpdate{Composition: overlay.Composition{Preedit: "x", Cursor: -1}})
	if diff := cmp.Diff([]string{
		"win 0 24x32@108,208",
		"fill 24x32@108,208 Gray",
		`text 116,216 Black/Gray "x"`,
		`text 116,232 Black/Gray ""`,
	}, h.calls); diff != "" {
		t.Fatalf("Composition drawn incorrectly:\n%s", diff)
	}

	h.reset()
	dispatch(t, c, IMCommit{Text: "你好"}, IMCompositionUpdate{Composition: overlay.Composition{Cursor: -1}})
	if diff := cmp.Diff([]string{"win 0 0x0@0,0"}, h.calls); diff != "" {
		t.Fatalf("Composition not hidden:\n%s", diff)
	}
	if h.output != "你好" || c.State() != ACTIVE {
		t.Fatalf("Commit not handled: %#v %s", h.output, c.State())
	}

	// the window follows the cursor
	dispatch(t, c, IMCompositionUpdate{Composition: overlay.Composition{Preedit: "x", Cursor: -1}})
	h.reset()
	dispatch(t, c, CursorMoved{X: 780, Y: 590})
	if diff := cmp.Diff("win 0 24x32@748,534", h.calls[0]); diff != "" {
		t.Fatalf("Window did not follow the cursor:\n%s", diff)
	}

	h.reset()
	dispatch(t, c, FocusOut{})
	if diff := cmp.Diff([]string{"win 0 0x0@0,0"}, h.calls); diff != "" {
		t.Fatalf("Focus out did not hide the window:\n%s", diff)
	}
	if im.focus_out != 1 || c.State() != INACTIVE {
		t.Fatalf("Focus out not handled")
	}
	// nothing is drawn while inactive
	h.reset()
	dispatch(t, c, IMCompositionUpdate{Composition: comp}, Redraw{}, CursorMoved{X: 1, Y: 1})
	if len(h.calls) != 0 {
		t.Fatalf("Unexpected window commands: %v", h.calls)
	}
	// but the composition is shown on focus in
	dispatch(t, c, FocusIn{}, Redraw{})
	if c.State() != COMPOSING || len(h.calls) != 5 {
		t.Fatalf("Composition not restored: %s %v", c.State(), h.calls)
	}
}

func TestNotice(t *testing.T) {
	im := &fake_im{state: DISCONNECTED}
	c, h := new_controller(im)
	notice := func() []string {
		f := overlay.Notice(overlay.CANNOT_CONNECT_MESSAGE, overlay.Point{}, screen)
		return []string{
			fmt.Sprintf("win 1 %s", f.Window),
			fmt.Sprintf("fill %s Red", f.Window),
			fmt.Sprintf("text %d,%d White/Red %q", f.Lines[0].X, f.Lines[0].Y, overlay.CANNOT_CONNECT_MESSAGE),
		}
	}
	check := func(expected []string) {
		t.Helper()
		if diff := cmp.Diff(expected, h.calls); diff != "" {
			t.Fatalf("Unexpected window commands:\n%s", diff)
		}
		h.reset()
	}
	dispatch(t, c, FocusIn{})
	check(notice())
	dispatch(t, c, FocusOut{})
	check([]string{"win 1 0x0@0,0"})
	// shown only once
	dispatch(t, c, FocusIn{}, KeyBytes{Data: []byte{30}})
	check(nil)
	im.state = CONNECTED
	dispatch(t, c, IMConnected{})
	check(nil)
	if im.focus_in != 1 {
		t.Fatalf("Input method not focused on connection")
	}
	im.state = DISCONNECTED
	dispatch(t, c, IMDisconnected{})
	check(notice())
	im.state = CONNECTED
	dispatch(t, c, IMConnected{})
	check([]string{"win 1 0x0@0,0"})
}

func TestModifierBookkeeping(t *testing.T) {
	c, _ := new_controller(nil)
	c.SetModifiers(keymap.SHIFT | keymap.CAPS_LOCK | keymap.ALT)
	dispatch(t, c, IMActiveChanged{Name: "pinyin"})
	if c.Modifiers() != keymap.CAPS_LOCK {
		t.Fatalf("Modifiers not reset: %s", c.Modifiers())
	}

	h := &fake_host{}
	con := &fake_console{leds: keymap.LED_NUM}
	c = NewController(h, nil, Options{Console: con})
	c.SetModifiers(keymap.CAPS_LOCK | keymap.SHIFT)
	dispatch(t, c, KeyBytes{Data: []byte{0x00, 0x82}}, FocusIn{})
	if c.Modifiers() != keymap.NUM_LOCK|keymap.SHIFT {
		t.Fatalf("Lock state not read from the console: %s", c.Modifiers())
	}
	// the pending partial sequence was dropped by focus in
	dispatch(t, c, KeyBytes{Data: []byte{31}})
	if h.output != "S" {
		t.Fatalf("Unexpected output: %#v", h.output)
	}
	// NumLock state selects keypad digits
	h.reset()
	c.SetModifiers(keymap.NUM_LOCK)
	dispatch(t, c, KeyBytes{Data: []byte{79, 79 | 0x80}})
	c.SetModifiers(0)
	dispatch(t, c, KeyBytes{Data: []byte{79}})
	if h.output != "1\x1b[4~" {
		t.Fatalf("Unexpected keypad output: %#v", h.output)
	}
}

func TestDispatchErrors(t *testing.T) {
	c, h := new_controller(nil)
	h.write_err = errors.New("broken pipe")
	if err := c.Dispatch(KeyBytes{Data: []byte{30}}); !errors.Is(err, h.write_err) {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := c.Dispatch(IMCommit{Text: "x"}); !errors.Is(err, h.write_err) {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := c.Dispatch(CursorMoved{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	im := &fake_im{state: CONNECTED}
	c, h := new_controller(im)
	host_events, im_events := make(chan Event, 8), make(chan Event, 8)
	host_events <- FocusIn{}
	host_events <- KeyBytes{Data: []byte{30, 30 | 0x80}}
	close(host_events)
	if err := c.Run(context.Background(), host_events, im_events); err != nil {
		t.Fatal(err)
	}
	if h.output != "a" {
		t.Fatalf("Unexpected output: %#v", h.output)
	}

	// closing the input method channel disconnects it
	im.keys = nil
	c, h = new_controller(im)
	h.painted = make(chan WindowID, 8)
	dispatch(t, c, FocusIn{})
	host_events, im_events = make(chan Event), make(chan Event, 8)
	im_events <- IMCommit{Text: "x"}
	close(im_events)
	done := make(chan error)
	go func() { done <- c.Run(context.Background(), host_events, im_events) }()
	if id := <-h.painted; id != NOTICE_WINDOW {
		t.Fatalf("Notice not shown after the input method went away, painted: %d", id)
	}
	host_events <- KeyBytes{Data: []byte{31}}
	close(host_events)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if h.output != "xs" {
		t.Fatalf("Unexpected output: %#v", h.output)
	}
	if len(im.keys) != 0 {
		t.Fatalf("Keys sent to a disconnected input method: %v", im.keys)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx, make(chan Event), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Unexpected error: %v", err)
	}
}
