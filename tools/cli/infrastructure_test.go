package cli

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func TestFormatLineWithIndent(t *testing.T) {
	var output strings.Builder

	indent := "  "
	format_line_with_indent(&output, "testing \x1b[31mstyled\x1b[m", indent, 11)
	expected := indent + "testing \n" + indent + "\x1b[31mstyled\x1b[m\n"
	if output.String() != expected {
		t.Fatalf("%#v != %#v", expected, output.String())
	}
	output.Reset()
	format_line_with_indent(&output, "拼音 输入", "", 6)
	if expected = "拼音\n输入\n"; output.String() != expected {
		t.Fatalf("%#v != %#v", expected, output.String())
	}
}

func TestPrettify(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = saved }()

	test := func(text, expected string) {
		t.Helper()
		if actual := prettify(text); actual != expected {
			t.Fatalf("%#v != %#v", expected, actual)
		}
	}
	test("Run :code:`fbterm -i fcitx5-fbterm` now", "Run fbterm -i fcitx5-fbterm now")
	test("Set :envvar:`FCITX5_FBTERM_FOREGROUND` or :option:`--raw`", "Set FCITX5_FBTERM_FOREGROUND or --raw")
	test(":doc:`/issues`", "https://github.com/fcitx/fcitx5-fbterm/issues")
	test(":unknown:`x` and plain", "x and plain")
}

func TestValidateChoices(t *testing.T) {
	cmd := CreateCommand(&cobra.Command{Use: "test"})
	fg := OptionalChoices(cmd, "foreground", "", "Black", "White")
	mode := Choices(cmd, "mode", "", "fast", "slow")

	test := func(ok bool, args ...string) {
		t.Helper()
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatal(err)
		}
		err := ValidateChoices(cmd, nil)
		if ok && err != nil {
			t.Fatalf("Validating %v failed: %s", args, err)
		}
		if !ok && err == nil {
			t.Fatalf("Validating %v did not fail", args)
		}
	}
	test(true)
	if *fg != "" || *mode != "fast" {
		t.Fatalf("Unexpected defaults: %#v %#v", *fg, *mode)
	}
	test(true, "--foreground", "white", "--mode=slow")
	test(false, "--foreground", "Pink")
	test(false, "--foreground", "White", "--mode", "medium")
}
