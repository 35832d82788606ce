// License: GPLv3 Copyright: 2022, Kovid Goyal, <kovid at kovidgoyal.net>

package main

import (
	"os"

	"github.com/fcitx/fcitx5-fbterm/tools/cli"
	"github.com/fcitx/fcitx5-fbterm/tools/cmd/bridge"
)

func main() {
	root := bridge.EntryPoint()
	if err := root.Execute(); err != nil {
		cli.ShowError(os.Stderr, err)
		os.Exit(1)
	}
}
