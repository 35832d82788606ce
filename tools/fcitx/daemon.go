// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package fcitx

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
)

var _ = fmt.Print

const DAEMON_NAME = "fcitx5"
const DAEMON_NOT_RUNNING_MESSAGE = "ERROR: fcitx5 is not running! Start it with: fcitx5 -d"

type process_info struct {
	pids    func() ([]int32, error)
	cmdline func(pid int32) ([]string, error)
}

var system_processes = process_info{
	pids: process.Pids,
	cmdline: func(pid int32) ([]string, error) {
		p, err := process.NewProcess(pid)
		if err != nil {
			return nil, err
		}
		return p.CmdlineSlice()
	},
}

func (self process_info) daemon_running() (bool, error) {
	pids, err := self.pids()
	if err != nil {
		return false, err
	}
	for _, pid := range pids {
		// processes can exit while we iterate
		cmd, err := self.cmdline(pid)
		if err != nil || len(cmd) == 0 {
			continue
		}
		if strings.ToLower(filepath.Base(cmd[0])) == DAEMON_NAME {
			return true, nil
		}
	}
	return false, nil
}

// DaemonRunning reports whether an fcitx5 process exists for any user
func DaemonRunning() (bool, error) { return system_processes.daemon_running() }

func (self process_info) notice_text() string {
	if running, err := self.daemon_running(); err == nil && !running {
		return DAEMON_NOT_RUNNING_MESSAGE
	}
	return overlay.CANNOT_CONNECT_MESSAGE
}

// NoticeText is the message shown when the input method cannot be reached
func NoticeText() string { return system_processes.notice_text() }
