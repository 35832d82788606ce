// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package session

import (
	"context"
)

// Run dispatches events until the host channel is closed, which is a clean
// shutdown, or ctx is cancelled. A closed input method channel only means
// the input method is gone for good.
func (self *Controller) Run(ctx context.Context, host_events <-chan Event, im_events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, more := <-host_events:
			if !more {
				self.log.Debug("Terminal closed the connection")
				return nil
			}
			if err := self.Dispatch(ev); err != nil {
				return err
			}
		case ev, more := <-im_events:
			if !more {
				im_events = nil
				ev = IMDisconnected{}
				self.im = Disconnected{}
			}
			if err := self.Dispatch(ev); err != nil {
				return err
			}
		}
	}
}
