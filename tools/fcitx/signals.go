// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package fcitx

import (
	"fmt"
	"strings"

	"github.com/kovidgoyal/dbus"

	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
	"github.com/fcitx/fcitx5-fbterm/tools/session"
)

var _ = fmt.Print

const (
	SERVICE      = "org.fcitx.Fcitx5"
	OBJECT_PATH  = "/org/freedesktop/portal/inputmethod"
	IM_INTERFACE = "org.fcitx.Fcitx.InputMethod1"
	IC_INTERFACE = "org.fcitx.Fcitx.InputContext1"

	DBUS_SERVICE   = "org.freedesktop.DBus"
	DBUS_INTERFACE = "org.freedesktop.DBus"
)

const (
	COMMIT_STRING_SIGNAL         = "CommitString"
	UPDATE_CLIENT_SIDE_UI_SIGNAL = "UpdateClientSideUI"
	CURRENT_IM_SIGNAL            = "CurrentIM"
	NAME_OWNER_CHANGED_SIGNAL    = "NameOwnerChanged"
)

// a(si) element, text plus fcitx format flags
type formatted_text struct {
	Text   string
	Format int32
}

// a(ss) element
type candidate_word struct {
	Label string
	Text  string
}

func join_formatted(items []formatted_text) string {
	var b strings.Builder
	for _, x := range items {
		b.WriteString(x.Text)
	}
	return b.String()
}

func decode_client_side_ui(body []any) (ans overlay.Composition, err error) {
	var (
		preedit, aux_up, aux_down []formatted_text
		candidates                []candidate_word
		cursor, highlight, layout int32
		has_prev, has_next        bool
	)
	if err = dbus.Store(body, &preedit, &cursor, &aux_up, &aux_down, &candidates, &highlight, &layout, &has_prev, &has_next); err != nil {
		return ans, fmt.Errorf("Malformed %s signal: %w", UPDATE_CLIENT_SIDE_UI_SIGNAL, err)
	}
	ans.Preedit = join_formatted(preedit)
	ans.AuxUp = join_formatted(aux_up)
	ans.AuxDown = join_formatted(aux_down)
	ans.Cursor = int(cursor)
	if ans.Cursor > len(ans.Preedit) {
		ans.Cursor = len(ans.Preedit)
	}
	for i, c := range candidates {
		ans.Candidates = append(ans.Candidates, overlay.Candidate{Label: c.Label, Text: c.Text, Highlighted: i == int(highlight)})
	}
	return
}

// DecodeSignal converts an input context signal into a session event. A nil
// event with a nil error is returned for signals we do not handle.
func DecodeSignal(sig *dbus.Signal) (session.Event, error) {
	iface, member, found := cut_last(sig.Name, ".")
	if !found || iface != IC_INTERFACE {
		return nil, nil
	}
	switch member {
	case COMMIT_STRING_SIGNAL:
		var text string
		if err := dbus.Store(sig.Body, &text); err != nil {
			return nil, fmt.Errorf("Malformed %s signal: %w", member, err)
		}
		return session.IMCommit{Text: text}, nil
	case UPDATE_CLIENT_SIDE_UI_SIGNAL:
		comp, err := decode_client_side_ui(sig.Body)
		if err != nil {
			return nil, err
		}
		return session.IMCompositionUpdate{Composition: comp}, nil
	case CURRENT_IM_SIGNAL:
		var ans session.IMActiveChanged
		if err := dbus.Store(sig.Body, &ans.Name, &ans.UniqueName, &ans.LangCode); err != nil {
			return nil, fmt.Errorf("Malformed %s signal: %w", member, err)
		}
		return ans, nil
	}
	return nil, nil
}

// DecodeNameOwnerChanged returns the new owner of the fcitx5 service name,
// empty when the service went away. ok is false for unrelated signals.
func DecodeNameOwnerChanged(sig *dbus.Signal) (new_owner string, ok bool) {
	if sig.Name != DBUS_INTERFACE+"."+NAME_OWNER_CHANGED_SIGNAL {
		return "", false
	}
	var name, old_owner string
	if dbus.Store(sig.Body, &name, &old_owner, &new_owner) != nil || name != SERVICE {
		return "", false
	}
	return new_owner, true
}

func cut_last(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i > -1 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
