// Package focus implements the single-focus model: an MRU history
// over every managed client, a desired focus target, and the commit
// step that installs a client's colormap and sets X input focus,
// honoring ICCCM WM_TAKE_FOCUS and the can_focus hint.
package focus

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

// Transport is the narrow set of X operations the focus commit step
// needs, kept separate from xproto.Transport so focus can be tested
// without a full fake transport.
type Transport interface {
	InstallColormap(colormap uint32)
	SetInputFocus(window xproto.WindowID)
	SendTakeFocus(window xproto.WindowID, timestamp uint32)
}

// Manager tracks the desired focus target and the MRU history it's
// drawn from. The store's own HandleList backs the MRU so that moving
// a client to front costs O(1) and needs no separate bookkeeping.
type Manager struct {
	store *clientstore.Store

	desired         primitives.Handle
	committed       primitives.Handle
	committedWindow xproto.WindowID

	defaultColormap uint32
}

// NewManager creates a focus manager over store's existing client
// records and focus-history list.
func NewManager(store *clientstore.Store, defaultColormap uint32) *Manager {
	return &Manager{store: store, defaultColormap: defaultColormap}
}

// Focus sets h as the desired focus target and moves it to the head
// of the MRU history. Passing NilHandle means "focus nothing"
// (root-level fallback).
func (m *Manager) Focus(h primitives.Handle) {
	m.desired = h
	if h.Valid() {
		m.store.FocusHistory().MoveToFront(h)
	}
}

// Desired returns the currently-requested focus target.
func (m *Manager) Desired() primitives.Handle { return m.desired }

// Committed returns the X-level window focus is currently installed on.
func (m *Manager) Committed() primitives.Handle { return m.committed }

// NeedsCommit reports whether the desired target differs from what's
// actually installed at the X level.
func (m *Manager) NeedsCommit() bool { return m.desired != m.committed }

// Commit installs m.desired as the X input focus if it differs from
// what's currently committed. now is the latest known user-activity
// timestamp, used for the TAKE_FOCUS client message.
func (m *Manager) Commit(t Transport, now uint32) {
	if !m.NeedsCommit() {
		return
	}

	if !m.desired.Valid() {
		t.InstallColormap(m.defaultColormap)
		t.SetInputFocus(0)
		m.committed = primitives.NilHandle
		m.committedWindow = 0
		return
	}

	hot, cold, ok := m.store.Lookup(m.desired)
	if !ok {
		m.desired = primitives.NilHandle
		return
	}
	if !cold.CanFocus {
		return
	}

	if cold.Colormap != 0 {
		t.InstallColormap(cold.Colormap)
	} else {
		t.InstallColormap(m.defaultColormap)
	}
	t.SetInputFocus(hot.Window)
	if cold.Protocols&clientstore.ProtoTakeFocus != 0 {
		t.SendTakeFocus(hot.Window, now)
	}

	m.committed = m.desired
	m.committedWindow = hot.Window
	hot.Flags |= clientstore.FlagFocused
}

// FallbackAfterUnmanage picks the next focus target when the client
// owning h (the one being unmanaged) was focused: a still-mapped
// transient parent if any, else the first MAPPED client walking the
// MRU history (skipping h itself, which may still be linked).
func (m *Manager) FallbackAfterUnmanage(h primitives.Handle) primitives.Handle {
	if hot, _, ok := m.store.Lookup(h); ok && hot.TransientParent.Valid() {
		if parentHot, _, ok := m.store.Lookup(hot.TransientParent); ok && parentHot.Lifecycle == clientstore.StateMapped {
			return hot.TransientParent
		}
	}

	var fallback primitives.Handle
	m.store.FocusHistory().Walk(func(candidate primitives.Handle) bool {
		if candidate == h {
			return true
		}
		if hot, _, ok := m.store.Lookup(candidate); ok && hot.Lifecycle == clientstore.StateMapped {
			fallback = candidate
			return false
		}
		return true
	})
	return fallback
}

// ClearIfFocused resets the desired/committed target to nil if it
// currently points at h, called when h is about to be unmanaged.
func (m *Manager) ClearIfFocused(h primitives.Handle) {
	if m.desired == h {
		m.desired = primitives.NilHandle
	}
	if m.committed == h {
		m.committed = primitives.NilHandle
		m.committedWindow = 0
	}
}
