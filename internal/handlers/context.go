// Package handlers implements the fixed per-tick event processing
// order: each bucket produced by the bucketer is drained in the same
// sequence every tick (lifecycle, keys, buttons, expose, client
// messages, pointer, configure request/notify, property, damage,
// randr), mutating the client store, stacking manager, and focus
// manager, and issuing follow-up cookies through the jar.
package handlers

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/focus"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/stacking"
	"github.com/jopamo/hxm/internal/xproto"
)

// CookieIssuer lets handlers start a probe (GetProperty, etc.) without
// owning the transport or the jar's insert bookkeeping directly.
type CookieIssuer interface {
	Issue(owner primitives.Handle, kind cookiejar.Kind, window xproto.WindowID, txnID uint64)
}

// WindowOps is the narrow set of synchronous-looking (but
// non-round-tripping) X requests handlers issue directly: configure,
// map/unmap, reparent, grabs, and the send-event framing client
// messages travel over.
type WindowOps interface {
	ConfigureWindow(window xproto.WindowID, geom primitives.Rect, borderWidth int32, stackMode uint8, sibling xproto.WindowID)
	MapWindow(window xproto.WindowID)
	UnmapWindow(window xproto.WindowID)
	SendClientMessage(window xproto.WindowID, messageType xproto.Atom, data [5]uint32)
	SendDeleteWindow(window xproto.WindowID, timestamp uint32)
	// ReparentToRoot restores borderWidth and reparents window back
	// under the root, the first half of tearing a client's frame down;
	// a no-op if the window no longer exists.
	ReparentToRoot(window xproto.WindowID, borderWidth int32)
	DestroyFrame(frame xproto.WindowID)
	SetCursor(window xproto.WindowID, direction int)
	// ForgetSaveSet removes window from the save set, the inverse of
	// the insert CreateFrame performs; called as a managed client's
	// frame comes down so a later crash doesn't reparent it again.
	ForgetSaveSet(window xproto.WindowID)
}

// PointerController owns interactive move/resize state, which spans
// many ticks of motion events and is cancelled by button-release or a
// _NET_WM_MOVERESIZE CANCEL client message.
type PointerController interface {
	// Active reports whether a grab has been confirmed and the
	// interaction is actually in progress for h; false while a Begin
	// is still pending its GrabPointer reply.
	Active(h primitives.Handle) bool
	// Begin stages an interactive move or resize for h anchored at
	// (x, y), pending the GrabPointer reply ConfirmBegin or Cancel
	// will resolve it with.
	Begin(h primitives.Handle, resize bool, edge int, x, y int32)
	// ConfirmBegin promotes h's staged Begin to an active grab once
	// the GrabPointer request that started it is granted. Reports
	// false if nothing is staged (already cancelled or timed out).
	ConfirmBegin(h primitives.Handle) bool
	// Update feeds a new pointer position into the active grab,
	// mutating the client's DesiredGeom in place.
	Update(h primitives.Handle, x, y int32)
	// Cancel aborts whatever interactive grab is active or pending, if any.
	Cancel(h primitives.Handle)
	// ButtonMask reports the currently-known pointer button modifier
	// state, used to detect a lost ButtonRelease.
	ButtonMask() uint16
}

// KeyBindingDispatcher routes a decoded KeyPress to whatever command
// table the user configured. Parsing the keysym table itself is an
// external collaborator's concern (§1); this is the seam.
type KeyBindingDispatcher interface {
	Dispatch(ev xproto.Event)
}

// MenuController routes button clicks and expose events that target
// the WM's own menu/decoration surfaces rather than a managed client.
type MenuController interface {
	OwnsWindow(window xproto.WindowID) bool
	HandleButton(ev xproto.Event)
	HandleExpose(window xproto.WindowID, dirty primitives.Rect)
}

// Context bundles every collaborator a tick's worth of handlers needs.
// It is rebuilt once at startup, not per tick.
type Context struct {
	Store    *clientstore.Store
	Stacking *stacking.Manager
	Focus    *focus.Manager
	Jar      *cookiejar.Jar
	Atoms    *xproto.Table
	Issuer   CookieIssuer
	Ops      WindowOps
	Pointer  PointerController
	Keys     KeyBindingDispatcher
	Menu     MenuController

	DefaultScreen primitives.Rect

	// RootWindow identifies the root, so handlers can tell a
	// client-targeted event from a root-targeted one.
	RootWindow xproto.WindowID

	// Now returns the latest known user-activity timestamp, used for
	// TAKE_FOCUS and WM_DELETE_WINDOW client messages.
	Now func() uint32

	// Monitors is the monitor layout the RandR handler last read; the
	// handler refreshes it and computes the workarea from it.
	Monitors []primitives.Rect
}

// clientFor resolves window to its managed client, returning ok=false
// for unmanaged or override-redirect windows (which handlers pass
// straight through to Ops instead of mutating client state).
func (c *Context) clientFor(window xproto.WindowID) (primitives.Handle, *clientstore.Hot, *clientstore.Cold, bool) {
	h, ok := c.Store.ByWindow(window)
	if !ok {
		return primitives.NilHandle, nil, nil, false
	}
	hot, cold, ok := c.Store.Lookup(h)
	return h, hot, cold, ok
}
