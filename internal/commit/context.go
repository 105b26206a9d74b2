// Package commit implements the deferred commit phase: the one place
// per tick where in-memory client state is reconciled against the X
// server. Everything upstream of this package only ever mutates hot/
// cold records and dirty flags; commit is what turns those into wire
// requests, in a fixed per-client order so geometry always lands
// before state changes and before a restack.
package commit

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/focus"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/stacking"
	"github.com/jopamo/hxm/internal/xproto"
)

// Stack mode values, mirroring the X11 ConfigureWindow STACK_MODE enum.
const (
	StackAbove uint8 = 0
	StackBelow uint8 = 1
)

// Reprober lets the commit phase re-issue a targeted probe (title,
// hints, strut, opacity) without owning the transport or the jar's
// bookkeeping directly — the same seam handlers.CookieIssuer gives
// the event-processing side.
type Reprober interface {
	Issue(owner primitives.Handle, kind cookiejar.Kind, window xproto.WindowID, txnID uint64)
}

// Ops is every X request the commit phase issues directly, grouped
// here because each one is a single mechanical step rather than a
// policy decision: the policy (what geometry, what state) was already
// decided by the handlers and placement packages before a client ever
// goes dirty.
type Ops interface {
	// CreateFrame builds the decoration window for a client finishing
	// management: creates the frame at geom, adds the client window to
	// the save set, reparents it into the frame, installs the passive
	// button grabs and damage subscription finish_manage requires, and
	// returns the new frame id.
	CreateFrame(window xproto.WindowID, geom primitives.Rect, borderWidth int32) xproto.WindowID

	// Configure emits the frame+client configure pair for a geometry
	// change already constrained to size hints.
	Configure(frame, window xproto.WindowID, geom primitives.Rect, borderWidth int32)

	// SyntheticConfigureNotify sends the client the synthetic
	// ConfigureNotify ICCCM requires after a WM-initiated move/resize.
	SyntheticConfigureNotify(window xproto.WindowID, geom primitives.Rect, borderWidth int32)

	// DispatchSync sends a sync-request client message carrying value
	// to window's declared sync counter, when the protocol is enabled.
	DispatchSync(window xproto.WindowID, counterID uint32, value uint64)

	MapFrame(frame xproto.WindowID)
	UnmapFrame(frame xproto.WindowID)

	// MapRaw maps window directly, with no frame: the abort-manage
	// path for override-redirect/InputOnly/popup windows, which must
	// become visible without ever being decorated.
	MapRaw(window xproto.WindowID)

	// SetWMState rewrites the ICCCM WM_STATE property (Normal/Iconic).
	SetWMState(window xproto.WindowID, iconic bool)

	SetFrameExtents(window xproto.WindowID, left, right, top, bottom int32)
	SetAllowedActions(window xproto.WindowID, names []string)
	SetWMStateAtoms(window xproto.WindowID, names []string)
	SetDesktop(window xproto.WindowID, desktop uint32)

	// Restack emits the ConfigureWindow SIBLING+STACK_MODE pair
	// stack_sync_to_xcb resolves.
	Restack(window, sibling xproto.WindowID, mode uint8)

	RedrawFrame(frame xproto.WindowID, damage primitives.Rect)

	// The three operations focus.Transport needs, reused directly by
	// the commit phase's own focus-commit step so that step drives the
	// same collaborator as every other per-client commit step.
	InstallColormap(colormap uint32)
	SetInputFocus(window xproto.WindowID)
	SendTakeFocus(window xproto.WindowID, timestamp uint32)
}

// RootOps is the set of root-window property writes the commit phase
// publishes once per tick, after every client has committed.
type RootOps interface {
	SetActiveWindow(window xproto.WindowID)
	SetClientList(windows []xproto.WindowID)
	SetClientListStacking(windows []xproto.WindowID)
	SetWorkarea(area primitives.Rect)
	SetCurrentDesktop(desktop uint32)
	SetShowingDesktop(showing bool)
}

// Context bundles every collaborator Flush needs. It is rebuilt once
// at startup alongside handlers.Context, not per tick.
type Context struct {
	Store    *clientstore.Store
	Stacking *stacking.Manager
	Focus    *focus.Manager
	Atoms    *xproto.Table
	Issuer   Reprober
	Ops      Ops
	Root     RootOps

	NextTxnID func() uint64

	// Now returns the latest known user-activity timestamp, used for
	// TAKE_FOCUS.
	Now func() uint32

	// MonotonicNow returns a monotonic nanosecond clock reading, used
	// to rate-limit interactive geometry flushes to roughly 60 Hz.
	MonotonicNow func() int64
}

const interactiveFlushIntervalNS = int64(1e9 / 60)

// reprobeKindsForDirty maps a single non-geometry dirty bit to the
// cookie kind that re-fetches the property it covers. Opacity has no
// entry: no probe kind fetches it, and reprobeDirtyProperties clears
// its dirty bit without issuing a request.
var reprobeKindsForDirty = []struct {
	bit  clientstore.DirtyFlags
	kind cookiejar.Kind
}{
	{clientstore.DirtyTitle, cookiejar.KindNetWMName},
	{clientstore.DirtyHints, cookiejar.KindHints},
	{clientstore.DirtyStrut, cookiejar.KindNetWMStrut},
}
