package commit

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/focus"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/replydispatcher"
	"github.com/jopamo/hxm/internal/xproto"
	"github.com/jopamo/hxm/logger"
)

// Flush runs the commit phase: it first finishes or aborts any client
// whose probe fan-out just resolved, then walks every dirty client in
// the fixed per-client order, commits focus, and finally publishes the
// root-window properties every client commit may have touched.
func Flush(ctx *Context) {
	runManageTransitions(ctx)

	var touched bool
	ctx.Store.Each(func(h primitives.Handle, hot *clientstore.Hot, cold *clientstore.Cold) bool {
		if hot.Dirty == 0 {
			return true
		}
		touched = true
		commitClient(ctx, h, hot, cold)
		return true
	})

	ctx.Focus.Commit(focusTransport{ctx.Ops}, ctx.Now())

	if touched || ctx.Focus.NeedsCommit() {
		publishRootProperties(ctx)
	}
}

// commitClient flushes one client's dirty bits in the fixed order:
// visibility, geometry, title/hints/strut/opacity, desktop, frame
// redraw, stack, state. Every step clears the bit(s) it handles.
func commitClient(ctx *Context, h primitives.Handle, hot *clientstore.Hot, cold *clientstore.Cold) {
	if hot.Dirty&clientstore.DirtyVisibility != 0 {
		commitVisibility(ctx, hot)
		hot.Dirty &^= clientstore.DirtyVisibility
	}

	if hot.Dirty&clientstore.DirtyGeom != 0 {
		commitGeometry(ctx, h, hot)
	}

	if hot.Dirty&(clientstore.DirtyTitle|clientstore.DirtyHints|clientstore.DirtyStrut|clientstore.DirtyOpacity) != 0 {
		reprobeDirtyProperties(ctx, h, hot)
	}

	if hot.Dirty&clientstore.DirtyDesktop != 0 {
		ctx.Ops.SetDesktop(hot.Window, hot.Desktop)
		hot.Dirty &^= clientstore.DirtyDesktop
	}

	if hot.Dirty&clientstore.DirtyFrame != 0 {
		ctx.Ops.RedrawFrame(hot.Frame, hot.DamageRegion)
		hot.DamageRegion = primitives.Rect{}
		hot.Dirty &^= clientstore.DirtyFrame
	}

	if hot.Dirty&clientstore.DirtyStack != 0 {
		commitStack(ctx, h, hot)
		hot.Dirty &^= clientstore.DirtyStack
	}

	if hot.Dirty&clientstore.DirtyState != 0 {
		ctx.Ops.SetWMStateAtoms(hot.Window, replydispatcher.AtomNamesForBits(hot.State))
		ctx.Ops.SetAllowedActions(hot.Window, allowedActionNames(hot))
		hot.Dirty &^= clientstore.DirtyState
	}
}

// commitVisibility reconciles the frame's actual X-level mapped state
// with whether the client should currently be shown: mapped, on the
// current desktop or sticky, and not in show-desktop mode (docks stay
// put through show-desktop since they're sticky by convention).
func commitVisibility(ctx *Context, hot *clientstore.Hot) {
	wantMapped := hot.Lifecycle == clientstore.StateMapped &&
		(hot.Desktop == ctx.Store.CurrentDesktop() || hot.State&clientstore.StateSticky != 0) &&
		(!ctx.Store.ShowingDesktop() || hot.State&clientstore.StateSticky != 0)

	if wantMapped == hot.FrameMapped {
		return
	}
	hot.FrameMapped = wantMapped
	if wantMapped {
		ctx.Ops.MapFrame(hot.Frame)
		ctx.Ops.SetWMState(hot.Window, false)
	} else {
		ctx.Ops.UnmapFrame(hot.Frame)
		ctx.Ops.SetWMState(hot.Window, true)
	}
}

// commitGeometry constrains the desired geometry to size hints, skips
// the request entirely when desired already matches server (the
// idempotence requirement), rate-limits interactive flushes to ~60 Hz,
// and otherwise emits the frame+client configure pair plus the
// synthetic ConfigureNotify and sync-request dispatch ICCCM requires.
func commitGeometry(ctx *Context, h primitives.Handle, hot *clientstore.Hot) {
	if hot.SizeHintsValid {
		w, ht := replydispatcher.ConstrainToHints(hot.DesiredGeom.W, hot.DesiredGeom.H, hot.SizeHints)
		hot.DesiredGeom.W = w
		hot.DesiredGeom.H = ht
	}

	if hot.DesiredGeom == hot.ServerGeom {
		hot.Dirty &^= clientstore.DirtyGeom
		return
	}

	now := ctx.MonotonicNow()
	if now-hot.LastInteractiveFlush < interactiveFlushIntervalNS {
		return // leave DirtyGeom set; retried next tick
	}
	hot.LastInteractiveFlush = now

	ctx.Ops.Configure(hot.Frame, hot.Window, hot.DesiredGeom, 0)
	hot.ServerGeom = hot.DesiredGeom
	hot.Dirty &^= clientstore.DirtyGeom

	if hot.DesiredGeom != hot.LastSyntheticGeom {
		ctx.Ops.SyntheticConfigureNotify(hot.Window, hot.DesiredGeom, 0)
		hot.LastSyntheticGeom = hot.DesiredGeom
	}

	if hot.SyncEnabled {
		hot.SyncValue++
		ctx.Ops.DispatchSync(hot.Window, hot.SyncCounterID, hot.SyncValue)
	}
}

// reprobeDirtyProperties re-issues a targeted fetch for whichever of
// title/hints/strut changed, rather than writing anything directly:
// the reply dispatcher is the only place allowed to update these
// fields, so the commit phase's job is just to ask again. Opacity has
// no reprobe of its own, so its dirty bit is cleared here without a
// request.
func reprobeDirtyProperties(ctx *Context, h primitives.Handle, hot *clientstore.Hot) {
	for _, m := range reprobeKindsForDirty {
		if hot.Dirty&m.bit == 0 {
			continue
		}
		txnID := ctx.NextTxnID()
		hot.LastAppliedTxnID = txnID
		hot.PendingReplies++
		ctx.Issuer.Issue(h, m.kind, hot.Window, txnID)
	}
	hot.Dirty &^= clientstore.DirtyTitle | clientstore.DirtyHints | clientstore.DirtyStrut | clientstore.DirtyOpacity
}

// commitStack resolves stack_sync_to_xcb's anchor-below preference:
// configure against the window below in z-order with SIBLING+ABOVE,
// else the window above with SIBLING+BELOW, else a bare raise.
func commitStack(ctx *Context, h primitives.Handle, hot *clientstore.Hot) {
	if below := ctx.Stacking.WindowBelow(h, hot.StackingLayer); below.Valid() {
		if belowHot, _, ok := ctx.Store.Lookup(below); ok {
			ctx.Ops.Restack(hot.Window, belowHot.Window, StackAbove)
			return
		}
	}
	if above := ctx.Stacking.WindowAbove(h, hot.StackingLayer); above.Valid() {
		if aboveHot, _, ok := ctx.Store.Lookup(above); ok {
			ctx.Ops.Restack(hot.Window, aboveHot.Window, StackBelow)
			return
		}
	}
	ctx.Ops.Restack(hot.Window, 0, StackAbove)
}

// publishRootProperties writes every EWMH root property the commit
// phase may have changed this tick. It always republishes the full
// set rather than tracking which one actually moved, since each is a
// single ChangeProperty and the commit phase already runs once per
// tick at most.
func publishRootProperties(ctx *Context) {
	if ctx.Focus.Committed().Valid() {
		if hot, _, ok := ctx.Store.Lookup(ctx.Focus.Committed()); ok {
			ctx.Root.SetActiveWindow(hot.Window)
		}
	} else {
		ctx.Root.SetActiveWindow(0)
	}

	mapping := ctx.Store.MappingOrder()
	windows := make([]xproto.WindowID, 0, len(mapping))
	for _, h := range mapping {
		if hot, _, ok := ctx.Store.Lookup(h); ok {
			windows = append(windows, hot.Window)
		}
	}
	ctx.Root.SetClientList(windows)

	stack := ctx.Stacking.BottomUp()
	stacked := make([]xproto.WindowID, 0, len(stack))
	for _, h := range stack {
		if hot, _, ok := ctx.Store.Lookup(h); ok {
			stacked = append(stacked, hot.Window)
		}
	}
	ctx.Root.SetClientListStacking(stacked)

	ctx.Root.SetWorkarea(ctx.Store.Workarea())
	ctx.Root.SetCurrentDesktop(ctx.Store.CurrentDesktop())
	ctx.Root.SetShowingDesktop(ctx.Store.ShowingDesktop())

	logger.CommitInfow("root properties published", "clients", len(windows))
}

// focusTransport adapts Context's Ops to focus.Transport, so the
// focus manager's commit step can drive the same collaborator as
// every other per-client commit step without a second interface
// threaded through the caller.
type focusTransport struct {
	ops Ops
}

func (f focusTransport) InstallColormap(colormap uint32)               { f.ops.InstallColormap(colormap) }
func (f focusTransport) SetInputFocus(window xproto.WindowID)           { f.ops.SetInputFocus(window) }
func (f focusTransport) SendTakeFocus(window xproto.WindowID, t uint32) { f.ops.SendTakeFocus(window, t) }

var _ focus.Transport = focusTransport{}
