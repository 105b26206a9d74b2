package handlers

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/stacking"
	"github.com/jopamo/hxm/internal/xproto"
	"github.com/jopamo/hxm/logger"
)

// phaseOneProbes is the full PHASE1 fan-out issued at adoption, every
// entry registered under the same transaction id.
var phaseOneProbes = []cookiejar.Kind{
	cookiejar.KindAttributes,
	cookiejar.KindGeometry,
	cookiejar.KindWMClass,
	cookiejar.KindClientMachine,
	cookiejar.KindCommand,
	cookiejar.KindHints,
	cookiejar.KindNormalHints,
	cookiejar.KindTransientFor,
	cookiejar.KindColormapWindows,
	cookiejar.KindProtocols,
	cookiejar.KindName,
	cookiejar.KindIconName,
	cookiejar.KindNetWMName,
	cookiejar.KindNetWMIconName,
	cookiejar.KindNetWMIcon,
	cookiejar.KindNetWMState,
	cookiejar.KindNetWMWindowType,
	cookiejar.KindNetWMStrut,
	cookiejar.KindNetWMStrutPartial,
	cookiejar.KindNetWMUserTime,
	cookiejar.KindSyncRequestCounter,
	cookiejar.KindMotifHints,
	cookiejar.KindGtkFrameExtents,
}

// ProcessLifecycle drains MapRequest, UnmapNotify, and DestroyNotify in
// arrival order. A window already present in destroyed short-circuits
// any later handler phase that would otherwise touch it this tick.
func ProcessLifecycle(ctx *Context, events []xproto.Event, nextTxnID func() uint64) {
	for _, ev := range events {
		switch ev.Kind {
		case xproto.EventMapRequest:
			handleMapRequest(ctx, ev.Window, nextTxnID)
		case xproto.EventUnmapNotify:
			handleUnmapNotify(ctx, ev.Window)
		case xproto.EventDestroyNotify:
			handleDestroyNotify(ctx, ev.Window)
		}
	}
}

func handleMapRequest(ctx *Context, window xproto.WindowID, nextTxnID func() uint64) {
	if _, _, _, ok := ctx.clientFor(window); ok {
		ctx.Ops.MapWindow(window)
		return
	}

	h := ctx.Store.Manage(window)
	hot, _, ok := ctx.Store.Lookup(h)
	if !ok {
		return
	}
	hot.PendingReplies = len(phaseOneProbes)

	txnID := nextTxnID()
	hot.LastAppliedTxnID = txnID
	for _, kind := range phaseOneProbes {
		ctx.Issuer.Issue(h, kind, window, txnID)
	}

	logger.IngestInfow("adoption probe fan-out issued", "window", window, "probes", len(phaseOneProbes))
}

func handleUnmapNotify(ctx *Context, window xproto.WindowID) {
	h, hot, _, ok := ctx.clientFor(window)
	if !ok {
		return
	}

	if hot.IgnoreUnmap > 0 {
		hot.IgnoreUnmap--
		return
	}

	if hot.Lifecycle == clientstore.StateMapped {
		hot.Lifecycle = clientstore.StateUnmapped
	}
	beginUnmanage(ctx, h, false)
}

func handleDestroyNotify(ctx *Context, window xproto.WindowID) {
	h, _, _, ok := ctx.clientFor(window)
	if !ok {
		return
	}
	beginUnmanage(ctx, h, true)
}

// beginUnmanage runs the full unmanage sequence: cancel interaction,
// detach from stacking and focus, unlink transient relationships,
// release window-visible resources through Ops, and free the slot.
// windowGone skips any X request that would otherwise target an
// already-destroyed window.
func beginUnmanage(ctx *Context, h primitives.Handle, windowGone bool) {
	hot, cold, ok := ctx.Store.Lookup(h)
	if !ok {
		return
	}
	hot.Lifecycle = clientstore.StateUnmanaging

	if ctx.Pointer != nil {
		ctx.Pointer.Cancel(h)
	}

	ctx.Stacking.Remove(h, hot.StackingLayer)

	wasFocused := ctx.Focus.Desired() == h || ctx.Focus.Committed() == h
	var fallback primitives.Handle
	if wasFocused {
		fallback = ctx.Focus.FallbackAfterUnmanage(h)
	}

	for _, child := range snapshotTransientChildren(ctx.Store, h) {
		ctx.Store.UnlinkTransient(child)
	}
	ctx.Store.UnlinkTransient(h)

	ctx.Focus.ClearIfFocused(h)

	if !windowGone {
		if hot.Frame != 0 {
			ctx.Ops.UnmapWindow(hot.Window)
			ctx.Ops.ReparentToRoot(hot.Window, hot.OriginalBorderWidth)
			ctx.Ops.ForgetSaveSet(hot.Window)
		}
	}
	if hot.Frame != 0 {
		ctx.Ops.DestroyFrame(hot.Frame)
	}

	_ = cold
	ctx.Store.Unmanage(h)
	ctx.Store.Free(h)

	if wasFocused && fallback.Valid() {
		ctx.Focus.Focus(fallback)
	}

	logger.FocusInfow("client unmanaged", "client", h.String(), "window_gone", windowGone)
}

func snapshotTransientChildren(store *clientstore.Store, parent primitives.Handle) []primitives.Handle {
	list := store.TransientChildren(parent)
	out := make([]primitives.Handle, 0, list.Len())
	list.Walk(func(h primitives.Handle) bool {
		out = append(out, h)
		return true
	})
	return out
}

// transientChildrenAdapter satisfies stacking.PositionSetter's
// TransientChildren by flattening the store's intrusive list, since
// the stacking manager only needs a read-only snapshot per raise/lower.
type transientChildrenAdapter struct {
	store *clientstore.Store
}

func (a transientChildrenAdapter) SetStackingPosition(h primitives.Handle, layer stacking.Layer, index int) {
	hot, _, ok := a.store.Lookup(h)
	if !ok {
		return
	}
	hot.StackingLayer = layer
	hot.StackingIndex = index
}

func (a transientChildrenAdapter) MarkStackDirty(h primitives.Handle) {
	hot, _, ok := a.store.Lookup(h)
	if !ok {
		return
	}
	hot.Dirty |= clientstore.DirtyStack
}

func (a transientChildrenAdapter) TransientChildren(h primitives.Handle) []primitives.Handle {
	return snapshotTransientChildren(a.store, h)
}

// NewStackingOwner builds the stacking.PositionSetter adapter over
// store, bridging its *primitives.HandleList-returning TransientChildren
// to the []primitives.Handle shape the stacking manager consumes.
func NewStackingOwner(store *clientstore.Store) stacking.PositionSetter {
	return transientChildrenAdapter{store: store}
}
