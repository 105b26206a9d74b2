package commit

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/placement"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/replydispatcher"
	"github.com/jopamo/hxm/internal/stacking"
	"github.com/jopamo/hxm/logger"
)

// runManageTransitions scans for clients whose PHASE1 probe fan-out
// has just resolved (Lifecycle==StateReady) and either finishes
// managing them or aborts, per the rules the reply dispatcher can't
// apply itself since it only ever sees one reply at a time.
func runManageTransitions(ctx *Context) {
	var ready []primitives.Handle
	ctx.Store.Each(func(h primitives.Handle, hot *clientstore.Hot, cold *clientstore.Cold) bool {
		if hot.Lifecycle == clientstore.StateReady {
			ready = append(ready, h)
		}
		return true
	})

	for _, h := range ready {
		hot, cold, ok := ctx.Store.Lookup(h)
		if !ok {
			continue
		}
		if hot.ManageAborted {
			abortManage(ctx, h, hot)
			continue
		}
		finishManage(ctx, h, hot, cold)
	}
}

// abortManage runs for windows the attribute or window-type probe
// flagged as never framable (override-redirect, InputOnly, or a
// transient popup type): the window is mapped raw so it stays
// visible, and every trace of our tracking is dropped.
func abortManage(ctx *Context, h primitives.Handle, hot *clientstore.Hot) {
	ctx.Ops.MapRaw(hot.Window)
	ctx.Store.Unmanage(h)
	ctx.Store.Free(h)
	logger.IngestInfow("manage aborted", "window", hot.Window)
}

// finishManage places a newly-probed client, creates its frame,
// reparents the client into it, stacks and (conditionally) focuses
// it, and replays any _NET_WM_STATE messages that arrived mid-probe.
// Geometry and state are left dirty for the generic per-client commit
// steps below to flush, rather than issuing a second configure pair
// here.
func finishManage(ctx *Context, h primitives.Handle, hot *clientstore.Hot, cold *clientstore.Cold) {
	layer := initialLayerForType(hot.WindowType)

	var parentGeom *primitives.Rect
	if hot.TransientParent.Valid() {
		if parentHot, _, ok := ctx.Store.Lookup(hot.TransientParent); ok {
			g := parentHot.ServerGeom
			parentGeom = &g
		}
	}
	hot.DesiredGeom = placement.InitialPosition(hot.ServerGeom, parentGeom, hot.SizeHints, ctx.Store.Workarea())

	hot.Frame = ctx.Ops.CreateFrame(hot.Window, hot.DesiredGeom, 0)
	ctx.Store.RegisterFrame(h, hot.Frame)

	ctx.Ops.SetFrameExtents(hot.Window, 0, 0, 0, 0)
	ctx.Ops.SetAllowedActions(hot.Window, allowedActionNames(hot))
	ctx.Ops.SetWMStateAtoms(hot.Window, replydispatcher.AtomNamesForBits(hot.State))

	ctx.Stacking.Insert(h, layer)
	if hot.TransientParent.Valid() {
		ctx.Stacking.PlaceAbove(h, hot.TransientParent, layer)
	}

	visible := hot.Desktop == ctx.Store.CurrentDesktop() || hot.State&clientstore.StateSticky != 0
	notIconic := hot.State&clientstore.StateHidden == 0
	if visible && notIconic {
		hot.Lifecycle = clientstore.StateMapped
	} else {
		hot.Lifecycle = clientstore.StateUnmapped
	}
	hot.Dirty |= clientstore.DirtyVisibility | clientstore.DirtyGeom | clientstore.DirtyState

	ctx.Store.FocusHistory().PushFront(h)
	if shouldFocusOnMap(hot.WindowType) && hot.Lifecycle == clientstore.StateMapped {
		ctx.Focus.Focus(h)
	}

	if len(cold.PendingStateMessages) > 0 {
		for _, msg := range cold.PendingStateMessages {
			bit1, _ := replydispatcher.BitForStateAtomName(ctx.Atoms.Name(msg.Atom1))
			bit2, _ := replydispatcher.BitForStateAtomName(ctx.Atoms.Name(msg.Atom2))
			hot.State = replydispatcher.ApplyStateSet(hot.State, replydispatcher.StateAction(msg.Action), bit1|bit2)
		}
		cold.PendingStateMessages = nil
		hot.Dirty |= clientstore.DirtyState
	}

	logger.IngestInfow("client finished manage", "client", h.String(), "window", hot.Window, "frame", hot.Frame)
}

func initialLayerForType(wt clientstore.WindowType) stacking.Layer {
	switch wt {
	case clientstore.TypeDesktop:
		return stacking.LayerDesktop
	case clientstore.TypeDock:
		return stacking.LayerDock
	default:
		return stacking.LayerNormal
	}
}

func shouldFocusOnMap(wt clientstore.WindowType) bool {
	switch wt {
	case clientstore.TypeNormal, clientstore.TypeDialog:
		return true
	default:
		return false
	}
}

func allowedActionNames(hot *clientstore.Hot) []string {
	out := []string{
		"_NET_WM_ACTION_MOVE",
		"_NET_WM_ACTION_CHANGE_DESKTOP",
		"_NET_WM_ACTION_CLOSE",
		"_NET_WM_ACTION_ABOVE",
		"_NET_WM_ACTION_BELOW",
		"_NET_WM_ACTION_STICK",
	}
	fixedSize := hot.SizeHintsValid && hot.SizeHints.HasMin && hot.SizeHints.HasMax &&
		hot.SizeHints.MinW == hot.SizeHints.MaxW && hot.SizeHints.MinH == hot.SizeHints.MaxH
	if !fixedSize {
		out = append(out,
			"_NET_WM_ACTION_RESIZE",
			"_NET_WM_ACTION_MAXIMIZE_HORZ",
			"_NET_WM_ACTION_MAXIMIZE_VERT",
			"_NET_WM_ACTION_FULLSCREEN",
		)
	}
	if hot.WindowType != clientstore.TypeDesktop && hot.WindowType != clientstore.TypeDock {
		out = append(out, "_NET_WM_ACTION_MINIMIZE")
	}
	return out
}
