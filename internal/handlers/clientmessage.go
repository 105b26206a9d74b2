package handlers

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/placement"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/replydispatcher"
	"github.com/jopamo/hxm/internal/xproto"
	"github.com/jopamo/hxm/logger"
)

// moveResizeCancel is the _NET_WM_MOVERESIZE direction value ICCCM/EWMH
// reserve for "abort the interactive grab".
const moveResizeCancel = 11

// ProcessInput dispatches each given ClientMessage/KeyPress/
// ButtonPress/ButtonRelease event in arrival order: keys go to the
// keybindings, buttons to the menu or frame controls, and a
// ClientMessage targeting a managed client is handled as an EWMH/ICCCM
// command. Process calls it once per event kind, so keys, buttons and
// client messages each drain as their own phase.
func ProcessInput(ctx *Context, events []xproto.Event, nextTxnID func() uint64) {
	for _, ev := range events {
		switch ev.Kind {
		case xproto.EventKeyPress:
			if ctx.Keys != nil {
				ctx.Keys.Dispatch(ev)
			}
		case xproto.EventButtonPress, xproto.EventButtonRelease:
			processButton(ctx, ev)
		case xproto.EventClientMessage:
			processClientMessage(ctx, ev, nextTxnID)
		}
	}
}

func processButton(ctx *Context, ev xproto.Event) {
	if ctx.Menu != nil && ctx.Menu.OwnsWindow(ev.Window) {
		ctx.Menu.HandleButton(ev)
		return
	}

	if ev.Kind == xproto.EventButtonRelease && ctx.Pointer != nil {
		if ctx.Pointer.ButtonMask() == 0 {
			if h, _, _, ok := ctx.clientFor(ev.Window); ok && ctx.Pointer.Active(h) {
				ctx.Pointer.Cancel(h)
			}
		}
	}

	h, hot, _, ok := ctx.clientFor(ev.Window)
	if !ok {
		return
	}
	if ev.Kind == xproto.EventButtonPress {
		ctx.Focus.Focus(h)
		ctx.Stacking.Raise(h, hot.StackingLayer)
	}
}

// clientMessageAction mirrors the _NET_WM_STATE action codes
// (remove/add/toggle), reused here since EWMH defines the same triple
// for every state-carrying message.
type clientMessageAction = replydispatcher.StateAction

func processClientMessage(ctx *Context, ev xproto.Event, nextTxnID func() uint64) {
	if len(ev.Data) < 24 {
		return
	}
	msgType := xproto.Atom(be32At(ev.Data, 0))
	w := wordsLE(ev.Data[4:])
	name := ctx.Atoms.Name(msgType)

	h, hot, cold, managed := ctx.clientFor(ev.Window)

	switch name {
	case "_NET_WM_STATE":
		if !managed || len(w) < 3 {
			return
		}
		action := clientMessageAction(w[0])
		for _, atomWord := range [2]uint32{w[1], w[2]} {
			if atomWord == 0 {
				continue
			}
			bit, ok := replydispatcher.BitForStateAtomName(ctx.Atoms.Name(xproto.Atom(atomWord)))
			if !ok {
				continue
			}
			applyWMStateBit(ctx, h, hot, bit, action)
		}

	case "_NET_ACTIVE_WINDOW":
		if !managed {
			return
		}
		ctx.Focus.Focus(h)
		ctx.Stacking.Raise(h, hot.StackingLayer)

	case "_NET_CLOSE_WINDOW":
		if !managed {
			return
		}
		if cold.Protocols&clientstore.ProtoDeleteWindow != 0 {
			ctx.Ops.SendDeleteWindow(hot.Window, ctx.Now())
		}

	case "_NET_WM_MOVERESIZE":
		if !managed || ctx.Pointer == nil || len(w) < 4 {
			return
		}
		direction := int(w[2])
		if direction == moveResizeCancel {
			ctx.Pointer.Cancel(h)
			return
		}
		resize := direction < 8 // the 8 resize-edge codes precede the 2 move codes in the EWMH enum
		// Begin only stages the drag; it doesn't become active until the
		// GrabPointer reply below grants it, so a grab failure leaves no
		// interaction in progress and no commit follows.
		ctx.Pointer.Begin(h, resize, direction, int32(w[0]), int32(w[1]))
		if ctx.Issuer != nil {
			txnID := nextTxnID()
			ctx.Issuer.Issue(h, cookiejar.KindGrabPointer, hot.Window, txnID)
		}

	case "_NET_MOVERESIZE_WINDOW":
		if !managed || len(w) < 5 {
			return
		}
		const (
			maskX = 1 << 8
			maskY = 1 << 9
			maskW = 1 << 10
			maskH = 1 << 11
		)
		flags := w[0]
		if flags&maskX != 0 {
			hot.DesiredGeom.X = int32(w[1])
		}
		if flags&maskY != 0 {
			hot.DesiredGeom.Y = int32(w[2])
		}
		if flags&maskW != 0 {
			hot.DesiredGeom.W = int32(w[3])
		}
		if flags&maskH != 0 {
			hot.DesiredGeom.H = int32(w[4])
		}
		hot.Dirty |= clientstore.DirtyGeom

	case "_NET_RESTACK_WINDOW":
		if !managed {
			return
		}
		ctx.Stacking.Raise(h, hot.StackingLayer)

	case "_NET_WM_DESKTOP":
		if !managed || len(w) < 1 {
			return
		}
		const allDesktops = 0xFFFFFFFF
		if w[0] == allDesktops {
			hot.State |= clientstore.StateSticky
		} else {
			hot.State &^= clientstore.StateSticky
			hot.Desktop = w[0]
		}
		hot.Dirty |= clientstore.DirtyDesktop | clientstore.DirtyVisibility | clientstore.DirtyState

	case "_NET_CURRENT_DESKTOP":
		if len(w) < 1 {
			return
		}
		ctx.Store.SetCurrentDesktop(w[0])

	case "_NET_NUMBER_OF_DESKTOPS":
		if len(w) < 1 {
			return
		}
		ctx.Store.SetNumberOfDesktops(w[0])

	case "_NET_SHOWING_DESKTOP":
		if len(w) < 1 {
			return
		}
		ctx.Store.SetShowingDesktop(w[0] != 0)

	case "_NET_WM_FULLSCREEN_MONITORS":
		if !managed || len(w) < 4 {
			return
		}
		hot.FullscreenMonitors = [4]int32{int32(w[0]), int32(w[1]), int32(w[2]), int32(w[3])}
		hot.FullscreenMonitorsValid = true
		hot.Dirty |= clientstore.DirtyGeom

	case "_NET_REQUEST_FRAME_EXTENTS":
		// Answered synthetically even for not-yet-managed windows: the
		// caller only wants to know the decoration extents before mapping.
		if ctx.Ops != nil {
			ctx.Ops.SendClientMessage(ev.Window, ctx.Atoms.Atom("_NET_FRAME_EXTENTS"), [5]uint32{})
		}

	case "WM_CHANGE_STATE":
		if !managed || len(w) < 1 {
			return
		}
		const iconicState = 3
		if w[0] == iconicState {
			hot.Dirty |= clientstore.DirtyState
			hot.State |= clientstore.StateHidden
		}

	case "_NET_WM_PING":
		// Pong: hxm doesn't send pings of its own in this scope, so a
		// reply here would only ever come from a misbehaving client
		// echoing our atom name back; nothing to do.

	default:
		logger.IngestInfow("unhandled client message", "window", ev.Window, "atom", name)
	}
}

// applyWMStateBit resolves one _NET_WM_STATE atom against action and
// applies it. MAXIMIZED_HORZ/VERT and FULLSCREEN route through
// placement, which also rewrites DesiredGeom and saves/restores the
// pre-transition geometry; every other bit is a plain state flip with
// no geometry consequence.
func applyWMStateBit(ctx *Context, h primitives.Handle, hot *clientstore.Hot, bit clientstore.WindowStateBits, action clientMessageAction) {
	switch bit {
	case clientstore.StateMaximizedH, clientstore.StateMaximizedV:
		on := resolveStateBit(hot.State, bit, action)
		horz, vert := bit == clientstore.StateMaximizedH, bit == clientstore.StateMaximizedV
		if on {
			placement.Maximize(hot, horz, vert, ctx.Store.Workarea())
		} else {
			placement.Unmaximize(hot, horz, vert)
		}

	case clientstore.StateFullscreen:
		on := resolveStateBit(hot.State, bit, action)
		result := placement.Fullscreen(hot, on, ctx.DefaultScreen)
		if result.LayerChange {
			ctx.Stacking.MoveToLayer(h, hot.StackingLayer, result.TargetLayer)
			hot.StackingLayer = result.TargetLayer
			hot.Dirty |= clientstore.DirtyStack
		}

	default:
		hot.State = replydispatcher.ApplyStateSet(hot.State, action, bit)
		hot.Dirty |= clientstore.DirtyState
	}
}

// resolveStateBit turns an add/remove/toggle action plus the current
// bit into the boolean "on" placement.Maximize/Fullscreen expect.
func resolveStateBit(current clientstore.WindowStateBits, bit clientstore.WindowStateBits, action clientMessageAction) bool {
	switch action {
	case replydispatcher.StateActionAdd:
		return true
	case replydispatcher.StateActionRemove:
		return false
	default:
		return current&bit == 0
	}
}

// wordsLE decodes a client-message's 20-byte data payload as five
// little-endian uint32 words, matching XClientMessageEvent's l[5]
// layout (distinct from the big-endian property words elsewhere —
// client messages carry native-order longs on the wire).
func wordsLE(data []byte) []uint32 {
	n := len(data) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		o := i * 4
		out[i] = uint32(data[o]) | uint32(data[o+1])<<8 | uint32(data[o+2])<<16 | uint32(data[o+3])<<24
	}
	return out
}

func be32At(data []byte, offset int) uint32 {
	if offset+4 > len(data) {
		return 0
	}
	return uint32(data[offset])<<24 | uint32(data[offset+1])<<16 | uint32(data[offset+2])<<8 | uint32(data[offset+3])
}
