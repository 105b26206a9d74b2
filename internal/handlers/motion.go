package handlers

import (
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

// ProcessPointer handles the single coalesced-latest MotionNotify per
// window plus the tick's single-latest Enter/Leave: cursor updates on
// frame borders, and feeding an active interactive move/resize its
// newest pointer position.
func ProcessPointer(ctx *Context, motion map[xproto.WindowID]xproto.Event, enter, leave *xproto.Event) {
	for window, ev := range motion {
		x, y := decodeXY(ev)
		if h, ok := ctx.Store.ByFrame(window); ok && ctx.Pointer != nil && ctx.Pointer.Active(h) {
			ctx.Pointer.Update(h, x, y)
			continue
		}
		if h, hot, _, ok := ctx.clientForFrame(window); ok && ctx.Ops != nil {
			direction := resizeEdge(hot.ServerGeom, x, y)
			hot.LastCursorDirection = direction
			ctx.Ops.SetCursor(window, direction)
		}
	}

	if enter != nil && ctx.Ops != nil {
		if _, hot, _, ok := ctx.clientForFrame(enter.Window); ok {
			x, y := decodeXY(*enter)
			ctx.Ops.SetCursor(enter.Window, resizeEdge(hot.ServerGeom, x, y))
		}
	}
	_ = leave
}

const resizeBorderPx = 8

// resizeEdge classifies a pointer position against a frame's geometry
// into one of the eight resize-edge directions the _NET_WM_MOVERESIZE
// enum names, or -1 for "interior, not a resize edge".
func resizeEdge(frame primitives.Rect, x, y int32) int {
	left := x < frame.X+resizeBorderPx
	right := x > frame.X+frame.W-resizeBorderPx
	top := y < frame.Y+resizeBorderPx
	bottom := y > frame.Y+frame.H-resizeBorderPx

	switch {
	case top && left:
		return 0
	case top && right:
		return 2
	case bottom && right:
		return 4
	case bottom && left:
		return 6
	case top:
		return 1
	case right:
		return 3
	case bottom:
		return 5
	case left:
		return 7
	default:
		return -1
	}
}

// decodeXY reads the pointer's root-relative (x, y) from a Motion/Enter
// event's payload, encoded the same big-endian-word way as every other
// opaque event payload in this codebase.
func decodeXY(ev xproto.Event) (int32, int32) {
	if len(ev.Data) < 8 {
		return 0, 0
	}
	return int32(be32At(ev.Data, 0)), int32(be32At(ev.Data, 4))
}
