package handlers

import (
	"github.com/jopamo/hxm/internal/bucketer"
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/replydispatcher"
	"github.com/jopamo/hxm/internal/xproto"
)

// ProcessConfigureRequest applies each coalesced per-field overlay to
// the owning client's desired geometry, constrained by its size hints.
// A request targeting an unmanaged window (override-redirect, or a
// race with destroy) is configured straight through instead.
func ProcessConfigureRequest(ctx *Context, requests map[xproto.WindowID]*bucketer.ConfigureRequestData) {
	for window, req := range requests {
		h, hot, _, ok := ctx.clientFor(window)
		if !ok {
			passThroughConfigure(ctx, window, req)
			continue
		}

		desired := hot.DesiredGeom
		if req.Mask&bucketer.ConfigX != 0 {
			desired.X = req.X
		}
		if req.Mask&bucketer.ConfigY != 0 {
			desired.Y = req.Y
		}
		if req.Mask&bucketer.ConfigWidth != 0 {
			desired.W = req.Width
		}
		if req.Mask&bucketer.ConfigHeight != 0 {
			desired.H = req.Height
		}

		if hot.SizeHintsValid {
			desired.W, desired.H = replydispatcher.ConstrainToHints(desired.W, desired.H, hot.SizeHints)
		}

		hot.DesiredGeom = desired
		hot.Dirty |= clientstore.DirtyGeom

		if req.Mask&bucketer.ConfigStackMode != 0 {
			ctx.Stacking.Raise(h, hot.StackingLayer)
		}
	}
}

func passThroughConfigure(ctx *Context, window xproto.WindowID, req *bucketer.ConfigureRequestData) {
	if ctx.Ops == nil {
		return
	}
	geom := primitives.Rect{X: req.X, Y: req.Y, W: req.Width, H: req.Height}
	ctx.Ops.ConfigureWindow(window, geom, req.BorderWidth, req.StackMode, req.Sibling)
}

// ProcessConfigureNotify reconciles each window's server-reported
// geometry with what the WM believes is current.
func ProcessConfigureNotify(ctx *Context, notifies map[xproto.WindowID]xproto.Event) {
	for window, ev := range notifies {
		_, hot, _, ok := ctx.clientFor(window)
		if !ok {
			continue
		}
		if len(ev.Data) < 16 {
			continue
		}
		hot.ServerGeom = primitives.Rect{
			X: int32(be32At(ev.Data, 0)),
			Y: int32(be32At(ev.Data, 4)),
			W: int32(be32At(ev.Data, 8)),
			H: int32(be32At(ev.Data, 12)),
		}
	}
}
