// Package placement implements initial window placement, maximize,
// fullscreen, and workarea computation: the geometry policy layer
// that sits between the reply dispatcher/handlers (which decide
// *that* something should move) and the commit phase (which emits
// the resulting X requests).
package placement

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/stacking"
)

// InitialPosition selects the placement for a newly-managed NORMAL
// window: centered over its transient parent if any, else honoring
// USPosition/PPosition, else centered in the workarea. The result is
// always clamped into workarea.
func InitialPosition(desired primitives.Rect, parentGeom *primitives.Rect, hints clientstore.SizeHints, workarea primitives.Rect) primitives.Rect {
	r := desired
	switch {
	case parentGeom != nil:
		r.X = parentGeom.X + (parentGeom.W-r.W)/2
		r.Y = parentGeom.Y + (parentGeom.H-r.H)/2
	case hints.UserPosition || hints.ProgramPosition:
		// desired already carries the hinted position; leave it alone.
	default:
		r.X = workarea.X + (workarea.W-r.W)/2
		r.Y = workarea.Y + (workarea.H-r.H)/2
	}
	return r.Clamp(workarea)
}

// Maximize applies the requested axes independently: entering a
// not-yet-maximized axis saves its current server geometry before
// overwriting desired with the workarea extent on that axis.
func Maximize(hot *clientstore.Hot, h, v bool, workarea primitives.Rect) {
	if h && hot.State&clientstore.StateMaximizedH == 0 {
		hot.PreMaximizeGeom.X = hot.ServerGeom.X
		hot.PreMaximizeGeom.W = hot.ServerGeom.W
		hot.DesiredGeom.X = workarea.X
		hot.DesiredGeom.W = workarea.W
		hot.State |= clientstore.StateMaximizedH
	}
	if v && hot.State&clientstore.StateMaximizedV == 0 {
		hot.PreMaximizeGeom.Y = hot.ServerGeom.Y
		hot.PreMaximizeGeom.H = hot.ServerGeom.H
		hot.DesiredGeom.Y = workarea.Y
		hot.DesiredGeom.H = workarea.H
		hot.State |= clientstore.StateMaximizedV
	}
	hot.Dirty |= clientstore.DirtyGeom | clientstore.DirtyState
}

// Unmaximize restores only the axes requested, from the geometry
// saved when that axis was entered.
func Unmaximize(hot *clientstore.Hot, h, v bool) {
	if h && hot.State&clientstore.StateMaximizedH != 0 {
		hot.DesiredGeom.X = hot.PreMaximizeGeom.X
		hot.DesiredGeom.W = hot.PreMaximizeGeom.W
		hot.State &^= clientstore.StateMaximizedH
	}
	if v && hot.State&clientstore.StateMaximizedV != 0 {
		hot.DesiredGeom.Y = hot.PreMaximizeGeom.Y
		hot.DesiredGeom.H = hot.PreMaximizeGeom.H
		hot.State &^= clientstore.StateMaximizedV
	}
	hot.Dirty |= clientstore.DirtyGeom | clientstore.DirtyState
}

// FullscreenResult tells the caller which stacking layer change (if
// any) must accompany a fullscreen transition, since placement itself
// doesn't own the stacking manager.
type FullscreenResult struct {
	LayerChange   bool
	TargetLayer   stacking.Layer
}

// Fullscreen enters or exits fullscreen for hot, saving (or
// restoring) geometry, layer, and decoration exactly once per
// transition. The maximize bits are neither saved nor changed: they
// keep their value through both transitions.
func Fullscreen(hot *clientstore.Hot, on bool, target primitives.Rect) FullscreenResult {
	if on {
		if hot.State&clientstore.StateFullscreen != 0 {
			return FullscreenResult{}
		}
		hot.PreFullscreenGeom = hot.ServerGeom
		hot.PreFullscreenLayer = hot.StackingLayer
		hot.PreFullscreenUndecorated = hot.Flags&clientstore.FlagUndecorated != 0
		hot.DesiredGeom = target
		hot.Flags |= clientstore.FlagUndecorated
		hot.State |= clientstore.StateFullscreen
		hot.Dirty |= clientstore.DirtyGeom | clientstore.DirtyState
		return FullscreenResult{LayerChange: true, TargetLayer: stacking.LayerFullscreen}
	}

	if hot.State&clientstore.StateFullscreen == 0 {
		return FullscreenResult{}
	}
	hot.DesiredGeom = hot.PreFullscreenGeom
	if !hot.PreFullscreenUndecorated {
		hot.Flags &^= clientstore.FlagUndecorated
	}
	hot.State &^= clientstore.StateFullscreen
	hot.Dirty |= clientstore.DirtyGeom | clientstore.DirtyState
	return FullscreenResult{LayerChange: true, TargetLayer: hot.PreFullscreenLayer}
}
