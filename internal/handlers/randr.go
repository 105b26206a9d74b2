package handlers

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/placement"
	"github.com/jopamo/hxm/internal/primitives"
)

// MonitorSource supplies the current physical monitor layout; a real
// implementation wraps an RandR query, tests a fixed slice.
type MonitorSource interface {
	Monitors() []primitives.Rect
}

// ProcessRandR refreshes the known monitor set and active struts when a
// screen-change event arrived this tick, republishing each fullscreen
// client's target geometry against its (possibly resized) monitor.
func ProcessRandR(ctx *Context, changed bool, monitors MonitorSource, struts []placement.ActiveStrut) {
	if !changed || monitors == nil {
		return
	}
	ctx.Monitors = monitors.Monitors()
	if len(ctx.Monitors) == 0 {
		return
	}

	primary := ctx.Monitors[0]
	workarea := placement.ComputeWorkarea(primary, struts)
	ctx.DefaultScreen = primary
	ctx.Store.SetWorkarea(workarea)

	ctx.Store.Each(func(h primitives.Handle, hot *clientstore.Hot, cold *clientstore.Cold) bool {
		_ = cold
		if hot.State&clientstore.StateFullscreen != 0 {
			hot.DesiredGeom = primary
			hot.Dirty |= clientstore.DirtyGeom
		} else if hot.State&(clientstore.StateMaximizedH|clientstore.StateMaximizedV) != 0 {
			placement.Maximize(hot, hot.State&clientstore.StateMaximizedH != 0, hot.State&clientstore.StateMaximizedV != 0, workarea)
		}
		return true
	})
}
