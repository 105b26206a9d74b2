package handlers

import (
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

// ProcessDamage unions each coalesced damage rectangle into its
// client's accumulated damage region; the commit phase's frame redraw
// step consumes and clears this when it actually repaints.
func ProcessDamage(ctx *Context, damage map[xproto.WindowID]primitives.Rect) {
	for window, rect := range damage {
		if _, hot, _, ok := ctx.clientForFrame(window); ok {
			hot.DamageRegion = hot.DamageRegion.Union(rect)
		}
	}
}
