package handlers

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

// ProcessExpose routes each coalesced Expose rectangle either to the
// menu/decoration collaborator, if the window belongs to it, or to the
// owning client's frame, marking it for redraw next commit.
func ProcessExpose(ctx *Context, expose map[xproto.WindowID]primitives.Rect) {
	for window, dirty := range expose {
		if ctx.Menu != nil && ctx.Menu.OwnsWindow(window) {
			ctx.Menu.HandleExpose(window, dirty)
			continue
		}
		if h, hot, _, ok := ctx.clientForFrame(window); ok {
			_ = h
			hot.Dirty |= clientstore.DirtyFrame
		}
	}
}

// clientForFrame resolves window against the frame index, since Expose
// on hxm's own decoration surfaces targets the frame, not the client
// window.
func (c *Context) clientForFrame(frame xproto.WindowID) (primitives.Handle, *clientstore.Hot, *clientstore.Cold, bool) {
	h, ok := c.Store.ByFrame(frame)
	if !ok {
		return primitives.NilHandle, nil, nil, false
	}
	hot, cold, ok := c.Store.Lookup(h)
	return h, hot, cold, ok
}
