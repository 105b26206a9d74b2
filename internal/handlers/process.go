package handlers

import (
	"github.com/jopamo/hxm/internal/bucketer"
	"github.com/jopamo/hxm/internal/placement"
	"github.com/jopamo/hxm/internal/xproto"
)

// Process drains one tick's buckets in the fixed order: lifecycle,
// keys, buttons, expose, client messages, pointer motion, configure
// request, configure notify, property notify, damage, randr.
// Each phase fully drains its bucket before the next begins.
func Process(ctx *Context, b *bucketer.Buckets, nextTxnID func() uint64, monitors MonitorSource, randrChanged bool, struts []placement.ActiveStrut) {
	ProcessLifecycle(ctx, b.Lifecycle, nextTxnID)
	var keys, buttons, clientMessages []xproto.Event
	for _, ev := range b.Input {
		switch ev.Kind {
		case xproto.EventKeyPress:
			keys = append(keys, ev)
		case xproto.EventButtonPress, xproto.EventButtonRelease:
			buttons = append(buttons, ev)
		case xproto.EventClientMessage:
			clientMessages = append(clientMessages, ev)
		}
	}
	ProcessInput(ctx, keys, nextTxnID)
	ProcessInput(ctx, buttons, nextTxnID)
	ProcessExpose(ctx, b.Expose)
	ProcessInput(ctx, clientMessages, nextTxnID)
	ProcessPointer(ctx, b.MotionNotify, b.EnterNotify, b.LeaveNotify)
	ProcessConfigureRequest(ctx, b.ConfigureRequest)
	ProcessConfigureNotify(ctx, b.ConfigureNotify)

	changes := make(map[PropertyKey]struct{}, len(b.PropertyNotify))
	for k := range b.PropertyNotify {
		changes[PropertyKey{Window: k.Window, AtomName: ctx.Atoms.Name(k.Atom)}] = struct{}{}
	}
	ProcessPropertyNotify(ctx, changes, nextTxnID)

	ProcessDamage(ctx, b.Damage)
	ProcessRandR(ctx, randrChanged || b.RandRChange != nil, monitors, struts)
}
