// Package replydispatcher is invoked by the cookie jar when a reply
// (or nil for timeout/abandonment) arrives for an in-flight request.
// It resolves the owning client, discards stale or orphaned replies,
// and applies each cookie kind's bit-exact parse to the client's hot
// and/or cold record, advancing the manage phase when the last
// PHASE1 probe resolves.
package replydispatcher

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

// Issuer lets the dispatcher queue a follow-up probe — the
// _NET_WM_STRUT waterfall fallback, the ICCCM name fallback, the
// sync-counter value query — without owning the transport itself.
type Issuer interface {
	IssueFollowup(owner primitives.Handle, kind cookiejar.Kind, window xproto.WindowID, txnID uint64)
}

// SentinelHandler processes replies for cookies issued with
// cookiejar.Sentinel as owner: pre-management adoption checks,
// MapRequest gating probes, and async frame-extents queries that
// aren't yet attached to any client slot.
type SentinelHandler interface {
	HandleSentinelReply(kind cookiejar.Kind, data uint64, reply *xproto.Reply, err error)
}

// titlebarIconSize is the target square dimension SelectIconForTarget
// resolves the best _NET_WM_ICON candidate against; hxm only ever
// draws one icon size in the decoration, so there is no per-client
// target to honor.
const titlebarIconSize = 16

// grabStatusSuccess mirrors the X11 GrabStatus enum's Success value;
// any other status (AlreadyGrabbed, InvalidTime, NotViewable, Frozen)
// means the interaction never starts.
const grabStatusSuccess = 0

// GrabResultSink resolves a KindGrabPointer cookie's outcome for the
// interactive-drag controller, without the dispatcher owning pointer
// state itself: granted promotes the drag staged by
// PointerController.Begin to active; a failed or timed-out grab drops
// it, so no interaction — and no commit — follows.
type GrabResultSink interface {
	ResolveGrab(owner primitives.Handle, granted bool)
}

// Dispatcher wires cookie-jar replies into client state mutation.
type Dispatcher struct {
	store    *clientstore.Store
	atoms    *xproto.Table
	issuer   Issuer
	sentinel SentinelHandler
	grabSink GrabResultSink
}

// New creates a dispatcher bound to store for resolving owners, atoms
// for translating interned atom ids to names, issuer for follow-up
// probes, sentinel for pre-management replies, and grabSink for
// GrabPointer outcomes.
func New(store *clientstore.Store, atoms *xproto.Table, issuer Issuer, sentinel SentinelHandler, grabSink GrabResultSink) *Dispatcher {
	return &Dispatcher{store: store, atoms: atoms, issuer: issuer, sentinel: sentinel, grabSink: grabSink}
}

// Handle matches cookiejar.Handler's signature and is registered
// directly as the callback for every cookie this dispatcher owns.
func (d *Dispatcher) Handle(owner primitives.Handle, kind cookiejar.Kind, data uint64, txnID uint64, reply *xproto.Reply, err error) {
	if owner == cookiejar.Sentinel {
		if d.sentinel != nil {
			d.sentinel.HandleSentinelReply(kind, data, reply, err)
		}
		return
	}

	if kind == cookiejar.KindGrabPointer {
		if d.grabSink != nil {
			d.grabSink.ResolveGrab(owner, err == nil && grabReplyGranted(reply))
		}
		return
	}

	hot, cold, ok := d.store.Lookup(owner)
	if !ok {
		return // unmanaged while the reply was in flight
	}

	if kind != cookiejar.KindSyncRequestCounter {
		if txnID < hot.LastAppliedTxnID {
			return // strictly-older reply from a superseded decision
		}
		hot.LastAppliedTxnID = txnID
	}

	if reply == nil {
		if hot.ManagePhase == clientstore.PhaseOne && isPhaseOneCritical(kind) {
			hot.ManageAborted = true
		}
		d.decrementPending(hot)
		return
	}

	d.applyReply(hot, cold, owner, kind, reply, txnID)
	d.decrementPending(hot)
}

func isPhaseOneCritical(kind cookiejar.Kind) bool {
	switch kind {
	case cookiejar.KindAttributes, cookiejar.KindGeometry:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) applyReply(hot *clientstore.Hot, cold *clientstore.Cold, owner primitives.Handle, kind cookiejar.Kind, reply *xproto.Reply, txnID uint64) {
	switch kind {
	case cookiejar.KindAttributes:
		w := words(reply.Data)
		if len(w) >= 2 {
			const overrideRedirectBit = 1 << 0
			const inputOnlyClass = 1
			if w[0]&overrideRedirectBit != 0 || w[1] == inputOnlyClass {
				hot.ManageAborted = true
			}
		}

	case cookiejar.KindGeometry:
		w := words(reply.Data)
		if len(w) >= 4 {
			hot.ServerGeom = primitives.Rect{X: int32(w[0]), Y: int32(w[1]), W: int32(w[2]), H: int32(w[3])}
			hot.DesiredGeom = hot.ServerGeom
		}
		if len(w) >= 5 {
			hot.OriginalBorderWidth = int32(w[4])
		}

	case cookiejar.KindWMClass:
		if instance, class, ok := ParseWMClass(reply.Data); ok {
			cold.WMClassInstance = instance
			cold.WMClassClass = class
		}

	case cookiejar.KindClientMachine:
		cold.ClientMachine = string(reply.Data)

	case cookiejar.KindCommand:
		cold.Command = splitNulls(reply.Data)

	case cookiejar.KindHints:
		w := words(reply.Data)
		const inputHintBit = 1 << 0
		if len(w) >= 2 && w[0]&inputHintBit != 0 {
			cold.CanFocus = w[1] != 0
		} else {
			cold.CanFocus = true
		}

	case cookiejar.KindNormalHints:
		hot.SizeHints = ParseSizeHints(reply.Data)
		hot.SizeHintsValid = true
		hot.Dirty |= clientstore.DirtyGeom

	case cookiejar.KindTransientFor:
		w := words(reply.Data)
		if len(w) >= 1 {
			if parent, ok := d.store.ByWindow(xproto.WindowID(w[0])); ok {
				d.store.SetTransientParent(owner, parent)
			}
		}

	case cookiejar.KindColormapWindows:
		w := words(reply.Data)
		wins := make([]xproto.WindowID, len(w))
		for i, v := range w {
			wins[i] = xproto.WindowID(v)
		}
		cold.ColormapWindows = wins

	case cookiejar.KindProtocols:
		w := words(reply.Data)
		var bits clientstore.ProtocolBits
		for _, a := range w {
			switch d.atomName(xproto.Atom(a)) {
			case "WM_DELETE_WINDOW":
				bits |= clientstore.ProtoDeleteWindow
			case "WM_TAKE_FOCUS":
				bits |= clientstore.ProtoTakeFocus
			case "_NET_WM_SYNC_REQUEST":
				bits |= clientstore.ProtoSyncRequest
			case "_NET_WM_PING":
				bits |= clientstore.ProtoPing
			}
		}
		cold.Protocols = bits

	case cookiejar.KindName, cookiejar.KindIconName:
		if title, ok := ParseTitle(reply.Data); ok {
			if kind == cookiejar.KindName {
				if cold.Title == "" {
					cold.Title = title
					hot.Dirty |= clientstore.DirtyTitle
				}
			} else {
				cold.IconName = title
			}
		}

	case cookiejar.KindNetWMName:
		if title, ok := ParseTitle(reply.Data); ok {
			cold.Title = title
			hot.Dirty |= clientstore.DirtyTitle
		} else if d.issuer != nil {
			d.issuer.IssueFollowup(owner, cookiejar.KindName, hot.Window, txnID)
		}

	case cookiejar.KindNetWMIconName:
		if title, ok := ParseTitle(reply.Data); ok {
			cold.IconName = title
		} else if d.issuer != nil {
			d.issuer.IssueFollowup(owner, cookiejar.KindIconName, hot.Window, txnID)
		}

	case cookiejar.KindNetWMIcon:
		if candidates := ParseNetWMIcon(reply.Data); len(candidates) > 0 {
			cold.IconCandidates = candidates
			if icon, ok := SelectIconForTarget(candidates, titlebarIconSize); ok {
				cold.Icon = icon
				cold.IconValid = true
			}
			hot.Dirty |= clientstore.DirtyFrame
		}

	case cookiejar.KindNetWMState:
		w := words(reply.Data)
		names := make([]string, len(w))
		for i, a := range w {
			names[i] = d.atomName(xproto.Atom(a))
		}
		hot.State = BitsForAtomList(names)
		hot.Dirty |= clientstore.DirtyState

	case cookiejar.KindNetWMWindowType:
		w := words(reply.Data)
		if len(w) > 0 {
			hot.WindowType = windowTypeForAtomName(d.atomName(xproto.Atom(w[0])))
			hot.TypeFromEWMH = true
			if hot.WindowType.IsTransientPopup() {
				hot.ManageAborted = true
			}
		}

	case cookiejar.KindNetWMStrut:
		if !cold.StrutPartialActive {
			if strut, ok := ParseStrut(reply.Data); ok {
				cold.Strut = strut
				hot.Dirty |= clientstore.DirtyStrut
			}
		}

	case cookiejar.KindNetWMStrutPartial:
		if partial, ok := ParseStrutPartial(reply.Data); ok {
			cold.StrutPartial = partial
			cold.StrutPartialActive = true
			hot.Dirty |= clientstore.DirtyStrut
		} else {
			cold.StrutPartialActive = false
			if d.issuer != nil {
				d.issuer.IssueFollowup(owner, cookiejar.KindNetWMStrut, hot.Window, txnID)
			}
		}

	case cookiejar.KindNetWMUserTime:
		w := words(reply.Data)
		if len(w) >= 1 {
			hot.UserTime = w[0]
		}

	case cookiejar.KindSyncRequestCounter:
		w := words(reply.Data)
		if len(w) >= 1 {
			if !hot.SyncEnabled {
				hot.SyncCounterID = w[0]
				hot.SyncEnabled = true
				if d.issuer != nil {
					d.issuer.IssueFollowup(owner, cookiejar.KindSyncRequestCounter, hot.Window, txnID)
				}
			} else {
				hot.SyncValue = uint64(w[0])
			}
		}

	case cookiejar.KindMotifHints:
		w := words(reply.Data)
		if len(w) >= 3 {
			hot.MotifDecorationOverride = true
			hot.MotifDecorated = w[2] != 0
		}

	case cookiejar.KindGtkFrameExtents:
		w := words(reply.Data)
		if len(w) >= 4 {
			hot.GtkFrameExtents = [4]int32{int32(w[0]), int32(w[1]), int32(w[2]), int32(w[3])}
		}
	}
}

// grabReplyGranted reports whether a GrabPointer reply's status word
// was Success; reply == nil (timeout/abandonment) is never granted.
func grabReplyGranted(reply *xproto.Reply) bool {
	if reply == nil {
		return false
	}
	w := words(reply.Data)
	return len(w) >= 1 && w[0] == grabStatusSuccess
}

func (d *Dispatcher) atomName(a xproto.Atom) string {
	if d.atoms == nil {
		return ""
	}
	return d.atoms.Name(a)
}

func (d *Dispatcher) decrementPending(hot *clientstore.Hot) {
	if hot.PendingReplies > 0 {
		hot.PendingReplies--
	}
	if hot.PendingReplies == 0 && hot.ManagePhase == clientstore.PhaseOne && !hot.ManageAborted {
		hot.Lifecycle = clientstore.StateReady
		hot.ManagePhase = clientstore.PhaseDone
	}
}

func splitNulls(data []byte) []string {
	var out []string
	start := 0
	for i, b := range data {
		if b == 0 {
			if i > start {
				out = append(out, string(data[start:i]))
			}
			start = i + 1
		}
	}
	if start < len(data) {
		out = append(out, string(data[start:]))
	}
	return out
}

func windowTypeForAtomName(name string) clientstore.WindowType {
	switch name {
	case "_NET_WM_WINDOW_TYPE_DIALOG":
		return clientstore.TypeDialog
	case "_NET_WM_WINDOW_TYPE_UTILITY":
		return clientstore.TypeUtility
	case "_NET_WM_WINDOW_TYPE_TOOLBAR":
		return clientstore.TypeToolbar
	case "_NET_WM_WINDOW_TYPE_MENU":
		return clientstore.TypeMenu
	case "_NET_WM_WINDOW_TYPE_SPLASH":
		return clientstore.TypeSplash
	case "_NET_WM_WINDOW_TYPE_DESKTOP":
		return clientstore.TypeDesktop
	case "_NET_WM_WINDOW_TYPE_DOCK":
		return clientstore.TypeDock
	case "_NET_WM_WINDOW_TYPE_NOTIFICATION":
		return clientstore.TypeNotification
	case "_NET_WM_WINDOW_TYPE_DROPDOWN_MENU":
		return clientstore.TypeDropdownMenu
	case "_NET_WM_WINDOW_TYPE_POPUP_MENU":
		return clientstore.TypePopupMenu
	case "_NET_WM_WINDOW_TYPE_TOOLTIP":
		return clientstore.TypeTooltip
	case "_NET_WM_WINDOW_TYPE_COMBO":
		return clientstore.TypeCombo
	case "_NET_WM_WINDOW_TYPE_DND":
		return clientstore.TypeDnD
	default:
		return clientstore.TypeNormal
	}
}
