package wm

import (
	"encoding/binary"

	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/replydispatcher"
	"github.com/jopamo/hxm/internal/xproto"
)

// propertyForKind maps a cookie kind to the property atom it probes.
// Kinds with no property backing (geometry, adoption, frame-extents
// probes) return ("", false) and are encoded with no atom payload.
var propertyForKind = map[cookiejar.Kind]string{
	cookiejar.KindWMClass:             "WM_CLASS",
	cookiejar.KindClientMachine:       "WM_CLIENT_MACHINE",
	cookiejar.KindCommand:             "WM_COMMAND",
	cookiejar.KindHints:               "WM_HINTS",
	cookiejar.KindNormalHints:         "WM_NORMAL_HINTS",
	cookiejar.KindTransientFor:        "WM_TRANSIENT_FOR",
	cookiejar.KindColormapWindows:     "WM_COLORMAP_WINDOWS",
	cookiejar.KindProtocols:           "WM_PROTOCOLS",
	cookiejar.KindName:                "WM_NAME",
	cookiejar.KindIconName:            "WM_ICON_NAME",
	cookiejar.KindNetWMName:           "_NET_WM_NAME",
	cookiejar.KindNetWMIconName:       "_NET_WM_ICON_NAME",
	cookiejar.KindNetWMIcon:           "_NET_WM_ICON",
	cookiejar.KindNetWMState:          "_NET_WM_STATE",
	cookiejar.KindNetWMWindowType:     "_NET_WM_WINDOW_TYPE",
	cookiejar.KindNetWMStrut:          "_NET_WM_STRUT",
	cookiejar.KindNetWMStrutPartial:   "_NET_WM_STRUT_PARTIAL",
	cookiejar.KindNetWMUserTime:       "_NET_WM_USER_TIME",
	cookiejar.KindSyncRequestCounter:  "_NET_WM_SYNC_REQUEST_COUNTER",
	cookiejar.KindMotifHints:          "_MOTIF_WM_HINTS",
	cookiejar.KindGtkFrameExtents:     "_GTK_FRAME_EXTENTS",
}

// issuer is the single concrete type satisfying handlers.CookieIssuer,
// commit.Reprober, and replydispatcher.Issuer: every one of those
// interfaces only ever asks for "start a probe for this window, this
// kind, owned by this handle, under this transaction id", so one
// adapter over the transport and jar serves all three call sites.
type issuer struct {
	transport xproto.Transport
	jar       *cookiejar.Jar
	atoms     *xproto.Table
	dispatch  func(owner primitives.Handle, kind cookiejar.Kind, data uint64, txnID uint64, reply *xproto.Reply, err error)
}

func newIssuer(transport xproto.Transport, jar *cookiejar.Jar, atoms *xproto.Table, dispatcher *replydispatcher.Dispatcher) *issuer {
	return &issuer{transport: transport, jar: jar, atoms: atoms, dispatch: dispatcher.Handle}
}

func (i *issuer) Issue(owner primitives.Handle, kind cookiejar.Kind, window xproto.WindowID, txnID uint64) {
	i.issue(owner, kind, window, txnID)
}

// IssueFollowup satisfies replydispatcher.Issuer; it is the same
// operation as Issue under a different interface name because a
// follow-up probe queued mid-dispatch is issued exactly like any other.
func (i *issuer) IssueFollowup(owner primitives.Handle, kind cookiejar.Kind, window xproto.WindowID, txnID uint64) {
	i.issue(owner, kind, window, txnID)
}

func (i *issuer) issue(owner primitives.Handle, kind cookiejar.Kind, window xproto.WindowID, txnID uint64) {
	req := xproto.Request{Kind: xproto.ReqGetProperty, Window: window}

	switch kind {
	case cookiejar.KindAttributes:
		req.Kind = xproto.ReqGetWindowAttributes
	case cookiejar.KindGeometry, cookiejar.KindFrameExtentsProbe, cookiejar.KindAdoptionProbe:
		req.Kind = xproto.ReqGetGeometry
	case cookiejar.KindGrabPointer:
		// owner_events=0, confine_to=None, cursor=None; the interactive
		// move/resize only needs pointer motion and the terminating
		// button release, not keyboard events.
		const pointerEventMask = 1<<3 | 1<<6 // ButtonRelease | PointerMotion
		req.Kind = xproto.ReqGrabPointer
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, pointerEventMask)
		req.Data = buf
	default:
		if name, ok := propertyForKind[kind]; ok {
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, uint32(i.atoms.Atom(name)))
			req.Data = buf
		}
	}

	seq, err := i.transport.WriteRequest(req)
	if err != nil {
		return
	}
	i.jar.Insert(seq, kind, owner, uint64(window), txnID, i.dispatch)
}
