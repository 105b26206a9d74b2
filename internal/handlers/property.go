package handlers

import (
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/xproto"
)

// propertyAtomKinds maps a changed property's atom name to the cookie
// kind that re-fetches it, so a PropertyNotify only ever triggers the
// one probe it actually invalidated.
var propertyAtomKinds = map[string]cookiejar.Kind{
	"WM_NAME":                     cookiejar.KindName,
	"WM_ICON_NAME":                cookiejar.KindIconName,
	"WM_CLASS":                    cookiejar.KindWMClass,
	"WM_CLIENT_MACHINE":           cookiejar.KindClientMachine,
	"WM_COMMAND":                  cookiejar.KindCommand,
	"WM_HINTS":                    cookiejar.KindHints,
	"WM_NORMAL_HINTS":             cookiejar.KindNormalHints,
	"WM_TRANSIENT_FOR":            cookiejar.KindTransientFor,
	"WM_COLORMAP_WINDOWS":         cookiejar.KindColormapWindows,
	"WM_PROTOCOLS":                cookiejar.KindProtocols,
	"_NET_WM_NAME":                cookiejar.KindNetWMName,
	"_NET_WM_ICON_NAME":           cookiejar.KindNetWMIconName,
	"_NET_WM_ICON":                cookiejar.KindNetWMIcon,
	"_NET_WM_STATE":               cookiejar.KindNetWMState,
	"_NET_WM_WINDOW_TYPE":         cookiejar.KindNetWMWindowType,
	"_NET_WM_STRUT":               cookiejar.KindNetWMStrut,
	"_NET_WM_STRUT_PARTIAL":       cookiejar.KindNetWMStrutPartial,
	"_NET_WM_USER_TIME":           cookiejar.KindNetWMUserTime,
	"_MOTIF_WM_HINTS":             cookiejar.KindMotifHints,
	"_GTK_FRAME_EXTENTS":          cookiejar.KindGtkFrameExtents,
}

// ProcessPropertyNotify re-issues a targeted probe for each
// (window, atom) pair whose property changed, keyed so a storm of
// changes to the same atom on the same window only re-fetches once.
// The event payload itself carries nothing the probe needs, so the
// bucketer's coalesced entries are reduced to a plain key set before
// reaching here.
func ProcessPropertyNotify(ctx *Context, changes map[PropertyKey]struct{}, nextTxnID func() uint64) {
	for key := range changes {
		h, hot, _, ok := ctx.clientFor(key.Window)
		if !ok {
			continue
		}
		kind, known := propertyAtomKinds[key.AtomName]
		if !known {
			continue
		}
		txnID := nextTxnID()
		hot.LastAppliedTxnID = txnID
		hot.PendingReplies++
		ctx.Issuer.Issue(h, kind, key.Window, txnID)
	}
}

// PropertyKey identifies a coalesced PropertyNotify by window and the
// atom's resolved name (rather than its raw id, so handlers never need
// the atom table a second time once the bucketer has already resolved it).
type PropertyKey struct {
	Window   xproto.WindowID
	AtomName string
}

