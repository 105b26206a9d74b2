package xproto

// AtomNames lists every EWMH/ICCCM atom hxm interns at startup. The
// table built from it is immutable after init and is passed as a
// *Table everywhere it's needed rather than accessed as a
// package-level singleton.
var AtomNames = []string{
	// ICCCM baseline
	"WM_STATE",
	"WM_PROTOCOLS",
	"WM_DELETE_WINDOW",
	"WM_TAKE_FOCUS",
	"WM_CHANGE_STATE",
	"WM_CLASS",
	"WM_CLIENT_MACHINE",
	"WM_COMMAND",
	"WM_HINTS",
	"WM_NORMAL_HINTS",
	"WM_TRANSIENT_FOR",
	"WM_COLORMAP_WINDOWS",
	"WM_NAME",
	"WM_ICON_NAME",

	// EWMH supporting / selection
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_WM_ICON_NAME",
	"_NET_WM_PID",
	"_NET_WM_ICON",
	"_NET_WM_STATE",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_ALLOWED_ACTIONS",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
	"_NET_WM_SYNC_REQUEST",
	"_NET_WM_SYNC_REQUEST_COUNTER",
	"_NET_WM_PING",
	"_NET_WM_USER_TIME",
	"_NET_WM_USER_TIME_WINDOW",
	"_NET_WM_FULLSCREEN_MONITORS",
	"_NET_FRAME_EXTENTS",
	"_NET_REQUEST_FRAME_EXTENTS",
	"_NET_WM_OPAQUE_REGION",

	// EWMH window types
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_TOOLBAR",
	"_NET_WM_WINDOW_TYPE_MENU",
	"_NET_WM_WINDOW_TYPE_UTILITY",
	"_NET_WM_WINDOW_TYPE_SPLASH",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_WINDOW_TYPE_DROPDOWN_MENU",
	"_NET_WM_WINDOW_TYPE_POPUP_MENU",
	"_NET_WM_WINDOW_TYPE_TOOLTIP",
	"_NET_WM_WINDOW_TYPE_NOTIFICATION",
	"_NET_WM_WINDOW_TYPE_COMBO",
	"_NET_WM_WINDOW_TYPE_DND",
	"_NET_WM_WINDOW_TYPE_NORMAL",

	// EWMH states
	"_NET_WM_STATE_MODAL",
	"_NET_WM_STATE_STICKY",
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_STATE_MAXIMIZED_HORZ",
	"_NET_WM_STATE_SHADED",
	"_NET_WM_STATE_SKIP_TASKBAR",
	"_NET_WM_STATE_SKIP_PAGER",
	"_NET_WM_STATE_HIDDEN",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_STATE_ABOVE",
	"_NET_WM_STATE_BELOW",
	"_NET_WM_STATE_DEMANDS_ATTENTION",
	"_NET_WM_STATE_FOCUSED",

	// EWMH allowed actions
	"_NET_WM_ACTION_MOVE",
	"_NET_WM_ACTION_RESIZE",
	"_NET_WM_ACTION_MINIMIZE",
	"_NET_WM_ACTION_STICK",
	"_NET_WM_ACTION_MAXIMIZE_HORZ",
	"_NET_WM_ACTION_MAXIMIZE_VERT",
	"_NET_WM_ACTION_FULLSCREEN",
	"_NET_WM_ACTION_CHANGE_DESKTOP",
	"_NET_WM_ACTION_CLOSE",
	"_NET_WM_ACTION_ABOVE",
	"_NET_WM_ACTION_BELOW",

	// EWMH desktop / root
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
	"_NET_VIRTUAL_ROOTS",
	"_NET_WM_DESKTOP",
	"_NET_WORKAREA",
	"_NET_DESKTOP_NAMES",
	"_NET_DESKTOP_GEOMETRY",
	"_NET_DESKTOP_VIEWPORT",
	"_NET_SHOWING_DESKTOP",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_ACTIVE_WINDOW",

	// EWMH client-message recipients
	"_NET_CLOSE_WINDOW",
	"_NET_MOVERESIZE_WINDOW",
	"_NET_WM_MOVERESIZE",
	"_NET_RESTACK_WINDOW",

	// Non-EWMH extras advertised
	"_MOTIF_WM_HINTS",
	"_GTK_FRAME_EXTENTS",
	"UTF8_STRING",
}

// Table maps interned atom names to their server-assigned ids.
// Immutable once built by InternAll.
type Table struct {
	byName map[string]Atom
	byID   map[Atom]string
}

// InternAll calls lookup once per name in AtomNames and builds the
// completed table from the ids it returns. In tests, lookup can
// synthesize ids directly rather than round-tripping.
func InternAll(lookup func(name string) Atom) *Table {
	t := &Table{byName: make(map[string]Atom, len(AtomNames)), byID: make(map[Atom]string, len(AtomNames))}
	for _, name := range AtomNames {
		id := lookup(name)
		t.byName[name] = id
		t.byID[id] = name
	}
	return t
}

// Atom resolves name to its interned atom id, or 0 if never interned.
func (t *Table) Atom(name string) Atom { return t.byName[name] }

// Name resolves an atom id back to its interned name, or "" if unknown.
func (t *Table) Name(id Atom) string { return t.byID[id] }
