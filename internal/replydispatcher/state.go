package replydispatcher

import "github.com/jopamo/hxm/internal/clientstore"

// StateAction mirrors the _NET_WM_STATE client-message action values.
type StateAction int

const (
	StateActionRemove StateAction = 0
	StateActionAdd    StateAction = 1
	StateActionToggle StateAction = 2
)

// ApplyStateSet is the single transform every _NET_WM_STATE mutation
// goes through, reconciling the requested action against the current
// bitmask for a set of target bits.
func ApplyStateSet(current clientstore.WindowStateBits, action StateAction, bits clientstore.WindowStateBits) clientstore.WindowStateBits {
	switch action {
	case StateActionAdd:
		return current | bits
	case StateActionRemove:
		return current &^ bits
	case StateActionToggle:
		return current ^ bits
	default:
		return current
	}
}

// stateAtomNames maps the EWMH state atom name to its hot-record bit.
var stateAtomNames = map[string]clientstore.WindowStateBits{
	"_NET_WM_STATE_MAXIMIZED_HORZ": clientstore.StateMaximizedH,
	"_NET_WM_STATE_MAXIMIZED_VERT": clientstore.StateMaximizedV,
	"_NET_WM_STATE_ABOVE":          clientstore.StateAbove,
	"_NET_WM_STATE_BELOW":          clientstore.StateBelow,
	"_NET_WM_STATE_STICKY":         clientstore.StateSticky,
	"_NET_WM_STATE_SKIP_TASKBAR":   clientstore.StateSkipTaskbar,
	"_NET_WM_STATE_SKIP_PAGER":     clientstore.StateSkipPager,
	"_NET_WM_STATE_FULLSCREEN":     clientstore.StateFullscreen,
	"_NET_WM_STATE_DEMANDS_ATTENTION": clientstore.StateDemandsAttention,
	"_NET_WM_STATE_HIDDEN":         clientstore.StateHidden,
	"_NET_WM_STATE_MODAL":          clientstore.StateModal,
	"_NET_WM_STATE_SHADED":         clientstore.StateShaded,
}

// BitForStateAtomName resolves an interned _NET_WM_STATE atom's name
// to its hot-record bit, or ok=false for an atom this WM doesn't track.
func BitForStateAtomName(name string) (clientstore.WindowStateBits, bool) {
	b, ok := stateAtomNames[name]
	return b, ok
}

// stateBitNames is stateAtomNames inverted, built once at init since
// the forward map never changes after source edit.
var stateBitNames = func() map[clientstore.WindowStateBits]string {
	out := make(map[clientstore.WindowStateBits]string, len(stateAtomNames))
	for name, bit := range stateAtomNames {
		out[bit] = name
	}
	return out
}()

// AtomNamesForBits expands a combined state bitmask back into the
// list of EWMH atom names it represents, for rewriting _NET_WM_STATE.
func AtomNamesForBits(bits clientstore.WindowStateBits) []string {
	var out []string
	for bit, name := range stateBitNames {
		if bits&bit != 0 {
			out = append(out, name)
		}
	}
	return out
}

// BitsForAtomList folds a full _NET_WM_STATE property value (read at
// probe time) into the combined bitmask, ignoring atoms this WM
// doesn't recognize rather than failing the whole parse.
func BitsForAtomList(names []string) clientstore.WindowStateBits {
	var out clientstore.WindowStateBits
	for _, n := range names {
		if b, ok := stateAtomNames[n]; ok {
			out |= b
		}
	}
	return out
}
