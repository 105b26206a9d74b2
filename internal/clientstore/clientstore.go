// Package clientstore holds the per-client hot/cold record and the
// handle-keyed indexes (window id, frame id, mapping order) built on
// top of the slotmap. This is the single source of truth the rest of
// the tick engine reads and mutates; X is treated purely as I/O.
package clientstore

import (
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/slotmap"
	"github.com/jopamo/hxm/internal/stacking"
	"github.com/jopamo/hxm/internal/xproto"
)

// LifecycleState is the client's position in its manage/unmanage
// state machine. Only NEW->READY and MAPPED<->UNMAPPED are repeatable;
// every other transition is one-shot.
type LifecycleState int

const (
	StateNew LifecycleState = iota
	StateReady
	StateMapped
	StateUnmapped
	StateUnmanaging
	StateDestroyed
	StateUnmanaged
)

func (s LifecycleState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReady:
		return "ready"
	case StateMapped:
		return "mapped"
	case StateUnmapped:
		return "unmapped"
	case StateUnmanaging:
		return "unmanaging"
	case StateDestroyed:
		return "destroyed"
	case StateUnmanaged:
		return "unmanaged"
	default:
		return "unknown"
	}
}

// ManagePhase tracks progress through the probe fan-out issued at
// adoption. PhaseOne completing with no abort advances the client to
// StateReady, which the commit phase observes and turns into
// finish_manage.
type ManagePhase int

const (
	PhaseNone ManagePhase = iota
	PhaseOne
	PhaseDone
)

// DirtyFlags marks which parts of a client's state the commit phase
// still needs to flush. The commit phase clears every bit it handles;
// no client should carry DirtyGeom past commit exit.
type DirtyFlags uint16

const (
	DirtyVisibility DirtyFlags = 1 << iota
	DirtyGeom
	DirtyTitle
	DirtyHints
	DirtyStrut
	DirtyOpacity
	DirtyDesktop
	DirtyFrame
	DirtyStack
	DirtyState
)

// WindowStateBits mirrors the _NET_WM_STATE atoms this WM understands.
type WindowStateBits uint16

const (
	StateMaximizedH WindowStateBits = 1 << iota
	StateMaximizedV
	StateAbove
	StateBelow
	StateSticky
	StateSkipTaskbar
	StateSkipPager
	StateFullscreen
	StateDemandsAttention
	StateHidden
	StateModal
	StateShaded
)

// ClientFlags are the small hot-path booleans called out separately
// from the _NET_WM_STATE bitmask.
type ClientFlags uint8

const (
	FlagUndecorated ClientFlags = 1 << iota
	FlagUrgent
	FlagFocused
)

// WindowType is the client's EWMH window type, or the synthesized
// fallback (normal, or dialog when it has a transient parent).
type WindowType int

const (
	TypeNormal WindowType = iota
	TypeDialog
	TypeUtility
	TypeToolbar
	TypeMenu
	TypeSplash
	TypeDesktop
	TypeDock
	TypeNotification
	TypeDropdownMenu
	TypePopupMenu
	TypeTooltip
	TypeCombo
	TypeDnD
)

// IsTransientPopup reports whether t is one of the window types that
// must never be framed or managed as a top-level client.
func (t WindowType) IsTransientPopup() bool {
	switch t {
	case TypeDropdownMenu, TypePopupMenu, TypeTooltip, TypeCombo, TypeDnD:
		return true
	default:
		return false
	}
}

// ProtocolBits records which WM_PROTOCOLS atoms the client advertised.
type ProtocolBits uint8

const (
	ProtoDeleteWindow ProtocolBits = 1 << iota
	ProtoTakeFocus
	ProtoSyncRequest
	ProtoPing
)

// SizeHints is the parsed ICCCM WM_NORMAL_HINTS content the geometry
// constrainer reads.
type SizeHints struct {
	MinW, MinH         int32
	MaxW, MaxH         int32
	BaseW, BaseH       int32
	IncW, IncH         int32
	MinAspect, MaxAspect float64
	HasMin, HasMax, HasBase, HasInc, HasAspect bool
	UserPosition, ProgramPosition bool
}

// PendingStateMessage is a _NET_WM_STATE client message that arrived
// before management finished and must be replayed in finish_manage.
type PendingStateMessage struct {
	Action   int
	Atom1    xproto.Atom
	Atom2    xproto.Atom
}

const maxTransientDepth = 32

// Hot holds every field touched on the common tick/event path.
type Hot struct {
	Window      xproto.WindowID
	Frame       xproto.WindowID

	ServerGeom  primitives.Rect
	DesiredGeom primitives.Rect
	PendingGeom primitives.Rect

	WindowType   WindowType
	TypeFromEWMH bool

	StackingLayer stacking.Layer
	StackingIndex int

	Flags ClientFlags
	State WindowStateBits

	Lifecycle   LifecycleState
	ManagePhase ManagePhase

	PendingReplies   int
	LastAppliedTxnID uint64
	ManageAborted    bool

	Dirty DirtyFlags

	TransientParent primitives.Handle
	// Intrusive sibling hooks for the parent's transient-children list;
	// walked via primitives.HandleList with accessors bound in NewStore.
	transientNext, transientPrev primitives.Handle
	TransientChildrenHead        primitives.Handle

	// Intrusive focus-history hooks; walked the same way.
	focusNext, focusPrev primitives.Handle

	// Intrusive mapping-order hooks for _NET_CLIENT_LIST.
	mapOrderNext, mapOrderPrev primitives.Handle

	DamageRegion primitives.Rect

	SyncCounterID uint32
	SyncValue     uint64
	SyncEnabled   bool

	IgnoreUnmap int

	PreMaximizeGeom   primitives.Rect
	PreFullscreenGeom primitives.Rect
	PreFullscreenLayer stacking.Layer
	PreFullscreenUndecorated bool

	SizeHints      SizeHints
	SizeHintsValid bool

	GtkFrameExtents        [4]int32 // left, right, top, bottom
	MotifDecorationOverride bool
	MotifDecorated          bool

	Opacity uint32

	IconGeometry primitives.Rect

	UserTime       uint32
	UserTimeWindow xproto.WindowID

	LastCursorDirection int
	SnapState           int

	FullscreenMonitors      [4]int32
	FullscreenMonitorsValid bool

	LastSyntheticGeom primitives.Rect
	LastInteractiveFlush int64 // monotonic nanoseconds

	// Desktop is the client's EWMH desktop index; StateSticky clients
	// ignore it and are visible on every desktop.
	Desktop uint32

	// FrameMapped is the X-level mapped state of the frame, kept
	// separate from Lifecycle so a workspace-driven hide never looks
	// like the client withdrew itself.
	FrameMapped bool

	// OriginalBorderWidth is the client's own border width at adoption,
	// restored on unmanage.
	OriginalBorderWidth int32
}

// Cold holds string-heavy and rarely-read fields, backed by a
// per-client string arena released whole at unmanage.
type Cold struct {
	Arena *primitives.Arena

	Title          string
	IconName       string
	WMClassInstance string
	WMClassClass    string
	ClientMachine   string
	Command         []string

	Protocols ProtocolBits

	Strut        [4]int32  // left, right, top, bottom
	StrutPartial [12]int32
	StrutPartialActive bool
	EffectiveStrut     primitives.Rect

	ColormapWindows []xproto.WindowID
	Colormap        uint32

	CanFocus bool

	PendingStateMessages []PendingStateMessage

	// IconCandidates holds every (w, h, pixels) triple _NET_WM_ICON
	// carried, premultiplied and size-capped at parse time. Icon is
	// the one candidate the commit phase selected for the current
	// decoration size; IconValid is false until a candidate has been
	// picked (an empty icon property leaves it false forever).
	IconCandidates []IconCandidate
	Icon           IconCandidate
	IconValid      bool
}

// IconCandidate is one parsed (w, h, pixels) triple from _NET_WM_ICON.
type IconCandidate struct {
	W, H   uint32
	Pixels []uint32 // premultiplied ARGB
}

// Store is the slotmap-backed client table plus the handle-keyed
// indexes the rest of the engine needs: window->client, frame->client,
// and the mapping-order list consulted for _NET_CLIENT_LIST (kept
// explicit per the open question on EWMH list ordering rather than
// relying on slotmap iteration order).
type Store struct {
	slots *slotmap.Store[Hot, Cold]

	windowToClient map[xproto.WindowID]primitives.Handle
	frameToClient  map[xproto.WindowID]primitives.Handle

	mapOrder *primitives.HandleList

	transientLists map[primitives.Handle]*primitives.HandleList
	focusHistory   *primitives.HandleList

	// Desktop/workarea state is global, not per-client, but lives here
	// rather than split across the packages that read and write it so
	// there remains a single source of truth for it.
	currentDesktop   uint32
	numberOfDesktops uint32
	showingDesktop   bool
	workarea         primitives.Rect
}

// NewStore creates an empty client store with its handle-list
// accessors bound to this store's own Hot fields.
func NewStore() *Store {
	s := &Store{
		slots:            slotmap.New[Hot, Cold](),
		windowToClient:   make(map[xproto.WindowID]primitives.Handle),
		frameToClient:    make(map[xproto.WindowID]primitives.Handle),
		transientLists:   make(map[primitives.Handle]*primitives.HandleList),
		numberOfDesktops: 4,
	}
	s.mapOrder = primitives.NewHandleList(
		func(h primitives.Handle) primitives.Handle { hot, _ := s.slots.Hot(h); return hot.mapOrderNext },
		func(h, v primitives.Handle) { hot, _ := s.slots.Hot(h); hot.mapOrderNext = v },
		func(h primitives.Handle) primitives.Handle { hot, _ := s.slots.Hot(h); return hot.mapOrderPrev },
		func(h, v primitives.Handle) { hot, _ := s.slots.Hot(h); hot.mapOrderPrev = v },
	)
	s.focusHistory = primitives.NewHandleList(
		func(h primitives.Handle) primitives.Handle { hot, _ := s.slots.Hot(h); return hot.focusNext },
		func(h, v primitives.Handle) { hot, _ := s.slots.Hot(h); hot.focusNext = v },
		func(h primitives.Handle) primitives.Handle { hot, _ := s.slots.Hot(h); return hot.focusPrev },
		func(h, v primitives.Handle) { hot, _ := s.slots.Hot(h); hot.focusPrev = v },
	)
	return s
}

// Manage allocates a new client slot for window and registers its
// index entries. The caller is expected to fill in probe-derived
// fields as cookie replies resolve.
func (s *Store) Manage(window xproto.WindowID) primitives.Handle {
	h := s.slots.Alloc(Hot{Window: window, Lifecycle: StateNew, ManagePhase: PhaseOne}, Cold{Arena: primitives.NewArena(256)})
	s.windowToClient[window] = h
	return h
}

// RegisterFrame links frame to h once finish_manage creates it, and
// appends h to the mapping-order list (first time only).
func (s *Store) RegisterFrame(h primitives.Handle, frame xproto.WindowID) {
	hot, ok := s.slots.Hot(h)
	if !ok {
		return
	}
	hot.Frame = frame
	s.frameToClient[frame] = h
	if !s.mapOrder.Contains(h) {
		s.mapOrder.PushBack(h)
	}
}

// Unmanage tears down every index entry for h and returns its client
// record one last time so the caller can run teardown logic before
// the slot is freed.
func (s *Store) Unmanage(h primitives.Handle) (*Hot, *Cold, bool) {
	hot, cold, ok := s.slots.Lookup(h)
	if !ok {
		return nil, nil, false
	}

	delete(s.windowToClient, hot.Window)
	if hot.Frame != 0 {
		delete(s.frameToClient, hot.Frame)
	}
	if s.mapOrder.Contains(h) {
		s.mapOrder.Remove(h)
	}
	if s.focusHistory.Contains(h) {
		s.focusHistory.Remove(h)
	}
	s.UnlinkTransient(h)
	delete(s.transientLists, h)

	return hot, cold, true
}

// Free returns h's slot to the freelist. Call only after Unmanage and
// after all teardown side effects (reparent, frame destroy, property
// deletes) have run.
func (s *Store) Free(h primitives.Handle) { s.slots.Free(h) }

// Lookup resolves a handle to its hot/cold pair.
func (s *Store) Lookup(h primitives.Handle) (*Hot, *Cold, bool) { return s.slots.Lookup(h) }

// ByWindow resolves the managed client owning window, if any.
func (s *Store) ByWindow(window xproto.WindowID) (primitives.Handle, bool) {
	h, ok := s.windowToClient[window]
	return h, ok
}

// ByFrame resolves the managed client owning frame, if any.
func (s *Store) ByFrame(frame xproto.WindowID) (primitives.Handle, bool) {
	h, ok := s.frameToClient[frame]
	return h, ok
}

// Each visits every live client.
func (s *Store) Each(fn func(primitives.Handle, *Hot, *Cold) bool) { s.slots.Each(fn) }

// Len reports the number of live managed clients.
func (s *Store) Len() int { return s.slots.Len() }

// MappingOrder returns client handles in the order they were first
// framed, for _NET_CLIENT_LIST.
func (s *Store) MappingOrder() []primitives.Handle {
	out := make([]primitives.Handle, 0, s.mapOrder.Len())
	s.mapOrder.Walk(func(h primitives.Handle) bool {
		out = append(out, h)
		return true
	})
	return out
}

// FocusHistory exposes the MRU focus list for the focus manager.
func (s *Store) FocusHistory() *primitives.HandleList { return s.focusHistory }

// SetTransientParent assigns child's transient_for to parent, refusing
// the assignment (and leaving the prior value untouched) if it would
// create a cycle or exceed the maximum transient depth.
func (s *Store) SetTransientParent(child, parent primitives.Handle) bool {
	depth := 0
	for cur := parent; cur.Valid(); {
		if cur == child {
			return false // would create a cycle
		}
		depth++
		if depth > maxTransientDepth {
			return false
		}
		hot, ok := s.slots.Hot(cur)
		if !ok {
			break
		}
		cur = hot.TransientParent
	}

	s.UnlinkTransient(child)

	childHot, ok := s.slots.Hot(child)
	if !ok {
		return false
	}
	childHot.TransientParent = parent

	list := s.transientListFor(parent)
	list.PushBack(child)
	return true
}

// UnlinkTransient removes child from its parent's transient-children
// list, if linked, without affecting the parent's own record otherwise.
func (s *Store) UnlinkTransient(child primitives.Handle) {
	childHot, ok := s.slots.Hot(child)
	if !ok || !childHot.TransientParent.Valid() {
		return
	}
	if list, ok := s.transientLists[childHot.TransientParent]; ok {
		list.Remove(child)
	}
	childHot.TransientParent = primitives.NilHandle
}

// TransientChildren returns the handle list of parent's direct
// transient children (allocating an empty one on first use).
func (s *Store) TransientChildren(parent primitives.Handle) *primitives.HandleList {
	return s.transientListFor(parent)
}

func (s *Store) transientListFor(parent primitives.Handle) *primitives.HandleList {
	if list, ok := s.transientLists[parent]; ok {
		return list
	}
	list := primitives.NewHandleList(
		func(h primitives.Handle) primitives.Handle { hot, _ := s.slots.Hot(h); return hot.transientNext },
		func(h, v primitives.Handle) { hot, _ := s.slots.Hot(h); hot.transientNext = v },
		func(h primitives.Handle) primitives.Handle { hot, _ := s.slots.Hot(h); return hot.transientPrev },
		func(h, v primitives.Handle) { hot, _ := s.slots.Hot(h); hot.transientPrev = v },
	)
	s.transientLists[parent] = list
	return list
}

// CurrentDesktop returns the desktop index currently shown.
func (s *Store) CurrentDesktop() uint32 { return s.currentDesktop }

// SetCurrentDesktop switches the shown desktop and marks every live
// client's visibility dirty, since whether each one should be mapped
// depends on this value.
func (s *Store) SetCurrentDesktop(d uint32) {
	if d >= s.numberOfDesktops {
		return
	}
	s.currentDesktop = d
	s.slots.Each(func(h primitives.Handle, hot *Hot, cold *Cold) bool {
		hot.Dirty |= DirtyVisibility
		return true
	})
}

// NumberOfDesktops returns the configured desktop count.
func (s *Store) NumberOfDesktops() uint32 { return s.numberOfDesktops }

// SetNumberOfDesktops resizes the desktop count, clamping any client
// parked on a desktop that no longer exists back onto the last one.
func (s *Store) SetNumberOfDesktops(n uint32) {
	if n == 0 {
		return
	}
	s.numberOfDesktops = n
	if s.currentDesktop >= n {
		s.currentDesktop = n - 1
	}
	s.slots.Each(func(h primitives.Handle, hot *Hot, cold *Cold) bool {
		if hot.Desktop >= n {
			hot.Desktop = n - 1
			hot.Dirty |= DirtyDesktop | DirtyVisibility
		}
		return true
	})
}

// ShowingDesktop reports whether _NET_SHOWING_DESKTOP mode is active.
func (s *Store) ShowingDesktop() bool { return s.showingDesktop }

// SetShowingDesktop toggles show-desktop mode, which temporarily hides
// every non-sticky client regardless of its own desktop assignment.
func (s *Store) SetShowingDesktop(showing bool) {
	s.showingDesktop = showing
	s.slots.Each(func(h primitives.Handle, hot *Hot, cold *Cold) bool {
		hot.Dirty |= DirtyVisibility
		return true
	})
}

// Workarea returns the last workarea RandR processing computed.
func (s *Store) Workarea() primitives.Rect { return s.workarea }

// SetWorkarea records the latest computed workarea for commit-phase
// root-property publication and future placement calls.
func (s *Store) SetWorkarea(r primitives.Rect) { s.workarea = r }
