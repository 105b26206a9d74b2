package wm

import (
	"sync"

	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/primitives"
)

// grab tracks one in-progress interactive move or resize.
type grab struct {
	resize    bool
	edge      int
	anchorX   int32
	anchorY   int32
	startGeom primitives.Rect
}

// pointerDrag implements handlers.PointerController over the live
// client store: Update mutates the owning client's DesiredGeom
// directly from the anchor delta, the same thing a real pointer-motion
// handler would compute from raw coordinates.
//
// Begin only stages a grab in pending; it moves to active once
// ConfirmBegin reports the GrabPointer request it rode in on was
// granted. A grab failure or timeout leaves the pending entry to be
// dropped by Cancel, and Update/Active never see it.
type pointerDrag struct {
	mu      sync.Mutex
	store   *clientstore.Store
	active  map[primitives.Handle]*grab
	pending map[primitives.Handle]*grab
	buttons uint16
}

func newPointerDrag(store *clientstore.Store) *pointerDrag {
	return &pointerDrag{
		store:   store,
		active:  make(map[primitives.Handle]*grab),
		pending: make(map[primitives.Handle]*grab),
	}
}

func (p *pointerDrag) Active(h primitives.Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[h]
	return ok
}

func (p *pointerDrag) Begin(h primitives.Handle, resize bool, edge int, x, y int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	hot, _, ok := p.store.Lookup(h)
	if !ok {
		return
	}
	p.pending[h] = &grab{resize: resize, edge: edge, anchorX: x, anchorY: y, startGeom: hot.DesiredGeom}
}

func (p *pointerDrag) ConfirmBegin(h primitives.Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.pending[h]
	if !ok {
		return false
	}
	delete(p.pending, h)
	p.active[h] = g
	return true
}

func (p *pointerDrag) Update(h primitives.Handle, x, y int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.active[h]
	if !ok {
		return
	}
	hot, _, ok := p.store.Lookup(h)
	if !ok {
		return
	}
	dx, dy := x-g.anchorX, y-g.anchorY
	geom := g.startGeom
	if g.resize {
		geom.W = clampPositive(geom.W + dx)
		geom.H = clampPositive(geom.H + dy)
	} else {
		geom.X += dx
		geom.Y += dy
	}
	hot.DesiredGeom = geom
	hot.Dirty |= clientstore.DirtyGeom
}

func clampPositive(v int32) int32 {
	if v < 1 {
		return 1
	}
	return v
}

// ResolveGrab implements replydispatcher.GrabResultSink: a granted
// GrabPointer reply promotes h's staged Begin to active, a refused or
// timed-out one drops it, so a failed grab never gets Update/commit.
func (p *pointerDrag) ResolveGrab(h primitives.Handle, granted bool) {
	if granted {
		p.ConfirmBegin(h)
		return
	}
	p.Cancel(h)
}

func (p *pointerDrag) Cancel(h primitives.Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, h)
	delete(p.pending, h)
}

func (p *pointerDrag) ButtonMask() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buttons
}

// SetButtonMask is called from the button-event handler path to keep
// the controller's view of pressed buttons current.
func (p *pointerDrag) SetButtonMask(mask uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buttons = mask
}
