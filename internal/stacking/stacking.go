// Package stacking implements the layered stacking manager: one
// order-preserving vector of handles per layer, plus the raise/lower/
// move-to-layer/place-above/place-below primitives the event handlers
// call and the commit phase resolves against the X server.
package stacking

import (
	"github.com/jopamo/hxm/internal/primitives"
)

const maxTransientRecursion = 256

// PositionSetter is implemented by whatever owns the client record, so
// the manager can keep stacking_layer/stacking_index back-pointers in
// sync with vector position without stacking importing clientstore.
type PositionSetter interface {
	SetStackingPosition(h primitives.Handle, layer Layer, index int)
	MarkStackDirty(h primitives.Handle)
	TransientChildren(h primitives.Handle) []primitives.Handle
}

// Manager owns one ordered vector per layer.
type Manager struct {
	layers [int(layerCount)]primitives.HandleVector
	owner  PositionSetter
}

// NewManager creates an empty stacking manager bound to owner for
// position-back-pointer and dirty-flag bookkeeping.
func NewManager(owner PositionSetter) *Manager {
	return &Manager{owner: owner}
}

func (m *Manager) vec(l Layer) *primitives.HandleVector { return &m.layers[int(l)] }

// Insert places h at the top of layer l (bottom on first insert of an
// empty layer is equivalent — Append means "on top").
func (m *Manager) Insert(h primitives.Handle, l Layer) {
	idx := m.vec(l).Append(h)
	m.syncPosition(h, l, idx)
}

// Remove takes h out of layer l; other layers are not searched.
func (m *Manager) Remove(h primitives.Handle, l Layer) {
	m.vec(l).Remove(h)
	m.resyncLayer(l)
}

// Raise moves h to the top of its layer and recursively raises its
// transient children so they stay above it, depth-first with a
// recursion guard.
func (m *Manager) Raise(h primitives.Handle, l Layer) {
	m.raise(h, l, 0)
}

func (m *Manager) raise(h primitives.Handle, l Layer, depth int) {
	if depth > maxTransientRecursion {
		return
	}
	m.vec(l).MoveToEnd(h)
	m.resyncLayer(l)
	m.owner.MarkStackDirty(h)
	for _, child := range m.owner.TransientChildren(h) {
		m.raise(child, l, depth+1)
	}
}

// Lower moves h to the bottom of its layer; children are lowered
// first so they land above the parent once it reaches the bottom.
func (m *Manager) Lower(h primitives.Handle, l Layer) {
	m.lower(h, l, 0)
}

func (m *Manager) lower(h primitives.Handle, l Layer, depth int) {
	if depth > maxTransientRecursion {
		return
	}
	for _, child := range m.owner.TransientChildren(h) {
		m.lower(child, l, depth+1)
	}
	m.vec(l).MoveToStart(h)
	m.resyncLayer(l)
	m.owner.MarkStackDirty(h)
}

// MoveToLayer removes h from its old layer and appends it to the top
// of the new one.
func (m *Manager) MoveToLayer(h primitives.Handle, from, to Layer) {
	m.vec(from).Remove(h)
	m.resyncLayer(from)
	idx := m.vec(to).Append(h)
	m.syncPosition(h, to, idx)
	m.owner.MarkStackDirty(h)
}

// PlaceAbove repositions h immediately after sibling within l.
func (m *Manager) PlaceAbove(h, sibling primitives.Handle, l Layer) {
	v := m.vec(l)
	v.Remove(h)
	i := v.IndexOf(sibling)
	if i < 0 {
		v.Append(h)
	} else {
		v.InsertAt(i+1, h)
	}
	m.resyncLayer(l)
	m.owner.MarkStackDirty(h)
}

// PlaceBelow repositions h immediately before sibling within l.
func (m *Manager) PlaceBelow(h, sibling primitives.Handle, l Layer) {
	v := m.vec(l)
	v.Remove(h)
	i := v.IndexOf(sibling)
	if i < 0 {
		v.InsertAt(0, h)
	} else {
		v.InsertAt(i, h)
	}
	m.resyncLayer(l)
	m.owner.MarkStackDirty(h)
}

// Layer returns the ordered handle slice for l, bottom to top.
func (m *Manager) Layer(l Layer) []primitives.Handle { return m.vec(l).Slice() }

func (m *Manager) syncPosition(h primitives.Handle, l Layer, idx int) {
	m.owner.SetStackingPosition(h, l, idx)
}

func (m *Manager) resyncLayer(l Layer) {
	s := m.vec(l).Slice()
	for i, h := range s {
		m.syncPosition(h, l, i)
	}
}

// WindowBelow resolves the "anchor below" target for h within its
// layer for stack_sync_to_xcb: preferring the same layer, else
// descending into lower layers. Returns NilHandle if nothing is below
// h anywhere in the stack.
func (m *Manager) WindowBelow(h primitives.Handle, l Layer) primitives.Handle {
	v := m.vec(l)
	i := v.IndexOf(h)
	if i > 0 {
		return v.At(i - 1)
	}
	for below := int(l) - 1; below >= 0; below-- {
		lv := m.vec(Layer(below))
		if lv.Len() > 0 {
			return lv.At(lv.Len() - 1)
		}
	}
	return primitives.NilHandle
}

// WindowAbove resolves the fallback "anchor above" target used when
// WindowBelow finds nothing: the window immediately above h, searching
// upward through higher layers if h is topmost in its own.
func (m *Manager) WindowAbove(h primitives.Handle, l Layer) primitives.Handle {
	v := m.vec(l)
	i := v.IndexOf(h)
	if i >= 0 && i < v.Len()-1 {
		return v.At(i + 1)
	}
	for above := int(l) + 1; above < int(layerCount); above++ {
		lv := m.vec(Layer(above))
		if lv.Len() > 0 {
			return lv.At(0)
		}
	}
	return primitives.NilHandle
}

// BottomUp returns every stacked handle across all layers, bottom to
// top, for _NET_CLIENT_LIST_STACKING.
func (m *Manager) BottomUp() []primitives.Handle {
	var out []primitives.Handle
	for _, l := range Layers {
		out = append(out, m.vec(l).Slice()...)
	}
	return out
}
