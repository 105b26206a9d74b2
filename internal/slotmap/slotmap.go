// Package slotmap implements a generational handle store with a
// hot/cold payload split per slot, grounded on the access-pattern
// split a client record itself needs: fields touched every tick live
// in Hot, string-heavy and rarely-read fields live in Cold, and both
// travel together under one generational handle.
package slotmap

import "github.com/jopamo/hxm/internal/primitives"

type slot[Hot, Cold any] struct {
	generation uint32
	live       bool
	hot        Hot
	cold       Cold
}

// Store is a generational handle store over (Hot, Cold) payload pairs.
// Capacity grows geometrically and indices never shrink — a freed slot
// is returned to a freelist and reused on the next Alloc, with its
// generation bumped so stale handles reliably miss.
type Store[Hot, Cold any] struct {
	slots    []slot[Hot, Cold]
	freelist []uint32
	liveN    int
}

// New creates an empty store.
func New[Hot, Cold any]() *Store[Hot, Cold] {
	return &Store[Hot, Cold]{}
}

// Alloc reserves a slot, seeding it with the given hot/cold payloads,
// and returns its handle. Picks a free slot (bumping its generation)
// if one exists; otherwise grows the backing slice by one.
func (s *Store[Hot, Cold]) Alloc(hot Hot, cold Cold) primitives.Handle {
	var idx uint32
	if n := len(s.freelist); n > 0 {
		idx = s.freelist[n-1]
		s.freelist = s.freelist[:n-1]
		s.slots[idx].generation++
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot[Hot, Cold]{generation: 1})
	}
	sl := &s.slots[idx]
	sl.live = true
	sl.hot = hot
	sl.cold = cold
	s.liveN++
	return primitives.NewHandle(idx, sl.generation)
}

// Free releases the slot referenced by h, invalidating every handle
// that pointed at it (their generation no longer matches). A stale or
// already-freed handle is a silent no-op.
func (s *Store[Hot, Cold]) Free(h primitives.Handle) {
	idx := h.Slot()
	if int(idx) >= len(s.slots) {
		return
	}
	sl := &s.slots[idx]
	if !sl.live || sl.generation != h.Generation() {
		return
	}
	var zeroHot Hot
	var zeroCold Cold
	sl.live = false
	sl.hot = zeroHot
	sl.cold = zeroCold
	s.freelist = append(s.freelist, idx)
	s.liveN--
}

// Lookup resolves h to its live (hot, cold) pair. ok is false if the
// handle is stale (generation mismatch) or the slot was never live.
func (s *Store[Hot, Cold]) Lookup(h primitives.Handle) (hot *Hot, cold *Cold, ok bool) {
	idx := h.Slot()
	if int(idx) >= len(s.slots) {
		return nil, nil, false
	}
	sl := &s.slots[idx]
	if !sl.live || sl.generation != h.Generation() {
		return nil, nil, false
	}
	return &sl.hot, &sl.cold, true
}

// Hot resolves h to just its hot half, the common hot-path access.
func (s *Store[Hot, Cold]) Hot(h primitives.Handle) (*Hot, bool) {
	hot, _, ok := s.Lookup(h)
	return hot, ok
}

// Len reports the number of currently live slots.
func (s *Store[Hot, Cold]) Len() int { return s.liveN }

// Each visits every live slot's handle, hot, and cold payload.
// Mutating the store (Alloc/Free) from within fn is not supported.
func (s *Store[Hot, Cold]) Each(fn func(primitives.Handle, *Hot, *Cold) bool) {
	for i := range s.slots {
		sl := &s.slots[i]
		if !sl.live {
			continue
		}
		h := primitives.NewHandle(uint32(i), sl.generation)
		if !fn(h, &sl.hot, &sl.cold) {
			return
		}
	}
}
