package primitives

// HandleVector is an order-preserving vector of handles, used by the
// stacking manager where position encodes X stacking order and must
// not be permuted by unrelated removals — unlike a swap-remove vector,
// Remove here shifts the tail down by one (memmove), preserving the
// relative order of everything else.
type HandleVector struct {
	items []Handle
}

// Len returns the number of elements.
func (v *HandleVector) Len() int { return len(v.items) }

// At returns the element at index i.
func (v *HandleVector) At(i int) Handle { return v.items[i] }

// IndexOf returns the index of h, or -1 if absent.
func (v *HandleVector) IndexOf(h Handle) int {
	for i, e := range v.items {
		if e == h {
			return i
		}
	}
	return -1
}

// Append adds h to the end and returns its index.
func (v *HandleVector) Append(h Handle) int {
	v.items = append(v.items, h)
	return len(v.items) - 1
}

// InsertAt inserts h at index i, shifting everything at or after i up by one.
func (v *HandleVector) InsertAt(i int, h Handle) {
	v.items = append(v.items, NilHandle)
	copy(v.items[i+1:], v.items[i:])
	v.items[i] = h
}

// RemoveAt removes the element at index i, shifting the tail down.
func (v *HandleVector) RemoveAt(i int) {
	copy(v.items[i:], v.items[i+1:])
	v.items = v.items[:len(v.items)-1]
}

// Remove removes the first occurrence of h, reporting whether it was found.
func (v *HandleVector) Remove(h Handle) bool {
	i := v.IndexOf(h)
	if i < 0 {
		return false
	}
	v.RemoveAt(i)
	return true
}

// MoveToEnd removes h from its current position (if present) and
// appends it, the primitive raise() is built on.
func (v *HandleVector) MoveToEnd(h Handle) {
	v.Remove(h)
	v.Append(h)
}

// MoveToStart removes h from its current position (if present) and
// inserts it at index 0, the primitive lower() is built on.
func (v *HandleVector) MoveToStart(h Handle) {
	v.Remove(h)
	v.InsertAt(0, h)
}

// Slice exposes the underlying backing slice for read-only iteration.
func (v *HandleVector) Slice() []Handle { return v.items }
