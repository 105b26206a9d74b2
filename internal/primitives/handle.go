package primitives

import "fmt"

// Handle is a 64-bit generational client identifier: a slot index in
// the low 32 bits and a generation counter in the high 32 bits. A
// handle never dangles — a lookup against a recycled slot whose
// generation has moved on simply misses.
type Handle uint64

// NilHandle never refers to a live slot; zero generation is never
// issued by the slotmap (allocation always bumps it to ≥1 first).
const NilHandle Handle = 0

// NewHandle packs a slot index and generation into a Handle.
func NewHandle(slot uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(slot))
}

// Slot returns the slot index encoded in the handle.
func (h Handle) Slot() uint32 { return uint32(h) }

// Generation returns the generation encoded in the handle.
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

// Valid reports whether h could plausibly refer to a live slot (h is
// not NilHandle). It does not consult the slotmap — use slotmap.Lookup
// for a true liveness check.
func (h Handle) Valid() bool { return h != NilHandle }

// String renders the handle as "slot:generation" for log fields.
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Slot(), h.Generation())
}
