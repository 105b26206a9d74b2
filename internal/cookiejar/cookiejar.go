// Package cookiejar implements the open-addressed async-reply table:
// every in-flight X11 request is tracked by its protocol sequence
// number until the matching reply (or a timeout) arrives, at which
// point a typed handler is invoked exactly once.
package cookiejar

import (
	"time"

	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

// Sentinel is the owning-client handle used for pre-management probes
// (adoption checks, MapRequest gating, async frame-extents queries)
// that aren't yet attached to any client slot.
const Sentinel = primitives.NilHandle

// Kind tags what a cookie is for, so the drainer can dispatch on a
// closed variant set instead of a function-pointer payload.
type Kind int

const (
	KindAttributes Kind = iota
	KindGeometry
	KindWMClass
	KindClientMachine
	KindCommand
	KindHints
	KindNormalHints
	KindTransientFor
	KindColormapWindows
	KindProtocols
	KindName
	KindIconName
	KindNetWMName
	KindNetWMIconName
	KindNetWMIcon
	KindNetWMState
	KindNetWMWindowType
	KindNetWMStrut
	KindNetWMStrutPartial
	KindNetWMUserTime
	KindSyncRequestCounter
	KindMotifHints
	KindGtkFrameExtents
	KindFrameExtentsProbe
	KindAdoptionProbe

	// KindGrabPointer tracks an interactive move/resize's pending
	// GrabPointer reply: the drag only actually starts once this
	// resolves with a granted status.
	KindGrabPointer
)

// Handler is invoked once per cookie, with reply == nil signaling
// timeout/abandonment. err carries a protocol error reply when
// present. data is the opaque 64-bit value the cookie was issued
// with; txnID is the transaction id in force at issue time, which the
// reply dispatcher compares against last_applied_txn_id to discard
// stale replies.
type Handler func(owner primitives.Handle, kind Kind, data uint64, txnID uint64, reply *xproto.Reply, err error)

type entry struct {
	occupied bool
	seq      xproto.Seq
	kind     Kind
	owner    primitives.Handle
	data     uint64
	issuedAt time.Time
	txnID    uint64
	handler  Handler
}

// Jar is the open-addressed, power-of-two-capacity cookie table.
type Jar struct {
	slots       []entry
	mask        uint32
	live        int
	scanCursor  uint32
	abandonAfter time.Duration
	clock       primitives.Clock
}

const loadFactorThreshold = 0.7

// New creates a jar with the given initial power-of-two capacity and
// abandonment timeout (typically around 5 seconds for interactive probes).
func New(initialCapacity int, abandonAfter time.Duration, clock primitives.Clock) *Jar {
	cap := nextPow2(initialCapacity)
	if cap < 8 {
		cap = 8
	}
	return &Jar{
		slots:        make([]entry, cap),
		mask:         uint32(cap - 1),
		abandonAfter: abandonAfter,
		clock:        clock,
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (j *Jar) home(seq xproto.Seq) uint32 {
	return uint32(seq) & j.mask
}

// Len reports the number of live in-flight cookies.
func (j *Jar) Len() int { return j.live }

// Cap reports the current backing capacity.
func (j *Jar) Cap() int { return len(j.slots) }

// LoadFactor reports live/capacity, the figure Insert keeps below
// loadFactorThreshold by growing.
func (j *Jar) LoadFactor() float64 {
	if len(j.slots) == 0 {
		return 0
	}
	return float64(j.live) / float64(len(j.slots))
}

// OldestAge reports how long the longest-in-flight live cookie has
// been waiting, for diagnostics; zero when the jar is empty.
func (j *Jar) OldestAge() time.Duration {
	now := j.clock.Now()
	var oldest time.Duration
	for i := range j.slots {
		if !j.slots[i].occupied {
			continue
		}
		if age := now.Sub(j.slots[i].issuedAt); age > oldest {
			oldest = age
		}
	}
	return oldest
}

// Insert records a new in-flight request. Overwriting an existing
// sequence is permitted and simply updates its metadata in place.
func (j *Jar) Insert(seq xproto.Seq, kind Kind, owner primitives.Handle, data uint64, txnID uint64, h Handler) {
	if float64(j.live+1) >= loadFactorThreshold*float64(len(j.slots)) {
		j.grow()
	}

	i := j.home(seq)
	for {
		s := &j.slots[i]
		if !s.occupied {
			*s = entry{
				occupied: true,
				seq:      seq,
				kind:     kind,
				owner:    owner,
				data:     data,
				issuedAt: j.clock.Now(),
				txnID:    txnID,
				handler:  h,
			}
			j.live++
			return
		}
		if s.seq == seq {
			*s = entry{
				occupied: true,
				seq:      seq,
				kind:     kind,
				owner:    owner,
				data:     data,
				issuedAt: j.clock.Now(),
				txnID:    txnID,
				handler:  h,
			}
			return
		}
		i = (i + 1) & j.mask
	}
}

// find locates the slot index holding seq, or -1 if absent.
func (j *Jar) find(seq xproto.Seq) int {
	i := j.home(seq)
	for n := 0; n <= int(j.mask); n++ {
		s := &j.slots[i]
		if !s.occupied {
			return -1
		}
		if s.seq == seq {
			return int(i)
		}
		i = (i + 1) & j.mask
	}
	return -1
}

// Remove deletes the cookie for seq, if present, using backshift
// deletion so probe chains stay contiguous (no tombstones).
func (j *Jar) Remove(seq xproto.Seq) bool {
	i := j.find(seq)
	if i < 0 {
		return false
	}
	j.removeAt(uint32(i))
	return true
}

func (j *Jar) removeAt(i uint32) {
	j.slots[i] = entry{}
	j.live--

	// Backshift: walk forward from the hole, moving any entry whose
	// home slot lies at-or-before the hole back into it.
	hole := i
	next := (i + 1) & j.mask
	for j.slots[next].occupied {
		homeOfNext := j.home(j.slots[next].seq)
		if j.inRange(homeOfNext, hole, next) {
			next = (next + 1) & j.mask
			continue
		}
		j.slots[hole] = j.slots[next]
		j.slots[next] = entry{}
		hole = next
		next = (next + 1) & j.mask
	}
}

// inRange reports whether target lies in the circular range (start, end]
// used to decide whether an entry can legally backshift into a hole.
func (j *Jar) inRange(target, start, end uint32) bool {
	if start <= end {
		return target > start && target <= end
	}
	return target > start || target <= end
}

func (j *Jar) grow() {
	old := j.slots
	j.slots = make([]entry, len(old)*2)
	j.mask = uint32(len(j.slots) - 1)
	j.live = 0
	for _, s := range old {
		if s.occupied {
			j.Insert(s.seq, s.kind, s.owner, s.data, s.txnID, s.handler)
			// re-stamp the original issue time so age tracking survives growth
			i := j.find(s.seq)
			j.slots[i].issuedAt = s.issuedAt
		}
	}
	j.scanCursor = 0
}

// DrainResult summarizes one Drain call, for diagnostics.
type DrainResult struct {
	Resolved  int
	Abandoned int
	Visited   int
}

// Drain performs bounded, non-blocking work: starting at scanCursor,
// it visits up to capacity slots and processes at most maxReplies of
// them, polling transport for each live slot's reply. A slot is
// removed before its handler runs, so handlers may safely re-enter
// Insert/Remove. scanCursor is updated after the loop for fair
// round-robin rotation across calls.
func (j *Jar) Drain(transport xproto.Transport, maxReplies int) DrainResult {
	var result DrainResult
	if len(j.slots) == 0 {
		return result
	}

	cap := uint32(len(j.slots))
	i := j.scanCursor
	processed := 0

	for visited := uint32(0); visited < cap && processed < maxReplies; visited++ {
		idx := i
		i = (i + 1) & j.mask
		result.Visited++

		s := &j.slots[idx]
		if !s.occupied {
			continue
		}

		seq, kind, owner, data, txnID, handler, issuedAt := s.seq, s.kind, s.owner, s.data, s.txnID, s.handler, s.issuedAt

		if reply, ok := transport.ReadReplyBySequence(seq); ok {
			j.removeAt(idx)
			processed++
			result.Resolved++
			if handler != nil {
				handler(owner, kind, data, txnID, &reply, reply.Err)
			}
			continue
		}

		if j.clock.Now().Sub(issuedAt) > j.abandonAfter {
			j.removeAt(idx)
			processed++
			result.Abandoned++
			if handler != nil {
				handler(owner, kind, data, txnID, nil, nil)
			}
		}
	}

	j.scanCursor = i
	return result
}
