// Package bucketer implements the per-tick event coalescing buffers:
// each event kind lands in a bucket shaped for its coalescing rule, so
// a storm of (say) MotionNotify events collapses to the one the
// handlers actually need to see.
package bucketer

import (
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

// ConfigValueMask selects which fields of a ConfigureRequest are present.
type ConfigValueMask uint16

const (
	ConfigX ConfigValueMask = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
	ConfigBorderWidth
	ConfigSibling
	ConfigStackMode
)

// ConfigureRequestData is the per-field overlay state for a coalesced
// ConfigureRequest: later requests overlay only the fields their mask
// selects, leaving earlier fields from older requests on the same
// window untouched.
type ConfigureRequestData struct {
	Mask        ConfigValueMask
	X, Y        int32
	Width, Height int32
	BorderWidth int32
	Sibling     xproto.WindowID
	StackMode   uint8
}

func (d *ConfigureRequestData) overlay(n ConfigureRequestData) {
	if n.Mask&ConfigX != 0 {
		d.X = n.X
	}
	if n.Mask&ConfigY != 0 {
		d.Y = n.Y
	}
	if n.Mask&ConfigWidth != 0 {
		d.Width = n.Width
	}
	if n.Mask&ConfigHeight != 0 {
		d.Height = n.Height
	}
	if n.Mask&ConfigBorderWidth != 0 {
		d.BorderWidth = n.BorderWidth
	}
	if n.Mask&ConfigSibling != 0 {
		d.Sibling = n.Sibling
	}
	if n.Mask&ConfigStackMode != 0 {
		d.StackMode = n.StackMode
	}
	d.Mask |= n.Mask
}

// propKey coalesces PropertyNotify by (window, atom).
type propKey struct {
	Window xproto.WindowID
	Atom   xproto.Atom
}

// Buckets holds one tick's worth of coalesced and ordered events.
// Reset at the start of every tick; nothing here outlives the tick it
// was filled in.
type Buckets struct {
	// Ordered, replay-needed sequences: no coalescing.
	Lifecycle     []xproto.Event // MapRequest, UnmapNotify, DestroyNotify
	Input         []xproto.Event // KeyPress, ButtonPress/Release, ClientMessage

	// Coalesced maps.
	Expose           map[xproto.WindowID]primitives.Rect
	ConfigureRequest map[xproto.WindowID]*ConfigureRequestData
	ConfigureNotify  map[xproto.WindowID]xproto.Event
	PropertyNotify   map[propKey]xproto.Event
	MotionNotify     map[xproto.WindowID]xproto.Event
	Damage           map[xproto.WindowID]primitives.Rect

	// Single-latest scalars.
	EnterNotify   *xproto.Event
	LeaveNotify   *xproto.Event
	RandRChange   *xproto.Event

	// Destroyed-window set: a sibling DestroyNotify in this tick's pool
	// cancels pending map/configure on that window and short-circuits
	// later handlers that touch it.
	Destroyed map[xproto.WindowID]bool

	ingested  int
	coalesced int
}

// New creates an empty, ready-to-ingest bucket set.
func New() *Buckets {
	return newBuckets()
}

func newBuckets() *Buckets {
	return &Buckets{
		Expose:           make(map[xproto.WindowID]primitives.Rect),
		ConfigureRequest: make(map[xproto.WindowID]*ConfigureRequestData),
		ConfigureNotify:  make(map[xproto.WindowID]xproto.Event),
		PropertyNotify:   make(map[propKey]xproto.Event),
		MotionNotify:     make(map[xproto.WindowID]xproto.Event),
		Damage:           make(map[xproto.WindowID]primitives.Rect),
		Destroyed:        make(map[xproto.WindowID]bool),
	}
}

// Reset clears every bucket for reuse on the next tick.
func (b *Buckets) Reset() {
	*b = *newBuckets()
}

// Ingested reports how many uncoalesced events were accepted this tick.
func (b *Buckets) Ingested() int { return b.ingested }

// Coalesced reports how many events were merged into an existing bucket entry.
func (b *Buckets) Coalesced() int { return b.coalesced }

// Ingest sorts one event into its bucket, applying the coalescing rule
// for its kind. Returns false once MAX_EVENTS_PER_TICK uncoalesced
// events have already been accepted this tick (coalescing entries
// don't count against the cap, matching "Ingest processes at most
// MAX_EVENTS_PER_TICK uncoalesced events").
func (b *Buckets) Ingest(ev xproto.Event, maxEventsPerTick int, parseConfigureRequest func(xproto.Event) ConfigureRequestData, propertyAtom func(xproto.Event) xproto.Atom) bool {
	switch ev.Kind {
	case xproto.EventDestroyNotify:
		b.Destroyed[ev.Window] = true
		delete(b.ConfigureRequest, ev.Window)
		delete(b.ConfigureNotify, ev.Window)
		b.Lifecycle = append(b.Lifecycle, ev)
		b.ingested++
		return true

	case xproto.EventMapRequest, xproto.EventUnmapNotify:
		if b.Destroyed[ev.Window] {
			return true
		}
		if b.ingested >= maxEventsPerTick {
			return false
		}
		b.Lifecycle = append(b.Lifecycle, ev)
		b.ingested++
		return true

	case xproto.EventKeyPress, xproto.EventButtonPress, xproto.EventButtonRelease, xproto.EventClientMessage:
		if b.ingested >= maxEventsPerTick {
			return false
		}
		b.Input = append(b.Input, ev)
		b.ingested++
		return true

	case xproto.EventExpose:
		rect := decodeRect(ev)
		if existing, ok := b.Expose[ev.Window]; ok {
			b.Expose[ev.Window] = existing.Union(rect)
			b.coalesced++
		} else {
			b.Expose[ev.Window] = rect
			b.ingested++
		}
		return true

	case xproto.EventDamageNotify:
		rect := decodeRect(ev)
		if existing, ok := b.Damage[ev.Window]; ok {
			b.Damage[ev.Window] = existing.Union(rect)
			b.coalesced++
		} else {
			b.Damage[ev.Window] = rect
			b.ingested++
		}
		return true

	case xproto.EventConfigureRequest:
		if b.Destroyed[ev.Window] {
			return true
		}
		decoded := parseConfigureRequest(ev)
		if existing, ok := b.ConfigureRequest[ev.Window]; ok {
			existing.overlay(decoded)
			b.coalesced++
		} else {
			cp := decoded
			b.ConfigureRequest[ev.Window] = &cp
			b.ingested++
		}
		return true

	case xproto.EventConfigureNotify:
		if _, ok := b.ConfigureNotify[ev.Window]; ok {
			b.coalesced++
		} else {
			b.ingested++
		}
		b.ConfigureNotify[ev.Window] = ev
		return true

	case xproto.EventPropertyNotify:
		key := propKey{Window: ev.Window, Atom: propertyAtom(ev)}
		if _, ok := b.PropertyNotify[key]; ok {
			b.coalesced++
		} else {
			b.ingested++
		}
		b.PropertyNotify[key] = ev
		return true

	case xproto.EventMotionNotify:
		if _, ok := b.MotionNotify[ev.Window]; ok {
			b.coalesced++
		} else {
			b.ingested++
		}
		b.MotionNotify[ev.Window] = ev
		return true

	case xproto.EventEnterNotify:
		if b.EnterNotify != nil {
			b.coalesced++
		} else {
			b.ingested++
		}
		evCopy := ev
		b.EnterNotify = &evCopy
		return true

	case xproto.EventLeaveNotify:
		if b.LeaveNotify != nil {
			b.coalesced++
		} else {
			b.ingested++
		}
		evCopy := ev
		b.LeaveNotify = &evCopy
		return true

	case xproto.EventRandRScreenChange:
		if b.RandRChange != nil {
			b.coalesced++
		} else {
			b.ingested++
		}
		evCopy := ev
		b.RandRChange = &evCopy
		return true
	}

	return true
}

// decodeRect pulls a dirty rectangle out of an event's opaque payload.
// Real wire decoding lives with the transport; this is the seam tests
// drive directly by constructing xproto.Event{Data: ...}.
func decodeRect(ev xproto.Event) primitives.Rect {
	if len(ev.Data) < 16 {
		return primitives.Rect{}
	}
	return primitives.Rect{
		X: int32(be32(ev.Data[0:4])),
		Y: int32(be32(ev.Data[4:8])),
		W: int32(be32(ev.Data[8:12])),
		H: int32(be32(ev.Data[12:16])),
	}
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
