package bucketer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopamo/hxm/internal/xproto"
)

func noConfigureParse(ev xproto.Event) ConfigureRequestData { return ConfigureRequestData{} }
func noPropertyAtom(ev xproto.Event) xproto.Atom { return 0 }

func ingestAll(b *Buckets, evs []xproto.Event, maxPerTick int) int {
	accepted := 0
	for _, ev := range evs {
		if b.Ingest(ev, maxPerTick, noConfigureParse, noPropertyAtom) {
			accepted++
		}
	}
	return accepted
}

func TestMotionNotifyKeepsOnlyLatestPerWindow(t *testing.T) {
	b := New()
	events := []xproto.Event{
		{Kind: xproto.EventMotionNotify, Window: 1, Data: []byte{1}},
		{Kind: xproto.EventMotionNotify, Window: 1, Data: []byte{2}},
		{Kind: xproto.EventMotionNotify, Window: 1, Data: []byte{3}},
	}
	ingestAll(b, events, 64)

	require.Len(t, b.MotionNotify, 1)
	assert.Equal(t, []byte{3}, b.MotionNotify[1].Data)
	assert.Equal(t, 1, b.Ingested())
	assert.Equal(t, 2, b.Coalesced())
}

func TestExposeUnionsRects(t *testing.T) {
	b := New()
	mkRect := func(x, y, w, h int32) []byte {
		out := make([]byte, 16)
		put := func(off int, v int32) {
			out[off] = byte(v >> 24)
			out[off+1] = byte(v >> 16)
			out[off+2] = byte(v >> 8)
			out[off+3] = byte(v)
		}
		put(0, x)
		put(4, y)
		put(8, w)
		put(12, h)
		return out
	}

	events := []xproto.Event{
		{Kind: xproto.EventExpose, Window: 7, Data: mkRect(0, 0, 10, 10)},
		{Kind: xproto.EventExpose, Window: 7, Data: mkRect(5, 5, 10, 10)},
	}
	ingestAll(b, events, 64)

	require.Len(t, b.Expose, 1)
	rect := b.Expose[7]
	assert.Equal(t, int32(0), rect.X)
	assert.Equal(t, int32(0), rect.Y)
	assert.Equal(t, int32(15), rect.W)
	assert.Equal(t, int32(15), rect.H)
}

func TestDestroyNotifyCancelsPendingMapAndConfigure(t *testing.T) {
	b := New()
	b.Ingest(xproto.Event{Kind: xproto.EventConfigureRequest, Window: 3}, 64, noConfigureParse, noPropertyAtom)
	require.Len(t, b.ConfigureRequest, 1)

	b.Ingest(xproto.Event{Kind: xproto.EventDestroyNotify, Window: 3}, 64, noConfigureParse, noPropertyAtom)
	assert.True(t, b.Destroyed[3])
	assert.Len(t, b.ConfigureRequest, 0)

	accepted := b.Ingest(xproto.Event{Kind: xproto.EventMapRequest, Window: 3}, 64, noConfigureParse, noPropertyAtom)
	assert.True(t, accepted, "ingest itself never errors, but the event is dropped")
	assert.Empty(t, b.Lifecycle[1:], "no MapRequest should have been appended for a destroyed window")
}

func TestConfigureRequestOverlaysOnlyMaskedFields(t *testing.T) {
	b := New()
	first := func(ev xproto.Event) ConfigureRequestData {
		return ConfigureRequestData{Mask: ConfigX | ConfigY, X: 10, Y: 20}
	}
	second := func(ev xproto.Event) ConfigureRequestData {
		return ConfigureRequestData{Mask: ConfigWidth, Width: 100}
	}

	b.Ingest(xproto.Event{Kind: xproto.EventConfigureRequest, Window: 9}, 64, first, noPropertyAtom)
	b.Ingest(xproto.Event{Kind: xproto.EventConfigureRequest, Window: 9}, 64, second, noPropertyAtom)

	got := b.ConfigureRequest[9]
	require.NotNil(t, got)
	assert.Equal(t, int32(10), got.X, "earlier X must survive a mask that doesn't select it")
	assert.Equal(t, int32(20), got.Y)
	assert.Equal(t, int32(100), got.Width)
	assert.Equal(t, 1, b.Ingested())
	assert.Equal(t, 1, b.Coalesced())
}

func TestPropertyNotifyKeyedByWindowAndAtom(t *testing.T) {
	b := New()
	atomOf := func(ev xproto.Event) xproto.Atom { return xproto.Atom(ev.Data[0]) }

	events := []xproto.Event{
		{Kind: xproto.EventPropertyNotify, Window: 1, Data: []byte{5}},
		{Kind: xproto.EventPropertyNotify, Window: 1, Data: []byte{5}},
		{Kind: xproto.EventPropertyNotify, Window: 1, Data: []byte{6}},
	}
	for _, ev := range events {
		b.Ingest(ev, 64, noConfigureParse, atomOf)
	}

	assert.Len(t, b.PropertyNotify, 2, "distinct atoms on the same window must not coalesce together")
}

func TestIngestRespectsMaxEventsPerTickForUncoalescedKinds(t *testing.T) {
	b := New()
	events := []xproto.Event{
		{Kind: xproto.EventKeyPress},
		{Kind: xproto.EventKeyPress},
		{Kind: xproto.EventKeyPress},
	}
	accepted := ingestAll(b, events, 2)

	assert.Equal(t, 2, accepted)
	assert.Len(t, b.Input, 2)
}

func TestIngestedPlusCoalescedEqualsTotalForCoalescingKind(t *testing.T) {
	b := New()
	const n = 25
	events := make([]xproto.Event, n)
	for i := range events {
		events[i] = xproto.Event{Kind: xproto.EventMotionNotify, Window: 4}
	}
	ingestAll(b, events, 1000)

	assert.Equal(t, n, b.Ingested()+b.Coalesced())
	assert.Len(t, b.MotionNotify, 1, "at most one entry per key after coalescing")
}

func TestResetClearsAllBuckets(t *testing.T) {
	b := New()
	b.Ingest(xproto.Event{Kind: xproto.EventMotionNotify, Window: 1}, 64, noConfigureParse, noPropertyAtom)
	b.Ingest(xproto.Event{Kind: xproto.EventDestroyNotify, Window: 2}, 64, noConfigureParse, noPropertyAtom)

	b.Reset()

	assert.Equal(t, 0, b.Ingested())
	assert.Equal(t, 0, b.Coalesced())
	assert.Empty(t, b.MotionNotify)
	assert.Empty(t, b.Destroyed)
	assert.Empty(t, b.Lifecycle)
}
