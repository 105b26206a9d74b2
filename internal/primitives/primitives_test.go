package primitives

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	got := a.Union(b)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 15, H: 15}, got)
}

func TestRectUnionAbsorbsEmpty(t *testing.T) {
	a := Rect{X: 1, Y: 1, W: 4, H: 4}
	assert.Equal(t, a, a.Union(Rect{}))
	assert.Equal(t, a, Rect{}.Union(a))
}

func TestRectClamp(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, W: 100, H: 100}
	r := Rect{X: 90, Y: 90, W: 50, H: 50}
	got := r.Clamp(bounds)
	assert.Equal(t, Rect{X: 90, Y: 90, W: 10, H: 10}, got)
}

func TestHandleValidity(t *testing.T) {
	assert.False(t, NilHandle.Valid())
	h := NewHandle(3, 2)
	assert.True(t, h.Valid())
	assert.Equal(t, uint32(3), h.Slot())
	assert.Equal(t, uint32(2), h.Generation())
}

func TestHandleVectorOrderPreserving(t *testing.T) {
	v := &HandleVector{}
	v.Append(NewHandle(1, 1))
	v.Append(NewHandle(2, 1))
	v.Append(NewHandle(3, 1))

	v.RemoveAt(1) // remove handle 2

	require.Equal(t, 2, v.Len())
	assert.Equal(t, NewHandle(1, 1), v.At(0))
	assert.Equal(t, NewHandle(3, 1), v.At(1))
}

func TestHandleVectorMoveToEnd(t *testing.T) {
	v := &HandleVector{}
	h1, h2, h3 := NewHandle(1, 1), NewHandle(2, 1), NewHandle(3, 1)
	v.Append(h1)
	v.Append(h2)
	v.Append(h3)

	v.MoveToEnd(h1)

	assert.Equal(t, []Handle{h2, h3, h1}, v.Slice())
}

func TestHandleListMRU(t *testing.T) {
	nextOf := map[Handle]Handle{}
	prevOf := map[Handle]Handle{}
	l := NewHandleList(
		func(h Handle) Handle { return nextOf[h] },
		func(h, n Handle) { nextOf[h] = n },
		func(h Handle) Handle { return prevOf[h] },
		func(h, p Handle) { prevOf[h] = p },
	)

	a, b, c := NewHandle(1, 1), NewHandle(2, 1), NewHandle(3, 1)
	l.PushFront(a)
	l.PushFront(b)
	l.PushFront(c)
	require.Equal(t, 3, l.Len())
	assert.Equal(t, c, l.Head())

	l.MoveToFront(a)
	assert.Equal(t, a, l.Head())

	var order []Handle
	l.Walk(func(h Handle) bool {
		order = append(order, h)
		return true
	})
	assert.Equal(t, []Handle{a, c, b}, order)
}

func TestArenaResetReusesBacking(t *testing.T) {
	a := NewArena(16)
	first := a.Alloc(8)
	capBefore := a.Cap()
	a.Reset()
	assert.Equal(t, 0, a.Len())
	second := a.Alloc(8)
	assert.Equal(t, capBefore, a.Cap())
	_ = first
	_ = second
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewFakeClock(start)
	assert.Equal(t, start, c.Now())
	c.Advance(5 * time.Second)
	assert.Equal(t, start.Add(5*time.Second), c.Now())
}

func TestTraceLimiterBurst(t *testing.T) {
	lim := NewTraceLimiter(1, 2)
	assert.True(t, lim.Allow())
	assert.True(t, lim.Allow())
	assert.False(t, lim.Allow(), "third call exceeds burst before refill")
}
