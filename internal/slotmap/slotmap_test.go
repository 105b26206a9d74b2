package slotmap

import (
	"testing"

	"github.com/jopamo/hxm/internal/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHot struct {
	Geom int
}

type testCold struct {
	Title string
}

func TestAllocLookup(t *testing.T) {
	s := New[testHot, testCold]()

	h := s.Alloc(testHot{Geom: 1}, testCold{Title: "a"})
	hot, cold, ok := s.Lookup(h)
	require.True(t, ok)
	assert.Equal(t, 1, hot.Geom)
	assert.Equal(t, "a", cold.Title)
	assert.Equal(t, 1, s.Len())
}

func TestFreeInvalidatesHandle(t *testing.T) {
	s := New[testHot, testCold]()
	h := s.Alloc(testHot{}, testCold{})

	s.Free(h)

	_, _, ok := s.Lookup(h)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStaleHandleAfterReuseMisses(t *testing.T) {
	s := New[testHot, testCold]()
	first := s.Alloc(testHot{Geom: 1}, testCold{})
	s.Free(first)

	second := s.Alloc(testHot{Geom: 2}, testCold{})
	require.Equal(t, first.Slot(), second.Slot(), "freelist should reuse the slot")
	assert.NotEqual(t, first.Generation(), second.Generation())

	_, _, ok := s.Lookup(first)
	assert.False(t, ok, "stale handle must not resolve to the reused slot")

	hot, _, ok := s.Lookup(second)
	require.True(t, ok)
	assert.Equal(t, 2, hot.Geom)
}

func TestFreeUnknownHandleIsNoop(t *testing.T) {
	s := New[testHot, testCold]()
	assert.NotPanics(t, func() {
		s.Free(1 << 32)
	})
}

func TestEachVisitsOnlyLive(t *testing.T) {
	s := New[testHot, testCold]()
	a := s.Alloc(testHot{Geom: 1}, testCold{})
	b := s.Alloc(testHot{Geom: 2}, testCold{})
	s.Free(a)

	seen := map[uint32]bool{}
	s.Each(func(h primitives.Handle, hot *testHot, cold *testCold) bool {
		seen[h.Slot()] = true
		return true
	})

	assert.False(t, seen[a.Slot()] && a.Slot() == b.Slot())
	assert.Len(t, seen, 1)
}
