package clientstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopamo/hxm/internal/xproto"
)

func TestManageRegistersWindowIndex(t *testing.T) {
	s := NewStore()
	h := s.Manage(100)

	got, ok := s.ByWindow(100)
	require.True(t, ok)
	assert.Equal(t, h, got)

	hot, _, ok := s.Lookup(h)
	require.True(t, ok)
	assert.Equal(t, StateNew, hot.Lifecycle)
	assert.Equal(t, PhaseOne, hot.ManagePhase)
}

func TestRegisterFrameAddsToMappingOrderOnce(t *testing.T) {
	s := NewStore()
	a := s.Manage(1)
	b := s.Manage(2)

	s.RegisterFrame(a, 101)
	s.RegisterFrame(b, 102)
	s.RegisterFrame(a, 101) // idempotent re-registration must not duplicate

	order := s.MappingOrder()
	require.Len(t, order, 2)
	assert.Equal(t, a, order[0])
	assert.Equal(t, b, order[1])

	got, ok := s.ByFrame(101)
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestUnmanageRemovesAllIndexEntries(t *testing.T) {
	s := NewStore()
	h := s.Manage(1)
	s.RegisterFrame(h, 101)

	hot, _, ok := s.Unmanage(h)
	require.True(t, ok)
	assert.Equal(t, xproto.WindowID(1), hot.Window)

	_, ok = s.ByWindow(1)
	assert.False(t, ok)
	_, ok = s.ByFrame(101)
	assert.False(t, ok)
	assert.Empty(t, s.MappingOrder())

	s.Free(h)
	_, _, ok = s.Lookup(h)
	assert.False(t, ok, "handle must be stale after Free")
}

func TestSetTransientParentLinksChild(t *testing.T) {
	s := NewStore()
	parent := s.Manage(1)
	child := s.Manage(2)

	ok := s.SetTransientParent(child, parent)
	require.True(t, ok)

	childHot, _, _ := s.Lookup(child)
	assert.Equal(t, parent, childHot.TransientParent)

	children := s.TransientChildren(parent)
	assert.Equal(t, 1, children.Len())
	assert.Equal(t, child, children.Head())
}

func TestSetTransientParentRefusesCycle(t *testing.T) {
	s := NewStore()
	a := s.Manage(1)
	b := s.Manage(2)

	require.True(t, s.SetTransientParent(b, a))
	ok := s.SetTransientParent(a, b) // would create a -> b -> a cycle
	assert.False(t, ok)

	aHot, _, _ := s.Lookup(a)
	assert.False(t, aHot.TransientParent.Valid(), "refused assignment must leave transient_for untouched")
}

func TestSetTransientParentRefusesExcessiveDepth(t *testing.T) {
	s := NewStore()

	// Build a chain of maxTransientDepth+2 clients, each transient to the last.
	root := s.Manage(1)
	cur := root
	ok := true
	for i := 2; i <= maxTransientDepth+2; i++ {
		next := s.Manage(xproto.WindowID(i))
		ok = s.SetTransientParent(next, cur)
		if !ok {
			break
		}
		cur = next
	}
	assert.False(t, ok, "chain exceeding the max transient depth must eventually be refused")
}

func TestUnlinkTransientDetachesFromParentList(t *testing.T) {
	s := NewStore()
	parent := s.Manage(1)
	child := s.Manage(2)
	require.True(t, s.SetTransientParent(child, parent))

	s.UnlinkTransient(child)

	childHot, _, _ := s.Lookup(child)
	assert.False(t, childHot.TransientParent.Valid())
	assert.Equal(t, 0, s.TransientChildren(parent).Len())
}

func TestFocusHistoryMRU(t *testing.T) {
	s := NewStore()
	a := s.Manage(1)
	b := s.Manage(2)
	c := s.Manage(3)

	fh := s.FocusHistory()
	fh.PushFront(a)
	fh.PushFront(b)
	fh.PushFront(c)

	fh.MoveToFront(a)
	assert.Equal(t, a, fh.Head())
}
