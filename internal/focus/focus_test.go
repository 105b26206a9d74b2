package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/xproto"
)

type fakeTransport struct {
	installedColormap uint32
	focusedWindow     xproto.WindowID
	takeFocusSent     bool
	takeFocusWindow   xproto.WindowID
}

func (f *fakeTransport) InstallColormap(colormap uint32)    { f.installedColormap = colormap }
func (f *fakeTransport) SetInputFocus(window xproto.WindowID) { f.focusedWindow = window }
func (f *fakeTransport) SendTakeFocus(window xproto.WindowID, timestamp uint32) {
	f.takeFocusSent = true
	f.takeFocusWindow = window
}

func mustManageFocusable(t *testing.T, store *clientstore.Store, window xproto.WindowID, protocols clientstore.ProtocolBits) {
	h := store.Manage(window)
	_, cold, ok := store.Lookup(h)
	require.True(t, ok)
	cold.CanFocus = true
	cold.Protocols = protocols
}

func TestCommitInstallsFocusAndSendsTakeFocus(t *testing.T) {
	store := clientstore.NewStore()
	mustManageFocusable(t, store, 100, clientstore.ProtoTakeFocus)
	h, _ := store.ByWindow(100)

	m := NewManager(store, 1)
	m.Focus(h)

	tr := &fakeTransport{}
	m.Commit(tr, 12345)

	assert.Equal(t, xproto.WindowID(100), tr.focusedWindow)
	assert.True(t, tr.takeFocusSent)
	assert.Equal(t, xproto.WindowID(100), tr.takeFocusWindow)
	assert.Equal(t, h, m.Committed())
}

func TestCommitSkipsClientThatCannotFocus(t *testing.T) {
	store := clientstore.NewStore()
	h := store.Manage(200)
	_, cold, _ := store.Lookup(h)
	cold.CanFocus = false

	m := NewManager(store, 1)
	m.Focus(h)

	tr := &fakeTransport{}
	m.Commit(tr, 1)

	assert.Equal(t, xproto.WindowID(0), tr.focusedWindow)
	assert.NotEqual(t, h, m.Committed())
}

func TestCommitIsNoopWhenAlreadySettled(t *testing.T) {
	store := clientstore.NewStore()
	mustManageFocusable(t, store, 100, 0)
	h, _ := store.ByWindow(100)

	m := NewManager(store, 1)
	m.Focus(h)

	tr := &fakeTransport{}
	m.Commit(tr, 1)
	tr.focusedWindow = 0 // reset to detect a second, unwanted commit
	m.Commit(tr, 1)

	assert.Equal(t, xproto.WindowID(0), tr.focusedWindow, "second commit with no change must not re-issue SetInputFocus")
}

func TestFallbackPrefersMappedTransientParent(t *testing.T) {
	store := clientstore.NewStore()
	parent := store.Manage(1)
	child := store.Manage(2)
	require.True(t, store.SetTransientParent(child, parent))

	parentHot, _, _ := store.Lookup(parent)
	parentHot.Lifecycle = clientstore.StateMapped

	m := NewManager(store, 1)
	fallback := m.FallbackAfterUnmanage(child)

	assert.Equal(t, parent, fallback)
}

func TestFallbackWalksMRUWhenNoMappedParent(t *testing.T) {
	store := clientstore.NewStore()
	a := store.Manage(1)
	b := store.Manage(2)

	aHot, _, _ := store.Lookup(a)
	aHot.Lifecycle = clientstore.StateMapped
	bHot, _, _ := store.Lookup(b)
	bHot.Lifecycle = clientstore.StateMapped

	fh := store.FocusHistory()
	fh.PushFront(a)
	fh.PushFront(b)

	m := NewManager(store, 1)
	fallback := m.FallbackAfterUnmanage(b)

	assert.Equal(t, a, fallback)
}

func TestClearIfFocusedResetsTargets(t *testing.T) {
	store := clientstore.NewStore()
	mustManageFocusable(t, store, 1, 0)
	h, _ := store.ByWindow(1)

	m := NewManager(store, 1)
	m.Focus(h)
	tr := &fakeTransport{}
	m.Commit(tr, 1)

	m.ClearIfFocused(h)
	assert.False(t, m.Desired().Valid())
	assert.False(t, m.Committed().Valid())
}
