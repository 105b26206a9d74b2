package replydispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

type fakeIssuer struct {
	issued []cookiejar.Kind
}

func (f *fakeIssuer) IssueFollowup(owner primitives.Handle, kind cookiejar.Kind, window xproto.WindowID, txnID uint64) {
	f.issued = append(f.issued, kind)
}

type recordingSentinel struct {
	called bool
	kind   cookiejar.Kind
}

func (r *recordingSentinel) HandleSentinelReply(kind cookiejar.Kind, data uint64, reply *xproto.Reply, err error) {
	r.called = true
	r.kind = kind
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *clientstore.Store, *fakeIssuer) {
	store := clientstore.NewStore()
	table := xproto.InternAll(func(name string) xproto.Atom {
		return xproto.Atom(len(name)) // deterministic, distinct-enough fake intern
	})
	issuer := &fakeIssuer{}
	d := New(store, table, issuer, nil, nil)
	return d, store, issuer
}

func TestHandleDiscardsStaleReply(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	h := store.Manage(1)
	hot, _, _ := store.Lookup(h)
	hot.LastAppliedTxnID = 5
	hot.PendingReplies = 1

	d.Handle(h, cookiejar.KindWMClass, 0, 3, &xproto.Reply{Data: []byte("a\x00b\x00")}, nil)

	hotAfter, cold, _ := store.Lookup(h)
	assert.Equal(t, uint64(5), hotAfter.LastAppliedTxnID, "stale txn must not update last_applied_txn_id")
	assert.Empty(t, cold.WMClassInstance, "stale reply must not mutate client state")
	assert.Equal(t, 1, hotAfter.PendingReplies, "a discarded stale reply must not decrement pending_replies")
}

func TestHandleAppliesWMClassAndAdvancesPending(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	h := store.Manage(1)
	hot, _, _ := store.Lookup(h)
	hot.PendingReplies = 1

	data := append([]byte("inst"), 0)
	data = append(data, []byte("Class")...)
	data = append(data, 0)

	d.Handle(h, cookiejar.KindWMClass, 0, 1, &xproto.Reply{Data: data}, nil)

	hotAfter, cold, _ := store.Lookup(h)
	assert.Equal(t, "inst", cold.WMClassInstance)
	assert.Equal(t, "Class", cold.WMClassClass)
	assert.Equal(t, 0, hotAfter.PendingReplies)
	assert.Equal(t, clientstore.StateReady, hotAfter.Lifecycle, "last PHASE1 reply must advance lifecycle to READY")
}

func TestHandleNullReplyDuringPhaseOneAttributesAborts(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	h := store.Manage(1)
	hot, _, _ := store.Lookup(h)
	hot.PendingReplies = 2

	d.Handle(h, cookiejar.KindAttributes, 0, 1, nil, nil)

	hotAfter, _, _ := store.Lookup(h)
	assert.True(t, hotAfter.ManageAborted)
	assert.Equal(t, 1, hotAfter.PendingReplies)
}

func TestHandleUnknownOwnerIsDiscarded(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	h := store.Manage(1)
	store.Unmanage(h)
	store.Free(h)

	assert.NotPanics(t, func() {
		d.Handle(h, cookiejar.KindWMClass, 0, 1, &xproto.Reply{Data: []byte("a\x00b\x00")}, nil)
	})
}

func TestHandleSentinelRoutesToSentinelHandler(t *testing.T) {
	store := clientstore.NewStore()
	table := xproto.InternAll(func(name string) xproto.Atom { return xproto.Atom(len(name)) })
	sentinel := &recordingSentinel{}
	d := New(store, table, nil, sentinel, nil)

	d.Handle(cookiejar.Sentinel, cookiejar.KindAdoptionProbe, 0, 0, &xproto.Reply{}, nil)

	require.True(t, sentinel.called)
	assert.Equal(t, cookiejar.KindAdoptionProbe, sentinel.kind)
}

func TestHandleStrutPartialSupersedesLegacy(t *testing.T) {
	d, store, _ := newTestDispatcher(t)
	h := store.Manage(1)
	hot, _, _ := store.Lookup(h)
	hot.PendingReplies = 1

	partial := make([]uint32, 12)
	partial[2] = 30
	d.Handle(h, cookiejar.KindNetWMStrutPartial, 0, 1, &xproto.Reply{Data: wordsToBytes(partial)}, nil)

	_, cold, _ := store.Lookup(h)
	assert.True(t, cold.StrutPartialActive)
	assert.Equal(t, int32(30), cold.StrutPartial[2])
}
