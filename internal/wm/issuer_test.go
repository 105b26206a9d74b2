package wm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/replydispatcher"
	"github.com/jopamo/hxm/internal/xproto"
)

func newTestIssuer(t *testing.T) (*issuer, *xproto.FakeTransport, *clientstore.Store) {
	t.Helper()
	transport := xproto.NewFakeTransport()
	var nextAtom xproto.Atom
	atoms := xproto.InternAll(func(string) xproto.Atom { nextAtom++; return nextAtom })
	store := clientstore.NewStore()
	dispatcher := replydispatcher.New(store, atoms, nil, nil, nil)
	return newIssuer(transport, cookiejar.New(8, 5*time.Second, primitives.SystemClock{}), atoms, dispatcher), transport, store
}

func TestIssuePropertyKindWritesGetPropertyWithAtomPayload(t *testing.T) {
	iss, transport, _ := newTestIssuer(t)
	iss.Issue(primitives.NilHandle, cookiejar.KindNetWMName, 42, 1)
	require.Equal(t, 1, len(transport.WriteLog()))
	req := transport.WriteLog()[0]
	assert.Equal(t, xproto.ReqGetProperty, req.Kind)
	assert.Equal(t, xproto.WindowID(42), req.Window)
	assert.Len(t, req.Data, 4)
}

func TestIssueGeometryKindWritesGetGeometryWithNoPayload(t *testing.T) {
	iss, transport, _ := newTestIssuer(t)
	iss.Issue(primitives.NilHandle, cookiejar.KindGeometry, 7, 1)
	req := transport.WriteLog()[0]
	assert.Equal(t, xproto.ReqGetGeometry, req.Kind)
	assert.Nil(t, req.Data)
}

func TestIssueInsertsIntoJar(t *testing.T) {
	iss, _, _ := newTestIssuer(t)
	assert.Equal(t, 0, iss.jar.Len())
	iss.Issue(primitives.NilHandle, cookiejar.KindAttributes, 10, 1)
	assert.Equal(t, 1, iss.jar.Len())
}

func TestIssueFollowupUsesSamePath(t *testing.T) {
	iss, transport, _ := newTestIssuer(t)
	iss.IssueFollowup(primitives.NilHandle, cookiejar.KindWMClass, 99, 1)
	require.Len(t, transport.WriteLog(), 1)
	assert.Equal(t, xproto.WindowID(99), transport.WriteLog()[0].Window)
}
