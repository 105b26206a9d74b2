package xproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternAllRoundTrips(t *testing.T) {
	next := Atom(100)
	table := InternAll(func(name string) Atom {
		next++
		return next
	})

	deleteWindow := table.Atom("WM_DELETE_WINDOW")
	require.NotZero(t, deleteWindow)
	assert.Equal(t, "WM_DELETE_WINDOW", table.Name(deleteWindow))
}

func TestUnknownAtomNameIsZero(t *testing.T) {
	table := InternAll(func(name string) Atom { return 1 })
	assert.Equal(t, Atom(0), table.Atom("_DOES_NOT_EXIST"))
}

func TestFakeTransportSeqAndReply(t *testing.T) {
	tr := NewFakeTransport()

	seq, err := tr.WriteRequest(Request{Kind: ReqGetProperty})
	require.NoError(t, err)

	_, ok := tr.ReadReplyBySequence(seq)
	assert.False(t, ok)

	tr.QueueReply(seq, Reply{Data: []byte("hi")})
	reply, ok := tr.ReadReplyBySequence(seq)
	require.True(t, ok)
	assert.Equal(t, []byte("hi"), reply.Data)

	_, ok = tr.ReadReplyBySequence(seq)
	assert.False(t, ok, "reply should be consumed on first read")
}

func TestFakeTransportEvents(t *testing.T) {
	tr := NewFakeTransport()
	tr.QueueEvent(Event{Kind: EventMapRequest, Window: 42})

	ev, ok := tr.ReadEventNonblocking()
	require.True(t, ok)
	assert.Equal(t, WindowID(42), ev.Window)

	_, ok = tr.ReadEventNonblocking()
	assert.False(t, ok)
}
