package wm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

func newTestOps(t *testing.T) (*xOps, *xproto.FakeTransport) {
	t.Helper()
	transport := xproto.NewFakeTransport()
	var nextAtom xproto.Atom
	atoms := xproto.InternAll(func(string) xproto.Atom { nextAtom++; return nextAtom })
	return newXOps(transport, atoms, 1), transport
}

func TestCreateFrameWritesReparentPairAndTracksFrame(t *testing.T) {
	ops, transport := newTestOps(t)
	frame := ops.CreateFrame(100, primitives.Rect{X: 0, Y: 0, W: 200, H: 100}, 1)

	assert.NotEqual(t, xproto.WindowID(0), frame)
	assert.Equal(t, frame, ops.frameOf[100])

	log := transport.WriteLog()
	require.Len(t, log, 5)
	assert.Equal(t, xproto.ReqReparentWindow, log[0].Kind)
	assert.Equal(t, xproto.ReqReparentWindow, log[1].Kind)
	assert.Equal(t, xproto.ReqChangeSaveSet, log[2].Kind)
	assert.Equal(t, xproto.ReqGrabButton, log[3].Kind)
	assert.Equal(t, xproto.ReqDamageCreate, log[4].Kind)
}

func TestForgetSaveSetWritesDeleteMode(t *testing.T) {
	ops, transport := newTestOps(t)
	ops.ForgetSaveSet(100)

	log := transport.WriteLog()
	require.Len(t, log, 1)
	assert.Equal(t, xproto.ReqChangeSaveSet, log[0].Kind)
	assert.Equal(t, byte(saveSetDelete), log[0].Data[0])
}

func TestReparentToRootForgetsTrackedFrame(t *testing.T) {
	ops, _ := newTestOps(t)
	ops.CreateFrame(100, primitives.Rect{W: 10, H: 10}, 0)
	require.Contains(t, ops.frameOf, xproto.WindowID(100))

	ops.ReparentToRoot(100, 1)
	assert.NotContains(t, ops.frameOf, xproto.WindowID(100))
}

func TestDestroyFrameForgetsEveryClientMappedToIt(t *testing.T) {
	ops, _ := newTestOps(t)
	frame := ops.CreateFrame(100, primitives.Rect{W: 10, H: 10}, 0)

	ops.DestroyFrame(frame)
	assert.NotContains(t, ops.frameOf, xproto.WindowID(100))
}

func TestSetWMStateEncodesIconicAndNormal(t *testing.T) {
	ops, transport := newTestOps(t)
	ops.SetWMState(5, true)
	ops.SetWMState(5, false)

	log := transport.WriteLog()
	require.Len(t, log, 2)
	assert.Equal(t, byte(3), log[0].Data[0]) // IconicState
	assert.Equal(t, byte(1), log[1].Data[0]) // NormalState
}

func TestSendDeleteWindowUsesWMProtocolsAtom(t *testing.T) {
	ops, transport := newTestOps(t)
	ops.SendDeleteWindow(5, 123)

	log := transport.WriteLog()
	require.Len(t, log, 1)
	assert.Equal(t, xproto.ReqSendEvent, log[0].Kind)
}

func TestSetActiveWindowTargetsRoot(t *testing.T) {
	ops, transport := newTestOps(t)
	ops.SetActiveWindow(42)

	log := transport.WriteLog()
	require.Len(t, log, 1)
	assert.Equal(t, xproto.WindowID(1), log[0].Window)
}
