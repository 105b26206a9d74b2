package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/stacking"
)

func TestInitialPositionCentersOverTransientParent(t *testing.T) {
	parent := primitives.Rect{X: 100, Y: 100, W: 400, H: 300}
	desired := primitives.Rect{W: 200, H: 100}
	workarea := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}

	got := InitialPosition(desired, &parent, clientstore.SizeHints{}, workarea)

	assert.Equal(t, int32(200), got.X)
	assert.Equal(t, int32(200), got.Y)
}

func TestInitialPositionHonorsUserPosition(t *testing.T) {
	desired := primitives.Rect{X: 50, Y: 60, W: 200, H: 100}
	workarea := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}

	got := InitialPosition(desired, nil, clientstore.SizeHints{UserPosition: true}, workarea)

	assert.Equal(t, int32(50), got.X)
	assert.Equal(t, int32(60), got.Y)
}

func TestInitialPositionCentersInWorkareaByDefault(t *testing.T) {
	desired := primitives.Rect{W: 200, H: 100}
	workarea := primitives.Rect{X: 0, Y: 30, W: 1920, H: 1050}

	got := InitialPosition(desired, nil, clientstore.SizeHints{}, workarea)

	assert.Equal(t, int32(860), got.X)
	assert.Equal(t, int32(505), got.Y)
}

func TestMaximizeAndUnmaximizeRoundTrip(t *testing.T) {
	hot := &clientstore.Hot{ServerGeom: primitives.Rect{X: 10, Y: 20, W: 300, H: 200}}
	hot.DesiredGeom = hot.ServerGeom
	workarea := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}

	Maximize(hot, true, true, workarea)
	assert.Equal(t, workarea, hot.DesiredGeom)
	assert.NotZero(t, hot.State&clientstore.StateMaximizedH)
	assert.NotZero(t, hot.State&clientstore.StateMaximizedV)

	Unmaximize(hot, true, true)
	assert.Equal(t, primitives.Rect{X: 10, Y: 20, W: 300, H: 200}, hot.DesiredGeom)
	assert.Zero(t, hot.State&clientstore.StateMaximizedH)
}

func TestPartialMaximizeRestoresOnlyAffectedAxis(t *testing.T) {
	hot := &clientstore.Hot{ServerGeom: primitives.Rect{X: 10, Y: 20, W: 300, H: 200}}
	hot.DesiredGeom = hot.ServerGeom
	workarea := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}

	Maximize(hot, true, false, workarea) // horizontal only
	Unmaximize(hot, true, false)

	assert.Equal(t, int32(10), hot.DesiredGeom.X)
	assert.Equal(t, int32(300), hot.DesiredGeom.W)
}

func TestFullscreenRoundTripRestoresGeometryLayerAndDecoration(t *testing.T) {
	hot := &clientstore.Hot{
		ServerGeom:    primitives.Rect{X: 10, Y: 20, W: 300, H: 200},
		StackingLayer: stacking.LayerNormal,
	}
	hot.DesiredGeom = hot.ServerGeom
	monitor := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}

	res := Fullscreen(hot, true, monitor)
	assert.True(t, res.LayerChange)
	assert.Equal(t, stacking.LayerFullscreen, res.TargetLayer)
	assert.Equal(t, monitor, hot.DesiredGeom)
	assert.NotZero(t, hot.Flags&clientstore.FlagUndecorated)

	res = Fullscreen(hot, false, primitives.Rect{})
	assert.True(t, res.LayerChange)
	assert.Equal(t, stacking.LayerNormal, res.TargetLayer)
	assert.Equal(t, primitives.Rect{X: 10, Y: 20, W: 300, H: 200}, hot.DesiredGeom)
	assert.Zero(t, hot.Flags&clientstore.FlagUndecorated)
}

func TestFullscreenOnIsIdempotent(t *testing.T) {
	hot := &clientstore.Hot{ServerGeom: primitives.Rect{X: 1, Y: 1, W: 10, H: 10}}
	hot.DesiredGeom = hot.ServerGeom
	monitor := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}

	Fullscreen(hot, true, monitor)
	savedPreFullscreen := hot.PreFullscreenGeom
	hot.ServerGeom = monitor // pretend commit already applied it

	res := Fullscreen(hot, true, monitor)
	assert.False(t, res.LayerChange, "entering fullscreen twice must not re-save geometry")
	assert.Equal(t, savedPreFullscreen, hot.PreFullscreenGeom)
}

func TestComputeWorkareaSubtractsIntersectingStrut(t *testing.T) {
	monitor := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	strut := ActiveStrut{Side: StrutTop, Thickness: 30, RangeStart: 0, RangeEnd: 1920}

	got := ComputeWorkarea(monitor, []ActiveStrut{strut})

	assert.Equal(t, primitives.Rect{X: 0, Y: 30, W: 1920, H: 1050}, got)
}

func TestComputeWorkareaIgnoresNonIntersectingStrut(t *testing.T) {
	monitor := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	strut := ActiveStrut{Side: StrutLeft, Thickness: 50, RangeStart: 2000, RangeEnd: 2100} // outside this monitor's Y range

	got := ComputeWorkarea(monitor, []ActiveStrut{strut})

	assert.Equal(t, monitor, got)
}

func TestComputeWorkareaIgnoresUnsanitizedRange(t *testing.T) {
	monitor := primitives.Rect{X: 0, Y: 0, W: 1920, H: 1080}
	strut := ActiveStrut{Side: StrutTop, Thickness: 30, RangeStart: 100, RangeEnd: 50}

	got := ComputeWorkarea(monitor, []ActiveStrut{strut})

	assert.Equal(t, monitor, got)
}
