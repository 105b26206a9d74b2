package wm

import (
	"encoding/binary"

	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/xproto"
)

// xOps issues the one-way, non-cookie-tracked requests handlers and
// commit need directly: configure, map/unmap, reparent, property
// writes, and root-window publication. None of these block on a
// reply, so unlike issuer they never touch the jar.
type xOps struct {
	transport xproto.Transport
	atoms     *xproto.Table
	root      xproto.WindowID

	frameOf map[xproto.WindowID]xproto.WindowID
	nextID  xproto.WindowID
}

func newXOps(transport xproto.Transport, atoms *xproto.Table, root xproto.WindowID) *xOps {
	return &xOps{
		transport: transport,
		atoms:     atoms,
		root:      root,
		frameOf:   make(map[xproto.WindowID]xproto.WindowID),
		nextID:    root + 1,
	}
}

func (o *xOps) write(kind xproto.RequestKind, window xproto.WindowID, data []byte) {
	_, _ = o.transport.WriteRequest(xproto.Request{Kind: kind, Window: window, Data: data})
}

func encodeGeom(g primitives.Rect, borderWidth int32) []byte {
	buf := make([]byte, 20)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(g.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(g.Y))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(g.W))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(g.H))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(borderWidth))
	return buf
}

func encodeAtomList(atoms *xproto.Table, names []string) []byte {
	buf := make([]byte, 4*len(names))
	for i, n := range names {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(atoms.Atom(n)))
	}
	return buf
}

func encodeWindowList(windows []xproto.WindowID) []byte {
	buf := make([]byte, 4*len(windows))
	for i, w := range windows {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(w))
	}
	return buf
}

// --- handlers.WindowOps ---

func (o *xOps) ConfigureWindow(window xproto.WindowID, geom primitives.Rect, borderWidth int32, stackMode uint8, sibling xproto.WindowID) {
	data := encodeGeom(geom, borderWidth)
	data = append(data, stackMode, byte(sibling), byte(sibling>>8), byte(sibling>>16), byte(sibling>>24))
	o.write(xproto.ReqConfigureWindow, window, data)
}

func (o *xOps) MapWindow(window xproto.WindowID)   { o.write(xproto.ReqMapWindow, window, nil) }
func (o *xOps) UnmapWindow(window xproto.WindowID) { o.write(xproto.ReqUnmapWindow, window, nil) }

func (o *xOps) SendClientMessage(window xproto.WindowID, messageType xproto.Atom, data [5]uint32) {
	buf := make([]byte, 4+20)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(messageType))
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[4+i*4:8+i*4], v)
	}
	o.write(xproto.ReqSendEvent, window, buf)
}

func (o *xOps) SendDeleteWindow(window xproto.WindowID, timestamp uint32) {
	o.SendClientMessage(window, o.atoms.Atom("WM_PROTOCOLS"), [5]uint32{uint32(o.atoms.Atom("WM_DELETE_WINDOW")), timestamp})
}

func (o *xOps) ReparentToRoot(window xproto.WindowID, borderWidth int32) {
	buf := make([]byte, 5)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(borderWidth))
	o.write(xproto.ReqReparentWindow, window, buf)
	delete(o.frameOf, window)
}

func (o *xOps) DestroyFrame(frame xproto.WindowID) {
	o.write(xproto.ReqUnmapWindow, frame, nil)
	for w, f := range o.frameOf {
		if f == frame {
			delete(o.frameOf, w)
		}
	}
}

func (o *xOps) SetCursor(window xproto.WindowID, direction int) {
	o.write(xproto.ReqChangeWindowAttributes, window, []byte{byte(direction)})
}

// --- commit.Ops ---

// saveSetInsert/saveSetDelete are the ChangeSaveSet mode byte values.
const (
	saveSetInsert = 0
	saveSetDelete = 1
)

// anyButton/anyModifier are the GrabButton wildcard encodings: grab
// every button under every modifier combination, since click-to-focus
// must intercept the first click anywhere over the client regardless
// of which button or modifier produced it.
const (
	anyButton   = 0
	anyModifier = 0x8000
)

func (o *xOps) CreateFrame(window xproto.WindowID, geom primitives.Rect, borderWidth int32) xproto.WindowID {
	o.nextID++
	frame := o.nextID
	o.write(xproto.ReqReparentWindow, frame, encodeGeom(geom, borderWidth))
	o.write(xproto.ReqReparentWindow, window, []byte{byte(frame), byte(frame >> 8), byte(frame >> 16), byte(frame >> 24)})
	o.frameOf[window] = frame

	// Crash survival: if hxm dies mid-session, the X server reparents
	// every save-set member back to the root and maps it, so clients
	// aren't left orphaned under a dead frame.
	o.write(xproto.ReqChangeSaveSet, window, []byte{saveSetInsert})

	// Passive grab for click-to-focus: button events over the client's
	// own window are normally delivered straight to it, so without this
	// grab a click never reaches the window manager to raise/focus.
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, anyModifier)
	buf = append(buf, anyButton)
	o.write(xproto.ReqGrabButton, window, buf)

	// Damage subscription drives frame redraw: without it RedrawFrame
	// has nothing to react to when the client paints.
	o.write(xproto.ReqDamageCreate, frame, nil)

	return frame
}

// ForgetSaveSet removes window from the save set as the frame comes
// down in the ordinary (non-crash) teardown path, so a later crash
// doesn't try to reparent an already-unmanaged window.
func (o *xOps) ForgetSaveSet(window xproto.WindowID) {
	o.write(xproto.ReqChangeSaveSet, window, []byte{saveSetDelete})
}

func (o *xOps) Configure(frame, window xproto.WindowID, geom primitives.Rect, borderWidth int32) {
	o.ConfigureWindow(frame, geom, 0, 0, 0)
	inner := geom
	inner.X, inner.Y = 0, 0
	o.ConfigureWindow(window, inner, borderWidth, 0, 0)
}

func (o *xOps) SyntheticConfigureNotify(window xproto.WindowID, geom primitives.Rect, borderWidth int32) {
	o.write(xproto.ReqSendEvent, window, encodeGeom(geom, borderWidth))
}

func (o *xOps) DispatchSync(window xproto.WindowID, counterID uint32, value uint64) {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], counterID)
	binary.LittleEndian.PutUint64(buf[4:12], value)
	o.write(xproto.ReqSendEvent, window, buf)
}

func (o *xOps) MapFrame(frame xproto.WindowID)   { o.write(xproto.ReqMapWindow, frame, nil) }
func (o *xOps) UnmapFrame(frame xproto.WindowID) { o.write(xproto.ReqUnmapWindow, frame, nil) }
func (o *xOps) MapRaw(window xproto.WindowID)    { o.write(xproto.ReqMapWindow, window, nil) }

func (o *xOps) SetWMState(window xproto.WindowID, iconic bool) {
	state := uint32(1) // NormalState
	if iconic {
		state = 3 // IconicState
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, state)
	o.write(xproto.ReqChangeProperty, window, buf)
}

func (o *xOps) SetFrameExtents(window xproto.WindowID, left, right, top, bottom int32) {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(left))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(right))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(top))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(bottom))
	o.write(xproto.ReqChangeProperty, window, buf)
}

func (o *xOps) SetAllowedActions(window xproto.WindowID, names []string) {
	o.write(xproto.ReqChangeProperty, window, encodeAtomList(o.atoms, names))
}

func (o *xOps) SetWMStateAtoms(window xproto.WindowID, names []string) {
	o.write(xproto.ReqChangeProperty, window, encodeAtomList(o.atoms, names))
}

func (o *xOps) SetDesktop(window xproto.WindowID, desktop uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, desktop)
	o.write(xproto.ReqChangeProperty, window, buf)
}

func (o *xOps) Restack(window, sibling xproto.WindowID, mode uint8) {
	buf := []byte{byte(sibling), byte(sibling >> 8), byte(sibling >> 16), byte(sibling >> 24), mode}
	o.write(xproto.ReqConfigureWindow, window, buf)
}

func (o *xOps) RedrawFrame(frame xproto.WindowID, damage primitives.Rect) {
	o.write(xproto.ReqSendEvent, frame, encodeGeom(damage, 0))
}

func (o *xOps) InstallColormap(colormap uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, colormap)
	o.write(xproto.ReqChangeWindowAttributes, o.root, buf)
}

func (o *xOps) SetInputFocus(window xproto.WindowID) { o.write(xproto.ReqSetInputFocus, window, nil) }

func (o *xOps) SendTakeFocus(window xproto.WindowID, timestamp uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, timestamp)
	o.SendClientMessage(window, o.atoms.Atom("WM_PROTOCOLS"), [5]uint32{uint32(o.atoms.Atom("WM_TAKE_FOCUS")), timestamp})
	_ = buf
}

// --- commit.RootOps ---

func (o *xOps) SetActiveWindow(window xproto.WindowID) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(window))
	o.write(xproto.ReqChangeProperty, o.root, buf)
}

func (o *xOps) SetClientList(windows []xproto.WindowID) {
	o.write(xproto.ReqChangeProperty, o.root, encodeWindowList(windows))
}

func (o *xOps) SetClientListStacking(windows []xproto.WindowID) {
	o.write(xproto.ReqChangeProperty, o.root, encodeWindowList(windows))
}

func (o *xOps) SetWorkarea(area primitives.Rect) {
	o.write(xproto.ReqChangeProperty, o.root, encodeGeom(area, 0))
}

func (o *xOps) SetCurrentDesktop(desktop uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, desktop)
	o.write(xproto.ReqChangeProperty, o.root, buf)
}

func (o *xOps) SetShowingDesktop(showing bool) {
	v := uint32(0)
	if showing {
		v = 1
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	o.write(xproto.ReqChangeProperty, o.root, buf)
}
