package tick

import (
	"testing"
	"time"

	"github.com/jopamo/hxm/internal/bucketer"
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/commit"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/focus"
	"github.com/jopamo/hxm/internal/handlers"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/stacking"
	"github.com/jopamo/hxm/internal/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport is a queue of canned events plus a sequence counter
// for WriteRequest; every reply is immediately available so cookie
// fan-out resolves within the same tick it was issued, which is enough
// to exercise the tick loop's wiring without re-testing the reply
// dispatcher's own parsing rules.
type fakeTransport struct {
	events    []xproto.Event
	nextSeq   xproto.Seq
	flushes   int
	writeLog  []xproto.Request
}

func (f *fakeTransport) WriteRequest(req xproto.Request) (xproto.Seq, error) {
	f.nextSeq++
	f.writeLog = append(f.writeLog, req)
	return f.nextSeq, nil
}
func (f *fakeTransport) ReadReplyBySequence(seq xproto.Seq) (xproto.Reply, bool) {
	return xproto.Reply{Seq: seq, Data: nil}, true
}
func (f *fakeTransport) ReadEventNonblocking() (xproto.Event, bool) {
	if len(f.events) == 0 {
		return xproto.Event{}, false
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true
}
func (f *fakeTransport) FileDescriptor() int { return -1 }
func (f *fakeTransport) Flush() error        { f.flushes++; return nil }

type fakeWindowOps struct{ mapped []xproto.WindowID }

func (f *fakeWindowOps) ConfigureWindow(xproto.WindowID, primitives.Rect, int32, uint8, xproto.WindowID) {}
func (f *fakeWindowOps) MapWindow(w xproto.WindowID)                                                    { f.mapped = append(f.mapped, w) }
func (f *fakeWindowOps) UnmapWindow(xproto.WindowID)                                                    {}
func (f *fakeWindowOps) SendClientMessage(xproto.WindowID, xproto.Atom, [5]uint32)                      {}
func (f *fakeWindowOps) SendDeleteWindow(xproto.WindowID, uint32)                                       {}
func (f *fakeWindowOps) ReparentToRoot(xproto.WindowID, int32)                                          {}
func (f *fakeWindowOps) DestroyFrame(xproto.WindowID)                                                   {}
func (f *fakeWindowOps) SetCursor(xproto.WindowID, int)                                                 {}
func (f *fakeWindowOps) ForgetSaveSet(xproto.WindowID)                                                  {}

type fakePointer struct{}

func (fakePointer) Active(primitives.Handle) bool                    { return false }
func (fakePointer) Begin(primitives.Handle, bool, int, int32, int32) {}
func (fakePointer) ConfirmBegin(primitives.Handle) bool              { return false }
func (fakePointer) Update(primitives.Handle, int32, int32)           {}
func (fakePointer) Cancel(primitives.Handle)                         {}
func (fakePointer) ButtonMask() uint16                                { return 0 }

type fakeIssuer struct{ issued int }

func (f *fakeIssuer) Issue(primitives.Handle, cookiejar.Kind, xproto.WindowID, uint64) { f.issued++ }

type fakeMonitors struct{ rects []primitives.Rect }

func (f fakeMonitors) Monitors() []primitives.Rect { return f.rects }

type fakeCommitOps struct {
	createdFrames map[xproto.WindowID]xproto.WindowID
	next          xproto.WindowID
	mappedFrames  []xproto.WindowID
}

func newFakeCommitOps() *fakeCommitOps {
	return &fakeCommitOps{createdFrames: make(map[xproto.WindowID]xproto.WindowID)}
}
func (f *fakeCommitOps) CreateFrame(w xproto.WindowID, geom primitives.Rect, bw int32) xproto.WindowID {
	f.next++
	frame := xproto.WindowID(900 + f.next)
	f.createdFrames[w] = frame
	return frame
}
func (f *fakeCommitOps) Configure(xproto.WindowID, xproto.WindowID, primitives.Rect, int32) {}
func (f *fakeCommitOps) SyntheticConfigureNotify(xproto.WindowID, primitives.Rect, int32)   {}
func (f *fakeCommitOps) DispatchSync(xproto.WindowID, uint32, uint64)                       {}
func (f *fakeCommitOps) MapFrame(frame xproto.WindowID)                                     { f.mappedFrames = append(f.mappedFrames, frame) }
func (f *fakeCommitOps) UnmapFrame(xproto.WindowID)                                         {}
func (f *fakeCommitOps) MapRaw(xproto.WindowID)                                             {}
func (f *fakeCommitOps) SetWMState(xproto.WindowID, bool)                                   {}
func (f *fakeCommitOps) SetFrameExtents(xproto.WindowID, int32, int32, int32, int32)        {}
func (f *fakeCommitOps) SetAllowedActions(xproto.WindowID, []string)                        {}
func (f *fakeCommitOps) SetWMStateAtoms(xproto.WindowID, []string)                          {}
func (f *fakeCommitOps) SetDesktop(xproto.WindowID, uint32)                                 {}
func (f *fakeCommitOps) Restack(xproto.WindowID, xproto.WindowID, uint8)                    {}
func (f *fakeCommitOps) RedrawFrame(xproto.WindowID, primitives.Rect)                       {}
func (f *fakeCommitOps) InstallColormap(uint32)                                             {}
func (f *fakeCommitOps) SetInputFocus(xproto.WindowID)                                      {}
func (f *fakeCommitOps) SendTakeFocus(xproto.WindowID, uint32)                              {}

type fakeRoot struct{ clientList []xproto.WindowID }

func (f *fakeRoot) SetActiveWindow(xproto.WindowID)          {}
func (f *fakeRoot) SetClientList(w []xproto.WindowID)        { f.clientList = w }
func (f *fakeRoot) SetClientListStacking([]xproto.WindowID)  {}
func (f *fakeRoot) SetWorkarea(primitives.Rect)              {}
func (f *fakeRoot) SetCurrentDesktop(uint32)                 {}
func (f *fakeRoot) SetShowingDesktop(bool)                   {}

func newTestEngine(t *testing.T, events []xproto.Event) (*Engine, *clientstore.Store, *fakeTransport, *fakeCommitOps) {
	t.Helper()
	store := clientstore.NewStore()
	owner := handlers.NewStackingOwner(store)
	stackMgr := stacking.NewManager(owner)
	focusMgr := focus.NewManager(store, 1)
	atoms := xproto.InternAll(func(name string) xproto.Atom {
		h := xproto.Atom(0)
		for _, c := range name {
			h = h*131 + xproto.Atom(c)
		}
		return h + 1
	})

	issuer := &fakeIssuer{}
	handlersCtx := &handlers.Context{
		Store:    store,
		Stacking: stackMgr,
		Focus:    focusMgr,
		Jar:      cookiejar.New(8, 5*time.Second, primitives.SystemClock{}),
		Atoms:    atoms,
		Issuer:   issuer,
		Ops:      &fakeWindowOps{},
		Pointer:  fakePointer{},
		Now:      func() uint32 { return 1 },
	}

	commitOps := newFakeCommitOps()
	root := &fakeRoot{}
	var txn uint64
	commitCtx := &commit.Context{
		Store:        store,
		Stacking:     stackMgr,
		Focus:        focusMgr,
		Atoms:        atoms,
		Issuer:       issuer,
		Ops:          commitOps,
		Root:         root,
		NextTxnID:    func() uint64 { txn++; return txn },
		Now:          func() uint32 { return 1 },
		MonotonicNow: func() int64 { return 0 },
	}

	transport := &fakeTransport{events: events}
	deps := Deps{
		Transport:             transport,
		Jar:                   handlersCtx.Jar,
		Buckets:               bucketer.New(),
		HandlersCtx:           handlersCtx,
		CommitCtx:             commitCtx,
		Monitors:              fakeMonitors{rects: []primitives.Rect{{W: 1920, H: 1080}}},
		ParseConfigureRequest: func(xproto.Event) bucketer.ConfigureRequestData { return bucketer.ConfigureRequestData{} },
		PropertyAtom:          func(xproto.Event) xproto.Atom { return 0 },
		MaxEventsPerTick:      256,
		MaxRepliesPerTick:     64,
		NextTxnID:             func() uint64 { txn++; return txn },
	}

	return NewEngine(deps, &Signals{}, nil), store, transport, commitOps
}

func TestRunOnceIngestsMapRequestAndManagesWindow(t *testing.T) {
	engine, store, transport, _ := newTestEngine(t, []xproto.Event{
		{Kind: xproto.EventMapRequest, Window: 100},
	})

	stats := engine.RunOnce(true)

	assert.Equal(t, 1, stats.Ingested)
	_, ok := store.ByWindow(100)
	assert.True(t, ok)
	assert.Equal(t, 1, transport.flushes)
}

func TestRunOnceFlushesTransportExactlyOncePerTick(t *testing.T) {
	engine, _, transport, _ := newTestEngine(t, nil)

	engine.RunOnce(false)
	engine.RunOnce(false)

	assert.Equal(t, 2, transport.flushes)
}

func TestRunOnceRespectsMaxEventsPerTick(t *testing.T) {
	events := make([]xproto.Event, 0, 10)
	for i := 0; i < 10; i++ {
		events = append(events, xproto.Event{Kind: xproto.EventMapRequest, Window: xproto.WindowID(100 + i)})
	}
	engine, _, _, _ := newTestEngine(t, events)
	engine.deps.MaxEventsPerTick = 3

	stats := engine.RunOnce(false)

	assert.Equal(t, 3, stats.Ingested)
}

func TestRunOnceFinishesManageAndCreatesFrame(t *testing.T) {
	engine, store, _, commitOps := newTestEngine(t, []xproto.Event{
		{Kind: xproto.EventMapRequest, Window: 100},
	})

	engine.RunOnce(true)

	h, ok := store.ByWindow(100)
	require.True(t, ok)
	hot, _, _ := store.Lookup(h)
	assert.Equal(t, clientstore.StateMapped, hot.Lifecycle)
	assert.Contains(t, commitOps.createdFrames, xproto.WindowID(100))
}
