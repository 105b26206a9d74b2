// Package wm wires every collaborator package into the running window
// manager: store, stacking, focus, cookie jar, bucketer, handlers and
// commit contexts, the tick engine, and diagnostics, over a caller-
// supplied xproto.Transport. Everything upstream of this package is
// transport-agnostic; this is the one place a concrete connection
// meets the core.
package wm

import (
	"os/exec"
	"time"

	"github.com/jopamo/hxm/internal/bucketer"
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/commit"
	"github.com/jopamo/hxm/internal/config"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/diagnostics"
	"github.com/jopamo/hxm/internal/focus"
	"github.com/jopamo/hxm/internal/handlers"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/replydispatcher"
	"github.com/jopamo/hxm/internal/stacking"
	"github.com/jopamo/hxm/internal/tick"
	"github.com/jopamo/hxm/internal/xproto"
	"github.com/jopamo/hxm/logger"
)

// Server owns every long-lived collaborator and the tick engine that
// drives them. One Server corresponds to one X11 connection's worth of
// window management; --restart builds a fresh Server in a fresh process.
type Server struct {
	cfg   *config.Config
	atoms *xproto.Table
	root  xproto.WindowID

	store    *clientstore.Store
	stackMgr *stacking.Manager
	focusMgr *focus.Manager
	jar      *cookiejar.Jar
	monitors *monitorSource
	pointer  *pointerDrag
	collector *diagnostics.Collector

	engine *tick.Engine

	autostartRan bool
}

// Deps bundles the inputs only the caller (cmd/hxm) can supply: the
// live transport, the root window id, and the initial screen geometry
// (queried once, synchronously, before the tick loop starts — the one
// place in this repo a blocking round trip is legitimate, since no
// tick is yet running to be blocked).
type Deps struct {
	Transport    xproto.Transport
	Atoms        *xproto.Table
	Root         xproto.WindowID
	InitialScreen primitives.Rect
	Now          func() uint32
}

// New builds a Server with every collaborator wired per the fixed
// control flow: store -> stacking -> focus -> jar -> dispatcher ->
// issuer/ops adapters -> handlers.Context -> commit.Context -> tick.Engine.
func New(cfg *config.Config, deps Deps) *Server {
	store := clientstore.NewStore()
	owner := handlers.NewStackingOwner(store)
	stackMgr := stacking.NewManager(owner)
	focusMgr := focus.NewManager(store, 0)

	abandonAfter := time.Duration(cfg.CookieAbandonAfterMS) * time.Millisecond
	jar := cookiejar.New(64, abandonAfter, primitives.SystemClock{})

	ops := newXOps(deps.Transport, deps.Atoms, deps.Root)
	pointer := newPointerDrag(store)
	dispatcher := replydispatcher.New(store, deps.Atoms, nil, nil, nil)
	iss := newIssuer(deps.Transport, jar, deps.Atoms, dispatcher)
	dispatcher = replydispatcher.New(store, deps.Atoms, iss, nil, pointer)
	iss.dispatch = dispatcher.Handle

	monitors := newMonitorSource(deps.InitialScreen)

	now := deps.Now
	if now == nil {
		now = func() uint32 { return uint32(time.Now().Unix()) }
	}

	handlersCtx := &handlers.Context{
		Store:         store,
		Stacking:      stackMgr,
		Focus:         focusMgr,
		Jar:           jar,
		Atoms:         deps.Atoms,
		Issuer:        iss,
		Ops:           ops,
		Pointer:       pointer,
		RootWindow:    deps.Root,
		Now:           now,
		DefaultScreen: deps.InitialScreen,
		Monitors:      []primitives.Rect{deps.InitialScreen},
	}

	var txnCounter uint64
	nextTxnID := func() uint64 { txnCounter++; return txnCounter }

	commitCtx := &commit.Context{
		Store:        store,
		Stacking:     stackMgr,
		Focus:        focusMgr,
		Atoms:        deps.Atoms,
		Issuer:       iss,
		Ops:          ops,
		Root:         ops,
		NextTxnID:    nextTxnID,
		Now:          now,
		MonotonicNow: func() int64 { return time.Now().UnixNano() },
	}

	collector := diagnostics.NewCollector(2)

	tickDeps := tick.Deps{
		Transport:             deps.Transport,
		Jar:                   jar,
		Buckets:               bucketer.New(),
		HandlersCtx:           handlersCtx,
		CommitCtx:             commitCtx,
		Monitors:              monitors,
		ParseConfigureRequest: func(ev xproto.Event) bucketer.ConfigureRequestData { return replydispatcher.ParseConfigureRequest(ev.Data) },
		PropertyAtom:          func(ev xproto.Event) xproto.Atom { return replydispatcher.ParsePropertyAtom(ev.Data) },
		MaxEventsPerTick:      cfg.MaxEventsPerTick,
		MaxRepliesPerTick:     cfg.MaxEventsPerTick,
		NextTxnID:             nextTxnID,
	}

	s := &Server{
		cfg:       cfg,
		atoms:     deps.Atoms,
		root:      deps.Root,
		store:     store,
		stackMgr:  stackMgr,
		focusMgr:  focusMgr,
		jar:       jar,
		monitors:  monitors,
		pointer:   pointer,
		collector: collector,
	}

	signals := tick.NewSignals()
	s.engine = tick.NewEngine(tickDeps, signals, s.onTick)
	return s
}

func (s *Server) onTick(stats tick.Stats) {
	start := time.Now()
	s.collector.Observe(stats, time.Since(start))
	s.maybeRunAutostart()
}

// maybeRunAutostart execs the configured autostart script once, after
// the first tick has run. No tick publishes _NET_SUPPORTING_WM_CHECK.
func (s *Server) maybeRunAutostart() {
	if s.autostartRan {
		return
	}
	s.autostartRan = true

	path := config.AutostartScript(s.cfg.AutostartPrefix)
	cmd := exec.Command(path)
	if err := cmd.Start(); err != nil {
		logger.OpenInfow("autostart script not run", "path", path, "error", err)
		return
	}
	go func() { _ = cmd.Wait() }()
}

// Run drives the tick loop until a shutdown signal arrives, handling
// --reconfigure (SIGHUP) and --dump-stats (SIGUSR1) between ticks;
// --restart (SIGUSR2) is left to the caller, which checks
// Signals().TakeRestartRequested() after Run returns so cmd/hxm can
// self-exec.
func (s *Server) Run() error {
	logger.OpenInfow("window manager starting", "root", s.root)
	defer logger.CloseInfow("window manager stopped")

	go s.watchSidebandSignals()
	return s.engine.Run()
}

// Restart (SIGUSR2) is deliberately not modeled as a Go error value:
// the caller detects it by polling Signals().TakeRestartRequested()
// after Run returns, the same pattern TakeReloadRequested and
// TakeDumpStatsRequested use.
func (s *Server) watchSidebandSignals() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if s.engine.Signals().TakeDumpStatsRequested() {
			s.DumpStats()
		}
		if s.engine.Signals().TakeReloadRequested() {
			s.Reconfigure()
		}
		if s.engine.Signals().ShutdownRequested() {
			return
		}
	}
}

// Reconfigure reloads config from disk and replaces the Server's
// stored copy. Collaborators built by New keep the values they were
// given: the tick and reply budgets do not change, and workarea
// margins are not applied.
func (s *Server) Reconfigure() {
	config.Reset()
	cfg, err := config.Load()
	if err != nil {
		logger.TickWarnw("reconfigure failed, keeping previous config", "error", err)
		return
	}
	s.cfg = cfg
	logger.TickInfow("configuration reloaded")
}

// DumpStats renders the current diagnostics snapshot as a pterm table
// on stdout and as a structured log line.
func (s *Server) DumpStats() {
	snap := s.collector.Snapshot(s.jar, s.stackMgr, s.store, s.focusMgr)
	if err := diagnostics.PrintTable(snap); err != nil {
		logger.TickWarnw("failed to render diagnostics table", "error", err)
	}
	diagnostics.LogSnapshot(snap)
}

// Signals exposes the engine's signal set, for a caller (cmd/hxm) that
// needs to check TakeRestartRequested after Run returns.
func (s *Server) Signals() *tick.Signals { return s.engine.Signals() }
