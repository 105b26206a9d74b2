// Package tick implements the outer control loop: wait, drain cookies,
// ingest and coalesce events, run handlers in fixed order, flush dirty
// state, account time. Everything here is single-threaded and
// cooperative — the only suspension point is the wait step, and no
// handler may issue a synchronous round-trip.
package tick

import (
	"time"

	"github.com/jopamo/hxm/internal/bucketer"
	"github.com/jopamo/hxm/internal/commit"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/handlers"
	"github.com/jopamo/hxm/internal/xproto"
	"github.com/jopamo/hxm/logger"
)

// pollInterval bounds how long the outer wait can go without checking
// the transport and signal channel again. A real XCB transport fd
// would let this be a true blocking multiplexed wait; polling at this
// interval is the idiomatic-Go stand-in when the fd can't be joined
// into a single select with channels.
const pollInterval = 4 * time.Millisecond

// Deps bundles every collaborator one tick touches. Built once at
// startup (and rebuilt on --reconfigure for the config-derived knobs).
type Deps struct {
	Transport   xproto.Transport
	Jar         *cookiejar.Jar
	Buckets     *bucketer.Buckets
	HandlersCtx *handlers.Context
	CommitCtx   *commit.Context
	Monitors    handlers.MonitorSource

	ParseConfigureRequest func(xproto.Event) bucketer.ConfigureRequestData
	PropertyAtom          func(xproto.Event) xproto.Atom

	MaxEventsPerTick  int
	MaxRepliesPerTick int

	NextTxnID func() uint64
}

// Stats summarizes one RunOnce call, handed to diagnostics.
type Stats struct {
	Ingested     int
	Coalesced    int
	CookiesDrain cookiejar.DrainResult
	Duration     time.Duration
}

// Engine runs the tick loop. It owns no X state itself — everything
// lives in Deps's collaborators — so restart can rebuild a fresh
// Engine over the same (or a freshly reconnected) Deps.
type Engine struct {
	deps    Deps
	signals *Signals
	onTick  func(Stats)
}

// NewEngine builds an Engine. onTick may be nil; when set, it receives
// a Stats snapshot after every RunOnce, for diagnostics.
func NewEngine(deps Deps, signals *Signals, onTick func(Stats)) *Engine {
	return &Engine{deps: deps, signals: signals, onTick: onTick}
}

// Run blocks until a shutdown signal is observed or the transport
// reports a fatal condition, ticking roughly every pollInterval.
// ReloadRequested/RestartRequested are left for the caller to consume
// between iterations via e.Signals(); Run itself only acts on shutdown.
func (e *Engine) Run() error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	first := true
	for {
		select {
		case <-e.signals.C():
			// Drained below by Pump; this case exists only so a signal
			// wakes the select promptly instead of waiting out the poll.
		case <-ticker.C:
		}

		e.signals.Pump()
		if e.signals.ShutdownRequested() {
			logger.TickInfow("shutdown signal observed, exiting tick loop")
			return nil
		}

		e.RunOnce(first)
		first = false
	}
}

// Signals exposes the engine's signal set so a caller driving Run in
// a goroutine can still poll TakeReloadRequested/TakeRestartRequested
// from the outside between ticks.
func (e *Engine) Signals() *Signals { return e.signals }

// RunOnce executes exactly one tick: drain cookies, ingest events up
// to MaxEventsPerTick, process every bucket in fixed order, flush
// dirty state, and flush the transport exactly once. forceRandR makes
// the randr handler recompute monitors/workarea even absent a pending
// screen-change event, which the caller sets true for the very first
// tick so startup always has an initial layout.
func (e *Engine) RunOnce(forceRandR bool) Stats {
	start := time.Now()
	d := &e.deps

	drain := d.Jar.Drain(d.Transport, d.MaxRepliesPerTick)

	d.Buckets.Reset()
	for d.Buckets.Ingested() < d.MaxEventsPerTick {
		ev, ok := d.Transport.ReadEventNonblocking()
		if !ok {
			break
		}
		d.Buckets.Ingest(ev, d.MaxEventsPerTick, d.ParseConfigureRequest, d.PropertyAtom)
	}

	struts := collectActiveStruts(d.HandlersCtx.Store)
	handlers.Process(d.HandlersCtx, d.Buckets, d.NextTxnID, d.Monitors, forceRandR, struts)

	commit.Flush(d.CommitCtx)

	if err := d.Transport.Flush(); err != nil {
		logger.TickInfow("transport flush failed", "error", err)
	}

	stats := Stats{
		Ingested:     d.Buckets.Ingested(),
		Coalesced:    d.Buckets.Coalesced(),
		CookiesDrain: drain,
		Duration:     time.Since(start),
	}
	if e.onTick != nil {
		e.onTick(stats)
	}
	return stats
}
