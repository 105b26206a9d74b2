// Package diagnostics accumulates the counters the tick loop produces
// every tick and renders them on demand, either as a pterm table for
// --dump-stats/SIGUSR1 or as a single structured log line.
package diagnostics

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/cookiejar"
	"github.com/jopamo/hxm/internal/focus"
	"github.com/jopamo/hxm/internal/primitives"
	"github.com/jopamo/hxm/internal/stacking"
	"github.com/jopamo/hxm/internal/tick"
	"github.com/jopamo/hxm/logger"
)

// Snapshot is the point-in-time state --dump-stats prints and SIGUSR1
// logs. It intentionally mirrors the per-tick Stats the tick engine
// hands to a Collector, plus the longer-lived state a single tick
// can't see (client counts per layer, focus-history length).
type Snapshot struct {
	TraceID string

	TickRate        float64 // ticks observed per second over the sampling window
	LastTickMS      float64
	EventsIngested  int
	EventsCoalesced int

	CookieLoadFactor   float64
	CookieOldestAgeMS  float64
	CookiesResolved    int
	CookiesAbandoned   int

	BucketerCoalescingRatio float64 // coalesced / (ingested + coalesced)

	ClientsPerLayer  map[string]int
	FocusHistoryLen  int

	CommitDurationP50MS float64
	CommitDurationP99MS float64

	ProcessRSSBytes uint64
	ProcessCPUPct   float64
}

// Collector accumulates per-tick Stats into a rolling window and can
// produce a Snapshot on request. It is safe for the tick goroutine to
// write to and a signal-triggered dump to read from concurrently,
// since --dump-stats/SIGUSR1 handling happens between ticks in the
// same goroutine in practice, but the mutex keeps the contract honest
// if a future caller samples from elsewhere.
type Collector struct {
	mu sync.Mutex

	windowStart time.Time
	tickCount   int
	lastTickDur time.Duration
	lastStats   tick.Stats
	commitDurs  []time.Duration // ring-ish; trimmed to maxCommitSamples

	traceLimiter *primitives.TraceLimiter
	proc         *process.Process
}

const maxCommitSamples = 256

// NewCollector builds a Collector that rate-limits its own trace
// emission to tracesPerSecond (burst of one more than that), so a
// misbehaving client that dirties every tick can't flood the log even
// when verbose tracing is enabled.
func NewCollector(tracesPerSecond float64) *Collector {
	c := &Collector{
		windowStart:  time.Now(),
		traceLimiter: primitives.NewTraceLimiter(tracesPerSecond, int(tracesPerSecond)+1),
	}
	if p, err := process.NewProcess(int32(processPID())); err == nil {
		c.proc = p
	}
	return c
}

// Observe records one tick's Stats plus how long the commit phase
// itself took within that tick (commitDur), folded into a rolling
// sample set for percentile reporting.
func (c *Collector) Observe(stats tick.Stats, commitDur time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tickCount++
	c.lastTickDur = stats.Duration
	c.lastStats = stats
	c.commitDurs = append(c.commitDurs, commitDur)
	if len(c.commitDurs) > maxCommitSamples {
		c.commitDurs = c.commitDurs[len(c.commitDurs)-maxCommitSamples:]
	}

	if c.traceLimiter.Allow() {
		logger.TickDebugw("tick observed",
			"ingested", stats.Ingested,
			"coalesced", stats.Coalesced,
			"cookies_resolved", stats.CookiesDrain.Resolved,
			"cookies_abandoned", stats.CookiesDrain.Abandoned,
		)
	}
}

// Snapshot renders the current window plus live collaborator state
// into a Snapshot. jar/stacking/store/focusMgr are read-only queries
// into still-live components, not copies retained by the Collector.
func (c *Collector) Snapshot(jar *cookiejar.Jar, stackMgr *stacking.Manager, store *clientstore.Store, focusMgr *focus.Manager) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.windowStart).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(c.tickCount) / elapsed
	}

	p50, p99 := percentiles(c.commitDurs)

	var coalescingRatio float64
	if total := c.lastStats.Ingested + c.lastStats.Coalesced; total > 0 {
		coalescingRatio = float64(c.lastStats.Coalesced) / float64(total)
	}

	snap := Snapshot{
		TraceID:                 uuid.NewString(),
		TickRate:                rate,
		LastTickMS:              millis(c.lastTickDur),
		EventsIngested:          c.lastStats.Ingested,
		EventsCoalesced:         c.lastStats.Coalesced,
		CookiesResolved:         c.lastStats.CookiesDrain.Resolved,
		CookiesAbandoned:        c.lastStats.CookiesDrain.Abandoned,
		BucketerCoalescingRatio: coalescingRatio,
		CommitDurationP50MS:     millis(p50),
		CommitDurationP99MS:     millis(p99),
		ClientsPerLayer:         make(map[string]int),
	}

	if jar != nil {
		snap.CookieLoadFactor = jar.LoadFactor()
		snap.CookieOldestAgeMS = millis(jar.OldestAge())
	}

	if stackMgr != nil {
		for _, l := range stacking.Layers {
			snap.ClientsPerLayer[l.String()] = len(stackMgr.Layer(l))
		}
	}

	if focusMgr != nil && store != nil {
		snap.FocusHistoryLen = store.FocusHistory().Len()
	}

	if c.proc != nil {
		if mem, err := c.proc.MemoryInfo(); err == nil && mem != nil {
			snap.ProcessRSSBytes = mem.RSS
		}
		if pct, err := c.proc.CPUPercent(); err == nil {
			snap.ProcessCPUPct = pct
		}
	}

	return snap
}

func percentiles(samples []time.Duration) (p50, p99 time.Duration) {
	if len(samples) == 0 {
		return 0, 0
	}
	sorted := append([]time.Duration(nil), samples...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	p50 = sorted[len(sorted)*50/100]
	idx99 := len(sorted) * 99 / 100
	if idx99 >= len(sorted) {
		idx99 = len(sorted) - 1
	}
	p99 = sorted[idx99]
	return p50, p99
}

func millis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// processPID is a seam tests substitute; production always wants the
// running process's own pid.
var processPID = func() int { return os.Getpid() }
