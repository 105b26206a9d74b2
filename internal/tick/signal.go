package tick

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Signals mirrors the spec's "signal handlers only flip sig-atomic
// flags" rule: the os/signal goroutine stdlib starts for us writes
// into a channel, and the one line we run off that channel just sets
// a flag the tick loop observes between ticks. No WM state is ever
// touched from the signal-delivery side.
type Signals struct {
	ch chan os.Signal

	shutdownRequested  atomic.Bool
	reloadRequested    atomic.Bool
	restartRequested   atomic.Bool
	dumpStatsRequested atomic.Bool
}

// NewSignals registers for SIGINT/SIGTERM (shutdown), SIGHUP (reload),
// SIGUSR2 (restart), and SIGUSR1 (dump-stats), matching --exit,
// --reconfigure, --restart, --dump-stats from the CLI trampoline.
func NewSignals() *Signals {
	s := &Signals{ch: make(chan os.Signal, 8)}
	signal.Notify(s.ch,
		os.Interrupt, syscall.SIGTERM,
		syscall.SIGHUP, syscall.SIGUSR2, syscall.SIGUSR1,
	)
	return s
}

// Pump drains pending signals into their flags. Called from the tick
// loop's wait step, never blocks.
func (s *Signals) Pump() {
	for {
		select {
		case sig := <-s.ch:
			switch sig {
			case os.Interrupt, syscall.SIGTERM:
				s.shutdownRequested.Store(true)
			case syscall.SIGHUP:
				s.reloadRequested.Store(true)
			case syscall.SIGUSR2:
				s.restartRequested.Store(true)
			case syscall.SIGUSR1:
				s.dumpStatsRequested.Store(true)
			}
		default:
			return
		}
	}
}

// C exposes the raw channel so the tick loop's select can wake on a
// signal instead of waiting out a full poll interval.
func (s *Signals) C() <-chan os.Signal { return s.ch }

func (s *Signals) ShutdownRequested() bool { return s.shutdownRequested.Load() }

// TakeReloadRequested reports and clears the reload flag: --reconfigure
// is edge-triggered, not a sticky state.
func (s *Signals) TakeReloadRequested() bool { return s.reloadRequested.Swap(false) }

func (s *Signals) TakeRestartRequested() bool { return s.restartRequested.Swap(false) }

func (s *Signals) TakeDumpStatsRequested() bool { return s.dumpStatsRequested.Swap(false) }

// Stop deregisters the signal channel. Tests construct Signals without
// calling NewSignals and never need this.
func (s *Signals) Stop() {
	signal.Stop(s.ch)
}
