package primitives

import (
	"time"

	"golang.org/x/time/rate"
)

// TraceLimiter gates how often a diagnostic trace may fire, so a hot,
// repeatedly-misbehaving client can't flood the log at tick rate.
// It wraps golang.org/x/time/rate instead of hand-rolling a sliding
// window: this runs on every tick so it needs to be allocation-free
// and lock-cheap, which the stdlib-adjacent token bucket already is.
type TraceLimiter struct {
	lim *rate.Limiter
}

// NewTraceLimiter builds a limiter allowing burst immediate traces and
// refilling at ratePerSecond afterward.
func NewTraceLimiter(ratePerSecond float64, burst int) *TraceLimiter {
	return &TraceLimiter{lim: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Allow reports whether a trace may be emitted right now, consuming a
// token if so. Never blocks — the tick loop must never stall on this.
func (t *TraceLimiter) Allow() bool {
	return t.lim.Allow()
}

// AllowAt is like Allow but evaluated against an explicit timestamp,
// useful for deterministic tests driven by a fake clock.
func (t *TraceLimiter) AllowAt(now time.Time) bool {
	return t.lim.AllowN(now, 1)
}

// SetLimit adjusts the refill rate in place, e.g. on --reconfigure.
func (t *TraceLimiter) SetLimit(ratePerSecond float64) {
	t.lim.SetLimit(rate.Limit(ratePerSecond))
}
