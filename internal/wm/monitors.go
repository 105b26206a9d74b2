package wm

import (
	"sync"

	"github.com/jopamo/hxm/internal/primitives"
)

// monitorSource holds the last known physical monitor layout. Querying
// RandR itself is the transport's concern (the same external-collaborator
// boundary the XCB connection and atom interning sit behind); this type
// is just the cache ProcessRandR reads, updated via SetMonitors whenever
// a screen-change event's reply has been parsed by the caller.
type monitorSource struct {
	mu    sync.RWMutex
	rects []primitives.Rect
}

func newMonitorSource(initial primitives.Rect) *monitorSource {
	return &monitorSource{rects: []primitives.Rect{initial}}
}

func (m *monitorSource) Monitors() []primitives.Rect {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]primitives.Rect, len(m.rects))
	copy(out, m.rects)
	return out
}

// SetMonitors replaces the cached layout, called after a RandR
// screen-change reply is parsed.
func (m *monitorSource) SetMonitors(rects []primitives.Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rects = rects
}
