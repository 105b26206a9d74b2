package placement

import "github.com/jopamo/hxm/internal/primitives"

// StrutSide names which screen edge a reserved strut occupies.
type StrutSide int

const (
	StrutLeft StrutSide = iota
	StrutRight
	StrutTop
	StrutBottom
)

// ActiveStrut is one dock/panel's reserved edge region: a thickness
// plus the perpendicular range it actually covers (the "partial" half
// of _NET_WM_STRUT_PARTIAL; a legacy _NET_WM_STRUT is modeled as a
// range spanning the whole monitor edge).
type ActiveStrut struct {
	Side             StrutSide
	Thickness        int32
	RangeStart, RangeEnd int32
}

// ComputeWorkarea starts from monitor's full geometry and subtracts
// every strut whose range intersects the corresponding perpendicular
// span of that monitor. Struts with RangeStart > RangeEnd are
// unsanitized and ignored.
func ComputeWorkarea(monitor primitives.Rect, struts []ActiveStrut) primitives.Rect {
	wa := monitor
	for _, s := range struts {
		if s.RangeStart > s.RangeEnd {
			continue
		}
		switch s.Side {
		case StrutLeft:
			if rangesIntersect(monitor.Y, monitor.Y+monitor.H, s.RangeStart, s.RangeEnd) {
				wa.X += s.Thickness
				wa.W -= s.Thickness
			}
		case StrutRight:
			if rangesIntersect(monitor.Y, monitor.Y+monitor.H, s.RangeStart, s.RangeEnd) {
				wa.W -= s.Thickness
			}
		case StrutTop:
			if rangesIntersect(monitor.X, monitor.X+monitor.W, s.RangeStart, s.RangeEnd) {
				wa.Y += s.Thickness
				wa.H -= s.Thickness
			}
		case StrutBottom:
			if rangesIntersect(monitor.X, monitor.X+monitor.W, s.RangeStart, s.RangeEnd) {
				wa.H -= s.Thickness
			}
		}
	}
	return wa
}

func rangesIntersect(aStart, aEnd, bStart, bEnd int32) bool {
	return aStart < bEnd && bStart < aEnd
}
