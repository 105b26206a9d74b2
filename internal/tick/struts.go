package tick

import (
	"github.com/jopamo/hxm/internal/clientstore"
	"github.com/jopamo/hxm/internal/placement"
	"github.com/jopamo/hxm/internal/primitives"
)

// fullSpan stands in for "whole monitor edge" when a client only
// published the legacy _NET_WM_STRUT, which carries no perpendicular
// range of its own.
const fullSpan = 1 << 30

// collectActiveStruts walks every live client and turns whichever
// strut form it published (partial takes precedence per §4.4) into the
// side/thickness/range triples ComputeWorkarea consumes.
func collectActiveStruts(store *clientstore.Store) []placement.ActiveStrut {
	var out []placement.ActiveStrut
	store.Each(func(h primitives.Handle, hot *clientstore.Hot, cold *clientstore.Cold) bool {
		if cold.StrutPartialActive {
			appendPartial(&out, cold.StrutPartial)
		} else {
			appendLegacy(&out, cold.Strut)
		}
		return true
	})
	return out
}

// appendPartial decodes the standard _NET_WM_STRUT_PARTIAL layout:
// left, right, top, bottom, then each side's (start, end) range.
func appendPartial(out *[]placement.ActiveStrut, p [12]int32) {
	sides := []struct {
		side       placement.StrutSide
		thickness  int32
		start, end int32
	}{
		{placement.StrutLeft, p[0], p[4], p[5]},
		{placement.StrutRight, p[1], p[6], p[7]},
		{placement.StrutTop, p[2], p[8], p[9]},
		{placement.StrutBottom, p[3], p[10], p[11]},
	}
	for _, s := range sides {
		if s.thickness <= 0 {
			continue
		}
		*out = append(*out, placement.ActiveStrut{
			Side:       s.side,
			Thickness:  s.thickness,
			RangeStart: s.start,
			RangeEnd:   s.end,
		})
	}
}

func appendLegacy(out *[]placement.ActiveStrut, legacy [4]int32) {
	sides := []struct {
		side      placement.StrutSide
		thickness int32
	}{
		{placement.StrutLeft, legacy[0]},
		{placement.StrutRight, legacy[1]},
		{placement.StrutTop, legacy[2]},
		{placement.StrutBottom, legacy[3]},
	}
	for _, s := range sides {
		if s.thickness <= 0 {
			continue
		}
		*out = append(*out, placement.ActiveStrut{
			Side:       s.side,
			Thickness:  s.thickness,
			RangeStart: -fullSpan,
			RangeEnd:   fullSpan,
		})
	}
}
