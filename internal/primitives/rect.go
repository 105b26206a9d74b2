package primitives

// Rect is an axis-aligned pixel rectangle in root-window coordinates.
type Rect struct {
	X, Y, W, H int32
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Union returns the smallest rectangle containing both r and o.
// An empty operand is absorbed without affecting the result.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min32(r.X, o.X), min32(r.Y, o.Y)
	x1, y1 := max32(r.X+r.W, o.X+o.W), max32(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Clamp returns the part of r that lies within bounds: edges outside
// bounds are cut back to them, and r is never shifted. Returns the
// empty rect if bounds itself is empty.
func (r Rect) Clamp(bounds Rect) Rect {
	if bounds.Empty() {
		return Rect{}
	}
	x0, y0 := max32(r.X, bounds.X), max32(r.Y, bounds.Y)
	x1 := min32(r.X+r.W, bounds.X+bounds.W)
	y1 := min32(r.Y+r.H, bounds.Y+bounds.H)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Intersects reports whether r and o overlap on a nonzero area.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
