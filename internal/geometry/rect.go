package geometry

// WorldRect is an axis-aligned rectangle in world space.
type WorldRect struct {
	X, Y, W, H float64
}

// Intersects reports whether two rectangles overlap. Rectangles that only
// touch along an edge do not intersect.
func (r WorldRect) Intersects(o WorldRect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X &&
		r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// Center returns the rectangle's midpoint.
func (r WorldRect) Center() WorldPoint {
	return WorldPoint{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies inside the rectangle (inclusive edges).
func (r WorldRect) Contains(p WorldPoint) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}
