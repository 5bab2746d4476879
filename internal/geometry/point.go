package geometry

import "math"

// ScreenPoint is a position in screen space: raw pointer/touch coordinates,
// dependent on the current viewport transform.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorldPoint is a position in world space: the fixed coordinate system block
// positions are stored in, independent of pan and zoom. Keeping the two
// spaces as distinct types forces every conversion through the viewport.
type WorldPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec is a direction or offset in world space.
type Vec struct {
	X, Y float64
}

// Add returns p translated by v.
func (p WorldPoint) Add(v Vec) WorldPoint {
	return WorldPoint{X: p.X + v.X, Y: p.Y + v.Y}
}

// Scale returns v multiplied by k.
func (v Vec) Scale(k float64) Vec {
	return Vec{X: v.X * k, Y: v.Y * k}
}

// Dist returns the Euclidean distance between two world points.
func Dist(a, b WorldPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
