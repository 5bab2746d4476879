package geometry

import (
	"fmt"
	"math"
)

const (
	// maxControlDistance caps how far control points extend from their
	// anchors so short curves don't balloon.
	maxControlDistance = 150.0

	// nearestSamples is the sampling resolution of the nearest-point search.
	nearestSamples = 50

	// nearSamples is the coarser resolution used for proximity tests.
	nearSamples = 15

	// DefaultNearThreshold is the catch radius for curve hit tests, in the
	// same units as the curve's coordinates.
	DefaultNearThreshold = 25.0
)

// ControlPoints derives the two cubic control points for a curve from p1 to
// p2 whose endpoints leave along the outward unit normals n1 and n2. The
// control distance is half the endpoint distance, capped, so the curve
// always exits perpendicular to its anchor side no matter where the other
// endpoint sits.
func ControlPoints(p1, p2 WorldPoint, n1, n2 Vec) (WorldPoint, WorldPoint) {
	d := math.Min(Dist(p1, p2)*0.5, maxControlDistance)
	return p1.Add(n1.Scale(d)), p2.Add(n2.Scale(d))
}

// PointOnCubicBezier evaluates the cubic Bernstein polynomial at t in [0,1].
func PointOnCubicBezier(t float64, p1, c1, c2, p2 WorldPoint) WorldPoint {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return WorldPoint{
		X: a*p1.X + b*c1.X + c*c2.X + d*p2.X,
		Y: a*p1.Y + b*c1.Y + c*c2.Y + d*p2.Y,
	}
}

// NearestPointOnCurve samples the curve uniformly and returns the sample
// closest to p. An approximation, not a projection; fine for pixel-level
// snapping.
func NearestPointOnCurve(p, p1, p2 WorldPoint, n1, n2 Vec) WorldPoint {
	c1, c2 := ControlPoints(p1, p2, n1, n2)
	best := p1
	bestDist := math.Inf(1)
	for i := 0; i <= nearestSamples; i++ {
		t := float64(i) / nearestSamples
		pt := PointOnCubicBezier(t, p1, c1, c2, p2)
		if d := Dist(p, pt); d < bestDist {
			best, bestDist = pt, d
		}
	}
	return best
}

// DistanceToCurve returns the minimum distance from p to the curve over the
// coarse sample grid.
func DistanceToCurve(p, p1, p2 WorldPoint, n1, n2 Vec) float64 {
	c1, c2 := ControlPoints(p1, p2, n1, n2)
	minDist := math.Inf(1)
	for i := 0; i <= nearSamples; i++ {
		t := float64(i) / nearSamples
		if d := Dist(p, PointOnCubicBezier(t, p1, c1, c2, p2)); d < minDist {
			minDist = d
		}
	}
	return minDist
}

// IsNearCurve reports whether p lies within threshold of the curve. Inputs
// and threshold must share one coordinate space.
func IsNearCurve(p, p1, p2 WorldPoint, n1, n2 Vec, threshold float64) bool {
	return DistanceToCurve(p, p1, p2, n1, n2) <= threshold
}

// CubicPathString renders an SVG cubic path command for the given anchors
// and control points.
func CubicPathString(p1, c1, c2, p2 WorldPoint) string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		p1.X, p1.Y, c1.X, c1.Y, c2.X, c2.Y, p2.X, p2.Y)
}
