package geometry

import (
	"math"
	"testing"
)

func TestControlPointsHalfDistance(t *testing.T) {
	p1 := WorldPoint{X: 0, Y: 0}
	p2 := WorldPoint{X: 100, Y: 0}
	c1, c2 := ControlPoints(p1, p2, Vec{X: 1, Y: 0}, Vec{X: -1, Y: 0})

	// Control distance is half of 100, applied along each normal.
	if c1.X != 50 || c1.Y != 0 {
		t.Errorf("c1 = (%v, %v), want (50, 0)", c1.X, c1.Y)
	}
	if c2.X != 50 || c2.Y != 0 {
		t.Errorf("c2 = (%v, %v), want (50, 0)", c2.X, c2.Y)
	}
}

func TestControlPointsCapped(t *testing.T) {
	p1 := WorldPoint{X: 0, Y: 0}
	p2 := WorldPoint{X: 1000, Y: 0}
	c1, c2 := ControlPoints(p1, p2, Vec{X: 0, Y: -1}, Vec{X: 0, Y: 1})

	// Half of 1000 exceeds the cap; distance must be exactly 150.
	if c1.X != 0 || c1.Y != -150 {
		t.Errorf("c1 = (%v, %v), want (0, -150)", c1.X, c1.Y)
	}
	if c2.X != 1000 || c2.Y != 150 {
		t.Errorf("c2 = (%v, %v), want (1000, 150)", c2.X, c2.Y)
	}
}

func TestPointOnCubicBezierEndpoints(t *testing.T) {
	p1 := WorldPoint{X: 10, Y: 20}
	c1 := WorldPoint{X: 50, Y: 0}
	c2 := WorldPoint{X: 90, Y: 40}
	p2 := WorldPoint{X: 130, Y: 20}

	tests := []struct {
		t    float64
		want WorldPoint
	}{
		{0, p1},
		{1, p2},
	}
	for _, tt := range tests {
		got := PointOnCubicBezier(tt.t, p1, c1, c2, p2)
		if got != tt.want {
			t.Errorf("PointOnCubicBezier(%v) = (%v, %v), want (%v, %v)",
				tt.t, got.X, got.Y, tt.want.X, tt.want.Y)
		}
	}
}

func TestPointOnCubicBezierMidpointSymmetric(t *testing.T) {
	// Symmetric control points put t=0.5 exactly between the anchors.
	p1 := WorldPoint{X: 0, Y: 0}
	p2 := WorldPoint{X: 300, Y: 0}
	c1, c2 := ControlPoints(p1, p2, Vec{X: 1, Y: 0}, Vec{X: -1, Y: 0})

	mid := PointOnCubicBezier(0.5, p1, c1, c2, p2)
	if math.Abs(mid.X-150) > 1e-9 || math.Abs(mid.Y) > 1e-9 {
		t.Errorf("midpoint = (%v, %v), want (150, 0)", mid.X, mid.Y)
	}
}

func TestNearestPointOnCurve(t *testing.T) {
	// A right→left curve between collinear anchors degenerates to the
	// segment y=0, so the nearest point to (200, 50) is near (200, 0).
	p1 := WorldPoint{X: 0, Y: 0}
	p2 := WorldPoint{X: 300, Y: 0}
	n1 := Vec{X: 1, Y: 0}
	n2 := Vec{X: -1, Y: 0}

	got := NearestPointOnCurve(WorldPoint{X: 200, Y: 50}, p1, p2, n1, n2)
	if math.Abs(got.Y) > 1e-9 {
		t.Errorf("nearest.Y = %v, want 0", got.Y)
	}
	if math.Abs(got.X-200) > 5 {
		t.Errorf("nearest.X = %v, want within 5 of 200", got.X)
	}
}

func TestIsNearCurve(t *testing.T) {
	p1 := WorldPoint{X: 0, Y: 0}
	p2 := WorldPoint{X: 300, Y: 0}
	n1 := Vec{X: 1, Y: 0}
	n2 := Vec{X: -1, Y: 0}

	tests := []struct {
		name      string
		p         WorldPoint
		threshold float64
		want      bool
	}{
		{"on the curve", WorldPoint{X: 0, Y: 0}, DefaultNearThreshold, true},
		{"just inside", WorldPoint{X: 150, Y: 20}, DefaultNearThreshold, true},
		{"far away", WorldPoint{X: 150, Y: 200}, DefaultNearThreshold, false},
		{"inside drag radius only", WorldPoint{X: 0, Y: 35}, 40, true},
		{"outside default radius", WorldPoint{X: 0, Y: 35}, DefaultNearThreshold, false},
	}
	for _, tt := range tests {
		if got := IsNearCurve(tt.p, p1, p2, n1, n2, tt.threshold); got != tt.want {
			t.Errorf("%s: IsNearCurve = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCubicPathString(t *testing.T) {
	got := CubicPathString(
		WorldPoint{X: 0, Y: 0},
		WorldPoint{X: 75, Y: 0},
		WorldPoint{X: 75, Y: 150},
		WorldPoint{X: 150, Y: 150},
	)
	want := "M 0 0 C 75 0, 75 150, 150 150"
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestRectIntersects(t *testing.T) {
	base := WorldRect{X: 0, Y: 0, W: 100, H: 100}
	tests := []struct {
		name string
		r    WorldRect
		want bool
	}{
		{"overlapping", WorldRect{X: 50, Y: 50, W: 100, H: 100}, true},
		{"contained", WorldRect{X: 25, Y: 25, W: 10, H: 10}, true},
		{"touching edge", WorldRect{X: 100, Y: 0, W: 50, H: 50}, false},
		{"apart", WorldRect{X: 200, Y: 200, W: 10, H: 10}, false},
	}
	for _, tt := range tests {
		if got := base.Intersects(tt.r); got != tt.want {
			t.Errorf("%s: Intersects = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRectCenter(t *testing.T) {
	r := WorldRect{X: 10, Y: 20, W: 100, H: 60}
	c := r.Center()
	if c.X != 60 || c.Y != 50 {
		t.Errorf("center = (%v, %v), want (60, 50)", c.X, c.Y)
	}
}
