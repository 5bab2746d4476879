package canvas

import "noteboard/internal/geometry"

// Scale limits for the canvas zoom.
const (
	MinScale = 0.1
	MaxScale = 5.0
)

// ViewportState is the serializable pan/zoom state.
type ViewportState struct {
	Scale float64              `json:"scale"`
	Pan   geometry.ScreenPoint `json:"pan"`
}

// Viewport converts between screen and world space. It is the single source
// of truth for the transform; no other component holds a copy.
//
//	screen = world*scale + pan
//	world  = (screen - pan) / scale
type Viewport struct {
	scale float64
	pan   geometry.ScreenPoint

	// Canvas element pixel size, reported by the renderer so "center of the
	// visible area" is computable. Not part of the transform itself.
	width  float64
	height float64
}

func NewViewport() *Viewport {
	return &Viewport{scale: 1}
}

// State returns the current pan/zoom.
func (v *Viewport) State() ViewportState {
	return ViewportState{Scale: v.scale, Pan: v.pan}
}

// SetState restores a persisted pan/zoom, clamping scale into range.
func (v *Viewport) SetState(s ViewportState) {
	v.scale = clampScale(s.Scale)
	v.pan = s.Pan
}

// SetSize records the canvas pixel size.
func (v *Viewport) SetSize(w, h float64) {
	v.width, v.height = w, h
}

// ToWorld converts a screen point to world space.
func (v *Viewport) ToWorld(p geometry.ScreenPoint) geometry.WorldPoint {
	return geometry.WorldPoint{
		X: (p.X - v.pan.X) / v.scale,
		Y: (p.Y - v.pan.Y) / v.scale,
	}
}

// ToScreen converts a world point to screen space.
func (v *Viewport) ToScreen(p geometry.WorldPoint) geometry.ScreenPoint {
	return geometry.ScreenPoint{
		X: p.X*v.scale + v.pan.X,
		Y: p.Y*v.scale + v.pan.Y,
	}
}

// Pan shifts the viewport by a raw screen-space delta (1:1, unscaled).
func (v *Viewport) Pan(dx, dy float64) {
	v.pan.X += dx
	v.pan.Y += dy
}

// ZoomAt rescales by factor while keeping the world point under anchor
// visually fixed. The new scale is clamped before the pan recomputes, so
// the pan shift always uses the effective ratio.
func (v *Viewport) ZoomAt(anchor geometry.ScreenPoint, factor float64) {
	newScale := clampScale(v.scale * factor)
	ratio := newScale / v.scale
	v.pan.X = anchor.X - (anchor.X-v.pan.X)*ratio
	v.pan.Y = anchor.Y - (anchor.Y-v.pan.Y)*ratio
	v.scale = newScale
}

// Center returns the world point at the middle of the visible canvas.
func (v *Viewport) Center() geometry.WorldPoint {
	return v.ToWorld(geometry.ScreenPoint{X: v.width / 2, Y: v.height / 2})
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
