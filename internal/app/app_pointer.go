package app

// ─────────────────────────────────────────────────────────────
// Pointer + Viewport Handlers — gesture input into the engine
// ─────────────────────────────────────────────────────────────
//
// The frontend is a dumb renderer: it forwards raw pointer events with the
// hit-test result and redraws from Frame(). All gesture interpretation
// (pan vs drag vs connect, tap-create, splice) happens in the engine.

import (
	"noteboard/internal/canvas"
	"noteboard/internal/geometry"
)

// PointerDown opens a gesture session for the hit target.
func (a *App) PointerDown(hit canvas.Hit, ev canvas.PointerEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.PointerDown(hit, ev)
}

// PointerMove advances the active gesture. Drags mutate block positions,
// so each move re-arms the autosave debounce.
func (a *App) PointerMove(ev canvas.PointerEvent) {
	a.mu.Lock()
	a.engine.PointerMove(ev)
	a.mu.Unlock()
	a.autosaver.Trigger()
}

// PointerUp closes the active gesture (tap-create, splice, connect).
func (a *App) PointerUp(hit canvas.Hit, ev canvas.PointerEvent) {
	a.mu.Lock()
	a.engine.PointerUp(hit, ev)
	a.mu.Unlock()
	a.autosaver.Trigger()
}

// CancelGesture aborts the session on window blur or visibility loss.
// Mutations already applied stay in place, so the scene still saves.
func (a *App) CancelGesture() {
	a.mu.Lock()
	a.engine.CancelGesture()
	a.mu.Unlock()
	a.autosaver.Trigger()
}

// EdgeClicked deletes the clicked edge.
func (a *App) EdgeClicked(edgeID string) {
	a.mu.Lock()
	a.engine.EdgeClicked(edgeID)
	a.mu.Unlock()
	a.autosaver.Trigger()
}

// ── Renderer queries ───────────────────────────────────────

// Frame returns the snapshot the renderer draws each frame.
func (a *App) Frame() canvas.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.Frame()
}

// GestureState names the active gesture, for cursor feedback.
func (a *App) GestureState() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.GestureState()
}

// EdgeAtPoint returns the id of the edge whose curve passes near the world
// point, or "" when none does. Drives edge hover and click dispatch.
func (a *App) EdgeAtPoint(x, y float64) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.engine.EdgeAt(geometry.WorldPoint{X: x, Y: y})
	if !ok {
		return ""
	}
	return id
}

// EdgePath returns the SVG path string for an edge, or "" when the edge or
// an endpoint is gone.
func (a *App) EdgePath(edgeID string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	path, ok := a.engine.EdgePathString(edgeID)
	if !ok {
		return ""
	}
	return path
}

// ── Viewport ───────────────────────────────────────────────

// SetViewportSize records the canvas pixel size on mount and resize.
func (a *App) SetViewportSize(w, h float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.SetViewportSize(w, h)
}

// Pan shifts the viewport by a screen-space delta (two-finger scroll).
func (a *App) Pan(dx, dy float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.Pan(dx, dy)
}

// ZoomAt zooms by factor anchored at the given screen point, keeping the
// world point under the cursor fixed.
func (a *App) ZoomAt(anchorX, anchorY, factor float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.engine.ZoomAt(geometry.ScreenPoint{X: anchorX, Y: anchorY}, factor)
}

// ToWorld converts a screen point through the viewport, for drop targets
// and context menus.
func (a *App) ToWorld(x, y float64) geometry.WorldPoint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engine.ToWorld(geometry.ScreenPoint{X: x, Y: y})
}

// SaveViewport persists the current pan/zoom to the open board's row. The
// frontend calls this on its own debounce after pan and zoom settle.
func (a *App) SaveViewport() error {
	a.mu.Lock()
	boardID := a.openBoardID
	vp := a.engine.Viewport()
	a.mu.Unlock()
	if boardID == "" {
		return nil
	}
	return a.boards.SaveViewport(boardID, vp.Pan.X, vp.Pan.Y, vp.Scale)
}
