package canvas

import (
	"math"
	"time"

	"noteboard/internal/domain"
	"noteboard/internal/geometry"
)

// TouchPoint is one touch contact as reported by the frontend.
type TouchPoint struct {
	X float64 `json:"clientX"`
	Y float64 `json:"clientY"`
}

// PointerEvent carries the raw coordinates of a mouse or touch event. Mouse
// events fill X/Y; touch events carry the touch list.
type PointerEvent struct {
	X       float64      `json:"clientX"`
	Y       float64      `json:"clientY"`
	Touches []TouchPoint `json:"touches,omitempty"`
}

// clientPos unifies mouse and touch into one screen point. The first touch
// wins when present.
func clientPos(e PointerEvent) geometry.ScreenPoint {
	if len(e.Touches) > 0 {
		return geometry.ScreenPoint{X: e.Touches[0].X, Y: e.Touches[0].Y}
	}
	return geometry.ScreenPoint{X: e.X, Y: e.Y}
}

// HitKind says what the pointer landed on, as reported by the renderer's
// hit testing; the engine never inspects the render tree itself.
type HitKind string

const (
	HitBackground HitKind = "background"
	HitBlock      HitKind = "block"  // a block's drag-handle region
	HitHandle     HitKind = "handle" // one of the four connection handles
)

// Hit identifies a pointer-down or pointer-up target.
type Hit struct {
	Kind    HitKind           `json:"kind"`
	BlockID string            `json:"blockId,omitempty"`
	Handle  domain.HandleSide `json:"handle,omitempty"`
}

// PointerDown opens a gesture session. Only one session can be active, so
// anything but idle ignores the event; a second contact never hijacks a
// gesture in flight.
func (en *Engine) PointerDown(hit Hit, ev PointerEvent) {
	if en.session.active() {
		return
	}
	p := clientPos(ev)
	switch hit.Kind {
	case HitBackground:
		en.session.state = gesturePanning
		en.session.start = p
		en.session.last = p

	case HitBlock:
		b, ok := en.scene.Block(hit.BlockID)
		if !ok {
			return
		}
		// One undo reverts the whole drag, however far it travels.
		en.pushHistory()
		en.session.state = gestureDragging
		en.session.start = p
		en.session.last = p
		en.session.blockID = b.ID
		en.session.blockStart = geometry.WorldPoint{X: b.X, Y: b.Y}

	case HitHandle:
		if !hit.Handle.Valid() {
			return
		}
		if _, ok := en.scene.Block(hit.BlockID); !ok {
			return
		}
		en.session.state = gestureConnecting
		en.session.start = p
		en.session.last = p
		en.session.fromBlock = hit.BlockID
		en.session.fromHandle = hit.Handle
		en.session.preview = en.viewport.ToWorld(p)
	}
}

// PointerMove advances the active gesture. Events arriving while idle are
// dropped; gesture state gates the effect.
func (en *Engine) PointerMove(ev PointerEvent) {
	p := clientPos(ev)
	dx := p.X - en.session.last.X
	dy := p.Y - en.session.last.Y

	switch en.session.state {
	case gesturePanning:
		if dx != 0 || dy != 0 {
			en.session.moved = true
			en.viewport.Pan(dx, dy)
		}

	case gestureDragging:
		if dx != 0 || dy != 0 {
			en.session.moved = true
		}
		en.moveDraggedBlock(p)
		en.refreshHighlight()

	case gestureConnecting:
		en.session.preview = en.viewport.ToWorld(p)
	}
	en.session.last = p
}

// PointerUp closes the active gesture. Every release clears the highlighted
// edge and the session, whatever else it does.
func (en *Engine) PointerUp(hit Hit, ev PointerEvent) {
	p := clientPos(ev)
	switch en.session.state {
	case gesturePanning:
		// A true click, no movement in between, spawns content; any drag
		// was pure panning with no side effect.
		if !en.session.moved {
			en.createBlockAt(domain.DefaultBlockType, en.viewport.ToWorld(p))
		}

	case gestureDragging:
		if en.session.highlighted != "" {
			en.spliceBlockIntoEdge(en.session.blockID, en.session.highlighted)
		}

	case gestureConnecting:
		en.finishConnect(hit)
	}
	en.session.reset()
}

// CancelGesture aborts the active session with none of the release side
// effects: no tap-create, no splice, no new edge. Mutations already applied
// stay in place; a drag pushed history on entry, so one undo reverts them.
// Wired to window blur and visibility loss.
func (en *Engine) CancelGesture() {
	en.session.reset()
}

// EdgeClicked deletes the clicked edge after a history push. Ignored while
// a gesture is active; a click arriving mid-drag is stray.
func (en *Engine) EdgeClicked(id string) {
	if en.session.active() {
		return
	}
	if _, ok := en.scene.Edge(id); !ok {
		return
	}
	en.pushHistory()
	en.scene.DeleteEdge(id)
}

// moveDraggedBlock repositions the dragged block from the total pointer
// delta, scale-compensated: screen pixels cover more world units when
// zoomed out. With overlap prevention on, each axis is tested on its own
// against every other block and reverts alone, so the block slides along a
// blocking surface instead of stopping dead.
func (en *Engine) moveDraggedBlock(p geometry.ScreenPoint) {
	b, ok := en.scene.Block(en.session.blockID)
	if !ok {
		// Deleted mid-gesture, e.g. by an undo racing the drag.
		return
	}
	scale := en.viewport.scale
	candX := en.session.blockStart.X + (p.X-en.session.start.X)/scale
	candY := en.session.blockStart.Y + (p.Y-en.session.start.Y)/scale

	if en.preventOverlap {
		if en.collides(b.ID, candX, b.Y, b.Width, b.Height) {
			candX = b.X
		}
		if en.collides(b.ID, b.X, candY, b.Width, b.Height) {
			candY = b.Y
		}
	}
	b.X, b.Y = candX, candY
	b.UpdatedAt = time.Now()
	en.scene.PutBlock(b)
}

// collides reports whether the rectangle would overlap any block other
// than selfID.
func (en *Engine) collides(selfID string, x, y, w, h float64) bool {
	r := geometry.WorldRect{X: x, Y: y, W: w, H: h}
	for _, id := range en.scene.blockOrder {
		if id == selfID {
			continue
		}
		if r.Intersects(blockRect(en.scene.blocks[id])) {
			return true
		}
	}
	return false
}

// refreshHighlight recomputes which edge, if any, the dragged block sits
// on. The block's center must come within the drag snap radius of the
// curve; the nearest qualifying edge wins, the first tested winning ties.
// Edges already touching the dragged block never qualify, and at most one
// edge is highlighted at a time.
func (en *Engine) refreshHighlight() {
	b, ok := en.scene.Block(en.session.blockID)
	if !ok {
		en.session.highlighted = ""
		return
	}
	center := blockCenter(b)
	best := ""
	bestDist := math.Inf(1)
	for _, eid := range en.scene.edgeOrder {
		e := en.scene.edges[eid]
		if e.FromID == b.ID || e.ToID == b.ID {
			continue
		}
		p1, p2, n1, n2, ok := en.scene.edgeCurve(e)
		if !ok {
			continue
		}
		d := geometry.DistanceToCurve(center, p1, p2, n1, n2)
		if d <= dragSnapRadius && d < bestDist {
			best, bestDist = eid, d
		}
	}
	en.session.highlighted = best
}

// spliceBlockIntoEdge drops a block onto an edge: the block recenters on
// the curve's nearest point, the edge is replaced by from→block and
// block→to, and the block's own handles follow the edge's dominant axis so
// the path keeps its visual continuity.
func (en *Engine) spliceBlockIntoEdge(blockID, edgeID string) {
	b, okB := en.scene.Block(blockID)
	e, okE := en.scene.Edge(edgeID)
	if !okB || !okE {
		return
	}
	p1, p2, n1, n2, ok := en.scene.edgeCurve(e)
	if !ok {
		return
	}

	at := geometry.NearestPointOnCurve(blockCenter(b), p1, p2, n1, n2)
	b.X = at.X - b.Width/2
	b.Y = at.Y - b.Height/2
	b.UpdatedAt = time.Now()
	en.scene.PutBlock(b)

	in, out := spliceHandles(p1, p2)

	now := time.Now()
	en.scene.DeleteEdge(e.ID)
	en.scene.PutEdge(domain.Edge{
		ID:         newID(),
		BoardID:    e.BoardID,
		FromID:     e.FromID,
		ToID:       b.ID,
		FromHandle: e.FromHandle,
		ToHandle:   in,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	en.scene.PutEdge(domain.Edge{
		ID:         newID(),
		BoardID:    e.BoardID,
		FromID:     b.ID,
		ToID:       e.ToID,
		FromHandle: out,
		ToHandle:   e.ToHandle,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// spliceHandles chooses the inbound and outbound sides for a block spliced
// into a curve running p1→p2: vertically dominant paths pass top-to-bottom,
// horizontal ones left-to-right, oriented by the curve's direction. The
// far endpoints keep their original handles.
func spliceHandles(p1, p2 geometry.WorldPoint) (in, out domain.HandleSide) {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	if math.Abs(dy) > math.Abs(dx) {
		if dy > 0 {
			return domain.HandleTop, domain.HandleBottom
		}
		return domain.HandleBottom, domain.HandleTop
	}
	if dx >= 0 {
		return domain.HandleLeft, domain.HandleRight
	}
	return domain.HandleRight, domain.HandleLeft
}

// finishConnect completes a connect gesture. Only a release on a different
// block's handle creates an edge; empty space or the origin block cancels
// silently.
func (en *Engine) finishConnect(hit Hit) {
	if hit.Kind != HitHandle || !hit.Handle.Valid() {
		return
	}
	if hit.BlockID == en.session.fromBlock {
		return
	}
	en.ConnectBlocks(en.session.fromBlock, hit.BlockID, en.session.fromHandle, hit.Handle)
}
