package canvas

import (
	"math"
	"time"

	"github.com/google/uuid"

	"noteboard/internal/domain"
	"noteboard/internal/geometry"
)

// Engine is the canvas interaction engine: one viewport, one scene, one
// bounded history, one gesture session. Purely in-memory, synchronous and
// deterministic; it has no error channel of its own, and operations
// addressed to missing ids are no-ops. Not safe for concurrent use; the
// owner serializes calls.
type Engine struct {
	boardID        string
	viewport       *Viewport
	scene          *Scene
	history        *History
	session        session
	preventOverlap bool
}

func NewEngine() *Engine {
	return &Engine{
		viewport: NewViewport(),
		scene:    NewScene(),
		history:  NewHistory(),
	}
}

func newID() string { return uuid.New().String() }

// ── Loading & export ───────────────────────────────────────

// Load replaces the scene with a persisted board payload, accepted
// verbatim except that edges with a missing endpoint or looping onto one
// block are pruned. History and any active gesture are discarded.
func (en *Engine) Load(boardID string, data domain.BoardData) {
	en.boardID = boardID
	en.scene.Replace(data.Blocks, data.Edges)
	en.history.Reset()
	en.session.reset()
}

// Export returns the scene in the persisted shape.
func (en *Engine) Export() domain.BoardData {
	return domain.BoardData{Blocks: en.scene.Blocks(), Edges: en.scene.Edges()}
}

// BoardID returns the id of the loaded board.
func (en *Engine) BoardID() string { return en.boardID }

// Block looks up one block by id.
func (en *Engine) Block(id string) (domain.Block, bool) { return en.scene.Block(id) }

// ── Renderer surface ───────────────────────────────────────

// ConnectPreview describes an in-flight connect gesture for rendering.
type ConnectPreview struct {
	FromID     string              `json:"fromId"`
	FromHandle domain.HandleSide   `json:"fromHandle"`
	To         geometry.WorldPoint `json:"to"`
}

// Frame is the read-only snapshot the renderer consumes each frame.
type Frame struct {
	Blocks            []domain.Block  `json:"blocks"`
	Edges             []domain.Edge   `json:"edges"`
	Viewport          ViewportState   `json:"viewport"`
	ConnectingPreview *ConnectPreview `json:"connectingPreview,omitempty"`
	HighlightedEdgeID string          `json:"highlightedEdgeId,omitempty"`
}

// Frame snapshots the scene, viewport and gesture transients. The returned
// slices are copies; the renderer may hold them across mutations.
func (en *Engine) Frame() Frame {
	f := Frame{
		Blocks:   en.scene.Blocks(),
		Edges:    en.scene.Edges(),
		Viewport: en.viewport.State(),
	}
	if en.session.state == gestureConnecting {
		f.ConnectingPreview = &ConnectPreview{
			FromID:     en.session.fromBlock,
			FromHandle: en.session.fromHandle,
			To:         en.session.preview,
		}
	}
	f.HighlightedEdgeID = en.session.highlighted
	return f
}

// HandlePosition returns the world position of a block's handle. ok is
// false for unknown blocks or sides.
func (en *Engine) HandlePosition(blockID string, side domain.HandleSide) (geometry.WorldPoint, bool) {
	b, ok := en.scene.Block(blockID)
	if !ok || !side.Valid() {
		return geometry.WorldPoint{}, false
	}
	return handlePoint(b, side), true
}

// PathString renders the SVG path for a curve between two points with the
// given handle orientations.
func (en *Engine) PathString(p1, p2 geometry.WorldPoint, from, to domain.HandleSide) string {
	c1, c2 := geometry.ControlPoints(p1, p2, handleNormal(from), handleNormal(to))
	return geometry.CubicPathString(p1, c1, c2, p2)
}

// EdgePathString renders the SVG path for an existing edge. ok is false
// when the edge or an endpoint is gone.
func (en *Engine) EdgePathString(edgeID string) (string, bool) {
	e, ok := en.scene.Edge(edgeID)
	if !ok {
		return "", false
	}
	p1, p2, n1, n2, ok := en.scene.edgeCurve(e)
	if !ok {
		return "", false
	}
	c1, c2 := geometry.ControlPoints(p1, p2, n1, n2)
	return geometry.CubicPathString(p1, c1, c2, p2), true
}

// EdgeAt returns the first edge whose curve passes within the default
// catch radius of the world point; used for hover and click dispatch.
func (en *Engine) EdgeAt(p geometry.WorldPoint) (string, bool) {
	for _, eid := range en.scene.edgeOrder {
		p1, p2, n1, n2, ok := en.scene.edgeCurve(en.scene.edges[eid])
		if !ok {
			continue
		}
		if geometry.IsNearCurve(p, p1, p2, n1, n2, geometry.DefaultNearThreshold) {
			return eid, true
		}
	}
	return "", false
}

// GestureState names the active gesture, for cursor feedback.
func (en *Engine) GestureState() string { return en.session.state.String() }

// ── Viewport surface ───────────────────────────────────────

// Viewport returns the live transform state.
func (en *Engine) Viewport() ViewportState { return en.viewport.State() }

// SetViewport restores a persisted transform, clamping scale into range.
func (en *Engine) SetViewport(s ViewportState) { en.viewport.SetState(s) }

// SetViewportSize records the canvas pixel size reported by the renderer.
func (en *Engine) SetViewportSize(w, h float64) { en.viewport.SetSize(w, h) }

// ZoomAt applies a zoom factor anchored at the screen point, keeping the
// world point under the anchor fixed.
func (en *Engine) ZoomAt(anchor geometry.ScreenPoint, factor float64) {
	en.viewport.ZoomAt(anchor, factor)
}

// Pan shifts the viewport by a screen-space delta; wheel scrolling pans
// without a gesture session.
func (en *Engine) Pan(dx, dy float64) {
	en.viewport.Pan(dx, dy)
}

// ToWorld converts a screen point through the viewport.
func (en *Engine) ToWorld(p geometry.ScreenPoint) geometry.WorldPoint {
	return en.viewport.ToWorld(p)
}

// ── Toolbar surface ────────────────────────────────────────

// AddBlock creates a block of the given type centered at the screen point,
// or at the middle of the visible canvas when at is nil.
func (en *Engine) AddBlock(t domain.BlockType, at *geometry.ScreenPoint) domain.Block {
	center := en.viewport.Center()
	if at != nil {
		center = en.viewport.ToWorld(*at)
	}
	return en.createBlockAt(t, center)
}

// Undo rolls the scene back to the most recent snapshot and reports whether
// anything was undone. One-directional: there is no redo.
func (en *Engine) Undo() bool {
	blocks, edges, ok := en.history.Pop()
	if !ok {
		return false
	}
	en.scene.Replace(blocks, edges)
	return true
}

// HistoryLen reports how many undo steps are available.
func (en *Engine) HistoryLen() int { return en.history.Len() }

// SetPreventOverlap toggles drag collision avoidance.
func (en *Engine) SetPreventOverlap(v bool) { en.preventOverlap = v }

// PreventOverlap reports the current setting.
func (en *Engine) PreventOverlap() bool { return en.preventOverlap }

// DuplicateBlock copies a block, content included, edges not, offset so the
// copy lands beside the original. ok is false for unknown ids.
func (en *Engine) DuplicateBlock(id string) (domain.Block, bool) {
	b, ok := en.scene.Block(id)
	if !ok {
		return domain.Block{}, false
	}
	en.pushHistory()
	now := time.Now()
	b.ID = newID()
	b.X += duplicateOffset
	b.Y += duplicateOffset
	b.CreatedAt = now
	b.UpdatedAt = now
	en.scene.PutBlock(b)
	return b, true
}

// ── Content-editor surface ─────────────────────────────────

// BlockPatch is a partial block update. Nil fields stay untouched.
type BlockPatch struct {
	Type     *domain.BlockType `json:"type,omitempty"`
	Title    *string           `json:"title,omitempty"`
	Category *string           `json:"category,omitempty"`
	Content  *string           `json:"content,omitempty"`
	X        *float64          `json:"x,omitempty"`
	Y        *float64          `json:"y,omitempty"`
	Width    *float64          `json:"width,omitempty"`
	Height   *float64          `json:"height,omitempty"`
}

// UpdateBlock shallow-merges a patch into a block. The sole write path for
// content, which is stored, never interpreted. Unknown ids are no-ops.
// Content edits carry their own editor-level undo, so no history push here.
func (en *Engine) UpdateBlock(id string, patch BlockPatch) {
	b, ok := en.scene.Block(id)
	if !ok {
		return
	}
	if patch.Type != nil {
		b.Type = *patch.Type
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Category != nil {
		b.Category = *patch.Category
	}
	if patch.Content != nil {
		b.Content = *patch.Content
	}
	if patch.X != nil {
		b.X = *patch.X
	}
	if patch.Y != nil {
		b.Y = *patch.Y
	}
	if patch.Width != nil {
		b.Width = *patch.Width
	}
	if patch.Height != nil {
		b.Height = *patch.Height
	}
	b.UpdatedAt = time.Now()
	en.scene.PutBlock(b)
}

// BeginBlockResize pushes one history entry covering the whole resize
// gesture. Called once when the renderer's resize affordance engages.
func (en *Engine) BeginBlockResize(id string) {
	if _, ok := en.scene.Block(id); !ok {
		return
	}
	en.pushHistory()
}

// ResizeBlock sets a block's size, clamped to the minimum footprint.
func (en *Engine) ResizeBlock(id string, w, h float64) {
	b, ok := en.scene.Block(id)
	if !ok {
		return
	}
	b.Width = math.Max(w, MinBlockWidth)
	b.Height = math.Max(h, MinBlockHeight)
	b.UpdatedAt = time.Now()
	en.scene.PutBlock(b)
}

// ── Programmatic mutation surface (AI, import, MCP) ────────

// InsertBlock appends one fully-formed block through the same creation path
// as manual creation: history push, then append. Undo semantics stay
// uniform regardless of origin.
func (en *Engine) InsertBlock(b domain.Block) domain.Block {
	en.pushHistory()
	return en.insertPrepared(b)
}

// InsertBlocks appends a batch under a single history entry, so one undo
// removes the whole batch.
func (en *Engine) InsertBlocks(blocks []domain.Block) []domain.Block {
	if len(blocks) == 0 {
		return nil
	}
	en.pushHistory()
	out := make([]domain.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, en.insertPrepared(b))
	}
	return out
}

// MoveBlock repositions a block programmatically after a history push.
func (en *Engine) MoveBlock(id string, x, y float64) {
	b, ok := en.scene.Block(id)
	if !ok {
		return
	}
	en.pushHistory()
	b.X, b.Y = x, y
	b.UpdatedAt = time.Now()
	en.scene.PutBlock(b)
}

// BlockMove names a block and its new origin.
type BlockMove struct {
	ID string
	X  float64
	Y  float64
}

// MoveBlocks applies several moves under a single history entry, so one
// undo restores the previous arrangement. Unknown ids are skipped.
func (en *Engine) MoveBlocks(moves []BlockMove) {
	if len(moves) == 0 {
		return
	}
	en.pushHistory()
	now := time.Now()
	for _, m := range moves {
		b, ok := en.scene.Block(m.ID)
		if !ok {
			continue
		}
		b.X, b.Y = m.X, m.Y
		b.UpdatedAt = now
		en.scene.PutBlock(b)
	}
}

// DeleteBlock removes a block and cascades to every incident edge after a
// history push. Unknown ids are no-ops.
func (en *Engine) DeleteBlock(id string) {
	if _, ok := en.scene.Block(id); !ok {
		return
	}
	en.pushHistory()
	en.scene.DeleteBlock(id)
}

// ConnectBlocks creates an edge after a history push. Self-connections,
// unknown endpoints and invalid sides are no-ops. ok reports creation.
func (en *Engine) ConnectBlocks(fromID, toID string, fromHandle, toHandle domain.HandleSide) (domain.Edge, bool) {
	if fromID == toID || !fromHandle.Valid() || !toHandle.Valid() {
		return domain.Edge{}, false
	}
	if _, ok := en.scene.Block(fromID); !ok {
		return domain.Edge{}, false
	}
	if _, ok := en.scene.Block(toID); !ok {
		return domain.Edge{}, false
	}
	en.pushHistory()
	now := time.Now()
	e := domain.Edge{
		ID:         newID(),
		BoardID:    en.boardID,
		FromID:     fromID,
		ToID:       toID,
		FromHandle: fromHandle,
		ToHandle:   toHandle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	en.scene.PutEdge(e)
	return e, true
}

// DeleteEdge removes an edge after a history push. Unknown ids are no-ops.
func (en *Engine) DeleteEdge(id string) {
	if _, ok := en.scene.Edge(id); !ok {
		return
	}
	en.pushHistory()
	en.scene.DeleteEdge(id)
}

// ── Internals ──────────────────────────────────────────────

// createBlockAt creates a block of the given type centered on the world
// point, pushing history first so the creation is undoable.
func (en *Engine) createBlockAt(t domain.BlockType, center geometry.WorldPoint) domain.Block {
	en.pushHistory()
	w, h := SizeFor(t)
	now := time.Now()
	b := domain.Block{
		ID:        newID(),
		BoardID:   en.boardID,
		Type:      t,
		X:         center.X - w/2,
		Y:         center.Y - h/2,
		Width:     w,
		Height:    h,
		CreatedAt: now,
		UpdatedAt: now,
	}
	en.scene.PutBlock(b)
	return b
}

// insertPrepared fills the bookkeeping fields a collaborator may omit and
// adds the block to the scene.
func (en *Engine) insertPrepared(b domain.Block) domain.Block {
	if b.ID == "" {
		b.ID = newID()
	}
	b.BoardID = en.boardID
	if b.Type == "" {
		b.Type = domain.DefaultBlockType
	}
	if b.Width <= 0 || b.Height <= 0 {
		b.Width, b.Height = SizeFor(b.Type)
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	en.scene.PutBlock(b)
	return b
}

// pushHistory captures the scene before a mutation.
func (en *Engine) pushHistory() {
	en.history.Push(en.scene.Blocks(), en.scene.Edges())
}
