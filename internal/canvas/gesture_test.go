package canvas

import (
	"testing"

	"noteboard/internal/domain"
	"noteboard/internal/geometry"
)

func ev(x, y float64) PointerEvent {
	return PointerEvent{X: x, Y: y}
}

func TestTapCreatesDefaultBlock(t *testing.T) {
	en := loadedEngine(nil, nil)

	en.PointerDown(Hit{Kind: HitBackground}, ev(500, 500))
	if en.GestureState() != "panning" {
		t.Fatalf("state = %q, want panning", en.GestureState())
	}
	en.PointerUp(Hit{Kind: HitBackground}, ev(500, 500))

	f := en.Frame()
	if len(f.Blocks) != 1 {
		t.Fatalf("block count = %d, want 1", len(f.Blocks))
	}
	b := f.Blocks[0]
	// World (500,500) at scale 1, pan 0; a 240x120 text card centers there.
	if b.X != 380 || b.Y != 440 {
		t.Errorf("block at (%.0f, %.0f), want (380, 440)", b.X, b.Y)
	}
	if b.Type != domain.BlockTypeText {
		t.Errorf("type = %q, want %q", b.Type, domain.BlockTypeText)
	}
	if en.HistoryLen() != 1 {
		t.Errorf("history len = %d, want 1", en.HistoryLen())
	}
	if en.GestureState() != "idle" {
		t.Errorf("state = %q after release, want idle", en.GestureState())
	}
}

func TestTapFromTouchEvent(t *testing.T) {
	en := loadedEngine(nil, nil)
	touch := PointerEvent{Touches: []TouchPoint{{X: 500, Y: 500}}}

	en.PointerDown(Hit{Kind: HitBackground}, touch)
	en.PointerUp(Hit{Kind: HitBackground}, touch)

	f := en.Frame()
	if len(f.Blocks) != 1 || f.Blocks[0].X != 380 || f.Blocks[0].Y != 440 {
		t.Errorf("touch tap did not match mouse tap: %+v", f.Blocks)
	}
}

// Any movement at all turns the gesture into a pan; release then creates
// nothing.
func TestPanDoesNotCreate(t *testing.T) {
	en := loadedEngine(nil, nil)

	en.PointerDown(Hit{Kind: HitBackground}, ev(500, 500))
	en.PointerMove(ev(501, 500))
	en.PointerMove(ev(510, 490))
	en.PointerUp(Hit{Kind: HitBackground}, ev(510, 490))

	f := en.Frame()
	if len(f.Blocks) != 0 {
		t.Errorf("pan release created %d blocks", len(f.Blocks))
	}
	// Pan follows the pointer 1:1 in screen space.
	if f.Viewport.Pan.X != 10 || f.Viewport.Pan.Y != -10 {
		t.Errorf("pan = (%.0f, %.0f), want (10, -10)", f.Viewport.Pan.X, f.Viewport.Pan.Y)
	}
	if en.HistoryLen() != 0 {
		t.Errorf("panning pushed history: len = %d", en.HistoryLen())
	}
}

func TestPanIgnoresZoom(t *testing.T) {
	en := loadedEngine(nil, nil)
	en.SetViewport(ViewportState{Scale: 0.5})

	en.PointerDown(Hit{Kind: HitBackground}, ev(0, 0))
	en.PointerMove(ev(100, 40))
	en.PointerUp(Hit{Kind: HitBackground}, ev(100, 40))

	p := en.Viewport().Pan
	if p.X != 100 || p.Y != 40 {
		t.Errorf("pan = (%.0f, %.0f), want (100, 40) regardless of scale", p.X, p.Y)
	}
}

func TestDragMovesBlockScaleCompensated(t *testing.T) {
	en := loadedEngine([]domain.Block{testBlock("a", 0, 0, 100, 100)}, nil)
	en.SetViewport(ViewportState{Scale: 0.5})

	en.PointerDown(Hit{Kind: HitBlock, BlockID: "a"}, ev(25, 25))
	if en.GestureState() != "dragging-block" {
		t.Fatalf("state = %q, want dragging-block", en.GestureState())
	}
	en.PointerMove(ev(125, 75))
	en.PointerUp(Hit{Kind: HitBackground}, ev(125, 75))

	b, _ := en.scene.Block("a")
	// 100 screen pixels cover 200 world units at scale 0.5.
	if b.X != 200 || b.Y != 100 {
		t.Errorf("block at (%.0f, %.0f), want (200, 100)", b.X, b.Y)
	}
	if en.HistoryLen() != 1 {
		t.Errorf("history len = %d, want exactly 1 for the drag", en.HistoryLen())
	}
}

func TestDragUndoRestoresStart(t *testing.T) {
	en := loadedEngine([]domain.Block{testBlock("a", 10, 20, 100, 100)}, nil)

	en.PointerDown(Hit{Kind: HitBlock, BlockID: "a"}, ev(60, 70))
	en.PointerMove(ev(200, 300))
	en.PointerMove(ev(400, 500))
	en.PointerUp(Hit{Kind: HitBackground}, ev(400, 500))

	if !en.Undo() {
		t.Fatal("nothing to undo after drag")
	}
	b, _ := en.scene.Block("a")
	if b.X != 10 || b.Y != 20 {
		t.Errorf("undo left block at (%.0f, %.0f), want (10, 20)", b.X, b.Y)
	}
}

func TestDragOnUnknownBlockIgnored(t *testing.T) {
	en := loadedEngine(nil, nil)
	en.PointerDown(Hit{Kind: HitBlock, BlockID: "ghost"}, ev(0, 0))
	if en.GestureState() != "idle" {
		t.Errorf("state = %q, want idle", en.GestureState())
	}
	if en.HistoryLen() != 0 {
		t.Error("ignored down pushed history")
	}
}

// With overlap prevention on, a blocked axis reverts alone and the block
// slides along the obstacle instead of stopping dead.
func TestDragSlidesAlongObstacle(t *testing.T) {
	en := loadedEngine([]domain.Block{
		testBlock("a", 0, 0, 100, 100),
		testBlock("b", 150, 0, 100, 100),
	}, nil)
	en.SetPreventOverlap(true)

	en.PointerDown(Hit{Kind: HitBlock, BlockID: "b"}, ev(200, 50))
	en.PointerMove(ev(100, 150)) // toward a, and downward

	b, _ := en.scene.Block("b")
	if b.X != 150 {
		t.Errorf("x = %.0f, want 150 (blocked by neighbor)", b.X)
	}
	if b.Y != 100 {
		t.Errorf("y = %.0f, want 100 (free axis keeps moving)", b.Y)
	}
	en.PointerUp(Hit{Kind: HitBackground}, ev(100, 150))
}

func TestDragOverlapAllowedByDefault(t *testing.T) {
	en := loadedEngine([]domain.Block{
		testBlock("a", 0, 0, 100, 100),
		testBlock("b", 150, 0, 100, 100),
	}, nil)

	en.PointerDown(Hit{Kind: HitBlock, BlockID: "b"}, ev(200, 50))
	en.PointerMove(ev(100, 50))
	en.PointerUp(Hit{Kind: HitBackground}, ev(100, 50))

	b, _ := en.scene.Block("b")
	if b.X != 50 {
		t.Errorf("x = %.0f, want 50 (overlap permitted)", b.X)
	}
}

func TestDragHighlightsNearestEdge(t *testing.T) {
	en := loadedEngine(
		[]domain.Block{
			testBlock("a", 0, 0, 100, 100),
			testBlock("b", 300, 0, 100, 100),
			testBlock("c", 0, 60, 100, 100),
			testBlock("d", 300, 60, 100, 100),
			testBlock("e", 600, 600, 100, 100),
		},
		[]domain.Edge{
			{ID: "ab", FromID: "a", ToID: "b", FromHandle: domain.HandleRight, ToHandle: domain.HandleLeft},
			{ID: "cd", FromID: "c", ToID: "d", FromHandle: domain.HandleRight, ToHandle: domain.HandleLeft},
		},
	)

	// ab runs along y=50, cd along y=110.
	en.PointerDown(Hit{Kind: HitBlock, BlockID: "e"}, ev(650, 650))

	en.PointerMove(ev(200, 75)) // center closer to ab
	if got := en.Frame().HighlightedEdgeID; got != "ab" {
		t.Errorf("highlight = %q, want ab", got)
	}

	en.PointerMove(ev(200, 85)) // center closer to cd
	if got := en.Frame().HighlightedEdgeID; got != "cd" {
		t.Errorf("highlight = %q, want cd", got)
	}

	en.PointerMove(ev(200, 500)) // far from both
	if got := en.Frame().HighlightedEdgeID; got != "" {
		t.Errorf("highlight = %q, want none", got)
	}
	en.PointerUp(Hit{Kind: HitBackground}, ev(200, 500))
}

// Edges touching the dragged block itself never light up, however close
// the center gets.
func TestDragNeverHighlightsOwnEdge(t *testing.T) {
	en := loadedEngine(
		[]domain.Block{
			testBlock("a", 0, 0, 100, 100),
			testBlock("b", 300, 0, 100, 100),
		},
		[]domain.Edge{{ID: "ab", FromID: "a", ToID: "b", FromHandle: domain.HandleRight, ToHandle: domain.HandleLeft}},
	)

	en.PointerDown(Hit{Kind: HitBlock, BlockID: "b"}, ev(350, 50))
	en.PointerMove(ev(130, 50)) // b's center sits right by the curve now

	if got := en.Frame().HighlightedEdgeID; got != "" {
		t.Errorf("highlight = %q, want none for the block's own edge", got)
	}
	en.PointerUp(Hit{Kind: HitBackground}, ev(130, 50))
}

func TestDropOnEdgeSplicesBlock(t *testing.T) {
	en := loadedEngine(
		[]domain.Block{
			testBlock("a", 0, 0, 100, 100),
			testBlock("b", 300, 0, 100, 100),
			testBlock("c", 600, 600, 100, 100),
		},
		[]domain.Edge{{ID: "ab", FromID: "a", ToID: "b", FromHandle: domain.HandleRight, ToHandle: domain.HandleLeft}},
	)

	en.PointerDown(Hit{Kind: HitBlock, BlockID: "c"}, ev(650, 650))
	en.PointerMove(ev(200, 50)) // c's center lands on the curve
	if got := en.Frame().HighlightedEdgeID; got != "ab" {
		t.Fatalf("highlight = %q, want ab before release", got)
	}
	en.PointerUp(Hit{Kind: HitBackground}, ev(200, 50))

	f := en.Frame()
	if len(f.Blocks) != 3 {
		t.Fatalf("block count = %d, want 3", len(f.Blocks))
	}
	if len(f.Edges) != 2 {
		t.Fatalf("edge count = %d, want 2 after splice", len(f.Edges))
	}
	if f.HighlightedEdgeID != "" {
		t.Errorf("highlight survived the release: %q", f.HighlightedEdgeID)
	}

	var inEdge, outEdge *domain.Edge
	for i := range f.Edges {
		switch f.Edges[i].FromID {
		case "a":
			inEdge = &f.Edges[i]
		case "c":
			outEdge = &f.Edges[i]
		}
	}
	if inEdge == nil || outEdge == nil {
		t.Fatalf("splice edges missing: %+v", f.Edges)
	}
	if inEdge.ToID != "c" || outEdge.ToID != "b" {
		t.Errorf("splice routed a->%s, %s->b", inEdge.ToID, outEdge.FromID)
	}
	// Far endpoints keep their handles; c picks up the curve's dominant
	// axis, left in and right out for a left-to-right path.
	if inEdge.FromHandle != domain.HandleRight || inEdge.ToHandle != domain.HandleLeft {
		t.Errorf("inbound handles = %s -> %s", inEdge.FromHandle, inEdge.ToHandle)
	}
	if outEdge.FromHandle != domain.HandleRight || outEdge.ToHandle != domain.HandleLeft {
		t.Errorf("outbound handles = %s -> %s", outEdge.FromHandle, outEdge.ToHandle)
	}

	// c recentered onto the curve's nearest point, (200,50) here.
	c, _ := en.scene.Block("c")
	if c.X != 150 || c.Y != 0 {
		t.Errorf("spliced block at (%.0f, %.0f), want (150, 0)", c.X, c.Y)
	}

	// The drag's single history entry covers the whole splice.
	if en.HistoryLen() != 1 {
		t.Fatalf("history len = %d, want 1", en.HistoryLen())
	}
	en.Undo()
	f = en.Frame()
	if len(f.Edges) != 1 || f.Edges[0].ID != "ab" {
		t.Errorf("undo did not restore the original edge: %+v", f.Edges)
	}
	c, _ = en.scene.Block("c")
	if c.X != 600 || c.Y != 600 {
		t.Errorf("undo left block at (%.0f, %.0f), want (600, 600)", c.X, c.Y)
	}
}

func TestVerticalSpliceHandles(t *testing.T) {
	en := loadedEngine(
		[]domain.Block{
			testBlock("a", 0, 0, 100, 100),
			testBlock("b", 0, 400, 100, 100),
			testBlock("c", 600, 600, 100, 100),
		},
		[]domain.Edge{{ID: "ab", FromID: "a", ToID: "b", FromHandle: domain.HandleBottom, ToHandle: domain.HandleTop}},
	)

	// Curve runs down x=50 from y=100 to y=400; drop c's center onto it.
	en.PointerDown(Hit{Kind: HitBlock, BlockID: "c"}, ev(650, 650))
	en.PointerMove(ev(50, 250))
	en.PointerUp(Hit{Kind: HitBackground}, ev(50, 250))

	for _, e := range en.Frame().Edges {
		switch e.FromID {
		case "a":
			if e.ToHandle != domain.HandleTop {
				t.Errorf("inbound handle = %s, want top", e.ToHandle)
			}
		case "c":
			if e.FromHandle != domain.HandleBottom {
				t.Errorf("outbound handle = %s, want bottom", e.FromHandle)
			}
		}
	}
}

func TestSpliceHandleDirections(t *testing.T) {
	tests := []struct {
		name    string
		p1, p2  geometry.WorldPoint
		in, out domain.HandleSide
	}{
		{"rightward", geometry.WorldPoint{X: 0, Y: 0}, geometry.WorldPoint{X: 300, Y: 20}, domain.HandleLeft, domain.HandleRight},
		{"leftward", geometry.WorldPoint{X: 300, Y: 0}, geometry.WorldPoint{X: 0, Y: 20}, domain.HandleRight, domain.HandleLeft},
		{"downward", geometry.WorldPoint{X: 0, Y: 0}, geometry.WorldPoint{X: 20, Y: 300}, domain.HandleTop, domain.HandleBottom},
		{"upward", geometry.WorldPoint{X: 20, Y: 300}, geometry.WorldPoint{X: 0, Y: 0}, domain.HandleBottom, domain.HandleTop},
	}
	for _, tt := range tests {
		in, out := spliceHandles(tt.p1, tt.p2)
		if in != tt.in || out != tt.out {
			t.Errorf("%s: handles = %s/%s, want %s/%s", tt.name, in, out, tt.in, tt.out)
		}
	}
}

func TestConnectGesture(t *testing.T) {
	en := loadedEngine([]domain.Block{
		testBlock("a", 0, 0, 100, 100),
		testBlock("b", 300, 0, 100, 100),
	}, nil)

	en.PointerDown(Hit{Kind: HitHandle, BlockID: "a", Handle: domain.HandleRight}, ev(100, 50))
	if en.GestureState() != "connecting" {
		t.Fatalf("state = %q, want connecting", en.GestureState())
	}

	en.PointerMove(ev(200, 100))
	f := en.Frame()
	if f.ConnectingPreview == nil {
		t.Fatal("no preview while connecting")
	}
	if f.ConnectingPreview.FromID != "a" || f.ConnectingPreview.FromHandle != domain.HandleRight {
		t.Errorf("preview origin = %s/%s", f.ConnectingPreview.FromID, f.ConnectingPreview.FromHandle)
	}
	if f.ConnectingPreview.To.X != 200 || f.ConnectingPreview.To.Y != 100 {
		t.Errorf("preview at (%.0f, %.0f), want (200, 100)",
			f.ConnectingPreview.To.X, f.ConnectingPreview.To.Y)
	}

	en.PointerUp(Hit{Kind: HitHandle, BlockID: "b", Handle: domain.HandleLeft}, ev(300, 50))

	f = en.Frame()
	if len(f.Edges) != 1 {
		t.Fatalf("edge count = %d, want 1", len(f.Edges))
	}
	e := f.Edges[0]
	if e.FromID != "a" || e.ToID != "b" || e.FromHandle != domain.HandleRight || e.ToHandle != domain.HandleLeft {
		t.Errorf("edge = %+v", e)
	}
	if f.ConnectingPreview != nil {
		t.Error("preview survived the release")
	}
	if en.HistoryLen() != 1 {
		t.Errorf("history len = %d, want 1", en.HistoryLen())
	}
}

func TestConnectReleaseCancels(t *testing.T) {
	tests := []struct {
		name string
		hit  Hit
	}{
		{"empty space", Hit{Kind: HitBackground}},
		{"own block", Hit{Kind: HitHandle, BlockID: "a", Handle: domain.HandleLeft}},
		{"block body", Hit{Kind: HitBlock, BlockID: "b"}},
	}
	for _, tt := range tests {
		en := loadedEngine([]domain.Block{
			testBlock("a", 0, 0, 100, 100),
			testBlock("b", 300, 0, 100, 100),
		}, nil)

		en.PointerDown(Hit{Kind: HitHandle, BlockID: "a", Handle: domain.HandleRight}, ev(100, 50))
		en.PointerUp(tt.hit, ev(250, 50))

		if n := len(en.Frame().Edges); n != 0 {
			t.Errorf("%s: release created %d edges", tt.name, n)
		}
		if en.HistoryLen() != 0 {
			t.Errorf("%s: cancelled connect pushed history", tt.name)
		}
		if en.GestureState() != "idle" {
			t.Errorf("%s: state = %q, want idle", tt.name, en.GestureState())
		}
	}
}

func TestConnectFromInvalidOrigin(t *testing.T) {
	en := loadedEngine([]domain.Block{testBlock("a", 0, 0, 100, 100)}, nil)

	en.PointerDown(Hit{Kind: HitHandle, BlockID: "ghost", Handle: domain.HandleRight}, ev(0, 0))
	if en.GestureState() != "idle" {
		t.Errorf("unknown block started a gesture: %q", en.GestureState())
	}
	en.PointerDown(Hit{Kind: HitHandle, BlockID: "a", Handle: "middle"}, ev(0, 0))
	if en.GestureState() != "idle" {
		t.Errorf("invalid handle started a gesture: %q", en.GestureState())
	}
}

// A second pointer-down mid-gesture is dropped; the first gesture runs to
// its own release.
func TestSecondPointerDownIgnored(t *testing.T) {
	en := loadedEngine([]domain.Block{testBlock("a", 0, 0, 100, 100)}, nil)

	en.PointerDown(Hit{Kind: HitBackground}, ev(500, 500))
	en.PointerDown(Hit{Kind: HitBlock, BlockID: "a"}, ev(50, 50))

	if en.GestureState() != "panning" {
		t.Fatalf("state = %q, want panning", en.GestureState())
	}
	if en.HistoryLen() != 0 {
		t.Error("ignored down pushed history")
	}

	en.PointerUp(Hit{Kind: HitBackground}, ev(500, 500))
	if n := len(en.Frame().Blocks); n != 2 {
		t.Errorf("block count = %d, want 2 (tap still lands)", n)
	}
}

func TestCancelGesture(t *testing.T) {
	en := loadedEngine([]domain.Block{testBlock("a", 0, 0, 100, 100)}, nil)

	en.PointerDown(Hit{Kind: HitBlock, BlockID: "a"}, ev(50, 50))
	en.PointerMove(ev(250, 50))
	en.CancelGesture()

	if en.GestureState() != "idle" {
		t.Fatalf("state = %q after cancel, want idle", en.GestureState())
	}
	// Applied movement stays; the drag-start snapshot makes it undoable.
	b, _ := en.scene.Block("a")
	if b.X != 200 {
		t.Errorf("x = %.0f, want 200", b.X)
	}
	en.Undo()
	b, _ = en.scene.Block("a")
	if b.X != 0 {
		t.Errorf("x = %.0f after undo, want 0", b.X)
	}

	// A stray release after the cancel is inert.
	en.PointerUp(Hit{Kind: HitBackground}, ev(250, 50))
	if n := len(en.Frame().Blocks); n != 1 {
		t.Errorf("stray release created a block: %d total", n)
	}
}

func TestCancelConnectDropsPreview(t *testing.T) {
	en := loadedEngine([]domain.Block{testBlock("a", 0, 0, 100, 100)}, nil)

	en.PointerDown(Hit{Kind: HitHandle, BlockID: "a", Handle: domain.HandleRight}, ev(100, 50))
	en.CancelGesture()

	if en.Frame().ConnectingPreview != nil {
		t.Error("preview survived the cancel")
	}
	if n := len(en.Frame().Edges); n != 0 {
		t.Errorf("cancel created %d edges", n)
	}
}

func TestEdgeClicked(t *testing.T) {
	en := loadedEngine(
		[]domain.Block{testBlock("a", 0, 0, 100, 100), testBlock("b", 300, 0, 100, 100)},
		[]domain.Edge{{ID: "ab", FromID: "a", ToID: "b", FromHandle: domain.HandleRight, ToHandle: domain.HandleLeft}},
	)

	en.EdgeClicked("ab")
	if n := len(en.Frame().Edges); n != 0 {
		t.Fatalf("edge count = %d, want 0", n)
	}
	if en.HistoryLen() != 1 {
		t.Errorf("history len = %d, want 1", en.HistoryLen())
	}
	en.Undo()
	if n := len(en.Frame().Edges); n != 1 {
		t.Errorf("undo did not restore the edge")
	}

	en.EdgeClicked("ghost")
	if en.HistoryLen() != 0 {
		t.Error("unknown edge click pushed history")
	}
}

func TestEdgeClickIgnoredMidGesture(t *testing.T) {
	en := loadedEngine(
		[]domain.Block{testBlock("a", 0, 0, 100, 100), testBlock("b", 300, 0, 100, 100)},
		[]domain.Edge{{ID: "ab", FromID: "a", ToID: "b", FromHandle: domain.HandleRight, ToHandle: domain.HandleLeft}},
	)

	en.PointerDown(Hit{Kind: HitBlock, BlockID: "a"}, ev(50, 50))
	en.EdgeClicked("ab")

	if n := len(en.Frame().Edges); n != 1 {
		t.Errorf("stray click deleted the edge mid-drag")
	}
	en.PointerUp(Hit{Kind: HitBackground}, ev(50, 50))
}
