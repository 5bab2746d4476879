package mcpserver

import (
	"math"
	"testing"

	"noteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// LayoutEngine tests
// ─────────────────────────────────────────────────────────────

func TestNextPositionEmptyBoard(t *testing.T) {
	le := NewLayoutEngine()
	if x, y := le.NextPosition(nil, 480, 360); x != 0 || y != 0 {
		t.Errorf("empty board placed at (%.0f, %.0f), want origin", x, y)
	}
}

func TestNextPositionClearsExistingBlocks(t *testing.T) {
	tests := []struct {
		name     string
		existing []domain.Block
	}{
		{"one block at origin", []domain.Block{
			{X: 0, Y: 0, Width: 480, Height: 360},
		}},
		{"two side by side", []domain.Block{
			{X: 0, Y: 0, Width: 480, Height: 360},
			{X: 540, Y: 0, Width: 480, Height: 360},
		}},
		{"scattered", []domain.Block{
			{X: 0, Y: 0, Width: 300, Height: 200},
			{X: 900, Y: 150, Width: 240, Height: 120},
			{X: 300, Y: 600, Width: 480, Height: 360},
		}},
	}

	for _, tt := range tests {
		le := NewLayoutEngine()
		x, y := le.NextPosition(tt.existing, 480, 360)
		got := rect{x, y, 480, 360}
		for _, b := range tt.existing {
			margin := rect{b.X - Padding, b.Y - Padding, b.Width + Padding*2, b.Height + Padding*2}
			if got.intersects(margin) {
				t.Errorf("%s: (%.0f, %.0f) lands inside the margin of block at (%.0f, %.0f)",
					tt.name, x, y, b.X, b.Y)
			}
		}
	}
}

func TestNextPositionStaysOnGrid(t *testing.T) {
	le := NewLayoutEngine()
	// An off-grid block must not drag the result off the grid.
	existing := []domain.Block{{X: 10, Y: 10, Width: 100, Height: 100}}
	x, y := le.NextPosition(existing, 240, 120)
	if math.Mod(x, GridSize) != 0 || math.Mod(y, GridSize) != 0 {
		t.Errorf("(%.0f, %.0f) is off the %.0f-unit grid", x, y, GridSize)
	}
}

func TestArrangeGroupWrapsRows(t *testing.T) {
	le := NewLayoutEngine()
	blocks := make([]domain.Block, 6)
	for i := range blocks {
		blocks[i] = domain.Block{Width: 480, Height: 200}
	}

	arranged := le.ArrangeGroup(blocks, 0, 0)
	if len(arranged) != 6 {
		t.Fatalf("expected 6 blocks back, got %d", len(arranged))
	}

	rows := map[float64]int{}
	for i, b := range arranged {
		if b.X+b.Width > MaxRowW {
			t.Errorf("block %d sticks out past the row cap at x=%.0f", i, b.X)
		}
		rows[b.Y]++
	}
	if len(rows) < 2 {
		t.Error("six 480-wide blocks should not fit on one row")
	}

	for i := 0; i < len(arranged); i++ {
		for j := i + 1; j < len(arranged); j++ {
			a := rect{arranged[i].X, arranged[i].Y, arranged[i].Width, arranged[i].Height}
			b := rect{arranged[j].X, arranged[j].Y, arranged[j].Width, arranged[j].Height}
			if a.intersects(b) {
				t.Errorf("blocks %d and %d overlap: (%.0f,%.0f) and (%.0f,%.0f)",
					i, j, a.x, a.y, b.x, b.y)
			}
		}
	}
}

func TestSnapRoundsToNearestCell(t *testing.T) {
	le := NewLayoutEngine()
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{14, 0},
		{15, 30},
		{30, 30},
		{44, 30},
		{46, 60},
		{100, 90},
		{-20, -30},
	}
	for _, tt := range tests {
		if got := le.snap(tt.in); got != tt.want {
			t.Errorf("snap(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
