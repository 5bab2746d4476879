package mcpserver

import (
	"math"

	"noteboard/internal/domain"
)

const (
	GridSize = 30.0 // matches frontend GRID_SIZE
	Padding  = 60.0 // 2 grid cells between blocks
	MaxRowW  = 1800.0
)

// LayoutEngine picks canvas positions for blocks the MCP server creates,
// keeping them off the blocks already on the board.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// rect is a simple axis-aligned bounding box.
type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

// NextPosition returns a grid position where a block of size (newW, newH)
// clears every existing block by at least the padding margin. The scan walks
// grid cells row by row; a free row always exists just below the lowest
// block, so that bound caps the walk.
func (le *LayoutEngine) NextPosition(existing []domain.Block, newW, newH float64) (float64, float64) {
	if len(existing) == 0 {
		return 0, 0
	}

	obstacles := make([]rect, len(existing))
	floor := 0.0
	for i, b := range existing {
		obstacles[i] = rect{
			x: b.X - le.padding,
			y: b.Y - le.padding,
			w: b.Width + le.padding*2,
			h: b.Height + le.padding*2,
		}
		if bottom := b.Y + b.Height + le.padding; bottom > floor {
			floor = bottom
		}
	}

	candidate := rect{w: newW, h: newH}
	for y := 0.0; y <= floor+le.gridSize; y += le.gridSize {
		for x := 0.0; x < le.maxRowW; x += le.gridSize {
			candidate.x = x
			candidate.y = y

			free := true
			for _, obs := range obstacles {
				if candidate.intersects(obs) {
					free = false
					break
				}
			}
			if free {
				return candidate.x, candidate.y
			}
		}
	}

	return 0, le.snap(floor)
}

// ArrangeGroup lays the blocks out in reading order from (startX, startY),
// wrapping to a new row when the current one would pass the row width cap.
// Positions are written in place and the slice is returned.
func (le *LayoutEngine) ArrangeGroup(blocks []domain.Block, startX, startY float64) []domain.Block {
	left := le.snap(startX)
	x, y := left, le.snap(startY)
	rowH := 0.0

	for i := range blocks {
		w, h := blocks[i].Width, blocks[i].Height
		if x > left && x+w > le.maxRowW {
			x = left
			y += le.snap(rowH + le.padding)
			rowH = 0
		}

		blocks[i].X = x
		blocks[i].Y = y
		if h > rowH {
			rowH = h
		}
		x += le.snap(w + le.padding)
	}

	return blocks
}
