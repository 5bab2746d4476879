package canvas

import (
	"noteboard/internal/domain"
	"noteboard/internal/geometry"
)

// handleNormal maps a handle side to its outward unit normal.
func handleNormal(side domain.HandleSide) geometry.Vec {
	switch side {
	case domain.HandleTop:
		return geometry.Vec{X: 0, Y: -1}
	case domain.HandleBottom:
		return geometry.Vec{X: 0, Y: 1}
	case domain.HandleLeft:
		return geometry.Vec{X: -1, Y: 0}
	case domain.HandleRight:
		return geometry.Vec{X: 1, Y: 0}
	}
	return geometry.Vec{}
}

// handlePoint returns the world position of a block's handle: the midpoint
// of the named side.
func handlePoint(b domain.Block, side domain.HandleSide) geometry.WorldPoint {
	switch side {
	case domain.HandleTop:
		return geometry.WorldPoint{X: b.X + b.Width/2, Y: b.Y}
	case domain.HandleBottom:
		return geometry.WorldPoint{X: b.X + b.Width/2, Y: b.Y + b.Height}
	case domain.HandleLeft:
		return geometry.WorldPoint{X: b.X, Y: b.Y + b.Height/2}
	case domain.HandleRight:
		return geometry.WorldPoint{X: b.X + b.Width, Y: b.Y + b.Height/2}
	}
	return geometry.WorldPoint{X: b.X, Y: b.Y}
}

func blockRect(b domain.Block) geometry.WorldRect {
	return geometry.WorldRect{X: b.X, Y: b.Y, W: b.Width, H: b.Height}
}

func blockCenter(b domain.Block) geometry.WorldPoint {
	return blockRect(b).Center()
}

// edgeCurve resolves an edge to its anchor points and outward normals.
// ok is false when either endpoint block is gone.
func (s *Scene) edgeCurve(e domain.Edge) (p1, p2 geometry.WorldPoint, n1, n2 geometry.Vec, ok bool) {
	from, okFrom := s.blocks[e.FromID]
	to, okTo := s.blocks[e.ToID]
	if !okFrom || !okTo {
		return p1, p2, n1, n2, false
	}
	return handlePoint(from, e.FromHandle), handlePoint(to, e.ToHandle),
		handleNormal(e.FromHandle), handleNormal(e.ToHandle), true
}
