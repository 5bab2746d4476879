package domain

import "time"

// HandleSide is one of the four anchor sides on a block, used both for the
// resize-adjacent drag affordances and as edge anchor points.
type HandleSide string

const (
	HandleTop    HandleSide = "top"
	HandleRight  HandleSide = "right"
	HandleBottom HandleSide = "bottom"
	HandleLeft   HandleSide = "left"
)

// Valid reports whether s names one of the four sides.
func (s HandleSide) Valid() bool {
	switch s {
	case HandleTop, HandleRight, HandleBottom, HandleLeft:
		return true
	}
	return false
}

// Edge is a directional link between two blocks, anchored to one side of
// each. FromID and ToID always reference live blocks and never match each
// other; edges violating that are garbage and get pruned.
type Edge struct {
	ID         string     `json:"id"`
	BoardID    string     `json:"boardId"`
	FromID     string     `json:"fromId"`
	ToID       string     `json:"toId"`
	FromHandle HandleSide `json:"fromHandle"`
	ToHandle   HandleSide `json:"toHandle"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type EdgeStore interface {
	CreateEdge(e *Edge) error
	GetEdge(id string) (*Edge, error)
	ListEdges(boardID string) ([]Edge, error)
	DeleteEdge(id string) error
	DeleteEdgesByBoard(boardID string) error
	DeleteEdgesByBlock(blockID string) error
}
