package domain

import "time"

// Board is one canvas: a named scene plus its remembered viewport.
type Board struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Icon          string    `json:"icon"`
	Order         int       `json:"order"`
	ViewportX     float64   `json:"viewportX"`
	ViewportY     float64   `json:"viewportY"`
	ViewportScale float64   `json:"viewportScale"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type BoardStore interface {
	CreateBoard(b *Board) error
	GetBoard(id string) (*Board, error)
	ListBoards() ([]Board, error)
	UpdateBoard(b *Board) error
	DeleteBoard(id string) error
}
