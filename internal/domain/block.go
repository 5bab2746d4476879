package domain

import "time"

type BlockType string

const (
	BlockTypeText      BlockType = "text"
	BlockTypeChecklist BlockType = "checklist"
	BlockTypeTable     BlockType = "table"
	BlockTypeImage     BlockType = "image"
	BlockTypeCode      BlockType = "code"
)

// DefaultBlockType is what a bare tap on the canvas creates.
const DefaultBlockType = BlockTypeText

// Block is a content card on a board. Position and size are world-space;
// content is opaque here and interpreted only by the editor for its type.
type Block struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Type      BlockType `json:"type"`
	Title     string    `json:"title,omitempty"`
	Category  string    `json:"category,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Content   string    `json:"content"` // text, checklist JSON, table JSON, image path, code
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BlockStore interface {
	CreateBlock(b *Block) error
	GetBlock(id string) (*Block, error)
	ListBlocks(boardID string) ([]Block, error)
	UpdateBlock(b *Block) error
	DeleteBlock(id string) error
	DeleteBlocksByBoard(boardID string) error
}
