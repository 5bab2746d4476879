package domain

// BoardData is the persisted/exported shape of one board's scene. Loaders
// accept it verbatim; edges referencing missing blocks are pruned, never a
// load error.
type BoardData struct {
	Blocks []Block `json:"blocks"`
	Edges  []Edge  `json:"edges"`
}

// BoardState is the complete state of a board for rendering.
// Returned to the frontend when a board opens.
type BoardState struct {
	Board  Board   `json:"board"`
	Blocks []Block `json:"blocks"`
	Edges  []Edge  `json:"edges"`
}
