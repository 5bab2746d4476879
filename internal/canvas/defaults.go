package canvas

import "noteboard/internal/domain"

// Default geometry for new blocks.
const (
	DefaultBlockWidth  = 240.0
	DefaultBlockHeight = 120.0

	// Minimum block footprint, enforced during resize only. Programmatic
	// creation may go smaller.
	MinBlockWidth  = 150.0
	MinBlockHeight = 100.0

	// duplicateOffset keeps a duplicated block visible next to its source.
	duplicateOffset = 20.0

	// dragSnapRadius is the enlarged catch radius used while a block is
	// dragged over edges, in world units.
	dragSnapRadius = 40.0
)

// typeSizes overrides the default footprint for block types that need more
// room than a bare text card.
var typeSizes = map[domain.BlockType][2]float64{
	domain.BlockTypeTable:     {360, 240},
	domain.BlockTypeCode:      {360, 240},
	domain.BlockTypeChecklist: {240, 180},
	domain.BlockTypeImage:     {240, 240},
}

// SizeFor returns the default width and height for a block type. Exported
// for collaborators that place blocks before inserting them.
func SizeFor(t domain.BlockType) (float64, float64) {
	if s, ok := typeSizes[t]; ok {
		return s[0], s[1]
	}
	return DefaultBlockWidth, DefaultBlockHeight
}
