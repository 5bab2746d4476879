package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"noteboard/internal/domain"
)

// ── Destination ────────────────────────────────────────────
// A Destination writes records into a target system.
// For now, the only destination is a board.
//
// Pattern: Singer target protocol.

// SyncMode determines how records are written to the destination.
type SyncMode string

const (
	SyncReplace SyncMode = "replace" // delete this job's previous blocks, insert fresh
	SyncAppend  SyncMode = "append"  // add blocks without deleting existing
)

// Target identifies where on the canvas an import lands and how records
// become blocks.
type Target struct {
	BoardID    string
	BlockType  domain.BlockType
	TitleField string
	Category   string // tag written on every imported block; replace mode deletes by it
}

// Destination writes records to a target system.
type Destination interface {
	Write(ctx context.Context, target Target, schema *Schema, records []Record, mode SyncMode) (int, error)
}

// ── Board Destination ──────────────────────────────────────
// Materializes records as blocks on a board.

// BoardTarget is the slice of board access the writer needs. The service
// layer implements it on top of the canvas engine so imported blocks go
// through the same bookkeeping as hand-placed ones.
type BoardTarget interface {
	ListBlocks(ctx context.Context, boardID string) ([]domain.Block, error)
	DeleteBlocks(ctx context.Context, boardID string, ids []string) error
	InsertBlocks(ctx context.Context, boardID string, blocks []domain.Block) ([]domain.Block, error)
}

// Imported blocks are laid out in a fixed grid below whatever is already
// on the board, so a sync never covers hand-placed content.
const (
	importColumns = 4
	importGap     = 20.0

	recordBlockWidth  = 240.0
	recordBlockHeight = 120.0
	tableBlockWidth   = 360.0
	tableBlockHeight  = 240.0
)

// BlockWriter implements Destination for boards.
type BlockWriter struct {
	Board BoardTarget
}

func (w *BlockWriter) Write(ctx context.Context, target Target, schema *Schema, records []Record, mode SyncMode) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	existing, err := w.Board.ListBlocks(ctx, target.BoardID)
	if err != nil {
		return 0, fmt.Errorf("list blocks: %w", err)
	}

	// On replace mode, delete this job's previous blocks first. Blocks are
	// matched by category tag so hand-placed content is never touched.
	kept := existing
	if mode == SyncReplace && target.Category != "" {
		var stale []string
		kept = make([]domain.Block, 0, len(existing))
		for _, b := range existing {
			if b.Category == target.Category {
				stale = append(stale, b.ID)
			} else {
				kept = append(kept, b)
			}
		}
		if len(stale) > 0 {
			if err := w.Board.DeleteBlocks(ctx, target.BoardID, stale); err != nil {
				return 0, fmt.Errorf("clear previous import: %w", err)
			}
		}
	}

	originX, originY := importOrigin(kept)
	blocks := buildBlocks(target, schema, records, originX, originY)

	inserted, err := w.Board.InsertBlocks(ctx, target.BoardID, blocks)
	if err != nil {
		return 0, fmt.Errorf("insert blocks: %w", err)
	}
	return len(inserted), nil
}

// importOrigin returns the top-left corner for a fresh batch: aligned with
// the leftmost surviving block, one gap below the lowest one. An empty
// board starts at the world origin.
func importOrigin(existing []domain.Block) (float64, float64) {
	if len(existing) == 0 {
		return 0, 0
	}
	x := existing[0].X
	bottom := existing[0].Y + existing[0].Height
	for _, b := range existing[1:] {
		if b.X < x {
			x = b.X
		}
		if b.Y+b.Height > bottom {
			bottom = b.Y + b.Height
		}
	}
	return x, bottom + importGap
}

func buildBlocks(target Target, schema *Schema, records []Record, originX, originY float64) []domain.Block {
	// Table target: the whole result set folds into one table block.
	if target.BlockType == domain.BlockTypeTable {
		return []domain.Block{tableBlock(target, schema, records, originX, originY)}
	}

	blocks := make([]domain.Block, 0, len(records))
	for i, rec := range records {
		col := i % importColumns
		row := i / importColumns
		blocks = append(blocks, domain.Block{
			Type:     target.BlockType,
			Title:    recordTitle(target, rec),
			Category: target.Category,
			Content:  recordContent(target, schema, rec),
			X:        originX + float64(col)*(recordBlockWidth+importGap),
			Y:        originY + float64(row)*(recordBlockHeight+importGap),
			Width:    recordBlockWidth,
			Height:   recordBlockHeight,
		})
	}
	return blocks
}

// tableBlock serializes all records into the JSON shape the table editor
// renders: {"columns": [...], "rows": [[...], ...]}.
func tableBlock(target Target, schema *Schema, records []Record, x, y float64) domain.Block {
	cols := schema.FieldNames()
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = rec.Data[c]
		}
		rows = append(rows, row)
	}
	content, _ := json.Marshal(map[string]any{"columns": cols, "rows": rows})

	title := target.Category
	if title == "" {
		title = "Imported data"
	}
	return domain.Block{
		Type:     domain.BlockTypeTable,
		Title:    title,
		Category: target.Category,
		Content:  string(content),
		X:        x,
		Y:        y,
		Width:    tableBlockWidth,
		Height:   tableBlockHeight,
	}
}

func recordTitle(target Target, rec Record) string {
	if target.TitleField == "" {
		return ""
	}
	v, ok := rec.Data[target.TitleField]
	if !ok || v == nil {
		return ""
	}
	return formatValue(v)
}

// recordContent renders one "field: value" line per schema field, in schema
// order. The title field is skipped since it already shows on the block.
func recordContent(target Target, schema *Schema, rec Record) string {
	var sb strings.Builder
	for _, name := range schema.FieldNames() {
		if name == target.TitleField {
			continue
		}
		v, ok := rec.Data[name]
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(formatValue(v))
	}
	return sb.String()
}

// formatValue avoids scientific notation for large JSON numbers.
func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
