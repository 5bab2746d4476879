package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"noteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// BlockWriter tests
// fakeBoard stands in for the service-side board access.
// ─────────────────────────────────────────────────────────────

type fakeBoard struct {
	blocks  []domain.Block
	deleted []string
	nextID  int
}

func (f *fakeBoard) ListBlocks(ctx context.Context, boardID string) ([]domain.Block, error) {
	out := make([]domain.Block, len(f.blocks))
	copy(out, f.blocks)
	return out, nil
}

func (f *fakeBoard) DeleteBlocks(ctx context.Context, boardID string, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
		f.deleted = append(f.deleted, id)
	}
	kept := f.blocks[:0]
	for _, b := range f.blocks {
		if !drop[b.ID] {
			kept = append(kept, b)
		}
	}
	f.blocks = kept
	return nil
}

func (f *fakeBoard) InsertBlocks(ctx context.Context, boardID string, blocks []domain.Block) ([]domain.Block, error) {
	inserted := make([]domain.Block, 0, len(blocks))
	for _, b := range blocks {
		f.nextID++
		b.ID = fmt.Sprintf("blk-%d", f.nextID)
		b.BoardID = boardID
		f.blocks = append(f.blocks, b)
		inserted = append(inserted, b)
	}
	return inserted, nil
}

func existingBlock(id, category string, x, y, w, h float64) domain.Block {
	return domain.Block{ID: id, BoardID: "board-1", Type: domain.BlockTypeText, Category: category, X: x, Y: y, Width: w, Height: h}
}

func textTarget(category, titleField string) Target {
	return Target{BoardID: "board-1", BlockType: domain.BlockTypeText, TitleField: titleField, Category: category}
}

func TestBlockWriterEmptyBatchIsNoOp(t *testing.T) {
	board := &fakeBoard{blocks: []domain.Block{existingBlock("a", "sync", 0, 0, 240, 120)}}
	w := &BlockWriter{Board: board}

	n, err := w.Write(context.Background(), textTarget("sync", ""), &Schema{}, nil, SyncReplace)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 written, got %d", n)
	}
	// An empty source must never wipe the previous import.
	if len(board.deleted) != 0 {
		t.Fatalf("expected no deletions, got %v", board.deleted)
	}
}

func TestBlockWriterReplaceDeletesOwnCategoryOnly(t *testing.T) {
	board := &fakeBoard{blocks: []domain.Block{
		existingBlock("mine", "sync", 0, 0, 240, 120),
		existingBlock("hand", "", 0, 200, 240, 120),
		existingBlock("other", "other-job", 0, 400, 240, 120),
	}}
	w := &BlockWriter{Board: board}

	schema := &Schema{Fields: []Field{{Name: "name", Type: "text"}}}
	records := []Record{rec(map[string]any{"name": "Ada"})}

	n, err := w.Write(context.Background(), textTarget("sync", ""), schema, records, SyncReplace)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 written, got %d", n)
	}
	if len(board.deleted) != 1 || board.deleted[0] != "mine" {
		t.Fatalf("expected only the matching category deleted, got %v", board.deleted)
	}
	for _, b := range board.blocks {
		if b.ID == "hand" || b.ID == "other" {
			continue
		}
		if b.Category != "sync" {
			t.Errorf("imported block missing category tag: %+v", b)
		}
	}
}

func TestBlockWriterAppendKeepsPreviousImport(t *testing.T) {
	board := &fakeBoard{blocks: []domain.Block{existingBlock("mine", "sync", 0, 0, 240, 120)}}
	w := &BlockWriter{Board: board}

	schema := &Schema{Fields: []Field{{Name: "name", Type: "text"}}}
	_, err := w.Write(context.Background(), textTarget("sync", ""), schema, []Record{rec(map[string]any{"name": "Ada"})}, SyncAppend)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(board.deleted) != 0 {
		t.Fatalf("append must not delete, got %v", board.deleted)
	}
	if len(board.blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(board.blocks))
	}
}

func TestBlockWriterGridLayout(t *testing.T) {
	board := &fakeBoard{}
	w := &BlockWriter{Board: board}

	schema := &Schema{Fields: []Field{{Name: "i", Type: "number"}}}
	records := make([]Record, 5)
	for i := range records {
		records[i] = rec(map[string]any{"i": float64(i)})
	}

	if _, err := w.Write(context.Background(), textTarget("sync", ""), schema, records, SyncReplace); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// 4 columns, 260 x-stride (240 + 20 gap), 140 y-stride.
	want := [][2]float64{{0, 0}, {260, 0}, {520, 0}, {780, 0}, {0, 140}}
	for i, b := range board.blocks {
		if b.X != want[i][0] || b.Y != want[i][1] {
			t.Errorf("block %d at (%v, %v), want (%v, %v)", i, b.X, b.Y, want[i][0], want[i][1])
		}
		if b.Width != 240 || b.Height != 120 {
			t.Errorf("block %d size (%v, %v), want (240, 120)", i, b.Width, b.Height)
		}
	}
}

func TestBlockWriterPlacesBelowExistingContent(t *testing.T) {
	board := &fakeBoard{blocks: []domain.Block{
		existingBlock("a", "", 40, 30, 240, 100),
		existingBlock("b", "", 320, 0, 240, 60),
	}}
	w := &BlockWriter{Board: board}

	schema := &Schema{Fields: []Field{{Name: "n", Type: "text"}}}
	if _, err := w.Write(context.Background(), textTarget("sync", ""), schema, []Record{rec(map[string]any{"n": "x"})}, SyncAppend); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got := board.blocks[len(board.blocks)-1]
	// Leftmost existing x is 40; lowest bottom is 30+100=130, plus the gap.
	if got.X != 40 || got.Y != 150 {
		t.Fatalf("imported block at (%v, %v), want (40, 150)", got.X, got.Y)
	}
}

func TestBlockWriterTableTargetWritesSingleBlock(t *testing.T) {
	board := &fakeBoard{}
	w := &BlockWriter{Board: board}

	schema := &Schema{Fields: []Field{{Name: "name", Type: "text"}, {Name: "qty", Type: "number"}}}
	records := []Record{
		rec(map[string]any{"name": "bolts", "qty": 12.0}),
		rec(map[string]any{"name": "nuts", "qty": 7.0}),
	}

	target := Target{BoardID: "board-1", BlockType: domain.BlockTypeTable, Category: "inventory"}
	n, err := w.Write(context.Background(), target, schema, records, SyncReplace)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 block for table target, got %d", n)
	}

	b := board.blocks[0]
	if b.Type != domain.BlockTypeTable || b.Width != 360 || b.Height != 240 {
		t.Fatalf("unexpected table block: %+v", b)
	}
	if b.Title != "inventory" {
		t.Errorf("table title = %q, want category name", b.Title)
	}

	var content struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	if err := json.Unmarshal([]byte(b.Content), &content); err != nil {
		t.Fatalf("table content is not JSON: %v", err)
	}
	if len(content.Columns) != 2 || content.Columns[0] != "name" || content.Columns[1] != "qty" {
		t.Errorf("columns = %v", content.Columns)
	}
	if len(content.Rows) != 2 || content.Rows[1][0] != "nuts" || content.Rows[1][1] != 7.0 {
		t.Errorf("rows = %v", content.Rows)
	}
}

func TestBlockWriterRecordTitleAndContent(t *testing.T) {
	board := &fakeBoard{}
	w := &BlockWriter{Board: board}

	schema := &Schema{Fields: []Field{
		{Name: "name", Type: "text"},
		{Name: "role", Type: "text"},
		{Name: "stars", Type: "number"},
	}}
	records := []Record{rec(map[string]any{"name": "Ada", "role": "engineer", "stars": 1234567.0})}

	if _, err := w.Write(context.Background(), textTarget("team", "name"), schema, records, SyncReplace); err != nil {
		t.Fatalf("Write: %v", err)
	}

	b := board.blocks[0]
	if b.Title != "Ada" {
		t.Errorf("title = %q, want %q", b.Title, "Ada")
	}
	if strings.Contains(b.Content, "name:") {
		t.Error("title field should not repeat in the content body")
	}
	// Schema order, plain decimal formatting for large numbers.
	if b.Content != "role: engineer\nstars: 1234567" {
		t.Errorf("content = %q", b.Content)
	}
}
