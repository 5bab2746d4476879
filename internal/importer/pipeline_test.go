package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"noteboard/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Pipeline tests
// A memory source is registered under the "memory" type; each test
// re-registers its own instance, which overwrites the previous one.
// ─────────────────────────────────────────────────────────────

type memorySource struct {
	schema  *Schema
	records []Record
	readErr error
}

func (s *memorySource) Spec() SourceSpec {
	return SourceSpec{Type: "memory", Label: "Memory"}
}

func (s *memorySource) Discover(ctx context.Context, cfg SourceConfig) (*Schema, error) {
	return s.schema, nil
}

func (s *memorySource) Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error) {
	out := make(chan Record, len(s.records)+1)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		for _, r := range s.records {
			out <- r
		}
		if s.readErr != nil {
			errCh <- s.readErr
		}
	}()
	return out, errCh
}

func TestPipelineRunEndToEnd(t *testing.T) {
	RegisterSource(&memorySource{
		schema: &Schema{Fields: []Field{{Name: "name", Type: "text"}, {Name: "status", Type: "text"}}},
		records: []Record{
			rec(map[string]any{"name": "alpha", "status": "done"}),
			rec(map[string]any{"name": "beta", "status": "open"}),
			rec(map[string]any{"name": "gamma", "status": "done"}),
		},
	})

	board := &fakeBoard{}
	p := &Pipeline{Dest: &BlockWriter{Board: board}}

	job := &Job{
		ID:         "job-1",
		Name:       "standup",
		SourceType: "memory",
		Transforms: []TransformConfig{
			{Type: "filter", Config: map[string]any{"field": "status", "op": "eq", "value": "done"}},
		},
		BoardID:    "board-1",
		BlockType:  domain.BlockTypeText,
		TitleField: "name",
		SyncMode:   SyncReplace,
	}

	result, err := p.Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("status = %q, want success", result.Status)
	}
	if result.RowsRead != 3 {
		t.Errorf("rows read = %d, want 3", result.RowsRead)
	}
	if result.BlocksWritten != 2 {
		t.Errorf("blocks written = %d, want 2", result.BlocksWritten)
	}

	if len(board.blocks) != 2 {
		t.Fatalf("expected 2 blocks on the board, got %d", len(board.blocks))
	}
	for _, b := range board.blocks {
		if b.Category != "standup" {
			t.Errorf("block category = %q, want the job name", b.Category)
		}
	}
	if board.blocks[0].Title != "alpha" || board.blocks[1].Title != "gamma" {
		t.Errorf("titles = %q, %q", board.blocks[0].Title, board.blocks[1].Title)
	}
}

func TestPipelineRunUnknownSource(t *testing.T) {
	p := &Pipeline{Dest: &BlockWriter{Board: &fakeBoard{}}}

	result, err := p.Run(context.Background(), &Job{ID: "job-x", SourceType: "does_not_exist"})
	if err == nil {
		t.Fatal("expected error for unknown source type")
	}
	if result.Status != "error" {
		t.Errorf("status = %q, want error", result.Status)
	}
}

func TestPipelineRunSourceReadError(t *testing.T) {
	RegisterSource(&memorySource{
		schema:  &Schema{},
		records: []Record{rec(map[string]any{"a": 1.0})},
		readErr: errors.New("connection reset"),
	})

	board := &fakeBoard{}
	p := &Pipeline{Dest: &BlockWriter{Board: board}}

	result, err := p.Run(context.Background(), &Job{ID: "job-1", Name: "j", SourceType: "memory", BoardID: "board-1"})
	if err == nil {
		t.Fatal("expected read error to surface")
	}
	if result.Status != "error" || !strings.HasPrefix(result.Error, "read:") {
		t.Errorf("result = %+v", result)
	}
	// Nothing may be written when the read failed part-way.
	if len(board.blocks) != 0 {
		t.Errorf("expected no blocks written, got %d", len(board.blocks))
	}
}

func TestPipelinePreviewCapsRows(t *testing.T) {
	records := make([]Record, 10)
	for i := range records {
		records[i] = rec(map[string]any{"i": float64(i)})
	}
	RegisterSource(&memorySource{
		schema:  &Schema{Fields: []Field{{Name: "i", Type: "number"}}},
		records: records,
	})

	p := &Pipeline{}
	got, schema, err := p.Preview(context.Background(), "memory", nil, 3)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 preview rows, got %d", len(got))
	}
	if len(schema.Fields) != 1 || schema.Fields[0].Name != "i" {
		t.Errorf("schema = %+v", schema)
	}
}
