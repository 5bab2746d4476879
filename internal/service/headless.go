package service

import (
	"context"
	"fmt"

	"noteboard/internal/canvas"
	"noteboard/internal/domain"
	"noteboard/internal/geometry"
	"noteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// HeadlessCanvas — engine operations on boards without a window
// ─────────────────────────────────────────────────────────────

// HeadlessCanvas applies engine operations to stored boards. Each call
// loads the scene into a fresh engine, runs the operation through the same
// code path the GUI uses, and persists the result. The standalone MCP
// process and the import pipeline both write through it, so programmatic
// edits obey the same rules as hand edits (cascade delete, minimum sizes,
// dangling-edge pruning).
type HeadlessCanvas struct {
	boards *storage.BoardStore
	blocks *storage.BlockStore
	edges  *storage.EdgeStore
}

// NewHeadlessCanvas creates a HeadlessCanvas over the given stores.
func NewHeadlessCanvas(boards *storage.BoardStore, blocks *storage.BlockStore, edges *storage.EdgeStore) *HeadlessCanvas {
	return &HeadlessCanvas{boards: boards, blocks: blocks, edges: edges}
}

// With loads boardID into a fresh engine, runs op, and saves the scene the
// op leaves behind. The board's persisted viewport is installed first so
// viewport-relative placement behaves as it would in the GUI.
func (h *HeadlessCanvas) With(boardID string, op func(*canvas.Engine) error) error {
	board, err := h.boards.GetBoard(boardID)
	if err != nil {
		return err
	}
	blocks, err := h.blocks.ListBlocks(boardID)
	if err != nil {
		return fmt.Errorf("list blocks: %w", err)
	}
	edges, err := h.edges.ListEdges(boardID)
	if err != nil {
		return fmt.Errorf("list edges: %w", err)
	}

	engine := canvas.NewEngine()
	engine.Load(boardID, domain.BoardData{Blocks: blocks, Edges: edges})
	engine.SetViewport(canvas.ViewportState{
		Scale: board.ViewportScale,
		Pan:   geometry.ScreenPoint{X: board.ViewportX, Y: board.ViewportY},
	})
	// Nominal window size so center placement works without a real window.
	engine.SetViewportSize(defaultWindowWidth, defaultWindowHeight)

	if err := op(engine); err != nil {
		return err
	}

	data := engine.Export()
	if err := h.blocks.ReplaceBoardScene(boardID, data.Blocks, data.Edges); err != nil {
		return fmt.Errorf("save board %s: %w", boardID, err)
	}
	return nil
}

// ── importer.BoardTarget ───────────────────────────────────

func (h *HeadlessCanvas) ListBlocks(_ context.Context, boardID string) ([]domain.Block, error) {
	return h.blocks.ListBlocks(boardID)
}

func (h *HeadlessCanvas) DeleteBlocks(_ context.Context, boardID string, ids []string) error {
	return h.With(boardID, func(en *canvas.Engine) error {
		for _, id := range ids {
			en.DeleteBlock(id)
		}
		return nil
	})
}

func (h *HeadlessCanvas) InsertBlocks(_ context.Context, boardID string, blocks []domain.Block) ([]domain.Block, error) {
	var inserted []domain.Block
	err := h.With(boardID, func(en *canvas.Engine) error {
		inserted = en.InsertBlocks(blocks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}
