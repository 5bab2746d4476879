package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"noteboard/internal/domain"
	"noteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Board Service — business logic for boards and their scenes
// ─────────────────────────────────────────────────────────────

// BoardService manages boards and loads/saves their scenes.
// The engine itself never touches storage; the app feeds it with
// OpenBoard and drains it back through SaveScene.
type BoardService struct {
	boards  *storage.BoardStore
	blocks  *storage.BlockStore
	edges   *storage.EdgeStore
	emitter EventEmitter
}

// NewBoardService creates a BoardService.
func NewBoardService(
	boards *storage.BoardStore,
	blocks *storage.BlockStore,
	edges *storage.EdgeStore,
	emitter EventEmitter,
) *BoardService {
	return &BoardService{
		boards:  boards,
		blocks:  blocks,
		edges:   edges,
		emitter: emitter,
	}
}

// ── Boards ─────────────────────────────────────────────────

func (s *BoardService) ListBoards() ([]domain.Board, error) {
	return s.boards.ListBoards()
}

func (s *BoardService) GetBoard(id string) (*domain.Board, error) {
	return s.boards.GetBoard(id)
}

func (s *BoardService) CreateBoard(name string) (*domain.Board, error) {
	b := &domain.Board{
		ID:            uuid.New().String(),
		Name:          name,
		Icon:          "🗒️",
		ViewportScale: 1.0,
	}
	if err := s.boards.CreateBoard(b); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	s.emitter.Emit(context.Background(), "boards:changed", nil)
	return b, nil
}

func (s *BoardService) RenameBoard(id, name string) error {
	b, err := s.boards.GetBoard(id)
	if err != nil {
		return err
	}
	b.Name = name
	if err := s.boards.UpdateBoard(b); err != nil {
		return err
	}
	s.emitter.Emit(context.Background(), "boards:changed", nil)
	return nil
}

// DeleteBoard removes a board together with its blocks and edges.
func (s *BoardService) DeleteBoard(id string) error {
	s.edges.DeleteEdgesByBoard(id)
	s.blocks.DeleteBlocksByBoard(id)
	if err := s.boards.DeleteBoard(id); err != nil {
		return err
	}
	s.emitter.Emit(context.Background(), "boards:changed", nil)
	return nil
}

// ── Scenes ─────────────────────────────────────────────────

// OpenBoard loads a board with its full scene. Edges whose endpoints are
// missing or identical are pruned here, mirroring what the engine does on
// Load, so the frontend never renders a dangling arrow.
func (s *BoardService) OpenBoard(id string) (*domain.BoardState, error) {
	board, err := s.boards.GetBoard(id)
	if err != nil {
		return nil, err
	}
	blocks, err := s.blocks.ListBlocks(id)
	if err != nil {
		return nil, err
	}
	edges, err := s.edges.ListEdges(id)
	if err != nil {
		return nil, err
	}
	edges = pruneEdges(blocks, edges)
	if blocks == nil {
		blocks = []domain.Block{}
	}
	if edges == nil {
		edges = []domain.Edge{}
	}
	return &domain.BoardState{
		Board:  *board,
		Blocks: blocks,
		Edges:  edges,
	}, nil
}

// SaveScene replaces the board's persisted scene with an engine export.
func (s *BoardService) SaveScene(boardID string, data domain.BoardData) error {
	return s.blocks.ReplaceBoardScene(boardID, data.Blocks, data.Edges)
}

// SaveViewport persists the board's pan/zoom.
func (s *BoardService) SaveViewport(boardID string, x, y, scale float64) error {
	b, err := s.boards.GetBoard(boardID)
	if err != nil {
		return err
	}
	b.ViewportX = x
	b.ViewportY = y
	b.ViewportScale = scale
	return s.boards.UpdateBoard(b)
}

// ── JSON export / import ───────────────────────────────────

// ExportToFile writes the board's scene as indented JSON.
func (s *BoardService) ExportToFile(boardID, path string) error {
	blocks, err := s.blocks.ListBlocks(boardID)
	if err != nil {
		return err
	}
	edges, err := s.edges.ListEdges(boardID)
	if err != nil {
		return err
	}
	data := domain.BoardData{Blocks: blocks, Edges: edges}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write board file: %w", err)
	}
	return nil
}

// ImportFromFile replaces the board's scene with the contents of a
// previously exported file. Every block gets a fresh id so an import can
// never collide with rows belonging to another board.
func (s *BoardService) ImportFromFile(boardID, path string) (*domain.BoardState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board file: %w", err)
	}
	var data domain.BoardData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse board file: %w", err)
	}
	blocks, edges := remapScene(boardID, data.Blocks, data.Edges)
	if err := s.blocks.ReplaceBoardScene(boardID, blocks, edges); err != nil {
		return nil, fmt.Errorf("import board: %w", err)
	}
	return s.OpenBoard(boardID)
}

// ── helpers ────────────────────────────────────────────────

// Exported aliases so _test packages can exercise the scene helpers.
var (
	ExportedPruneEdges = pruneEdges
	ExportedRemapScene = remapScene
)

// pruneEdges drops edges that reference a missing block or loop back to
// their own source.
func pruneEdges(blocks []domain.Block, edges []domain.Edge) []domain.Edge {
	ids := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		ids[b.ID] = true
	}
	var kept []domain.Edge
	for _, e := range edges {
		if e.FromID == e.ToID {
			continue
		}
		if !ids[e.FromID] || !ids[e.ToID] {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// remapScene reassigns ids on an imported scene and rewrites edge
// endpoints accordingly. Edges pointing at blocks absent from the file
// are dropped.
func remapScene(boardID string, blocks []domain.Block, edges []domain.Edge) ([]domain.Block, []domain.Edge) {
	idMap := make(map[string]string, len(blocks))
	outBlocks := make([]domain.Block, 0, len(blocks))
	for _, b := range blocks {
		newID := uuid.New().String()
		idMap[b.ID] = newID
		b.ID = newID
		b.BoardID = boardID
		outBlocks = append(outBlocks, b)
	}
	var outEdges []domain.Edge
	for _, e := range edges {
		from, okFrom := idMap[e.FromID]
		to, okTo := idMap[e.ToID]
		if !okFrom || !okTo || from == to {
			continue
		}
		e.ID = uuid.New().String()
		e.BoardID = boardID
		e.FromID = from
		e.ToID = to
		outEdges = append(outEdges, e)
	}
	return outBlocks, outEdges
}
