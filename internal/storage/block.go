package storage

import (
	"fmt"
	"time"

	"noteboard/internal/domain"
)

// BlockStore implements domain.BlockStore using SQLite.
type BlockStore struct {
	db *DB
}

func NewBlockStore(db *DB) *BlockStore {
	return &BlockStore{db: db}
}

const blockColumns = `id, board_id, type, title, category, x, y, width, height, content, created_at, updated_at`

func scanBlock(sc scanner) (domain.Block, error) {
	var b domain.Block
	err := sc.Scan(&b.ID, &b.BoardID, &b.Type, &b.Title, &b.Category, &b.X, &b.Y, &b.Width, &b.Height, &b.Content, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func insertBlock(ex execer, b *domain.Block) error {
	_, err := ex.Exec(
		`INSERT INTO blocks (`+blockColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.BoardID, b.Type, b.Title, b.Category, b.X, b.Y, b.Width, b.Height, b.Content, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *BlockStore) CreateBlock(b *domain.Block) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	return insertBlock(s.db.conn, b)
}

func (s *BlockStore) GetBlock(id string) (*domain.Block, error) {
	b, err := scanBlock(s.db.conn.QueryRow(`SELECT `+blockColumns+` FROM blocks WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	return &b, nil
}

func (s *BlockStore) ListBlocks(boardID string) ([]domain.Block, error) {
	rows, err := s.db.conn.Query(`SELECT `+blockColumns+` FROM blocks WHERE board_id = ? ORDER BY created_at ASC`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []domain.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

func (s *BlockStore) UpdateBlock(b *domain.Block) error {
	b.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE blocks SET type = ?, title = ?, category = ?, x = ?, y = ?, width = ?, height = ?, content = ?, updated_at = ? WHERE id = ?`,
		b.Type, b.Title, b.Category, b.X, b.Y, b.Width, b.Height, b.Content, b.UpdatedAt, b.ID,
	)
	return err
}

func (s *BlockStore) DeleteBlock(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM blocks WHERE id = ?`, id)
	return err
}

func (s *BlockStore) DeleteBlocksByBoard(boardID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM blocks WHERE board_id = ?`, boardID)
	return err
}

// ReplaceBoardScene swaps in a full scene for a board in one
// transaction. The autosaver calls this with engine exports so the
// database always holds one consistent scene, never a half-applied
// gesture.
func (s *BlockStore) ReplaceBoardScene(boardID string, blocks []domain.Block, edges []domain.Edge) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Edges reference blocks, so they go first.
	if _, err := tx.Exec(`DELETE FROM edges WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM blocks WHERE board_id = ?`, boardID); err != nil {
		return fmt.Errorf("delete blocks: %w", err)
	}

	for _, b := range blocks {
		b.BoardID = boardID
		if err := insertBlock(tx, &b); err != nil {
			return fmt.Errorf("insert block %s: %w", b.ID, err)
		}
	}
	for _, e := range edges {
		e.BoardID = boardID
		if err := insertEdge(tx, &e); err != nil {
			return fmt.Errorf("insert edge %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}
