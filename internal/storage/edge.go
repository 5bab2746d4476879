package storage

import (
	"fmt"
	"time"

	"noteboard/internal/domain"
)

// EdgeStore implements domain.EdgeStore using SQLite.
type EdgeStore struct {
	db *DB
}

func NewEdgeStore(db *DB) *EdgeStore {
	return &EdgeStore{db: db}
}

const edgeColumns = `id, board_id, from_block_id, to_block_id, from_handle, to_handle, created_at, updated_at`

func scanEdge(sc scanner) (domain.Edge, error) {
	var e domain.Edge
	err := sc.Scan(&e.ID, &e.BoardID, &e.FromID, &e.ToID, &e.FromHandle, &e.ToHandle, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func insertEdge(ex execer, e *domain.Edge) error {
	_, err := ex.Exec(
		`INSERT INTO edges (`+edgeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BoardID, e.FromID, e.ToID, e.FromHandle, e.ToHandle, e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (s *EdgeStore) CreateEdge(e *domain.Edge) error {
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
	return insertEdge(s.db.conn, e)
}

func (s *EdgeStore) GetEdge(id string) (*domain.Edge, error) {
	e, err := scanEdge(s.db.conn.QueryRow(`SELECT `+edgeColumns+` FROM edges WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get edge: %w", err)
	}
	return &e, nil
}

func (s *EdgeStore) ListEdges(boardID string) ([]domain.Edge, error) {
	rows, err := s.db.conn.Query(`SELECT `+edgeColumns+` FROM edges WHERE board_id = ? ORDER BY created_at ASC`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []domain.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

func (s *EdgeStore) DeleteEdge(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM edges WHERE id = ?`, id)
	return err
}

func (s *EdgeStore) DeleteEdgesByBoard(boardID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM edges WHERE board_id = ?`, boardID)
	return err
}

// DeleteEdgesByBlock removes every edge touching a block, from either
// end. Block deletion calls this so no dangling edges survive.
func (s *EdgeStore) DeleteEdgesByBlock(blockID string) error {
	_, err := s.db.conn.Exec(
		`DELETE FROM edges WHERE from_block_id = ? OR to_block_id = ?`,
		blockID, blockID,
	)
	return err
}
