package storage

import (
	"fmt"
	"time"

	"noteboard/internal/domain"
)

// BoardStore implements domain.BoardStore using SQLite.
type BoardStore struct {
	db *DB
}

func NewBoardStore(db *DB) *BoardStore {
	return &BoardStore{db: db}
}

const boardColumns = `id, name, icon, sort_order, viewport_x, viewport_y, viewport_scale, created_at, updated_at`

func scanBoard(sc scanner) (domain.Board, error) {
	var b domain.Board
	err := sc.Scan(&b.ID, &b.Name, &b.Icon, &b.Order, &b.ViewportX, &b.ViewportY, &b.ViewportScale, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (s *BoardStore) CreateBoard(b *domain.Board) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO boards (`+boardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Icon, b.Order, b.ViewportX, b.ViewportY, b.ViewportScale, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *BoardStore) GetBoard(id string) (*domain.Board, error) {
	b, err := scanBoard(s.db.conn.QueryRow(`SELECT `+boardColumns+` FROM boards WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return &b, nil
}

func (s *BoardStore) ListBoards() ([]domain.Board, error) {
	rows, err := s.db.conn.Query(`SELECT ` + boardColumns + ` FROM boards ORDER BY sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (s *BoardStore) UpdateBoard(b *domain.Board) error {
	b.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE boards SET name = ?, icon = ?, sort_order = ?, viewport_x = ?, viewport_y = ?, viewport_scale = ?, updated_at = ? WHERE id = ?`,
		b.Name, b.Icon, b.Order, b.ViewportX, b.ViewportY, b.ViewportScale, b.UpdatedAt, b.ID,
	)
	return err
}

func (s *BoardStore) DeleteBoard(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM boards WHERE id = ?`, id)
	return err
}
