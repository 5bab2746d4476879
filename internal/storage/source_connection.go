package storage

import (
	"database/sql"
	"fmt"
	"time"

	"noteboard/internal/domain"
)

// SourceConnectionStore manages saved database connections in SQLite.
// Passwords never pass through here; they live in the secret store.
type SourceConnectionStore struct {
	db *DB
}

// NewSourceConnectionStore creates a new SourceConnectionStore.
func NewSourceConnectionStore(db *DB) *SourceConnectionStore {
	return &SourceConnectionStore{db: db}
}

const connColumns = `id, name, driver, host, port, database_name, username, ssl_mode, extra_json, created_at, updated_at`

func scanConnection(sc scanner) (domain.SourceConnection, error) {
	var c domain.SourceConnection
	err := sc.Scan(&c.ID, &c.Name, &c.Driver, &c.Host, &c.Port, &c.Database, &c.Username, &c.SSLMode, &c.ExtraJSON, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *SourceConnectionStore) CreateConnection(c *domain.SourceConnection) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO source_connections (`+connColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Driver, c.Host, c.Port, c.Database, c.Username, c.SSLMode, c.ExtraJSON, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *SourceConnectionStore) GetConnection(id string) (*domain.SourceConnection, error) {
	c, err := scanConnection(s.db.conn.QueryRow(`SELECT `+connColumns+` FROM source_connections WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("source connection not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SourceConnectionStore) ListConnections() ([]domain.SourceConnection, error) {
	rows, err := s.db.conn.Query(`SELECT ` + connColumns + ` FROM source_connections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []domain.SourceConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (s *SourceConnectionStore) UpdateConnection(c *domain.SourceConnection) error {
	c.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE source_connections SET name=?, driver=?, host=?, port=?, database_name=?, username=?, ssl_mode=?, extra_json=?, updated_at=?
		 WHERE id=?`,
		c.Name, c.Driver, c.Host, c.Port, c.Database, c.Username, c.SSLMode, c.ExtraJSON, c.UpdatedAt, c.ID,
	)
	return err
}

func (s *SourceConnectionStore) DeleteConnection(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM source_connections WHERE id = ?`, id)
	return err
}
