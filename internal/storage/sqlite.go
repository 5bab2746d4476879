package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB owns the app's SQLite handle and runs migrations on open.
type DB struct {
	conn *sql.DB
}

// scanner is satisfied by both *sql.Row and *sql.Rows, so the per-type
// scan helpers below serve single-row and list queries alike.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *sql.DB and *sql.Tx; insert helpers take it
// so the same statement serves direct writes and scene transactions.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// New opens the SQLite file at dbPath, creating it on first run.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	// SQLite only supports one writer; limit to a single connection to
	// prevent SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close releases the SQLite handle.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the raw handle for callers that need SQL directly,
// like the approval poller.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			viewport_x REAL NOT NULL DEFAULT 0,
			viewport_y REAL NOT NULL DEFAULT 0,
			viewport_scale REAL NOT NULL DEFAULT 1.0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS blocks (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL REFERENCES boards(id),
			type TEXT NOT NULL DEFAULT 'text',
			title TEXT NOT NULL DEFAULT '',
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			width REAL NOT NULL DEFAULT 240,
			height REAL NOT NULL DEFAULT 120,
			content TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL REFERENCES boards(id),
			from_block_id TEXT NOT NULL REFERENCES blocks(id),
			to_block_id TEXT NOT NULL REFERENCES blocks(id),
			from_handle TEXT NOT NULL DEFAULT 'right',
			to_handle TEXT NOT NULL DEFAULT 'left',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_board ON blocks(board_id)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_board ON edges(board_id)`,
		// Add category column if missing
		`ALTER TABLE blocks ADD COLUMN category TEXT NOT NULL DEFAULT ''`,
		// Import pipeline: external database connections
		`CREATE TABLE IF NOT EXISTS source_connections (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			driver TEXT NOT NULL,
			host TEXT NOT NULL DEFAULT '',
			port INTEGER NOT NULL DEFAULT 0,
			database_name TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL DEFAULT '',
			ssl_mode TEXT NOT NULL DEFAULT 'disable',
			extra_json TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// Import pipeline: job definitions
		`CREATE TABLE IF NOT EXISTS import_jobs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source_type TEXT NOT NULL,
			source_config TEXT NOT NULL DEFAULT '{}',
			transforms TEXT NOT NULL DEFAULT '[]',
			board_id TEXT NOT NULL REFERENCES boards(id),
			block_type TEXT NOT NULL DEFAULT 'text',
			title_field TEXT NOT NULL DEFAULT '',
			sync_mode TEXT NOT NULL DEFAULT 'replace',
			dedupe_key TEXT NOT NULL DEFAULT '',
			trigger_type TEXT NOT NULL DEFAULT 'manual',
			trigger_config TEXT NOT NULL DEFAULT '',
			enabled INTEGER NOT NULL DEFAULT 0,
			last_run_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_status TEXT NOT NULL DEFAULT '',
			last_error TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// Import pipeline: per-run history
		`CREATE TABLE IF NOT EXISTS import_runs (
			id TEXT PRIMARY KEY,
			job_id TEXT NOT NULL REFERENCES import_jobs(id),
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			rows_read INTEGER NOT NULL DEFAULT 0,
			blocks_written INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_import_runs_job ON import_runs(job_id)`,
		// MCP approval IPC for the standalone server (cross-process)
		`CREATE TABLE IF NOT EXISTS mcp_approvals (
			id TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// Small persisted preferences (window geometry)
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range migrations {
		if _, err := db.conn.Exec(stmt); err != nil {
			// ALTER TABLE re-run against an already-migrated file.
			if strings.Contains(stmt, "ALTER TABLE") && strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration %q: %w", sqlSnippet(stmt), err)
		}
	}

	return nil
}

// sqlSnippet collapses a statement to one short line for error messages.
func sqlSnippet(stmt string) string {
	s := strings.Join(strings.Fields(stmt), " ")
	if len(s) > 48 {
		s = s[:48]
	}
	return s
}
