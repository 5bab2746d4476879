package dbclient

import (
	"noteboard/internal/domain"

	_ "modernc.org/sqlite"
)

// openSQLite connects to a SQLite file; Host carries the path. WAL plus a
// busy timeout lets us read a database another process has open.
func openSQLite(conn *domain.SourceConnection) (*sqlConnector, error) {
	return openSQL("sqlite", conn.Host+"?_journal_mode=WAL&_busy_timeout=5000")
}
