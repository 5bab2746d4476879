package domain

import "time"

// DatabaseDriver represents the type of database engine an import source
// reads from.
type DatabaseDriver string

const (
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMongoDB  DatabaseDriver = "mongodb"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// SourceConnection holds the metadata for connecting to an external database
// used by the import pipeline. The password is stored separately in the
// SecretStore (e.g. macOS Keychain), never in SQLite.
//
// For sqlite, Host carries the file path and Port and Database stay zero.
// ExtraJSON holds driver-specific options as a JSON object.
type SourceConnection struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Driver    DatabaseDriver `json:"driver"`
	Host      string         `json:"host"`
	Port      int            `json:"port"`
	Database  string         `json:"database"`
	Username  string         `json:"username"`
	SSLMode   string         `json:"sslMode"`
	ExtraJSON string         `json:"extraJson"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// SourceConnectionStore manages CRUD operations for saved connections.
type SourceConnectionStore interface {
	CreateConnection(c *SourceConnection) error
	GetConnection(id string) (*SourceConnection, error)
	ListConnections() ([]SourceConnection, error)
	UpdateConnection(c *SourceConnection) error
	DeleteConnection(id string) error
}
