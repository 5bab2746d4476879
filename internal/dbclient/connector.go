package dbclient

import (
	"context"
	"fmt"

	"noteboard/internal/domain"
)

// QueryPage is one batch of rows pulled off an open cursor. TotalFetched
// counts everything read since Execute; HasMore means the cursor still has
// rows and FetchMore will return another page.
type QueryPage struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	TotalFetched int      `json:"totalFetched"`
	HasMore      bool     `json:"hasMore"`
}

// SchemaInfo lists a database's tables for the job editor's field picker.
type SchemaInfo struct {
	Tables []TableInfo `json:"tables"`
}

// TableInfo is one table or collection and its columns.
type TableInfo struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

// ColumnInfo is one column or document field.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Connector abstracts read access to an external database. Import jobs can
// run unattended on schedules, so write statements are rejected outright.
type Connector interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// Execute runs a read query: opens a cursor and fetches fetchSize rows.
	Execute(ctx context.Context, query string, fetchSize int) (*QueryPage, error)

	// FetchMore continues reading from the open cursor.
	FetchMore(ctx context.Context, fetchSize int) (*QueryPage, error)

	// Introspect returns the database schema.
	Introspect(ctx context.Context) (*SchemaInfo, error)

	// Close closes the connection and any open cursors.
	Close() error
}

// NewConnector dials the database a SourceConnection describes. The caller
// supplies the password, which lives in the secret store rather than on the
// connection record.
func NewConnector(conn *domain.SourceConnection, password string) (Connector, error) {
	switch conn.Driver {
	case domain.DatabaseDriverSQLite:
		return openSQLite(conn)
	case domain.DatabaseDriverMySQL:
		return openSQL("mysql", mysqlDSN(conn, password))
	case domain.DatabaseDriverPostgres:
		return openSQL("postgres", postgresDSN(conn, password))
	case domain.DatabaseDriverMongoDB:
		return openMongo(conn, password)
	}
	return nil, fmt.Errorf("unknown driver %q", conn.Driver)
}
