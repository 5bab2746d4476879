package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultFetchSize = 50

// sqlConnector drives MySQL, Postgres, and SQLite through database/sql.
// One cursor is open at a time; a new Execute replaces the previous one.
type sqlConnector struct {
	driverName string
	db         *sql.DB

	mu           sync.Mutex
	cursor       *sql.Rows
	cancelCursor context.CancelFunc
	columns      []string
	rowsRead     int
}

func openSQL(driverName, dsn string) (*sqlConnector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// A desktop app talks to one database at a time; a handful of
	// connections is plenty.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &sqlConnector{driverName: driverName, db: db}, nil
}

func (c *sqlConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// readPrefixes are the statement keywords Execute accepts. Everything else
// is treated as a write and rejected before it reaches the server.
var readPrefixes = []string{"SELECT", "WITH", "SHOW", "DESCRIBE", "EXPLAIN", "PRAGMA"}

func isReadQuery(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, p := range readPrefixes {
		if strings.HasPrefix(q, p) {
			return true
		}
	}
	return false
}

func (c *sqlConnector) Execute(ctx context.Context, query string, fetchSize int) (*QueryPage, error) {
	if !isReadQuery(query) {
		return nil, fmt.Errorf("source connections accept read statements only (SELECT, WITH, SHOW, ...)")
	}
	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCursorLocked()

	// The cursor outlives this call: FetchMore keeps paging through it
	// until it is exhausted or replaced. database/sql closes a Rows when
	// the query context ends, so the cursor cannot hang off the caller's
	// context; it gets its own, canceled in closeCursorLocked.
	cctx, cancel := context.WithCancel(context.Background())
	rows, err := c.db.QueryContext(cctx, query)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open cursor: %w", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		cancel()
		return nil, fmt.Errorf("read columns: %w", err)
	}

	c.cursor = rows
	c.cancelCursor = cancel
	c.columns = cols
	c.rowsRead = 0

	return c.readPageLocked(fetchSize)
}

func (c *sqlConnector) FetchMore(ctx context.Context, fetchSize int) (*QueryPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor == nil {
		return nil, fmt.Errorf("no open cursor; run a query first")
	}
	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}
	return c.readPageLocked(fetchSize)
}

// readPageLocked pulls up to limit rows off the cursor. Caller holds c.mu.
func (c *sqlConnector) readPageLocked(limit int) (*QueryPage, error) {
	width := len(c.columns)
	cells := make([]any, width)
	ptrs := make([]any, width)
	for i := range cells {
		ptrs[i] = &cells[i]
	}

	var batch [][]any
	for len(batch) < limit && c.cursor.Next() {
		if err := c.cursor.Scan(ptrs...); err != nil {
			c.closeCursorLocked()
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]any, width)
		for i, v := range cells {
			row[i] = displayable(v)
		}
		batch = append(batch, row)
	}
	c.rowsRead += len(batch)

	more := len(batch) == limit
	if !more {
		// Next returned false: the result set ended or iteration failed.
		// Either way the cursor is finished.
		err := c.cursor.Err()
		c.closeCursorLocked()
		if err != nil {
			return nil, fmt.Errorf("advance cursor: %w", err)
		}
	}

	return &QueryPage{
		Columns:      c.columns,
		Rows:         batch,
		TotalFetched: c.rowsRead,
		HasMore:      more,
	}, nil
}

// displayable converts driver values into something the JSON layer can
// carry: byte blobs become strings, timestamps become RFC 3339.
func displayable(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	}
	return v
}

func (c *sqlConnector) Introspect(ctx context.Context) (*SchemaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if c.driverName == "sqlite" {
		return c.sqliteSchema(ctx)
	}
	return c.infoSchema(ctx)
}

// infoSchema reads table and column metadata from INFORMATION_SCHEMA, which
// MySQL and Postgres both expose. The current-database filter and the bind
// placeholder differ per engine: DATABASE() and ? on MySQL, CURRENT_SCHEMA()
// and $1 on Postgres.
func (c *sqlConnector) infoSchema(ctx context.Context) (*SchemaInfo, error) {
	tableQ := `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME`
	colQ := `SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
	if c.driverName == "postgres" {
		tableQ = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = CURRENT_SCHEMA() ORDER BY TABLE_NAME`
		colQ = `SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = CURRENT_SCHEMA() AND TABLE_NAME = $1 ORDER BY ORDINAL_POSITION`
	}

	tables, err := c.queryStrings(ctx, tableQ)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	info := &SchemaInfo{}
	for _, name := range tables {
		table := TableInfo{Name: name}
		rows, err := c.db.QueryContext(ctx, colQ, name)
		if err != nil {
			info.Tables = append(info.Tables, table)
			continue
		}
		for rows.Next() {
			var col ColumnInfo
			if err := rows.Scan(&col.Name, &col.Type); err == nil {
				table.Columns = append(table.Columns, col)
			}
		}
		rows.Close()
		info.Tables = append(info.Tables, table)
	}
	return info, nil
}

// sqliteSchema walks sqlite_master and PRAGMA table_info.
func (c *sqlConnector) sqliteSchema(ctx context.Context) (*SchemaInfo, error) {
	tables, err := c.queryStrings(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	info := &SchemaInfo{}
	for _, name := range tables {
		table := TableInfo{Name: name}
		rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info('%s')", name))
		if err != nil {
			info.Tables = append(info.Tables, table)
			continue
		}
		for rows.Next() {
			var (
				cid, notNull, pk int
				colName, colType string
				dflt             sql.NullString
			)
			if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err == nil {
				table.Columns = append(table.Columns, ColumnInfo{Name: colName, Type: colType})
			}
		}
		rows.Close()
		info.Tables = append(info.Tables, table)
	}
	return info, nil
}

// queryStrings runs a query that yields a single text column.
func (c *sqlConnector) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err == nil {
			out = append(out, s)
		}
	}
	return out, rows.Err()
}

func (c *sqlConnector) Close() error {
	c.mu.Lock()
	c.closeCursorLocked()
	c.mu.Unlock()
	return c.db.Close()
}

func (c *sqlConnector) closeCursorLocked() {
	if c.cursor == nil {
		return
	}
	c.cursor.Close()
	c.cursor = nil
	if c.cancelCursor != nil {
		c.cancelCursor()
		c.cancelCursor = nil
	}
}
