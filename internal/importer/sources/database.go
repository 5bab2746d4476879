package sources

import (
	"context"
	"errors"
	"fmt"

	"noteboard/internal/importer"
)

// ── Database Source ────────────────────────────────────────
// Imports the result of a read query against a saved external
// database connection.

// QueryPage mirrors dbclient.QueryPage so this package stays decoupled
// from connector and credential handling.
type QueryPage struct {
	Columns []string
	Rows    [][]any
	HasMore bool
}

// ConnectionQuerier runs queries against a saved connection by id.
// The app layer implements it and injects it at startup; without one
// the database source refuses to run.
type ConnectionQuerier interface {
	RunQuery(ctx context.Context, connID, query string, fetchSize int) (*QueryPage, error)
	FetchMoreRows(ctx context.Context, connID string, fetchSize int) (*QueryPage, error)
}

var connQuerier ConnectionQuerier

// SetConnectionQuerier is called by the app at startup.
func SetConnectionQuerier(q ConnectionQuerier) { connQuerier = q }

var errNoQuerier = errors.New("database source is not wired to a connection service")

// dbFetchSize is the page size used when draining a query.
const dbFetchSize = 500

type databaseSource struct{}

func init() { importer.RegisterSource(&databaseSource{}) }

func (s *databaseSource) Spec() importer.SourceSpec {
	return importer.SourceSpec{
		Type:  "database",
		Label: "Database Query",
		Icon:  "IconDatabase",
		ConfigFields: []importer.ConfigField{
			{Key: "connectionId", Label: "Connection", Type: "select", Required: true, Help: "Saved database connection to query"},
			{Key: "query", Label: "Query", Type: "textarea", Required: true, Help: "SELECT statement (or MongoDB find) producing the rows to import"},
		},
	}
}

func dbParams(cfg importer.SourceConfig) (connID, query string, err error) {
	connID, _ = cfg["connectionId"].(string)
	query, _ = cfg["query"].(string)
	if connID == "" || query == "" {
		return "", "", fmt.Errorf("connectionId and query are required")
	}
	return connID, query, nil
}

// Discover runs the query for a single row; the schema is just the
// result's column list, typed as text.
func (s *databaseSource) Discover(ctx context.Context, cfg importer.SourceConfig) (*importer.Schema, error) {
	connID, query, err := dbParams(cfg)
	if err != nil {
		return nil, err
	}
	if connQuerier == nil {
		return nil, errNoQuerier
	}

	page, err := connQuerier.RunQuery(ctx, connID, query, 1)
	if err != nil {
		return nil, err
	}

	schema := &importer.Schema{Fields: make([]importer.Field, len(page.Columns))}
	for i, col := range page.Columns {
		schema.Fields[i] = importer.Field{Name: col, Type: "text"}
	}
	return schema, nil
}

func (s *databaseSource) Read(ctx context.Context, cfg importer.SourceConfig) (<-chan importer.Record, <-chan error) {
	out := make(chan importer.Record, 100)
	errCh := make(chan error, 1)

	connID, query, err := dbParams(cfg)
	if err == nil && connQuerier == nil {
		err = errNoQuerier
	}
	if err != nil {
		// Config problems surface without spawning anything; the
		// buffered error channel holds the verdict.
		errCh <- err
		close(out)
		close(errCh)
		return out, errCh
	}

	go func() {
		defer close(out)
		defer close(errCh)

		page, err := connQuerier.RunQuery(ctx, connID, query, dbFetchSize)
		if err != nil {
			errCh <- fmt.Errorf("run query: %w", err)
			return
		}
		for {
			if !pushRows(ctx, out, page) {
				return
			}
			if !page.HasMore {
				return
			}
			if page, err = connQuerier.FetchMoreRows(ctx, connID, dbFetchSize); err != nil {
				errCh <- fmt.Errorf("next page: %w", err)
				return
			}
		}
	}()

	return out, errCh
}

func pushRows(ctx context.Context, out chan<- importer.Record, page *QueryPage) bool {
	for _, row := range page.Rows {
		rec := importer.Record{Data: rowData(page.Columns, row)}
		select {
		case out <- rec:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func rowData(cols []string, row []any) map[string]any {
	m := make(map[string]any, len(cols))
	for i, col := range cols {
		if i < len(row) {
			m[col] = row[i]
		}
	}
	return m
}
