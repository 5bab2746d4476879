package app

// ─────────────────────────────────────────────────────────────
// Import Handlers — thin delegates to ImportService
// ─────────────────────────────────────────────────────────────

import (
	"context"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"noteboard/internal/dbclient"
	"noteboard/internal/domain"
	"noteboard/internal/importer"
	"noteboard/internal/importer/sources"
	"noteboard/internal/service"
)

// ── Jobs ───────────────────────────────────────────────────

func (a *App) CreateImportJob(input service.ImportJobInput) (*importer.Job, error) {
	return a.imports.CreateJob(a.ctx, input)
}

func (a *App) GetImportJob(id string) (*importer.Job, error) {
	return a.imports.GetJob(id)
}

func (a *App) ListImportJobs() ([]importer.Job, error) {
	return a.imports.ListJobs()
}

func (a *App) UpdateImportJob(id string, input service.ImportJobInput) error {
	return a.imports.UpdateJob(a.ctx, id, input)
}

func (a *App) DeleteImportJob(id string) error {
	return a.imports.DeleteJob(a.ctx, id)
}

func (a *App) RunImportJob(id string) (*importer.Result, error) {
	return a.imports.RunJob(a.ctx, id)
}

// ── Sources / preview ──────────────────────────────────────

func (a *App) ListImportSources() []importer.SourceSpec {
	return a.imports.ListSources()
}

func (a *App) ListImportRuns(jobID string) ([]importer.RunLog, error) {
	return a.imports.ListRuns(jobID)
}

func (a *App) PreviewImportSource(sourceType, sourceConfigJSON string) (*service.PreviewResult, error) {
	return a.imports.PreviewSource(a.ctx, sourceType, sourceConfigJSON)
}

// DiscoverImportSchema returns the source's field names without reading
// data. Used by the job editor for field autocomplete.
func (a *App) DiscoverImportSchema(sourceType, sourceConfigJSON string) (*importer.Schema, error) {
	return a.imports.DiscoverSchema(a.ctx, sourceType, sourceConfigJSON)
}

// PickImportFile opens a native file dialog for selecting data files.
func (a *App) PickImportFile() (string, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Select Data File",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "CSV Files", Pattern: "*.csv;*.tsv"},
			{DisplayName: "JSON Files", Pattern: "*.json;*.jsonl"},
			{DisplayName: "All Files", Pattern: "*.*"},
		},
	})
	return path, err
}

// ── Saved connections ──────────────────────────────────────
// CRUD plus live-query bindings for the connection manager UI. Passwords
// ride in on the input and land in the keychain, never in SQLite.

func (a *App) ListConnections() ([]domain.SourceConnection, error) {
	return a.connections.ListConnections()
}

func (a *App) CreateConnection(input service.CreateConnectionInput) (*domain.SourceConnection, error) {
	return a.connections.CreateConnection(input)
}

func (a *App) UpdateConnection(id string, input service.CreateConnectionInput) error {
	return a.connections.UpdateConnection(id, input)
}

func (a *App) DeleteConnection(id string) error {
	return a.connections.DeleteConnection(id)
}

func (a *App) TestConnection(id string) error {
	return a.connections.TestConnection(a.ctx, id)
}

func (a *App) IntrospectConnection(id string) (*dbclient.SchemaInfo, error) {
	return a.connections.Introspect(a.ctx, id)
}

func (a *App) RunConnectionQuery(connectionID, query string, fetchSize int) (*dbclient.QueryPage, error) {
	return a.connections.RunQuery(a.ctx, connectionID, query, fetchSize)
}

func (a *App) FetchMoreConnectionRows(connectionID string, fetchSize int) (*dbclient.QueryPage, error) {
	return a.connections.FetchMoreRows(a.ctx, connectionID, fetchSize)
}

// ── Querier bridge ─────────────────────────────────────────
// The database import source reaches saved connections through an
// interface, so the sources package never depends on connector or
// credential handling.

// wireConnectionQuerier is called once at startup (GUI and standalone).
func wireConnectionQuerier(conns *service.SourceConnectionService) {
	sources.SetConnectionQuerier(&connectionQuerier{conns: conns})
}

type connectionQuerier struct {
	conns *service.SourceConnectionService
}

func (q *connectionQuerier) RunQuery(ctx context.Context, connID, query string, fetchSize int) (*sources.QueryPage, error) {
	page, err := q.conns.RunQuery(ctx, connID, query, fetchSize)
	if err != nil {
		return nil, err
	}
	return &sources.QueryPage{Columns: page.Columns, Rows: page.Rows, HasMore: page.HasMore}, nil
}

func (q *connectionQuerier) FetchMoreRows(ctx context.Context, connID string, fetchSize int) (*sources.QueryPage, error) {
	page, err := q.conns.FetchMoreRows(ctx, connID, fetchSize)
	if err != nil {
		return nil, err
	}
	return &sources.QueryPage{Columns: page.Columns, Rows: page.Rows, HasMore: page.HasMore}, nil
}
