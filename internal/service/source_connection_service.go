package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"noteboard/internal/dbclient"
	"noteboard/internal/domain"
	"noteboard/internal/secret"
	"noteboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Source Connection Service — saved databases for import jobs
// ─────────────────────────────────────────────────────────────

// CreateConnectionInput is the service-layer DTO for creating/updating
// connections. The password goes to the secret store and is never
// returned to callers.
type CreateConnectionInput struct {
	Name      string `json:"name"`
	Driver    string `json:"driver"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Database  string `json:"database"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	SSLMode   string `json:"sslMode"`
	ExtraJSON string `json:"extraJson"`
}

func (in CreateConnectionInput) apply(conn *domain.SourceConnection) {
	conn.Name = in.Name
	conn.Driver = domain.DatabaseDriver(in.Driver)
	conn.Host = in.Host
	conn.Port = in.Port
	conn.Database = in.Database
	conn.Username = in.Username
	conn.SSLMode = in.SSLMode
	conn.ExtraJSON = in.ExtraJSON
}

// SourceConnectionService manages saved connections and hands live
// connectors to the import pipeline. Connectors are pooled per
// connection id, so repeated runs of the same job reuse one dial.
type SourceConnectionService struct {
	store   *storage.SourceConnectionStore
	secrets secret.SecretStore

	mu   sync.Mutex
	pool map[string]dbclient.Connector
}

// NewSourceConnectionService creates a SourceConnectionService.
func NewSourceConnectionService(
	store *storage.SourceConnectionStore,
	secrets secret.SecretStore,
) *SourceConnectionService {
	return &SourceConnectionService{
		store:   store,
		secrets: secrets,
		pool:    make(map[string]dbclient.Connector),
	}
}

// connSecret is the secret-store key holding a connection's password.
func connSecret(id string) string { return "conn:" + id }

// ── Connection CRUD ────────────────────────────────────────

func (s *SourceConnectionService) ListConnections() ([]domain.SourceConnection, error) {
	return s.store.ListConnections()
}

func (s *SourceConnectionService) CreateConnection(input CreateConnectionInput) (*domain.SourceConnection, error) {
	conn := &domain.SourceConnection{ID: uuid.New().String()}
	input.apply(conn)

	if err := s.store.CreateConnection(conn); err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	s.savePassword(conn.ID, input.Password)
	return conn, nil
}

func (s *SourceConnectionService) UpdateConnection(id string, input CreateConnectionInput) error {
	conn, err := s.store.GetConnection(id)
	if err != nil {
		return err
	}
	input.apply(conn)

	if err := s.store.UpdateConnection(conn); err != nil {
		return err
	}
	s.savePassword(id, input.Password)

	// The pooled connector still holds the old config; drop it so the
	// next query re-dials.
	s.dropConnector(id)
	return nil
}

func (s *SourceConnectionService) DeleteConnection(id string) error {
	s.dropConnector(id)
	if s.secrets != nil {
		_ = s.secrets.Delete(connSecret(id))
	}
	return s.store.DeleteConnection(id)
}

// savePassword writes the password to the secret store. An empty
// password means "leave the stored one alone", so edits that don't
// retype it keep working.
func (s *SourceConnectionService) savePassword(id, password string) {
	if password == "" || s.secrets == nil {
		return
	}
	_ = s.secrets.Set(connSecret(id), []byte(password))
}

// ── Query Execution ────────────────────────────────────────

// RunQuery runs a read query on a saved connection. The database
// import source calls this through the app-level querier adapter.
func (s *SourceConnectionService) RunQuery(
	ctx context.Context,
	connectionID, query string,
	fetchSize int,
) (*dbclient.QueryPage, error) {
	connector, err := s.getOrCreate(connectionID)
	if err != nil {
		return nil, err
	}
	page, err := connector.Execute(ctx, query, fetchSize)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	return page, nil
}

// FetchMoreRows continues paging the cursor RunQuery opened.
func (s *SourceConnectionService) FetchMoreRows(
	ctx context.Context,
	connectionID string,
	fetchSize int,
) (*dbclient.QueryPage, error) {
	s.mu.Lock()
	connector, ok := s.pool[connectionID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no active query for connection %s", connectionID)
	}
	return connector.FetchMore(ctx, fetchSize)
}

// ── Test + Introspect ──────────────────────────────────────

func (s *SourceConnectionService) TestConnection(ctx context.Context, id string) error {
	connector, err := s.getOrCreate(id)
	if err != nil {
		return err
	}
	return connector.TestConnection(ctx)
}

func (s *SourceConnectionService) Introspect(ctx context.Context, connectionID string) (*dbclient.SchemaInfo, error) {
	connector, err := s.getOrCreate(connectionID)
	if err != nil {
		return nil, err
	}
	return connector.Introspect(ctx)
}

// ── Connector Pool ─────────────────────────────────────────

func (s *SourceConnectionService) getOrCreate(id string) (dbclient.Connector, error) {
	s.mu.Lock()
	if c, ok := s.pool[id]; ok {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	// Dial outside the lock; a slow TCP connect must not stall
	// queries on other connections.
	conn, err := s.store.GetConnection(id)
	if err != nil {
		return nil, fmt.Errorf("get connection %s: %w", id, err)
	}
	connector, err := dbclient.NewConnector(conn, s.password(id))
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}

	s.mu.Lock()
	if existing, ok := s.pool[id]; ok {
		// Another caller dialed while we did; keep theirs.
		s.mu.Unlock()
		_ = connector.Close()
		return existing, nil
	}
	s.pool[id] = connector
	s.mu.Unlock()
	return connector, nil
}

func (s *SourceConnectionService) password(id string) string {
	if s.secrets == nil {
		return ""
	}
	pw, err := s.secrets.Get(connSecret(id))
	if err != nil {
		return ""
	}
	return string(pw)
}

func (s *SourceConnectionService) dropConnector(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.pool[id]; ok {
		_ = c.Close()
		delete(s.pool, id)
	}
}

// Close tears down every pooled connector.
func (s *SourceConnectionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.pool {
		_ = c.Close()
		delete(s.pool, id)
	}
}
