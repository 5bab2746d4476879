package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"noteboard/internal/importer"
)

// ── HTTP Source ─────────────────────────────────────────────
// Pulls records from a JSON REST endpoint. Handy for personal APIs
// like GitHub, Strava or Toggl.

// One client for every fetch; discovery and runs share its
// connection pool.
var httpClient = &http.Client{Timeout: 30 * time.Second}

type httpSource struct{}

func init() { importer.RegisterSource(&httpSource{}) }

func (s *httpSource) Spec() importer.SourceSpec {
	return importer.SourceSpec{
		Type:  "http",
		Label: "HTTP API",
		Icon:  "IconWorldWww",
		ConfigFields: []importer.ConfigField{
			{Key: "url", Label: "URL", Type: "string", Required: true, Help: "Full URL to fetch (e.g., https://api.github.com/users/me/repos)"},
			{Key: "method", Label: "Method", Type: "select", Required: false, Options: []string{"GET", "POST"}, Default: "GET"},
			{Key: "headers", Label: "Headers", Type: "textarea", Required: false, Help: "JSON object of headers (e.g., {\"Authorization\": \"Bearer xxx\"})"},
			{Key: "body", Label: "Body", Type: "textarea", Required: false, Help: "Request body (for POST)"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Required: false, Help: "Dot-separated path to the array in the response (e.g., 'data.items')"},
		},
	}
}

// Discover runs the request once and derives the schema from whatever
// came back.
func (s *httpSource) Discover(ctx context.Context, cfg importer.SourceConfig) (*importer.Schema, error) {
	records, err := fetchRecords(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return schemaOf(records), nil
}

func (s *httpSource) Read(ctx context.Context, cfg importer.SourceConfig) (<-chan importer.Record, <-chan error) {
	out := make(chan importer.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		records, err := fetchRecords(ctx, cfg)
		if err != nil {
			errCh <- err
			return
		}
		for _, rec := range records {
			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errCh
}

func fetchRecords(ctx context.Context, cfg importer.SourceConfig) ([]importer.Record, error) {
	req, err := buildRequest(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if path, _ := cfg["dataPath"].(string); path != "" {
		// APIs often omit the array entirely when there is nothing to
		// return, so a missing path reads as zero records, not an error.
		raw, _ = walkPath(raw, path)
	}
	return recordsFrom(raw), nil
}

func buildRequest(ctx context.Context, cfg importer.SourceConfig) (*http.Request, error) {
	url, _ := cfg["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("url is not set")
	}
	method, _ := cfg["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if b, _ := cfg["body"].(string); b != "" {
		body = strings.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if raw, _ := cfg["headers"].(string); raw != "" {
		var headers map[string]string
		if err := json.Unmarshal([]byte(raw), &headers); err != nil {
			// A silently dropped Authorization header turns into a
			// baffling 401; better to fail the run here.
			return nil, fmt.Errorf("parse headers: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}
	return req, nil
}
