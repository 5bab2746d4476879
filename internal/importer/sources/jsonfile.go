package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"noteboard/internal/importer"
)

// ── JSON File Source ────────────────────────────────────────
// Imports a local JSON file, either a top-level array or an array
// nested somewhere inside an envelope object.

type jsonFileSource struct{}

func init() { importer.RegisterSource(&jsonFileSource{}) }

func (s *jsonFileSource) Spec() importer.SourceSpec {
	return importer.SourceSpec{
		Type:  "json_file",
		Label: "JSON File",
		Icon:  "IconFileTypeJs",
		ConfigFields: []importer.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Absolute path to the JSON file"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Required: false, Help: "Dot-separated path to the array (e.g., 'data.items'). Leave empty if root is an array."},
		},
	}
}

func (s *jsonFileSource) Discover(ctx context.Context, cfg importer.SourceConfig) (*importer.Schema, error) {
	records, err := readJSONFile(cfg)
	if err != nil {
		return nil, err
	}
	return schemaOf(records), nil
}

func (s *jsonFileSource) Read(ctx context.Context, cfg importer.SourceConfig) (<-chan importer.Record, <-chan error) {
	out := make(chan importer.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		records, err := readJSONFile(cfg)
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

func readJSONFile(cfg importer.SourceConfig) ([]importer.Record, error) {
	path, _ := cfg["filePath"].(string)
	if path == "" {
		return nil, fmt.Errorf("filePath is not set")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var raw any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	if dataPath, _ := cfg["dataPath"].(string); dataPath != "" {
		// Unlike an API response, a file's shape is fixed; a path
		// that doesn't resolve is a config mistake, not an empty
		// result.
		inner, ok := walkPath(raw, dataPath)
		if !ok {
			return nil, fmt.Errorf("data path %q not found in file", dataPath)
		}
		raw = inner
	}
	return recordsFrom(raw), nil
}
