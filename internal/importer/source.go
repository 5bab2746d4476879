package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ── Source ──────────────────────────────────────────────────
// A Source pulls data out of an external system. One implementation per
// source type, each in its own file under importer/sources/, registered
// from init(). The spec → discover → read split mirrors how Airbyte
// connectors are driven.

// SourceConfig is an opaque configuration map; each source type parses the
// keys it documents in its spec.
type SourceConfig map[string]any

// ConfigField describes one configuration input. The frontend renders the
// job editor's form straight from these. Type picks the widget: "string",
// "select" (with Options), "textarea", "password" or "file".
type ConfigField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Help     string   `json:"help,omitempty"`
}

// SourceSpec names a source type and lists its config fields. Icon is a
// Tabler icon name the frontend resolves.
type SourceSpec struct {
	Type         string        `json:"type"`
	Label        string        `json:"label"`
	Icon         string        `json:"icon"`
	ConfigFields []ConfigField `json:"configFields"`
}

// Source is implemented by every data source.
type Source interface {
	// Spec describes the source for the picker and its config form.
	Spec() SourceSpec

	// Discover inspects the configured source and reports its schema.
	Discover(ctx context.Context, cfg SourceConfig) (*Schema, error)

	// Read streams records on the returned channel, closing it when the
	// source is drained or ctx ends. Failures arrive on the error channel,
	// which is buffered for one error.
	Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error)
}

// ── Registry ───────────────────────────────────────────────

var (
	sourcesMu sync.RWMutex
	sources   = map[string]Source{}
)

// RegisterSource adds a source under its spec type. Each implementation
// file calls this from init().
func RegisterSource(src Source) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	sources[src.Spec().Type] = src
}

// GetSource looks a source up by type.
func GetSource(typ string) (Source, error) {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	src, ok := sources[typ]
	if !ok {
		return nil, fmt.Errorf("no source registered for type %q", typ)
	}
	return src, nil
}

// ListSources returns every registered spec, ordered by type so the
// frontend's source picker is stable between calls.
func ListSources() []SourceSpec {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()
	specs := make([]SourceSpec, 0, len(sources))
	for _, src := range sources {
		specs = append(specs, src.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Type < specs[j].Type })
	return specs
}
