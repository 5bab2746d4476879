package sources

import (
	"encoding/json"
	"sort"
	"strings"

	"noteboard/internal/importer"
)

// ── Record helpers ─────────────────────────────────────────
// The HTTP and JSON-file sources both land on the same problem: an
// arbitrary decoded JSON value that has to become flat records. The
// helpers here do that once for both.

// walkPath descends a dot-separated path through nested objects.
// The second return reports whether every segment resolved.
func walkPath(v any, path string) (any, bool) {
	for _, seg := range strings.Split(path, ".") {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		if v, ok = obj[seg]; !ok {
			return nil, false
		}
	}
	return v, true
}

// recordsFrom turns a decoded JSON value into records. An array yields
// one record per object element (non-objects are skipped), a lone
// object yields a single record, anything else yields none.
func recordsFrom(raw any) []importer.Record {
	switch v := raw.(type) {
	case []any:
		out := make([]importer.Record, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, importer.Record{Data: flatten(obj)})
			}
		}
		return out
	case map[string]any:
		return []importer.Record{{Data: flatten(v)}}
	}
	return nil
}

// flatten passes scalars through and collapses nested objects and
// arrays to their JSON text, so every record value fits in a block
// property.
func flatten(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		switch v.(type) {
		case string, float64, bool, nil:
			out[k] = v
		default:
			b, _ := json.Marshal(v)
			out[k] = string(b)
		}
	}
	return out
}

// schemaOf derives a schema from sampled records: the union of their
// fields, each typed by the first value seen for it. Fields come back
// sorted so repeated discovery calls agree.
func schemaOf(records []importer.Record) *importer.Schema {
	types := make(map[string]string)
	for _, rec := range records {
		for k, v := range rec.Data {
			if _, seen := types[k]; !seen {
				types[k] = fieldType(v)
			}
		}
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := &importer.Schema{Fields: make([]importer.Field, len(names))}
	for i, name := range names {
		schema.Fields[i] = importer.Field{Name: name, Type: types[name]}
	}
	return schema
}

// fieldType maps a flattened record value to a schema type. Flatten
// only emits JSON scalars, so three cases cover everything.
func fieldType(v any) string {
	switch v.(type) {
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return "text"
}
