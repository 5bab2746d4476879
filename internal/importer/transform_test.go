package importer

import (
	"testing"
)

// ─────────────────────────────────────────────────────────────
// Transformer tests
// All pure record-level logic, no I/O.
// ─────────────────────────────────────────────────────────────

func rec(data map[string]any) Record { return Record{Data: data} }

func TestFilterTransform(t *testing.T) {
	tests := []struct {
		name string
		op   string
		val  any
		data map[string]any
		keep bool
	}{
		{"eq match", "eq", "done", map[string]any{"status": "done"}, true},
		{"eq mismatch", "eq", "done", map[string]any{"status": "open"}, false},
		{"neq", "neq", "done", map[string]any{"status": "open"}, true},
		{"contains", "contains", "err", map[string]any{"status": "internal error"}, true},
		{"gt numeric", "gt", 10.0, map[string]any{"status": 42.0}, true},
		{"gt numeric string", "gt", "10", map[string]any{"status": "9"}, false},
		{"lt", "lt", 10.0, map[string]any{"status": 3.0}, true},
		{"missing field drops", "eq", "x", map[string]any{"other": "x"}, false},
		{"unknown op keeps", "matches", "x", map[string]any{"status": "y"}, true},
	}

	for _, tt := range tests {
		tr := &FilterTransform{Field: "status", Op: tt.op, Value: tt.val}
		_, keep := tr.Transform(rec(tt.data))
		if keep != tt.keep {
			t.Errorf("%s: keep = %v, want %v", tt.name, keep, tt.keep)
		}
	}
}

func TestRenameTransform(t *testing.T) {
	tr := &RenameTransform{Mapping: map[string]string{"full_name": "name", "missing": "gone"}}
	out, keep := tr.Transform(rec(map[string]any{"full_name": "Ada", "age": 36.0}))
	if !keep {
		t.Fatal("rename should never drop records")
	}
	if out.Data["name"] != "Ada" {
		t.Errorf("expected renamed field, got %v", out.Data)
	}
	if _, ok := out.Data["full_name"]; ok {
		t.Error("old field name should be removed")
	}
	if out.Data["age"] != 36.0 {
		t.Error("unmapped fields should pass through")
	}
}

func TestSelectTransform(t *testing.T) {
	tr := &SelectTransform{Fields: []string{"id", "name"}}
	out, _ := tr.Transform(rec(map[string]any{"id": 1.0, "name": "Ada", "secret": "x"}))
	if len(out.Data) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(out.Data))
	}
	if _, ok := out.Data["secret"]; ok {
		t.Error("unselected field survived")
	}
}

func TestDedupeTransform(t *testing.T) {
	tr := NewDedupeTransform("id")
	if _, keep := tr.Transform(rec(map[string]any{"id": "a"})); !keep {
		t.Fatal("first occurrence should be kept")
	}
	if _, keep := tr.Transform(rec(map[string]any{"id": "a"})); keep {
		t.Fatal("duplicate should be dropped")
	}
	if _, keep := tr.Transform(rec(map[string]any{"id": "b"})); !keep {
		t.Fatal("new key should be kept")
	}
}

func TestLimitTransform(t *testing.T) {
	tr := NewLimitTransform(2)
	kept := 0
	for i := 0; i < 5; i++ {
		if _, keep := tr.Transform(rec(map[string]any{"i": i})); keep {
			kept++
		}
	}
	if kept != 2 {
		t.Fatalf("expected 2 kept, got %d", kept)
	}
}

func TestApplyTransformersChainsInOrder(t *testing.T) {
	ts := []Transformer{
		&RenameTransform{Mapping: map[string]string{"state": "status"}},
		&FilterTransform{Field: "status", Op: "eq", Value: "done"},
	}

	if _, keep := ApplyTransformers(rec(map[string]any{"state": "done"}), ts); !keep {
		t.Fatal("rename should run before the filter sees the record")
	}
	if _, keep := ApplyTransformers(rec(map[string]any{"state": "open"}), ts); keep {
		t.Fatal("filter should drop non-matching records")
	}
}

func TestApplyBatchSort(t *testing.T) {
	records := []Record{
		rec(map[string]any{"n": 3.0}),
		rec(map[string]any{"n": "1"}),
		rec(map[string]any{"n": 2.0}),
	}

	asc := ApplyBatchSort(records, []Transformer{&SortTransform{Field: "n", Direction: "asc"}})
	if asc[0].Data["n"] != "1" || asc[2].Data["n"] != 3.0 {
		t.Errorf("asc sort wrong: %v %v %v", asc[0].Data["n"], asc[1].Data["n"], asc[2].Data["n"])
	}

	desc := ApplyBatchSort(records, []Transformer{&SortTransform{Field: "n", Direction: "desc"}})
	if desc[0].Data["n"] != 3.0 {
		t.Errorf("desc sort wrong: first = %v", desc[0].Data["n"])
	}

	// Without a sort transform the slice passes through untouched.
	same := ApplyBatchSort(records, []Transformer{NewLimitTransform(10)})
	if same[0].Data["n"] != 3.0 {
		t.Error("records must pass through unsorted without a sort transform")
	}
}

func TestBuildTransformers(t *testing.T) {
	configs := []TransformConfig{
		{Type: "filter", Config: map[string]any{"field": "a", "op": "eq", "value": "x"}},
		{Type: "filter", Config: map[string]any{"field": "", "op": "eq"}}, // incomplete, skipped
		{Type: "rename", Config: map[string]any{"mapping": map[string]any{"a": "b"}}},
		{Type: "select", Config: map[string]any{"fields": []any{"b"}}},
		{Type: "sort", Config: map[string]any{"field": "b"}},
		{Type: "limit", Config: map[string]any{"count": 5.0}},
		{Type: "nonsense", Config: map[string]any{}},
	}

	ts := buildTransformers(configs, "b")
	if len(ts) != 6 {
		t.Fatalf("expected 6 transformers (5 configured + dedupe), got %d", len(ts))
	}
	if _, ok := ts[len(ts)-1].(*DedupeTransform); !ok {
		t.Error("dedupe must be appended last")
	}

	noDedupe := buildTransformers(configs, "")
	if len(noDedupe) != 5 {
		t.Fatalf("expected 5 transformers without dedupe key, got %d", len(noDedupe))
	}
}

func TestDeriveSchemaFromRecords(t *testing.T) {
	source := &Schema{Fields: []Field{{Name: "id", Type: "number"}, {Name: "gone", Type: "text"}}}
	records := []Record{rec(map[string]any{"id": 1.0, "label": "x"})}

	out := deriveSchemaFromRecords(records, source)
	types := map[string]string{}
	for _, f := range out.Fields {
		types[f.Name] = f.Type
	}
	if types["id"] != "number" {
		t.Errorf("source type hint lost: %v", types)
	}
	if types["label"] != "text" {
		t.Errorf("new field should default to text: %v", types)
	}
	if _, ok := types["gone"]; ok {
		t.Error("fields absent from records should not be in the output schema")
	}

	// Empty input falls back to the source schema untouched.
	if got := deriveSchemaFromRecords(nil, source); got != source {
		t.Error("empty record set should return the source schema")
	}
}
