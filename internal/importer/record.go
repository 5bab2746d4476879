package importer

// ── Record ─────────────────────────────────────────────────
// Everything between a source and the board speaks Record: sources emit
// them, transforms rewrite them, the destination turns them into blocks.
// The shape follows Airbyte's record protocol, minus the envelope.

// Field is one named column of a dataset. Type is "text", "number",
// "boolean" or "datetime"; sources that can't tell report "text".
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is the set of fields a source produces.
type Schema struct {
	Fields []Field `json:"fields"`
}

// FieldNames returns the field names in schema order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Record is one row of data moving through the pipeline.
type Record struct {
	Data map[string]any `json:"data"`
}
