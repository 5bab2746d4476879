package importer

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// ── Pipeline ───────────────────────────────────────────────
// One run moves records from a source, through the configured
// transform chain, into blocks on a board. The run always produces a
// Result, even when it fails part-way; the error comes back alongside
// it so callers can both persist the outcome and propagate.

// Pipeline runs import jobs using the registered sources and a destination.
type Pipeline struct {
	Dest Destination
}

// Run executes an import job end-to-end.
func (p *Pipeline) Run(ctx context.Context, job *Job) (*Result, error) {
	start := time.Now()
	result := &Result{JobID: job.ID}

	fail := func(stage string, err error) (*Result, error) {
		msg := err.Error()
		if stage != "" {
			msg = stage + ": " + msg
		}
		result.Status = "error"
		result.Error = msg
		result.Duration = time.Since(start)
		return result, err
	}

	source, err := GetSource(job.SourceType)
	if err != nil {
		return fail("", err)
	}

	// The source schema drives field order in block content.
	schema, err := source.Discover(ctx, job.SourceCfg)
	if err != nil {
		return fail("discover", err)
	}

	recCh, errCh := source.Read(ctx, job.SourceCfg)
	chain := buildTransformers(job.Transforms, job.DedupeKey)

	var records []Record
	for rec := range recCh {
		result.RowsRead++
		if out, keep := ApplyTransformers(rec, chain); keep {
			records = append(records, out)
		}
	}
	records = ApplyBatchSort(records, chain)

	// A partial read must not reach the destination; in replace mode a
	// write would wipe the previous run's blocks and land a fragment.
	if err := <-errCh; err != nil {
		return fail("read", err)
	}

	// Transforms may have renamed or dropped columns, so the output
	// schema comes from the records that actually survived.
	outputSchema := deriveSchemaFromRecords(records, schema)

	// The job name doubles as the category tag so a later replace run
	// can find its own blocks.
	target := Target{
		BoardID:    job.BoardID,
		BlockType:  job.BlockType,
		TitleField: job.TitleField,
		Category:   job.Name,
	}
	written, err := p.Dest.Write(ctx, target, outputSchema, records, job.SyncMode)
	if err != nil {
		return fail("write", err)
	}

	result.Status = "success"
	result.BlocksWritten = written
	result.Duration = time.Since(start)
	return result, nil
}

// Preview reads up to maxRows raw records so the frontend can show
// what a job would import. No transforms run and nothing is written.
func (p *Pipeline) Preview(ctx context.Context, sourceType string, cfg SourceConfig, maxRows int) ([]Record, *Schema, error) {
	source, err := GetSource(sourceType)
	if err != nil {
		return nil, nil, err
	}

	schema, err := source.Discover(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("discover: %w", err)
	}

	recCh, errCh := source.Read(ctx, cfg)

	var records []Record
	for rec := range recCh {
		if len(records) >= maxRows {
			break
		}
		records = append(records, rec)
	}

	// The source keeps producing past the cap; drain it so its
	// goroutine can finish and the error channel gets its answer.
	go func() {
		for range recCh {
		}
	}()
	if err := <-errCh; err != nil {
		return records, schema, err
	}
	return records, schema, nil
}

// buildTransformers turns the job's declarative transform list into a
// runnable chain. Malformed entries are dropped rather than failing
// the run.
func buildTransformers(configs []TransformConfig, dedupeKey string) []Transformer {
	var chain []Transformer
	for _, tc := range configs {
		if t := transformerFrom(tc); t != nil {
			chain = append(chain, t)
		}
	}

	// Dedupe runs last so it keys on post-transform values.
	if dedupeKey != "" {
		chain = append(chain, NewDedupeTransform(dedupeKey))
	}
	return chain
}

func transformerFrom(tc TransformConfig) Transformer {
	cfg := tc.Config
	switch tc.Type {
	case "filter":
		field, _ := cfg["field"].(string)
		op, _ := cfg["op"].(string)
		if field == "" || op == "" {
			return nil
		}
		return &FilterTransform{Field: field, Op: op, Value: cfg["value"]}

	case "rename":
		mapping, ok := cfg["mapping"].(map[string]any)
		if !ok {
			return nil
		}
		m := make(map[string]string, len(mapping))
		for k, v := range mapping {
			m[k] = fmt.Sprint(v)
		}
		return &RenameTransform{Mapping: m}

	case "select":
		raw, ok := cfg["fields"].([]any)
		if !ok {
			return nil
		}
		fields := make([]string, len(raw))
		for i, f := range raw {
			fields[i] = fmt.Sprint(f)
		}
		return &SelectTransform{Fields: fields}

	case "sort":
		field, _ := cfg["field"].(string)
		if field == "" {
			return nil
		}
		dir, _ := cfg["direction"].(string)
		if dir == "" {
			dir = "asc"
		}
		return &SortTransform{Field: field, Direction: dir}

	case "limit":
		if n, ok := cfg["count"].(float64); ok && n > 0 {
			return NewLimitTransform(int(n))
		}
	}
	return nil
}

// deriveSchemaFromRecords rebuilds the schema from the fields that
// survived the transforms. Surviving fields keep the source schema's
// order and type hints; fields the transforms introduced follow,
// alphabetically, typed as text.
func deriveSchemaFromRecords(records []Record, sourceSchema *Schema) *Schema {
	if len(records) == 0 {
		return sourceSchema
	}

	present := make(map[string]bool)
	for _, r := range records {
		for name := range r.Data {
			present[name] = true
		}
	}

	out := &Schema{}
	placed := make(map[string]bool)
	if sourceSchema != nil {
		for _, f := range sourceSchema.Fields {
			if present[f.Name] {
				out.Fields = append(out.Fields, f)
				placed[f.Name] = true
			}
		}
	}

	var added []string
	for name := range present {
		if !placed[name] {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		out.Fields = append(out.Fields, Field{Name: name, Type: "text"})
	}
	return out
}
