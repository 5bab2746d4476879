package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ── Transform chain ────────────────────────────────────────
// Transformers sit between source and destination and rewrite records
// in flight. Each one receives a record and reports whether the
// (possibly rewritten) record should continue down the chain.

// Transformer handles one record at a time. The boolean is the keep
// flag: false removes the record from the run.
type Transformer interface {
	Transform(Record) (Record, bool)
}

// TransformerFunc lets a bare function satisfy Transformer.
type TransformerFunc func(Record) (Record, bool)

func (f TransformerFunc) Transform(r Record) (Record, bool) { return f(r) }

// ── Record Transforms ──────────────────────────────────────

// FilterTransform keeps only records whose field matches the condition.
// Op is one of eq, neq, gt, lt, contains. Records missing the field are
// dropped.
type FilterTransform struct {
	Field string
	Op    string
	Value any
}

func (t *FilterTransform) Transform(r Record) (Record, bool) {
	v, ok := r.Data[t.Field]
	if !ok {
		return r, false
	}
	return r, t.matches(v)
}

func (t *FilterTransform) matches(v any) bool {
	switch t.Op {
	case "eq":
		return fmt.Sprint(v) == fmt.Sprint(t.Value)
	case "neq":
		return fmt.Sprint(v) != fmt.Sprint(t.Value)
	case "contains":
		return strings.Contains(fmt.Sprint(v), fmt.Sprint(t.Value))
	case "gt":
		a, _ := numeric(v)
		b, _ := numeric(t.Value)
		return a > b
	case "lt":
		a, _ := numeric(v)
		b, _ := numeric(t.Value)
		return a < b
	}
	// An operator this build doesn't know keeps the record; dropping
	// everything on a config typo would look like a broken source.
	return true
}

// RenameTransform moves values between field names. Fields absent from
// the record are ignored; fields absent from the mapping pass through.
type RenameTransform struct {
	Mapping map[string]string // old name to new name
}

func (t *RenameTransform) Transform(r Record) (Record, bool) {
	for from, to := range t.Mapping {
		if v, ok := r.Data[from]; ok {
			delete(r.Data, from)
			r.Data[to] = v
		}
	}
	return r, true
}

// SelectTransform projects the record down to the listed fields.
type SelectTransform struct {
	Fields []string
}

func (t *SelectTransform) Transform(r Record) (Record, bool) {
	kept := make(map[string]any, len(t.Fields))
	for _, f := range t.Fields {
		if v, ok := r.Data[f]; ok {
			kept[f] = v
		}
	}
	r.Data = kept
	return r, true
}

// DedupeTransform keeps the first record per key value and drops the rest.
type DedupeTransform struct {
	Key  string
	seen map[string]struct{}
}

func NewDedupeTransform(key string) *DedupeTransform {
	return &DedupeTransform{Key: key, seen: make(map[string]struct{})}
}

func (t *DedupeTransform) Transform(r Record) (Record, bool) {
	v := fmt.Sprint(r.Data[t.Key])
	if _, dup := t.seen[v]; dup {
		return r, false
	}
	t.seen[v] = struct{}{}
	return r, true
}

// LimitTransform passes the first Count records and drops everything after.
type LimitTransform struct {
	Count int
	taken int
}

func NewLimitTransform(count int) *LimitTransform {
	return &LimitTransform{Count: count}
}

func (t *LimitTransform) Transform(r Record) (Record, bool) {
	if t.taken >= t.Count {
		return r, false
	}
	t.taken++
	return r, true
}

// SortTransform orders the full record set by a field. Sorting needs every
// record in hand, so during streaming it is a pass-through; the pipeline
// applies it once the batch is collected (see ApplyBatchSort).
type SortTransform struct {
	Field     string
	Direction string // "asc" unless "desc"
}

func (t *SortTransform) Transform(r Record) (Record, bool) {
	return r, true
}

// ── Chain Application ─────────────────────────────────────

// ApplyTransformers runs the record through the chain in order,
// stopping at the first transformer that drops it.
func ApplyTransformers(r Record, ts []Transformer) (Record, bool) {
	for _, t := range ts {
		var keep bool
		r, keep = t.Transform(r)
		if !keep {
			return r, false
		}
	}
	return r, true
}

// ApplyBatchSort applies the first configured SortTransform in the chain
// to the collected records. The input slice is left untouched; callers
// get back either a sorted copy or the original slice.
func ApplyBatchSort(records []Record, ts []Transformer) []Record {
	for _, t := range ts {
		st, ok := t.(*SortTransform)
		if !ok || st.Field == "" {
			continue
		}
		out := make([]Record, len(records))
		copy(out, records)
		desc := st.Direction == "desc"
		sort.SliceStable(out, func(i, j int) bool {
			c := orderBy(out[i], out[j], st.Field)
			if desc {
				return c > 0
			}
			return c < 0
		})
		return out
	}
	return records
}

// orderBy compares two records on a field: numerically when both values
// parse as numbers, lexically otherwise. Mixed batches from loosely typed
// sources (JSON numbers next to numeric strings) sort the way users expect.
func orderBy(a, b Record, field string) int {
	av, aNum := numeric(a.Data[field])
	bv, bNum := numeric(b.Data[field])
	if aNum && bNum {
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a.Data[field]), fmt.Sprint(b.Data[field]))
}

// numeric reports v as a float64 when it is a number or a numeric string.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
