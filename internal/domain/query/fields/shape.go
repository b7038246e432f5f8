package fields

import (
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// Apply returns the plain form of rec restricted to the fields selected by d.
// Nested records and records inside sequences are shaped with the child
// directive of their field. Keyed maps are shaped like records, their keys
// standing in for field names, so plain output reads back the same way.
// Applying the same directive to the result again yields the same result.
func Apply(rec record.Record, d *Directive) map[string]any {
	if d == nil {
		d = anything
	}
	out := make(map[string]any, len(rec.Fields()))
	for _, f := range rec.Fields() {
		if !d.Included(f.Name) {
			continue
		}
		v, _ := rec.Lookup(f.Name)
		child, err := d.Children(f.Name)
		if err != nil {
			continue
		}
		out[f.Name] = shapeValue(v, child)
	}
	return out
}

func shapeValue(v any, d *Directive) any {
	v = record.Underlying(v)
	switch t := v.(type) {
	case record.Record:
		return Apply(t, d)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = shapeValue(e, d)
		}
		return out
	case map[string]any:
		return Apply(record.Document(t), d)
	default:
		return v
	}
}

// ApplyAll shapes every record of recs with d.
func ApplyAll[T record.Record](recs []T, d *Directive) []map[string]any {
	out := make([]map[string]any, len(recs))
	for i, r := range recs {
		out[i] = Apply(r, d)
	}
	return out
}
