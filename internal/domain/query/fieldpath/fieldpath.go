// Package fieldpath resolves dotted field paths against Records.
package fieldpath

import (
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// Wildcard is the path that matches every searchable leaf field.
const Wildcard = "*"

// Separator splits path segments.
const Separator = "."

// Resolve walks path through v.
//
// Sequences distribute the remaining path over their elements and keyed maps
// over their values (in key order), so the result is a []any whenever the path
// crosses one. A missing field resolves to nil. Enum values resolve to their
// underlying value.
func Resolve(v any, path string) any {
	if path == "" {
		return record.Underlying(v)
	}
	return resolve(v, strings.Split(path, Separator))
}

func resolve(cur any, segs []string) any {
	cur = record.Underlying(cur)
	if len(segs) == 0 {
		return cur
	}

	switch t := cur.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = resolve(e, segs)
		}
		return out
	case map[string]any:
		keys := record.SortedKeys(t)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = resolve(t[k], segs)
		}
		return out
	case record.Record:
		v, ok := t.Lookup(segs[0])
		if !ok {
			return nil
		}
		return resolve(v, segs[1:])
	default:
		return nil
	}
}

// Flatten turns a resolved value into the list of candidate values a
// predicate is evaluated against. ok is false when v is not a sequence.
func Flatten(v any) (values []any, ok bool) {
	seq, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]any, 0, len(seq))
	for _, e := range seq {
		if inner, nested := Flatten(e); nested {
			out = append(out, inner...)
			continue
		}
		out = append(out, e)
	}
	return out, true
}

// Leaves lists every leaf scalar path of rec for wildcard searches.
//
// Fields marked NoWildcard are skipped. Nested Records recurse with a
// "parent." prefix. Non-empty sequences and keyed maps recurse into their
// first element when it is a Record. Nil nested Records contribute nothing.
func Leaves(rec record.Record) []string {
	return leaves(rec, "")
}

func leaves(rec record.Record, prefix string) []string {
	if rec == nil {
		return nil
	}
	var out []string
	for _, f := range rec.Fields() {
		if f.NoWildcard {
			continue
		}
		name := prefix + f.Name
		v, _ := rec.Lookup(f.Name)

		switch f.Kind {
		case record.KindRecord:
			if nested, ok := v.(record.Record); ok {
				out = append(out, leaves(nested, name+Separator)...)
			}
		case record.KindList:
			seq, _ := v.([]any)
			out = append(out, firstElementLeaves(seq, name)...)
		case record.KindKeyed:
			m, _ := v.(map[string]any)
			if len(m) == 0 {
				continue
			}
			first := m[record.SortedKeys(m)[0]]
			out = append(out, firstElementLeaves([]any{first}, name)...)
		default:
			out = append(out, name)
		}
	}
	return out
}

func firstElementLeaves(seq []any, name string) []string {
	if len(seq) == 0 {
		return []string{name}
	}
	if nested, ok := seq[0].(record.Record); ok {
		return leaves(nested, name+Separator)
	}
	return []string{name}
}
