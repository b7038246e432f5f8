// Package sorting orders records by an ordered list of field paths.
package sorting

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fieldpath"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/ordered"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// Missing is the sort value used for paths that resolve to nothing.
const Missing = "-1"

// Key is one (path, direction) entry of a sort specification.
type Key struct {
	Path      string
	Ascending bool
}

// Spec is an ordered list of sort keys.
type Spec []Key

// Asc returns an ascending key on path.
func Asc(path string) Key { return Key{Path: path, Ascending: true} }

// Desc returns a descending key on path.
func Desc(path string) Key { return Key{Path: path} }

// ParseSpec parses the JSON form {"path": true, ...}; true means ascending.
// Empty input and null produce an empty spec.
func ParseSpec(raw []byte) (Spec, error) {
	if ordered.IsNull(raw) {
		return nil, nil
	}
	members, err := ordered.Object(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: `sort_by: %s` is not a valid dictionary",
			domain.ErrInvalidSpecification, strings.TrimSpace(string(raw)))
	}
	spec := make(Spec, 0, len(members))
	for _, m := range members {
		var asc bool
		if err := json.Unmarshal(m.Value, &asc); err != nil {
			return nil, fmt.Errorf("%w: sort direction for %q must be a boolean",
				domain.ErrInvalidSpecification, m.Key)
		}
		spec = append(spec, Key{Path: m.Key, Ascending: asc})
	}
	return spec, nil
}

// MarshalJSON renders the spec in its wire form, preserving order.
func (s Spec) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		name, err := json.Marshal(k.Path)
		if err != nil {
			return nil, err
		}
		b.Write(name)
		if k.Ascending {
			b.WriteString(":true")
		} else {
			b.WriteString(":false")
		}
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// Apply returns a sorted copy of items.
//
// Keys are applied one after another with a stable sort, so the last key
// decides the final order and earlier keys only break its ties.
func Apply[T record.Record](items []T, spec Spec) []T {
	out := slices.Clone(items)
	for _, k := range spec {
		keys := make([]any, len(out))
		idx := make([]int, len(out))
		for i, it := range out {
			idx[i] = i
			keys[i] = sortValue(it, k.Path)
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			c := Compare(keys[a], keys[b])
			if !k.Ascending {
				c = -c
			}
			return c
		})
		next := make([]T, len(out))
		for i, j := range idx {
			next[i] = out[j]
		}
		out = next
	}
	return out
}

func sortValue(rec record.Record, path string) any {
	v := fieldpath.Resolve(rec, path)
	if v == nil {
		return Missing
	}
	return v
}

// Compare orders two resolved sort values.
//
// Numbers compare numerically, times chronologically and booleans false
// first. Sequences compare element-wise. Anything else compares by its
// string form.
func Compare(a, b any) int {
	a, b = record.Underlying(a), record.Underlying(b)

	if na, ok := record.Number(a); ok {
		if nb, ok := record.Number(b); ok {
			return cmp.Compare(na, nb)
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return cmp.Compare(boolRank(ba), boolRank(bb))
		}
	}
	if sa, ok := a.([]any); ok {
		if sb, ok := b.([]any); ok {
			for i := 0; i < len(sa) && i < len(sb); i++ {
				if c := Compare(sa[i], sb[i]); c != 0 {
					return c
				}
			}
			return cmp.Compare(len(sa), len(sb))
		}
	}
	return strings.Compare(record.String(a), record.String(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
