package record

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Underlying unwraps Enum values.
func Underlying(v any) any {
	if e, ok := v.(Enum); ok {
		return e.EnumValue()
	}
	return v
}

// Number converts any Go numeric kind to float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// String renders a scalar the way filters and sorting compare it.
// nil renders as the empty string.
func String(v any) string {
	v = Underlying(v)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		if n, ok := Number(v); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return fmt.Sprint(v)
	}
}

// Equal reports deep equality of two field values through Records,
// sequences and keyed maps. Numbers compare numerically across kinds.
func Equal(a, b any) bool {
	a, b = Underlying(a), Underlying(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case Record:
		y, ok := b.(Record)
		if !ok {
			return false
		}
		return recordsEqual(x, y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}

	if na, ok := Number(a); ok {
		nb, ok := Number(b)
		return ok && na == nb
	}
	return reflect.DeepEqual(a, b)
}

func recordsEqual(a, b Record) bool {
	for _, name := range FieldNames(a, b) {
		av, _ := a.Lookup(name)
		bv, _ := b.Lookup(name)
		if !Equal(av, bv) {
			return false
		}
	}
	return true
}

// FieldNames returns the union of declared field names, first record's order first.
func FieldNames(recs ...Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range recs {
		if r == nil {
			continue
		}
		for _, f := range r.Fields() {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			names = append(names, f.Name)
		}
	}
	return names
}

// Plain converts a field value into JSON-ready data: Records become maps,
// enums their underlying value.
func Plain(v any) any {
	v = Underlying(v)
	switch t := v.(type) {
	case Record:
		out := make(map[string]any, len(t.Fields()))
		for _, f := range t.Fields() {
			fv, _ := t.Lookup(f.Name)
			out[f.Name] = Plain(fv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Plain(e)
		}
		return out
	default:
		return v
	}
}

// SortedKeys returns the keys of a keyed field value in order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
