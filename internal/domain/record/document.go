package record

import "sort"

// Document is a Record backed by a decoded JSON object.
// Nested objects are exposed as Documents, not keyed maps.
type Document map[string]any

var (
	_ Record       = Document(nil)
	_ Identifiable = Document(nil)
)

// Lookup returns the value stored under name.
func (d Document) Lookup(name string) (any, bool) {
	v, ok := d[name]
	if !ok {
		return nil, false
	}
	return wrapJSON(v), true
}

// Fields lists keys in sorted order. Kinds are inferred from the stored values.
func (d Document) Fields() []Field {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, len(keys))
	for i, k := range keys {
		kind := KindScalar
		switch d[k].(type) {
		case map[string]any, Document:
			kind = KindRecord
		case []any:
			kind = KindList
		}
		fields[i] = Field{Name: k, Kind: kind}
	}
	return fields
}

// UID returns the "uid" key when it holds a string.
func (d Document) UID() string {
	if s, ok := d["uid"].(string); ok {
		return s
	}
	return ""
}

func wrapJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Document(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = wrapJSON(e)
		}
		return out
	default:
		return v
	}
}

// Documents converts decoded JSON objects into Records.
func Documents(objs []map[string]any) []Document {
	out := make([]Document, len(objs))
	for i, o := range objs {
		out[i] = Document(o)
	}
	return out
}
