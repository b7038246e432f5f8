package fieldpath

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

type status string

func (s status) EnumValue() any { return string(s) }

type ref struct {
	uid  string
	name string
}

var refSchema = record.NewSchema("ref",
	record.Scalar("uid", func(r ref) any { return r.uid }),
	record.Scalar("name", func(r ref) any { return r.name }),
)

func (r ref) Lookup(n string) (any, bool) { return refSchema.Lookup(r, n) }
func (r ref) Fields() []record.Field      { return refSchema.Fields() }

type item struct {
	uid      string
	status   status
	owner    *ref
	refs     []ref
	synonyms []string
	roles    map[string]ref
	actions  []string
}

var itemSchema = record.NewSchema("item",
	record.Scalar("uid", func(i item) any { return i.uid }),
	record.Scalar("status", func(i item) any { return i.status }),
	record.Nested("owner", func(i item) any {
		if i.owner == nil {
			return nil
		}
		return *i.owner
	}),
	record.List("refs", func(i item) any { return record.AsList(i.refs) }),
	record.List("synonyms", func(i item) any { return record.AsList(i.synonyms) }),
	record.Keyed("roles", func(i item) any { return record.AsMap(i.roles) }),
	record.List("actions", func(i item) any { return record.AsList(i.actions) }).Hidden(),
)

func (i item) Lookup(n string) (any, bool) { return itemSchema.Lookup(i, n) }
func (i item) Fields() []record.Field      { return itemSchema.Fields() }

func sample() item {
	return item{
		uid:      "I1",
		status:   status("Final"),
		owner:    &ref{uid: "O1", name: "Owner"},
		refs:     []ref{{uid: "R1", name: "first"}, {uid: "R2", name: "second"}},
		synonyms: []string{"alpha", "beta"},
		roles:    map[string]ref{"type": {uid: "T1", name: "Type"}, "epoch": {uid: "E1", name: "Epoch"}},
		actions:  []string{"edit"},
	}
}

// --- Resolve tests ---

func TestResolve(t *testing.T) {
	it := sample()
	tests := []struct {
		name string
		path string
		want any
	}{
		{"scalar", "uid", "I1"},
		{"enum unwrapped", "status", "Final"},
		{"nested", "owner.name", "Owner"},
		{"list distributes", "refs.uid", []any{"R1", "R2"}},
		{"scalar list", "synonyms", []any{"alpha", "beta"}},
		{"keyed map values in key order", "roles.uid", []any{"E1", "T1"}},
		{"missing field", "nope", nil},
		{"missing nested field", "owner.nope", nil},
		{"path below scalar", "uid.more", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(it, tc.path)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Resolve(%q) = %#v, want %#v", tc.path, got, tc.want)
			}
		})
	}
}

func TestResolve_NilNested(t *testing.T) {
	it := sample()
	it.owner = nil
	if got := Resolve(it, "owner.name"); got != nil {
		t.Errorf("expected nil, got %#v", got)
	}
}

func TestResolve_Document(t *testing.T) {
	d := record.Document{
		"name": "John",
		"address": map[string]any{
			"city": "Basel",
		},
		"visits": []any{
			map[string]any{"codes": []any{"A", "B"}},
			map[string]any{"codes": []any{"C"}},
		},
	}
	if got := Resolve(d, "address.city"); got != "Basel" {
		t.Errorf("address.city = %#v", got)
	}
	got := Resolve(d, "visits.codes")
	want := []any{[]any{"A", "B"}, []any{"C"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visits.codes = %#v, want %#v", got, want)
	}
}

// --- Flatten tests ---

func TestFlatten(t *testing.T) {
	vals, ok := Flatten([]any{[]any{"A", "B"}, []any{"C"}, nil})
	if !ok {
		t.Fatal("expected sequence")
	}
	want := []any{"A", "B", "C", nil}
	if !reflect.DeepEqual(vals, want) {
		t.Errorf("Flatten = %#v, want %#v", vals, want)
	}
	if _, ok := Flatten("x"); ok {
		t.Error("scalar must not flatten")
	}
}

// --- Leaves tests ---

func TestLeaves(t *testing.T) {
	got := Leaves(sample())
	want := []string{
		"uid", "status",
		"owner.uid", "owner.name",
		"refs.uid", "refs.name",
		"synonyms",
		"roles.uid", "roles.name",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Leaves = %v, want %v", got, want)
	}
}

func TestLeaves_EmptyAndNil(t *testing.T) {
	it := item{uid: "I2"}
	got := Leaves(it)
	want := []string{"uid", "status", "refs", "synonyms"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Leaves = %v, want %v", got, want)
	}
}

func TestLeaves_Document(t *testing.T) {
	d := record.Document{"b": map[string]any{"c": 1}, "a": "x", "l": []any{map[string]any{"z": 1}}}
	got := Leaves(d)
	want := []string{"a", "b.c", "l.z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Leaves = %v, want %v", got, want)
	}
}
