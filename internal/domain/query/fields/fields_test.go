package fields

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// --- Parse / Included tests ---

func TestIncluded(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		path      string
		want      bool
	}{
		{"empty includes everything", "", "anything", true},
		{"exclude only is open", "-age", "name", true},
		{"exclude only drops excluded", "-age", "age", false},
		{"any include closes the node", "name,-age", "city", false},
		{"include listed", "name,-age", "name", true},
		{"exclusion wins", "name,-name", "name", false},
		{"plus prefix", "+name", "name", true},
		{"whitespace ignored", " name , - age ", "age", false},
		{"nested include keeps parent", "owner.name", "owner", true},
		{"nested include selects child", "owner.name", "owner.name", true},
		{"nested include closes child", "owner.name", "owner.uid", false},
		{"nested include closes root", "owner.name", "uid", false},
		{"nested exclude", "-owner.uid", "owner.name", true},
		{"nested exclude drops child", "-owner.uid", "owner.uid", false},
		{"excluded parent hides child", "-owner", "owner.name", false},
		{"deep path", "a.b.c", "a.b.c", true},
		{"deep sibling", "a.b.c", "a.b.d", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.directive).Included(tt.path); got != tt.want {
				t.Errorf("Parse(%q).Included(%q) = %v, want %v", tt.directive, tt.path, got, tt.want)
			}
		})
	}
}

func TestParse_EmptyIsAnything(t *testing.T) {
	for _, s := range []string{"", " ", ",,", "+,-"} {
		if !Parse(s).IsAnything() {
			t.Errorf("Parse(%q) should be Anything", s)
		}
	}
}

func TestChildren(t *testing.T) {
	d := Parse("owner.name,-age")

	child, err := d.Children("owner")
	if err != nil {
		t.Fatalf("Children(owner): %v", err)
	}
	if !child.Included("name") || child.Included("uid") {
		t.Error("owner child directive should select only name")
	}

	if _, err := d.Children("age"); !errors.Is(err, domain.ErrInvalidFieldsDirectiveState) {
		t.Errorf("expected ErrInvalidFieldsDirectiveState, got %v", err)
	}

	open := Parse("-age")
	child, err = open.Children("city")
	if err != nil {
		t.Fatalf("Children(city): %v", err)
	}
	if !child.IsAnything() {
		t.Error("field without nested directive should get Anything")
	}

	deep, err := Parse("a.b.c").Children("a.b")
	if err != nil {
		t.Fatalf("Children(a.b): %v", err)
	}
	if !deep.Included("c") || deep.Included("d") {
		t.Error("unexpected deep child directive")
	}
}

func TestString(t *testing.T) {
	tests := map[string]string{
		"name,-age":             "+name,-age",
		"owner.name,-owner.uid": "+owner.name,-owner.uid",
		"-owner.uid":            "-owner.uid",
		"":                      "",
	}
	for in, want := range tests {
		if got := Parse(in).String(); got != want {
			t.Errorf("Parse(%q).String() = %q, want %q", in, got, want)
		}
	}
}

// --- Apply tests ---

func sample() record.Document {
	return record.Document{
		"uid":   "1",
		"name":  "Visit",
		"age":   3,
		"city":  "Paris",
		"owner": map[string]any{"name": "Jane", "uid": "o1"},
		"refs":  []any{map[string]any{"a": 1, "b": 2}},
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		want      map[string]any
	}{
		{
			name:      "closed world",
			directive: "name,-age",
			want:      map[string]any{"name": "Visit"},
		},
		{
			name:      "open world",
			directive: "-age,-owner,-refs",
			want:      map[string]any{"uid": "1", "name": "Visit", "city": "Paris"},
		},
		{
			name:      "nested",
			directive: "owner.name,refs.a",
			want: map[string]any{
				"owner": map[string]any{"name": "Jane"},
				"refs":  []any{map[string]any{"a": 1}},
			},
		},
		{
			name:      "nested exclude",
			directive: "-owner.uid,-refs,-uid,-name,-age,-city",
			want:      map[string]any{"owner": map[string]any{"name": "Jane"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sample(), Parse(tt.directive))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_Anything(t *testing.T) {
	got := Apply(sample(), Anything())
	want := map[string]any{
		"uid": "1", "name": "Visit", "age": 3, "city": "Paris",
		"owner": map[string]any{"name": "Jane", "uid": "o1"},
		"refs":  []any{map[string]any{"a": 1, "b": 2}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply(Anything) mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_Idempotent(t *testing.T) {
	for _, directive := range []string{"", "name,-age", "owner.name,refs.a", "-owner.uid"} {
		d := Parse(directive)
		once := Apply(sample(), d)
		twice := Apply(record.Document(once), d)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("%q not idempotent (-once +twice):\n%s", directive, diff)
		}
	}
}

func TestApplyAll(t *testing.T) {
	got := ApplyAll([]record.Document{sample(), sample()}, Parse("uid"))
	want := []map[string]any{{"uid": "1"}, {"uid": "1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ApplyAll mismatch (-want +got):\n%s", diff)
	}
}
