package versioning

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// --- Version tests ---

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.2")
	if err != nil {
		t.Fatalf("ParseVersion: %v", err)
	}
	if v != (Version{Major: 1, Minor: 2}) || v.String() != "1.2" {
		t.Errorf("unexpected version %v", v)
	}
	for _, bad := range []string{"", "1", "a.b", "1.-1"} {
		if _, err := ParseVersion(bad); !errors.Is(err, domain.ErrInvalidSchema) {
			t.Errorf("ParseVersion(%q): expected ErrInvalidSchema, got %v", bad, err)
		}
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("final")
	if err != nil || st != StatusFinal {
		t.Errorf("ParseStatus(final) = %q, %v", st, err)
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Error("expected error for unknown status")
	}
}

// --- Lifecycle tests ---

func TestLifecycle(t *testing.T) {
	m := Create("alice", "", now)
	if m.Status != StatusDraft || m.Version.String() != "0.1" || m.ChangeDescription != "Initial version" {
		t.Fatalf("unexpected initial metadata %+v", m)
	}

	steps := []struct {
		name    string
		apply   func(Metadata) (Metadata, error)
		status  Status
		version string
	}{
		{"edit draft", func(m Metadata) (Metadata, error) { return m.EditDraft("bob", "fix", now) }, StatusDraft, "0.2"},
		{"approve", func(m Metadata) (Metadata, error) { return m.Approve("bob", now) }, StatusFinal, "1.0"},
		{"new version", func(m Metadata) (Metadata, error) { return m.NewVersion("bob", "", now) }, StatusDraft, "1.1"},
		{"edit again", func(m Metadata) (Metadata, error) { return m.EditDraft("bob", "more", now) }, StatusDraft, "1.2"},
		{"approve again", func(m Metadata) (Metadata, error) { return m.Approve("bob", now) }, StatusFinal, "2.0"},
		{"inactivate", func(m Metadata) (Metadata, error) { return m.Inactivate("bob", now) }, StatusRetired, "2.0"},
		{"reactivate", func(m Metadata) (Metadata, error) { return m.Reactivate("bob", now) }, StatusFinal, "2.0"},
	}
	for _, s := range steps {
		next, err := s.apply(m)
		if err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if next.Status != s.status || next.Version.String() != s.version {
			t.Fatalf("%s: got %s %s, want %s %s", s.name, next.Status, next.Version, s.status, s.version)
		}
		if next.AuthorUsername != "bob" {
			t.Errorf("%s: author not recorded", s.name)
		}
		m = next
	}
}

func TestInvalidTransitions(t *testing.T) {
	draft := Create("a", "", now)
	final, _ := draft.Approve("a", now)
	retired, _ := final.Inactivate("a", now)

	tests := []struct {
		name string
		fn   func() (Metadata, error)
	}{
		{"approve final", func() (Metadata, error) { return final.Approve("a", now) }},
		{"edit final", func() (Metadata, error) { return final.EditDraft("a", "x", now) }},
		{"new version of draft", func() (Metadata, error) { return draft.NewVersion("a", "", now) }},
		{"inactivate draft", func() (Metadata, error) { return draft.Inactivate("a", now) }},
		{"reactivate final", func() (Metadata, error) { return final.Reactivate("a", now) }},
		{"edit retired", func() (Metadata, error) { return retired.EditDraft("a", "x", now) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !errors.Is(err, domain.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestEditDraft_RequiresDescription(t *testing.T) {
	_, err := Create("a", "", now).EditDraft("a", " ", now)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Errorf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestPossibleActions(t *testing.T) {
	draft := Create("a", "", now)
	final, _ := draft.Approve("a", now)
	newDraft, _ := final.NewVersion("a", "", now)
	retired, _ := final.Inactivate("a", now)

	tests := []struct {
		name string
		m    Metadata
		want []string
	}{
		{"never approved draft", draft, []string{"approve", "delete", "edit"}},
		{"final", final, []string{"inactivate", "new_version"}},
		{"draft after approval", newDraft, []string{"approve", "edit"}},
		{"retired", retired, []string{"reactivate"}},
	}
	for _, tt := range tests {
		if got := tt.m.PossibleActions(); !slices.Equal(got, tt.want) {
			t.Errorf("%s: PossibleActions() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClose(t *testing.T) {
	m := Create("a", "", now)
	closed := m.Close(now.Add(time.Hour))
	if closed.EndDate == nil || !closed.EndDate.Equal(now.Add(time.Hour)) {
		t.Errorf("end date not set: %+v", closed)
	}
	if m.EndDate != nil {
		t.Error("Close must not modify the receiver")
	}
}

// --- Accessors tests ---

type item struct{ meta Metadata }

var itemSchema = record.NewSchema("item", Accessors(func(i item) Metadata { return i.meta })...)

func TestAccessors(t *testing.T) {
	it := item{meta: Create("alice", "", now)}

	if v, _ := itemSchema.Lookup(it, FieldVersion); v != "0.1" {
		t.Errorf("version = %v", v)
	}
	if v, _ := itemSchema.Lookup(it, FieldStatus); record.String(v) != "Draft" {
		t.Errorf("status = %v", v)
	}
	if v, ok := itemSchema.Lookup(it, FieldEndDate); !ok || v != nil {
		t.Errorf("open end date = %v, %v", v, ok)
	}

	for _, f := range itemSchema.Fields() {
		if f.Name == FieldPossibleActions && !f.NoWildcard {
			t.Error("possible_actions must be excluded from wildcard search")
		}
	}
}
