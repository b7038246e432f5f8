package predicate

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

func doc() record.Document {
	return record.Document{
		"uid":      "T1",
		"name":     "Screening Visit",
		"age":      30,
		"active":   true,
		"nothing":  nil,
		"synonyms": []any{"Baseline", "Day 1"},
		"empty":    []any{},
		"owner":    map[string]any{"name": "Jane Doe"},
		"codes":    []any{map[string]any{"v": "C101"}, map[string]any{"v": "C202"}},
	}
}

// --- ParseOperator tests ---

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in   string
		want Operator
	}{
		{"", Equal},
		{"eq", Equal},
		{"CO", Contains},
		{" bw ", Between},
		{"le", LessOrEqual},
	}
	for _, tc := range tests {
		got, err := ParseOperator(tc.in)
		if err != nil {
			t.Fatalf("ParseOperator(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseOperator(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseOperator_Unknown(t *testing.T) {
	_, err := ParseOperator("like")
	if !errors.Is(err, domain.ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Error("operator errors must be validation-class")
	}
}

// --- Matches tests ---

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		op     Operator
		values []any
		want   bool
	}{
		{"eq hit", "uid", Equal, []any{"T1"}, true},
		{"eq case sensitive", "uid", Equal, []any{"t1"}, false},
		{"eq membership", "uid", Equal, []any{"X", "T1"}, true},
		{"eq number vs json number", "age", Equal, []any{30.0}, true},
		{"eq number vs string", "age", Equal, []any{"30"}, false},
		{"eq bool", "active", Equal, []any{true}, true},
		{"ne", "uid", NotEqual, []any{"X"}, true},
		{"ne miss", "uid", NotEqual, []any{"T1"}, false},
		{"co case insensitive", "name", Contains, []any{"visit"}, true},
		{"co any value", "name", Contains, []any{"zzz", "SCREEN"}, true},
		{"co miss", "name", Contains, []any{"zzz"}, false},
		{"gt lexicographic", "age", GreaterThan, []any{"27"}, true},
		{"gt lexicographic not numeric", "age", GreaterThan, []any{"4"}, false},
		{"ge equal", "age", GreaterOrEqual, []any{"30"}, true},
		{"lt", "age", LessThan, []any{"31"}, true},
		{"le", "age", LessOrEqual, []any{"29"}, false},
		{"bw inside", "name", Between, []any{"t", "r"}, true},
		{"bw bounds sorted", "name", Between, []any{"a", "z"}, true},
		{"bw outside", "name", Between, []any{"a", "b"}, false},
		{"null eq matches nil", "nothing", Equal, nil, true},
		{"null eq matches missing", "missing", Equal, []any{}, true},
		{"null eq non nil", "uid", Equal, nil, false},
		{"nil value with values", "nothing", NotEqual, []any{"x"}, false},
		{"sequence any", "synonyms", Equal, []any{"Day 1"}, true},
		{"sequence none", "synonyms", Equal, []any{"Day 2"}, false},
		{"sequence null means empty", "empty", Equal, nil, true},
		{"sequence null non empty", "synonyms", Equal, nil, false},
		{"nested", "owner.name", Contains, []any{"doe"}, true},
		{"nested sequence", "codes.v", Equal, []any{"C202"}, true},
		{"record value never matches", "owner", Contains, []any{"Jane"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Matches(doc(), tc.path, tc.op, tc.values)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Matches(%q %s %v) = %v, want %v", tc.path, tc.op, tc.values, got, tc.want)
			}
		})
	}
}

func TestMatches_Wildcard(t *testing.T) {
	tests := []struct {
		name   string
		op     Operator
		values []any
		want   bool
	}{
		{"top level", Equal, []any{"screening"}, true},
		{"nested record", Contains, []any{"jane"}, true},
		{"sequence of records", Contains, []any{"c20"}, true},
		{"scalar sequence", Contains, []any{"baseline"}, true},
		{"number as string", Contains, []any{"30"}, true},
		{"no hit", Contains, []any{"nowhere"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Matches(doc(), "*", tc.op, tc.values)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("wildcard %v = %v, want %v", tc.values, got, tc.want)
			}
		})
	}
}

func TestMatches_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		op     Operator
		values []any
		want   error
	}{
		{"wildcard with gt", "*", GreaterThan, []any{"a"}, domain.ErrInvalidWildcardUsage},
		{"wildcard with ne", "*", NotEqual, []any{"a"}, domain.ErrInvalidWildcardUsage},
		{"null with co", "uid", Contains, nil, domain.ErrInvalidNullComparison},
		{"null with ne on sequence", "synonyms", NotEqual, []any{}, domain.ErrInvalidNullComparison},
		{"wildcard null", "*", Equal, nil, domain.ErrInvalidNullComparison},
		{"between one value", "name", Between, []any{"a"}, domain.ErrInvalidSpecification},
		{"unknown operator", "uid", Operator("xx"), []any{"a"}, domain.ErrInvalidOperator},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Matches(doc(), tc.path, tc.op, tc.values)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation-class error, got %v", err)
			}
		})
	}
}

func TestEvaluate_Enum(t *testing.T) {
	ok, err := Evaluate(enumValue("Final"), Equal, []any{"Final"})
	if err != nil || !ok {
		t.Errorf("Evaluate(enum) = %v, %v", ok, err)
	}
}

type enumValue string

func (e enumValue) EnumValue() any { return string(e) }
