package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/filter"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/sorting"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

func people() []record.Document {
	return []record.Document{
		{"uid": "1", "name": "John", "age": 30, "tags": []any{"a", "b"}},
		{"uid": "2", "name": "Jane", "age": 25, "tags": []any{"b", "c"}},
		{"uid": "3", "name": "Doe", "age": 27},
	}
}

func names(items []record.Document) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = record.String(it["name"])
	}
	return strings.Join(out, ",")
}

func mustRequest(t *testing.T, raw RawRequest) Request {
	t.Helper()
	req, err := ParseRequest(raw)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	return req
}

// --- Request tests ---

func TestNewRequest_Pagination(t *testing.T) {
	tests := []struct {
		name         string
		number, size int
		wantErr      bool
	}{
		{"defaults", 1, 0, false},
		{"paged", 3, 10, false},
		{"page zero", 0, 10, true},
		{"negative size", 1, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRequest(filter.Spec{}, filter.And, nil, tt.number, tt.size, false)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidPagination) {
					t.Fatalf("expected ErrInvalidPagination, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewRequest_DefaultsOperator(t *testing.T) {
	req, err := NewRequest(filter.Spec{}, "", nil, 1, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if req.Operator != filter.And {
		t.Errorf("expected and, got %q", req.Operator)
	}
}

func TestParseRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  RawRequest
		want error
	}{
		{"filters not a dict", RawRequest{Filters: `[1]`, PageNumber: 1}, domain.ErrInvalidSpecification},
		{"sort not a dict", RawRequest{SortBy: `"name"`, PageNumber: 1}, domain.ErrInvalidSpecification},
		{"bad operator", RawRequest{Operator: "xor", PageNumber: 1}, domain.ErrInvalidOperator},
		{"bad page", RawRequest{PageNumber: 0}, domain.ErrInvalidPagination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Error("request errors must be validation-class")
			}
		})
	}
}

// --- Run tests ---

func TestRun_StringComparisonScenario(t *testing.T) {
	req := mustRequest(t, RawRequest{
		Filters:    `{"age": {"op": "gt", "v": ["27"]}}`,
		SortBy:     `{"name": true}`,
		PageNumber: 1,
		TotalCount: true,
	})
	p, err := Run(people(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if names(p.Items) != "John" {
		t.Errorf("items = %q, want John", names(p.Items))
	}
	if p.Total != 1 {
		t.Errorf("total = %d, want 1", p.Total)
	}
}

func TestRun_TotalOnlyWhenRequested(t *testing.T) {
	p, err := Run(people(), mustRequest(t, RawRequest{PageNumber: 1, PageSize: 1}))
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 0 {
		t.Errorf("total should be 0 when not requested, got %d", p.Total)
	}
	if len(p.Items) != 1 || p.Size != 1 || p.Number != 1 {
		t.Errorf("unexpected page %+v", p)
	}
}

func TestRun_SecondPage(t *testing.T) {
	items := []record.Document{{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"}}
	p, err := Run(items, mustRequest(t, RawRequest{PageNumber: 2, PageSize: 2, TotalCount: true}))
	if err != nil {
		t.Fatal(err)
	}
	if names(p.Items) != "C,D" || p.Total != 4 {
		t.Errorf("got %q total %d", names(p.Items), p.Total)
	}
}

func TestRun_PagesCoverSortedResult(t *testing.T) {
	items := []record.Document{
		{"uid": "1", "name": "E"}, {"uid": "2", "name": "B"}, {"uid": "3", "name": "D"},
		{"uid": "4", "name": "A"}, {"uid": "5", "name": "C"},
	}
	var all []record.Document
	for n := 1; n <= 3; n++ {
		p, err := Run(items, mustRequest(t, RawRequest{SortBy: `{"name": true}`, PageNumber: n, PageSize: 2}))
		if err != nil {
			t.Fatal(err)
		}
		all = append(all, p.Items...)
	}
	if names(all) != "A,B,C,D,E" {
		t.Errorf("pages concatenated to %q", names(all))
	}
}

func TestRun_OrWithSingleConditionEqualsAnd(t *testing.T) {
	and, err := Run(people(), mustRequest(t, RawRequest{Filters: `{"tags": {"v": ["b"]}}`, PageNumber: 1}))
	if err != nil {
		t.Fatal(err)
	}
	or, err := Run(people(), mustRequest(t, RawRequest{
		Filters: `{"tags": {"v": ["b"]}}`, Operator: "or", PageNumber: 1,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if names(and.Items) != names(or.Items) || names(and.Items) != "John,Jane" {
		t.Errorf("and=%q or=%q", names(and.Items), names(or.Items))
	}
}

func TestParseRequest_WildcardOperator(t *testing.T) {
	_, err := ParseRequest(RawRequest{Filters: `{"*": {"v": ["x"], "op": "gt"}}`, PageNumber: 1})
	if !errors.Is(err, domain.ErrInvalidWildcardUsage) {
		t.Fatalf("expected ErrInvalidWildcardUsage, got %v", err)
	}
}

// --- Distinct tests ---

func TestDistinct(t *testing.T) {
	tests := []struct {
		name string
		req  HeaderRequest
		want []any
	}{
		{"scalar field", HeaderRequest{Field: "name"}, []any{"John", "Jane", "Doe"}},
		{"flattened and deduped", HeaderRequest{Field: "tags"}, []any{"a", "b", "c"}},
		{"search adds contains", HeaderRequest{Field: "name", Search: "J"}, []any{"John", "Jane"}},
		{"limit", HeaderRequest{Field: "name", Limit: 2}, []any{"John", "Jane"}},
		{"nil skipped", HeaderRequest{Field: "missing"}, []any{}},
		{"or without filters keeps all", HeaderRequest{Field: "name", Operator: filter.Or}, []any{"John", "Jane", "Doe"}},
		{"or with search", HeaderRequest{Field: "name", Search: "J", Operator: filter.Or}, []any{"John", "Jane"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Distinct(people(), tt.req)
			if err != nil {
				t.Fatalf("Distinct: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Distinct mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDistinct_WithFilters(t *testing.T) {
	spec, err := filter.ParseSpec([]byte(`{"age": {"op": "gt", "v": ["26"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Distinct(people(), HeaderRequest{Field: "name", Filters: spec})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{"John", "Doe"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDistinct_RequiresField(t *testing.T) {
	if _, err := Distinct(people(), HeaderRequest{}); !errors.Is(err, domain.ErrInvalidSpecification) {
		t.Errorf("expected ErrInvalidSpecification, got %v", err)
	}
}

// --- ExtractValue / Remap tests ---

func TestExtractValue(t *testing.T) {
	spec, err := filter.ParseSpec([]byte(
		`{"library_name": {"v": ["CDISC"]}, "uids": {"v": ["a", "b"]}, "name": {"v": ["x"], "op": "co"}}`,
	))
	if err != nil {
		t.Fatal(err)
	}

	v, rest, ok := ExtractValue(spec, "library_name", true)
	if !ok || v != "CDISC" {
		t.Fatalf("ExtractValue(library_name) = %v, %v", v, ok)
	}
	if _, still := rest.Get("library_name"); still || rest.Len() != 2 {
		t.Errorf("condition not removed: %d left", rest.Len())
	}
	if spec.Len() != 3 {
		t.Error("input spec mutated")
	}

	if _, rest, ok := ExtractValue(spec, "uids", true); ok || rest.Len() != 3 {
		t.Error("single extraction of several values must fail and keep the spec")
	}
	if v, _, ok := ExtractValue(spec, "uids", false); !ok || v != "a" {
		t.Errorf("multi extraction returns first value, got %v %v", v, ok)
	}
	if _, _, ok := ExtractValue(spec, "name", false); ok {
		t.Error("non-equality condition must not be extracted")
	}
	if _, _, ok := ExtractValue(spec, "absent", false); ok {
		t.Error("absent condition must not be extracted")
	}
}

func TestRemap(t *testing.T) {
	spec, err := filter.ParseSpec([]byte(`{"name": {"v": ["x"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	mapping := map[string]string{"name": "value.name", "start_date": "has_version.start_date"}

	f, s, ok := Remap(mapping, spec, sorting.Spec{sorting.Desc("start_date")})
	if !ok {
		t.Fatal("expected remap to succeed")
	}
	if _, found := f.Get("value.name"); !found {
		t.Error("filter path not renamed")
	}
	if len(s) != 1 || s[0].Path != "has_version.start_date" || s[0].Ascending {
		t.Errorf("unexpected sort %+v", s)
	}

	if _, _, ok := Remap(mapping, spec, sorting.Spec{sorting.Asc("unmapped")}); ok {
		t.Error("unmapped sort key must fail")
	}
}
