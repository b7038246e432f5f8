package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fields"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

func docs() []record.Document {
	return record.Documents([]map[string]any{
		{
			"uid":      "Term_000001",
			"name":     "Screening",
			"synonyms": []any{"SCR", "Screen"},
			"codelist": map[string]any{"uid": "CL_1", "name": "Epoch"},
			"order":    1,
		},
		{
			"uid":      "Term_000002",
			"name":     "Treatment",
			"synonyms": []any{},
			"codelist": map[string]any{"uid": "CL_1", "name": "Epoch"},
			"order":    2,
		},
	})
}

// --- Format tests ---

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{" xml ", FormatXML, false},
		{"json", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.err {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

// --- Columns tests ---

func TestColumns_ExpandsNestedRecords(t *testing.T) {
	got := Columns(docs(), nil)
	want := []string{"codelist.name", "codelist.uid", "name", "order", "synonyms", "uid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestColumns_Directive(t *testing.T) {
	got := Columns(docs(), fields.Parse("uid,codelist.name"))
	want := []string{"codelist.name", "uid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	got = Columns(docs(), fields.Parse("-codelist,-synonyms"))
	want = []string{"name", "order", "uid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestColumns_Empty(t *testing.T) {
	if got := Columns([]record.Document{}, nil); got != nil {
		t.Errorf("expected no columns, got %v", got)
	}
}

// --- Cell tests ---

func TestCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"int", 3, "3"},
		{"bool", true, "true"},
		{"list", []any{"a", "b"}, "a|b"},
		{"nested list", []any{[]any{"a"}, "b"}, "a|b"},
		{"keyed", map[string]any{"b": "2", "a": "1"}, "1|2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(tt.in); got != tt.want {
				t.Errorf("Cell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- Write tests ---

func TestWrite_CSV(t *testing.T) {
	recs := docs()
	table := NewTable("terms", recs, []string{"uid", "synonyms", "codelist.name"})

	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, table); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"uid", "synonyms", "codelist.name"},
		{"Term_000001", "SCR|Screen", "Epoch"},
		{"Term_000002", "", "Epoch"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_JSON(t *testing.T) {
	table := NewTable("terms", docs(), []string{"uid", "order"})

	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, table); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[1]["uid"] != "Term_000002" || got[1]["order"] != float64(2) {
		t.Errorf("unexpected json %v", got)
	}
}

func TestWrite_XML(t *testing.T) {
	table := NewTable("ct_term", docs()[:1], []string{"uid", "codelist.name"})

	var buf bytes.Buffer
	if err := Write(&buf, FormatXML, table); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`<items kind="ct_term">`, "<uid>Term_000001</uid>", "<codelist.name>Epoch</codelist.name>"} {
		if !strings.Contains(out, want) {
			t.Errorf("xml missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_XLSX(t *testing.T) {
	table := NewTable("ct_term", docs(), []string{"uid", "synonyms", "order"})

	var buf bytes.Buffer
	if err := Write(&buf, FormatXLSX, table); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("ct_term")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := [][]string{
		{"uid", "synonyms", "order"},
		{"Term_000001", "SCR|Screen", "1"},
		{"Term_000002", "", "2"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("xlsx mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("pdf"), Table{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
