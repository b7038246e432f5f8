// Package export renders query results as downloadable tables.
//
// Columns are dotted field paths resolved with the field path resolver.
// Sequence values are joined with "|" in text formats.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fieldpath"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fields"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// ListSeparator joins sequence values inside one cell.
const ListSeparator = "|"

// ParseFormat parses a format name. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatXML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", domain.ErrValidation, s)
	}
}

// ContentType returns the media type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatXML:
		return "application/xml"
	case FormatJSON:
		return "application/json"
	default:
		return "text/csv"
	}
}

// Extension returns the file name extension of f, without the dot.
func (f Format) Extension() string { return string(f) }

// Table is a rectangular view of records: one row per record, one cell per column.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// NewTable resolves every column of every record. Cells hold plain values.
func NewTable[T record.Record](name string, recs []T, columns []string) Table {
	rows := make([][]any, len(recs))
	for i, rec := range recs {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = record.Plain(fieldpath.Resolve(rec, col))
		}
		rows[i] = row
	}
	return Table{Name: name, Columns: columns, Rows: rows}
}

// Columns lists the leaf paths of recs selected by d. Nested records and
// sequences of records expand into "parent.child" columns; the first
// record holding a value for a field decides its sub-columns.
func Columns[T record.Record](recs []T, d *fields.Directive) []string {
	if d == nil {
		d = fields.Anything()
	}
	if len(recs) == 0 {
		return nil
	}
	rs := make([]record.Record, len(recs))
	for i, r := range recs {
		rs[i] = r
	}
	return columns(rs, d, "")
}

func columns(recs []record.Record, d *fields.Directive, prefix string) []string {
	var out []string
	for _, name := range record.FieldNames(recs...) {
		if !d.Included(name) {
			continue
		}
		child, err := d.Children(name)
		if err != nil {
			continue
		}
		nested := nestedRecords(recs, name)
		if len(nested) == 0 {
			out = append(out, prefix+name)
			continue
		}
		sub := columns(nested, child, prefix+name+fieldpath.Separator)
		if len(sub) == 0 {
			out = append(out, prefix+name)
			continue
		}
		out = append(out, sub...)
	}
	return out
}

// nestedRecords collects the records found under name: nested records,
// record elements of sequences and record values of keyed maps.
func nestedRecords(recs []record.Record, name string) []record.Record {
	var out []record.Record
	var collect func(v any)
	collect = func(v any) {
		switch t := record.Underlying(v).(type) {
		case record.Record:
			out = append(out, t)
		case []any:
			for _, e := range t {
				collect(e)
			}
		case map[string]any:
			for _, k := range record.SortedKeys(t) {
				collect(t[k])
			}
		}
	}
	for _, r := range recs {
		v, _ := r.Lookup(name)
		collect(v)
	}
	return out
}

// Cell renders a plain value as text. Sequences are flattened and joined
// with ListSeparator; maps render their values in key order.
func Cell(v any) string {
	switch t := v.(type) {
	case []any:
		flat, _ := fieldpath.Flatten(t)
		parts := make([]string, 0, len(flat))
		for _, e := range flat {
			parts = append(parts, Cell(e))
		}
		return strings.Join(parts, ListSeparator)
	case map[string]any:
		keys := record.SortedKeys(t)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = Cell(t[k])
		}
		return strings.Join(parts, ListSeparator)
	default:
		return record.String(v)
	}
}

// Write renders t to w in format f.
func Write(w io.Writer, f Format, t Table) error {
	var err error
	switch f {
	case FormatCSV, "":
		err = writeCSV(w, t)
	case FormatXLSX:
		err = writeXLSX(w, t)
	case FormatXML:
		err = writeXML(w, t)
	case FormatJSON:
		err = writeJSON(w, t)
	default:
		return fmt.Errorf("%w: unsupported export format %q", domain.ErrValidation, f)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	return nil
}
