package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

func writeCSV(w io.Writer, t Table) error {
	buffered := bufio.NewWriter(w)
	cw := csv.NewWriter(buffered)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = Cell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return buffered.Flush()
}

func writeXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := defaultSheet
	if t.Name != "" {
		// Sheet names are limited to 31 characters.
		sheet = t.Name
		if len(sheet) > 31 {
			sheet = sheet[:31]
		}
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = xlsxValue(v)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// xlsxValue keeps numbers and booleans typed; everything else becomes text.
func xlsxValue(v any) any {
	switch v.(type) {
	case nil:
		return nil
	case bool, int, int64, float64:
		return v
	default:
		return Cell(v)
	}
}

func writeXML(w io.Writer, t Table) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "items"}}
	if t.Name != "" {
		root.Attr = []xml.Attr{{Name: xml.Name{Local: "kind"}, Value: t.Name}}
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	item := xml.StartElement{Name: xml.Name{Local: "item"}}
	for _, row := range t.Rows {
		if err := enc.EncodeToken(item); err != nil {
			return err
		}
		for i, v := range row {
			el := xml.StartElement{Name: xml.Name{Local: t.Columns[i]}}
			if err := enc.EncodeElement(Cell(v), el); err != nil {
				return fmt.Errorf("encode %s: %w", t.Columns[i], err)
			}
		}
		if err := enc.EncodeToken(item.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Flush()
}

func writeJSON(w io.Writer, t Table) error {
	out := make([]map[string]any, len(t.Rows))
	for r, row := range t.Rows {
		obj := make(map[string]any, len(row))
		for i, v := range row {
			obj[t.Columns[i]] = v
		}
		out[r] = obj
	}
	return json.NewEncoder(w).Encode(out)
}
