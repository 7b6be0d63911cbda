// ABOUTME: Spreadsheet parsing: xlsx via excelize, CSV via encoding/csv.
// ABOUTME: Sniffs the content kind and returns raw rectangular cell grids.

package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named grid of raw cell values in file order.
type Sheet struct {
	Name string
	Rows [][]any
}

// Workbook is the parsed spreadsheet: named sheets in file order.
type Workbook struct {
	Sheets []Sheet
}

// First returns the first sheet, or nil for an empty workbook.
func (w *Workbook) First() *Sheet {
	if len(w.Sheets) == 0 {
		return nil
	}
	return &w.Sheets[0]
}

// Named returns the sheet with the given name, or nil.
func (w *Workbook) Named(name string) *Sheet {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i]
		}
	}
	return nil
}

// Kind is the sniffed spreadsheet format.
type Kind int

const (
	KindUnknown Kind = iota
	KindXLSX
	KindCSV
	KindLegacyXLS
)

// Detect sniffs the spreadsheet kind from magic bytes first, then the
// declared content type, then the filename extension.
func Detect(data []byte, contentType, filename string) Kind {
	if len(data) >= 4 && bytes.Equal(data[:4], []byte{'P', 'K', 0x03, 0x04}) {
		return KindXLSX
	}
	// OLE compound file: a legacy .xls workbook.
	if len(data) >= 8 && bytes.Equal(data[:8], []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}) {
		return KindLegacyXLS
	}

	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch ct {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return KindXLSX
	case "application/vnd.ms-excel":
		return KindLegacyXLS
	case "text/csv", "application/csv", "text/plain":
		return KindCSV
	}

	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		return KindXLSX
	case strings.HasSuffix(name, ".xls"):
		return KindLegacyXLS
	case strings.HasSuffix(name, ".csv"), strings.HasSuffix(name, ".txt"):
		return KindCSV
	}
	return KindUnknown
}

// Parse turns spreadsheet bytes into a workbook. Unsupported or corrupt
// input surfaces as a single error; the caller wraps it with a user-facing
// hint.
func Parse(data []byte, contentType, filename string) (*Workbook, error) {
	switch Detect(data, contentType, filename) {
	case KindXLSX:
		return parseXLSX(data)
	case KindCSV:
		return parseCSV(data, filename)
	case KindLegacyXLS:
		return nil, fmt.Errorf("legacy .xls workbooks are not supported, re-save the file as .xlsx or .csv")
	default:
		return nil, fmt.Errorf("unrecognized spreadsheet format (content type %q)", contentType)
	}
}

func parseXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		grid := make([][]any, len(rows))
		for i, row := range rows {
			cells := make([]any, len(row))
			for j, cell := range row {
				cells[j] = cell
			}
			grid[i] = cells
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: grid})
	}
	return wb, nil
}

func parseCSV(data []byte, filename string) (*Workbook, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are fine, the normalizer pads
	r.LazyQuotes = true

	var grid [][]any
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		cells := make([]any, len(record))
		for i, cell := range record {
			cells[i] = cell
		}
		grid = append(grid, cells)
	}

	name := filename
	if name == "" {
		name = "Sheet1"
	}
	return &Workbook{Sheets: []Sheet{{Name: name, Rows: grid}}}, nil
}
