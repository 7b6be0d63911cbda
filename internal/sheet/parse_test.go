// ABOUTME: Tests for spreadsheet parsing and format sniffing.
// ABOUTME: xlsx fixtures are built in-test with excelize, CSV from literals.

package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetect(t *testing.T) {
	zipMagic := []byte{'P', 'K', 0x03, 0x04, 0x00, 0x00}
	oleMagic := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}

	tests := []struct {
		name        string
		data        []byte
		contentType string
		filename    string
		want        Kind
	}{
		{"zip magic wins", zipMagic, "text/csv", "data.csv", KindXLSX},
		{"ole magic is legacy xls", oleMagic, "", "", KindLegacyXLS},
		{"xlsx content type", []byte("x"), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "", KindXLSX},
		{"csv content type", []byte("a,b"), "text/csv", "", KindCSV},
		{"csv content type with charset", []byte("a,b"), "text/csv; charset=utf-8", "", KindCSV},
		{"plain text counts as csv", []byte("a,b"), "text/plain", "", KindCSV},
		{"csv extension", []byte("a,b"), "", "export.csv", KindCSV},
		{"xlsx extension", []byte("x"), "application/octet-stream", "Data.XLSX", KindXLSX},
		{"image is unknown", []byte{0x89, 'P', 'N', 'G'}, "image/png", "photo.png", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.data, tt.contentType, tt.filename); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	data := []byte("Alice,30\nBob,25\n")

	wb, err := Parse(data, "text/csv", "people.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	sheet := wb.First()
	if sheet == nil {
		t.Fatal("First() = nil, want a sheet")
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0][0] != "Alice" || sheet.Rows[1][1] != "25" {
		t.Errorf("unexpected cells: %v", sheet.Rows)
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	data := []byte("a,b,c\nd\ne,f\n")

	wb, err := Parse(data, "text/csv", "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	rows := wb.First().Rows
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if len(rows[0]) != 3 || len(rows[1]) != 1 || len(rows[2]) != 2 {
		t.Errorf("widths = %d,%d,%d, want 3,1,2", len(rows[0]), len(rows[1]), len(rows[2]))
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Alice")
	f.SetCellValue("Sheet1", "B1", 30)
	f.SetCellValue("Sheet1", "A2", "Bob")
	f.SetCellValue("Sheet1", "B2", 25)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("build fixture: %v", err)
	}

	wb, err := Parse(buf.Bytes(), "", "people.xlsx")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sheet := wb.First()
	if sheet == nil {
		t.Fatal("First() = nil, want a sheet")
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(sheet.Rows))
	}
	if sheet.Rows[0][0] != "Alice" || sheet.Rows[1][0] != "Bob" {
		t.Errorf("unexpected cells: %v", sheet.Rows)
	}
}

func TestParseXLSXNamedSheet(t *testing.T) {
	f := excelize.NewFile()
	f.NewSheet("Extra")
	f.SetCellValue("Extra", "A1", "x")

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("build fixture: %v", err)
	}

	wb, err := Parse(buf.Bytes(), "", "multi.xlsx")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if wb.Named("Extra") == nil {
		t.Error("Named(Extra) = nil, want sheet")
	}
	if wb.Named("NoSuchSheet") != nil {
		t.Error("Named(NoSuchSheet) != nil")
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := Parse([]byte{0x89, 'P', 'N', 'G'}, "image/png", "photo.png")
	if err == nil {
		t.Fatal("Parse() error = nil, want unrecognized-format error")
	}
	if !strings.Contains(err.Error(), "unrecognized") {
		t.Errorf("error = %v, want mention of unrecognized format", err)
	}
}

func TestParseRejectsLegacyXLS(t *testing.T) {
	data := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00}
	_, err := Parse(data, "", "old.xls")
	if err == nil {
		t.Fatal("Parse() error = nil, want legacy-xls error")
	}
	if !strings.Contains(err.Error(), ".xls") {
		t.Errorf("error = %v, want mention of .xls", err)
	}
}

func TestParseCorruptXLSX(t *testing.T) {
	// Valid zip magic, garbage body.
	data := []byte{'P', 'K', 0x03, 0x04, 0xFF, 0xFF, 0xFF}
	if _, err := Parse(data, "", "bad.xlsx"); err == nil {
		t.Fatal("Parse() error = nil, want open error")
	}
}
