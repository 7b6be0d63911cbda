// ABOUTME: Normalizes raw parsed grids into fixed-width, string-only tables.
// ABOUTME: Synthesizes column_1..N names and coerces every cell to a string.

package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Table is the normalized tabular value. Every row carries exactly the
// column set in Columns and every cell is a string.
type Table struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// Normalize converts a raw grid into a table. Original header text is
// discarded: columns are always synthesized as column_1..column_N, which
// sidesteps illegal or colliding machine names downstream. N is the widest
// row observed; narrower rows are padded with empty strings. Rows whose
// cells are all blank after trimming are dropped.
func Normalize(grid [][]any) Table {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	columns := ColumnNames(width)
	rows := make([]map[string]string, 0, len(grid))
	for _, row := range grid {
		out := make(map[string]string, width)
		blank := true
		for i, col := range columns {
			var cell string
			if i < len(row) {
				cell = CellString(row[i])
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			out[col] = cell
		}
		if blank {
			continue
		}
		rows = append(rows, out)
	}

	return Table{Columns: columns, Rows: rows}
}

// ColumnNames returns the synthesized names column_1..column_n.
func ColumnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("column_%d", i+1)
	}
	return names
}

// CellString coerces one raw cell to its normalized string form. Nil and
// NaN become the empty string; numbers render without a trailing ".0".
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if math.IsNaN(val) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

// Matrix returns the table's cells as rows of values in column order.
func (t Table) Matrix() [][]string {
	data := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			cells[j] = row[col]
		}
		data[i] = cells
	}
	return data
}
