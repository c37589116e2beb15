// backend-go/internal/tabular/table.go
package tabular

import "strings"

// Table is a decoded spreadsheet: a header of named columns and string cells.
// Decoding stops at the wire; all typing (dates, numerics) happens downstream.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of a named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.Columns {
		if col == name {
			return i, true
		}
	}

	return 0, false
}

// HasColumn reports whether a named column is present.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Cell returns the trimmed value of a column in the given row, or "" when the
// row is shorter than the header.
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
