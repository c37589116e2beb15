package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX decodes the first sheet of an XLSX stream into a Table.
// It expects the sheet to have a header row compatible with downstream
// CSV processing.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx stream: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var table *Table
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read xlsx row: %w", err)
		}

		if table == nil {
			columns := make([]string, len(record))
			for i, col := range record {
				columns[i] = strings.TrimSpace(col)
			}
			table = &Table{Columns: columns}
			continue
		}

		table.Rows = append(table.Rows, record)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating xlsx rows: %w", err)
	}

	if table == nil {
		return nil, fmt.Errorf("xlsx sheet %s has no header row", sheet)
	}

	return table, nil
}

// ReadTable decodes an upload by filename extension: .xlsx sheets go through
// excelize, everything else is treated as CSV.
func ReadTable(r io.Reader, filename string) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return ReadXLSX(r)
	}

	return ReadCSV(r)
}
