package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	input := " SKU ,Date,UnitsSold\nA1,2025-06-01,3\nB2,2025-06-02,4,extra\nC3,2025-06-03\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"SKU", "Date", "UnitsSold"}, table.Columns)
	require.Len(t, table.Rows, 3)

	idx, ok := table.ColumnIndex("UnitsSold")
	require.True(t, ok)
	assert.Equal(t, "3", table.Cell(table.Rows[0], idx))
	// Short rows read as empty cells.
	assert.Equal(t, "", table.Cell(table.Rows[2], idx))
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"SKU", "Date", "UnitsSold"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"A1", "2025-06-01", 3}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ReadXLSX(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKU", "Date", "UnitsSold"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "A1", table.Rows[0][0])
}

func TestReadTable_DispatchesByExtension(t *testing.T) {
	csvTable, err := ReadTable(strings.NewReader("SKU,Date\nA1,2025-06-01\n"), "history.csv")
	require.NoError(t, err)
	assert.True(t, csvTable.HasColumn("SKU"))

	_, err = ReadTable(strings.NewReader("not an xlsx"), "history.xlsx")
	assert.Error(t, err)
}
