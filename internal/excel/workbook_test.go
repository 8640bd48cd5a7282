package excel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSheet(t *testing.T) {
	names := []string{"Cover", "Floor Plan Data", "Notes"}

	sheet, err := FindSheet(names, "floor", "plan", "data")
	require.NoError(t, err)
	assert.Equal(t, "Floor Plan Data", sheet)
}

func TestFindSheetIsCaseInsensitive(t *testing.T) {
	sheet, err := FindSheet([]string{"FLOOR PLAN DATA"}, "floor", "plan", "data")
	require.NoError(t, err)
	assert.Equal(t, "FLOOR PLAN DATA", sheet)
}

func TestFindSheetFirstMatchWins(t *testing.T) {
	names := []string{"Floor Plan Data (old)", "Floor Plan Data"}

	sheet, err := FindSheet(names, "floor", "plan", "data")
	require.NoError(t, err)
	assert.Equal(t, "Floor Plan Data (old)", sheet)
}

func TestFindSheetRequiresAllKeywords(t *testing.T) {
	_, err := FindSheet([]string{"Floor Plans", "Summary"}, "floor", "plan", "data")
	assert.Error(t, err)
}

func TestFindHeaderRow(t *testing.T) {
	rows := [][]string{
		{"Market Survey"},
		{},
		{"Property", "Floor Plan"},
		{"Alpha Apartments", "A1"},
	}

	idx, err := FindHeaderRow(rows, 10, func(cell string) bool {
		return strings.Contains(cell, "Property")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestFindHeaderRowRespectsScanLimit(t *testing.T) {
	rows := [][]string{
		{"row 0"}, {"row 1"}, {"row 2"},
		{"Property"},
	}

	_, err := FindHeaderRow(rows, 3, func(cell string) bool {
		return strings.Contains(cell, "Property")
	})
	assert.Error(t, err, "header beyond the scan window must not be found")
}

func TestFindHeaderRowToleratesShortSheets(t *testing.T) {
	_, err := FindHeaderRow([][]string{{"just one row"}}, 15, func(cell string) bool {
		return false
	})
	assert.Error(t, err)
}

func TestCellAtOutOfRange(t *testing.T) {
	row := []string{"a", "b"}
	assert.Equal(t, "b", cellAt(row, 1))
	assert.Equal(t, "", cellAt(row, 7), "ragged rows read as empty cells")
}
