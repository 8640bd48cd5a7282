package excel

import (
	"fmt"
	"strings"
)

// FindSheet returns the first sheet, in workbook order, whose lowercased name
// contains every keyword. First match wins; later sheets that also match are
// ignored.
func FindSheet(names []string, keywords ...string) (string, error) {
	for _, name := range names {
		lower := strings.ToLower(name)
		matched := true
		for _, kw := range keywords {
			if !strings.Contains(lower, kw) {
				matched = false
				break
			}
		}
		if matched {
			return name, nil
		}
	}
	return "", fmt.Errorf("no sheet found matching keywords %q", strings.Join(keywords, " "))
}

// FindHeaderRow scans column zero of the first maxScan rows and returns the
// index of the first row the matcher accepts. Not finding a header is a
// structural failure that aborts the whole import.
func FindHeaderRow(rows [][]string, maxScan int, match func(cell string) bool) (int, error) {
	limit := maxScan
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		if match(cellAt(rows[i], 0)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("header row not found in first %d rows", maxScan)
}

// cellAt reads a cell by column index, tolerating the ragged rows excelize
// produces when trailing cells are empty.
func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
