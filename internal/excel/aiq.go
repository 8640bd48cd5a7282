package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column offsets in the competitor "Floor Plan Data" sheet. The vendor export
// has fixed positions; these move only when the vendor changes their template.
const (
	aiqColProperty       = 0  // A
	aiqColFloorPlan      = 1  // B
	aiqColBedCount       = 2  // C
	aiqColBathCount      = 3  // D
	aiqColSquareFeet     = 4  // E
	aiqColTotalUnits     = 5  // F
	aiqColAvailableUnits = 13 // N
	aiqColAskingRent     = 14 // O
)

const aiqDefaultHeaderScan = 10

var aiqSheetKeywords = []string{"floor", "plan", "data"}

// AIQParser extracts competitor floor plan records from an ApartmentIQ
// market survey workbook.
type AIQParser struct {
	// HeaderScanRows overrides how deep the header search looks. Zero means
	// the default of 10 rows.
	HeaderScanRows int
}

// Validate checks that the workbook carries the expected sheet. Runs before
// any import record is created so a bad file fails fast.
func (p *AIQParser) Validate(data []byte) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if _, err := FindSheet(f.GetSheetList(), aiqSheetKeywords...); err != nil {
		return fmt.Errorf("invalid AIQ file: %w", err)
	}
	return nil
}

// Parse extracts every data row from the floor plan sheet. Unparseable
// numeric cells degrade to nil and are tallied in the result stats; only
// structural problems (missing sheet, missing header) return an error.
func (p *AIQParser) Parse(data []byte) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := FindSheet(f.GetSheetList(), aiqSheetKeywords...)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	scan := p.HeaderScanRows
	if scan <= 0 {
		scan = aiqDefaultHeaderScan
	}
	headerIdx, err := FindHeaderRow(rows, scan, func(cell string) bool {
		return strings.Contains(cell, "Property")
	})
	if err != nil {
		return nil, err
	}

	result := &ParseResult{SheetName: sheet}
	for _, row := range rows[headerIdx+1:] {
		name := strings.TrimSpace(cellAt(row, aiqColProperty))
		if name == "" {
			continue
		}
		// Repeated header fragments and section labels show up mid-sheet.
		if strings.Contains(strings.ToLower(name), "property") {
			continue
		}

		result.Rows = append(result.Rows, FloorPlanRow{
			PropertyName:   name,
			FloorPlanName:  strings.TrimSpace(cellAt(row, aiqColFloorPlan)),
			Bedrooms:       result.Stats.coerce(cellAt(row, aiqColBedCount)),
			Bathrooms:      result.Stats.coerce(cellAt(row, aiqColBathCount)),
			SquareFeet:     result.Stats.coerce(cellAt(row, aiqColSquareFeet)),
			NumberOfUnits:  result.Stats.coerce(cellAt(row, aiqColTotalUnits)),
			UnitsAvailable: result.Stats.coerce(cellAt(row, aiqColAvailableUnits)),
			MarketRent:     result.Stats.coerce(cellAt(row, aiqColAskingRent)),
		})
	}
	return result, nil
}
