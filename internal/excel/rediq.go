package excel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column offsets in the subject "Floor Plan Summary" sheet.
const (
	rediqColFloorPlan  = 0  // A
	rediqColBedCount   = 3  // D
	rediqColBathCount  = 4  // E
	rediqColNetSqFt    = 5  // F
	rediqColUnits      = 6  // G
	rediqColMarketRent = 15 // P
	rediqColInPlace    = 16 // Q
	rediqColLeases     = 18 // S, free text with recent lease details
)

const rediqDefaultHeaderScan = 15

var rediqSheetKeywords = []string{"floor", "plan", "summary"}

// RedIQParser extracts subject property floor plan records from a RedIQ
// summary workbook. All rows belong to the single subject property, so no
// property column exists here.
type RedIQParser struct {
	HeaderScanRows int
}

// Validate checks that the workbook carries the expected sheet.
func (p *RedIQParser) Validate(data []byte) error {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if _, err := FindSheet(f.GetSheetList(), rediqSheetKeywords...); err != nil {
		return fmt.Errorf("invalid RedIQ file: %w", err)
	}
	return nil
}

// Parse extracts every floor plan row, skipping the aggregate total/average
// rows RedIQ appends below the data.
func (p *RedIQParser) Parse(data []byte) (*ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := FindSheet(f.GetSheetList(), rediqSheetKeywords...)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	scan := p.HeaderScanRows
	if scan <= 0 {
		scan = rediqDefaultHeaderScan
	}
	headerIdx, err := FindHeaderRow(rows, scan, func(cell string) bool {
		return strings.EqualFold(strings.TrimSpace(cell), "floor plan")
	})
	if err != nil {
		return nil, err
	}

	result := &ParseResult{SheetName: sheet}
	for _, row := range rows[headerIdx+1:] {
		name := strings.TrimSpace(cellAt(row, rediqColFloorPlan))
		if name == "" {
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "total") || strings.Contains(lower, "average") {
			continue
		}

		result.Rows = append(result.Rows, FloorPlanRow{
			FloorPlanName: name,
			Bedrooms:      result.Stats.coerce(cellAt(row, rediqColBedCount)),
			Bathrooms:     result.Stats.coerce(cellAt(row, rediqColBathCount)),
			SquareFeet:    result.Stats.coerce(cellAt(row, rediqColNetSqFt)),
			NumberOfUnits: result.Stats.coerce(cellAt(row, rediqColUnits)),
			MarketRent:    result.Stats.coerce(cellAt(row, rediqColMarketRent)),
			InPlaceRent:   result.Stats.coerce(cellAt(row, rediqColInPlace)),
			RecentLeases:  strings.TrimSpace(cellAt(row, rediqColLeases)),
		})
	}
	return result, nil
}
