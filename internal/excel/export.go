package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"market-survey-portal/internal/models"
)

const (
	surveySheetName  = "Market Survey"
	summarySheetName = "Summary"
)

var surveyHeaders = []interface{}{
	"Property", "Floor Plan", "Bed", "Bath", "Sq Ft", "Units",
	"Market Rent", "Rent PSF", "AMC Rent", "Broker Rent", "Last 5 Leases", "Source",
}

var surveyColWidths = []float64{25, 15, 8, 8, 10, 8, 12, 10, 12, 12, 20, 10}

// BuildWorkbook renders consolidated rows into an xlsx buffer. Rows are
// written in the order given (callers pass them already subject-first).
// A Summary sheet is added only when subject rows exist.
func BuildWorkbook(rows []models.ConsolidatedRow, subjectName string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", surveySheetName); err != nil {
		return nil, fmt.Errorf("failed to create survey sheet: %w", err)
	}

	if err := f.SetSheetRow(surveySheetName, "A1", &surveyHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}
	for i, r := range rows {
		cells := []interface{}{
			r.PropertyName,
			r.FloorPlan,
			numCell(r.Bedrooms),
			numCell(r.Bathrooms),
			numCell(r.SquareFeet),
			numCell(r.NumberOfUnits),
			numCell(r.MarketRent),
			numCell(r.RentPsf),
			numCell(r.AmcRent),
			numCell(r.BrokerRent),
			r.RecentLeases,
			r.DataSource,
		}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(surveySheetName, axis, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for i, w := range surveyColWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(surveySheetName, col, col, w)
	}

	subjectRows := filterSubject(rows)
	if len(subjectRows) > 0 {
		if err := writeSummarySheet(f, subjectRows, subjectName); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSummarySheet adds the subject property breakdown: per-floor-plan rows
// followed by total units and the average rent PSF across subject floor
// plans. Floor plans with no PSF count as zero in the average; the divisor is
// always the full subject row count.
func writeSummarySheet(f *excelize.File, subjectRows []models.ConsolidatedRow, subjectName string) error {
	if _, err := f.NewSheet(summarySheetName); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	f.SetSheetRow(summarySheetName, "A1", &[]interface{}{"Subject Property Summary"})
	f.SetSheetRow(summarySheetName, "A2", &[]interface{}{"Property:", subjectName})
	f.SetSheetRow(summarySheetName, "A4", &[]interface{}{
		"Floor Plan", "Bed", "Bath", "Sq Ft", "Units", "Market Rent", "Rent PSF", "AMC Rent",
	})

	totalUnits := 0.0
	psfSum := 0.0
	for i, r := range subjectRows {
		cells := []interface{}{
			r.FloorPlan,
			numCell(r.Bedrooms),
			numCell(r.Bathrooms),
			numCell(r.SquareFeet),
			numCell(r.NumberOfUnits),
			numCell(r.MarketRent),
			numCell(r.RentPsf),
			numCell(r.AmcRent),
		}
		axis, _ := excelize.CoordinatesToCellName(1, i+5)
		if err := f.SetSheetRow(summarySheetName, axis, &cells); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
		if r.NumberOfUnits != nil {
			totalUnits += *r.NumberOfUnits
		}
		if r.RentPsf != nil {
			psfSum += *r.RentPsf
		}
	}

	avgPsf := psfSum / float64(len(subjectRows))
	footer := len(subjectRows) + 6
	f.SetSheetRow(summarySheetName, fmt.Sprintf("A%d", footer), &[]interface{}{"Total Units:", totalUnits})
	f.SetSheetRow(summarySheetName, fmt.Sprintf("A%d", footer+1), &[]interface{}{"Average Rent PSF:", fmt.Sprintf("%.2f", avgPsf)})

	f.SetColWidth(summarySheetName, "A", "A", 20)
	f.SetColWidth(summarySheetName, "B", "H", 12)
	return nil
}

// BuildCSV renders the same consolidated columns as the survey sheet. Every
// value is quoted; rent PSF is emitted at full stored precision rather than
// the rounded display form.
func BuildCSV(rows []models.ConsolidatedRow) string {
	var b strings.Builder
	writeCSVRow(&b, []string{
		"Property", "Floor Plan", "Bed", "Bath", "Sq Ft", "Units",
		"Market Rent", "Rent PSF", "AMC Rent", "Broker Rent", "Last 5 Leases", "Source",
	})
	for _, r := range rows {
		writeCSVRow(&b, []string{
			r.PropertyName,
			r.FloorPlan,
			numString(r.Bedrooms),
			numString(r.Bathrooms),
			numString(r.SquareFeet),
			numString(r.NumberOfUnits),
			numString(r.MarketRent),
			numString(r.RentPsf),
			numString(r.AmcRent),
			numString(r.BrokerRent),
			r.RecentLeases,
			r.DataSource,
		})
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// ExportFileName builds the suggested download name, e.g.
// Market_Survey_2026-08-31.xlsx
func ExportFileName(ext string) string {
	return fmt.Sprintf("Market_Survey_%s.%s", time.Now().Format("2006-01-02"), ext)
}

func filterSubject(rows []models.ConsolidatedRow) []models.ConsolidatedRow {
	var out []models.ConsolidatedRow
	for _, r := range rows {
		if r.IsSubject {
			out = append(out, r)
		}
	}
	return out
}

// numCell maps a nullable number to a native cell value, blank when missing.
func numCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func numString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
