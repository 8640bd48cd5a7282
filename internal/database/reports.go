package database

import (
	"time"

	"gorm.io/gorm"

	"market-survey-portal/internal/models"
)

// CreateReport inserts a new market report in draft status
func (gdb *GormDB) CreateReport(report *models.MarketReport) error {
	return gdb.db.Create(report).Error
}

// GetReportByID retrieves a single report
func (gdb *GormDB) GetReportByID(id uint) (*models.MarketReport, error) {
	var report models.MarketReport
	if err := gdb.db.First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports returns all reports, newest first, with derived completeness
// flags and floor plan counts for the list view.
func (gdb *GormDB) ListReports() ([]models.ReportSummary, error) {
	var reports []models.MarketReport
	if err := gdb.db.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.ReportSummary, 0, len(reports))
	for _, r := range reports {
		var count int64
		if err := gdb.db.Model(&models.FloorPlan{}).Where("report_id = ?", r.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		hasAIQ := r.AiqImportID != nil
		hasRedIQ := r.RediqImportID != nil
		summaries = append(summaries, models.ReportSummary{
			MarketReport:   r,
			HasAIQ:         hasAIQ,
			HasRedIQ:       hasRedIQ,
			FloorPlanCount: count,
			IsComplete:     hasAIQ && hasRedIQ,
		})
	}
	return summaries, nil
}

// UpdateReport persists changed report fields
func (gdb *GormDB) UpdateReport(report *models.MarketReport) error {
	return gdb.db.Save(report).Error
}

// SetReportStatus moves a report through its lifecycle, stamping CompletedAt
// on the transition into complete.
func (gdb *GormDB) SetReportStatus(id uint, status models.ReportStatus) (*models.MarketReport, error) {
	report, err := gdb.GetReportByID(id)
	if err != nil {
		return nil, err
	}
	report.Status = status
	if status == models.ReportStatusComplete && report.CompletedAt == nil {
		now := time.Now()
		report.CompletedAt = &now
	}
	if err := gdb.db.Save(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// AttachImportToReport records which import filled the report's AIQ or RedIQ
// slot. A re-upload replaces the slot.
func (gdb *GormDB) AttachImportToReport(reportID uint, importID uint, source models.ImportSource) error {
	column := "aiq_import_id"
	if source == models.ImportSourceRedIQ {
		column = "rediq_import_id"
	}
	return gdb.db.Model(&models.MarketReport{}).Where("id = ?", reportID).
		Update(column, importID).Error
}

// DeleteReport removes a report along with the floor plans and imports scoped
// to it. Properties are shared reference data and survive.
func (gdb *GormDB) DeleteReport(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&models.FloorPlan{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.DataImport{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MarketReport{}, id).Error
	})
}
