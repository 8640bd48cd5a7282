package importer

import (
	"fmt"
	"log"
	"time"

	"market-survey-portal/internal/config"
	"market-survey-portal/internal/excel"
	"market-survey-portal/internal/models"
)

// Store is the persistence surface an import needs. Both the GORM store and
// the legacy Postgres store satisfy it.
type Store interface {
	CreateImport(imp *models.DataImport) error
	UpdateImport(imp *models.DataImport) error
	FindOrCreateProperty(name string, isSubject bool) (*models.Property, error)
	CreateFloorPlan(fp *models.FloorPlan) error
	DeleteFloorPlansByImport(importID uint) error
}

// Service runs spreadsheet uploads through the import pipeline: create the
// import record, parse, persist row by row, then settle the final status.
type Service struct {
	db         Store
	aiq        excel.AIQParser
	rediq      excel.RedIQParser
	strict     bool
	logImports bool
}

// NewService wires the importer against a store
func NewService(db Store, cfg config.ImporterConfig, logImports bool) *Service {
	return &Service{
		db:         db,
		aiq:        excel.AIQParser{HeaderScanRows: cfg.HeaderScanRowsAIQ},
		rediq:      excel.RedIQParser{HeaderScanRows: cfg.HeaderScanRowsRed},
		strict:     cfg.StrictMode,
		logImports: logImports,
	}
}

// Summary is what an upload returns to the caller
type Summary struct {
	ImportID         uint  `json:"import_id"`
	RecordsImported  int   `json:"records_imported"`
	RecordsFailed    int   `json:"records_failed"`
	NullCoercions    int   `json:"null_coercions"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// ImportAIQ ingests a competitor market survey workbook. Each row resolves
// its own property by name; the row whose property name equals subjectName
// marks that property as the subject.
func (s *Service) ImportAIQ(fileName string, data []byte, subjectName string, reportID *uint) (*Summary, error) {
	imp, start, err := s.begin(models.ImportSourceAIQ, fileName, int64(len(data)), reportID)
	if err != nil {
		return nil, err
	}

	result, err := s.aiq.Parse(data)
	if err != nil {
		return nil, s.fail(imp, start, err)
	}

	imported, failed := 0, 0
	for _, row := range result.Rows {
		prop, err := s.db.FindOrCreateProperty(row.PropertyName, row.PropertyName == subjectName)
		if err == nil {
			err = s.db.CreateFloorPlan(s.buildFloorPlan(imp, prop.ID, row, reportID))
		}
		if err != nil {
			failed++
			log.Printf("[Importer] row failed (%s / %s): %v", row.PropertyName, row.FloorPlanName, err)
			continue
		}
		imported++
	}

	return s.finish(imp, start, imported, failed, result.Stats.NullFromNonEmpty)
}

// ImportRedIQ ingests a subject property summary workbook. Every row attaches
// to the one subject property, which is created up front with the subject
// flag set.
func (s *Service) ImportRedIQ(fileName string, data []byte, subjectName string, reportID *uint) (*Summary, error) {
	if subjectName == "" {
		return nil, fmt.Errorf("subject property name is required for RedIQ imports")
	}

	imp, start, err := s.begin(models.ImportSourceRedIQ, fileName, int64(len(data)), reportID)
	if err != nil {
		return nil, err
	}

	result, err := s.rediq.Parse(data)
	if err != nil {
		return nil, s.fail(imp, start, err)
	}

	prop, err := s.db.FindOrCreateProperty(subjectName, true)
	if err != nil {
		return nil, s.fail(imp, start, fmt.Errorf("failed to resolve subject property: %w", err))
	}

	imported, failed := 0, 0
	for _, row := range result.Rows {
		if err := s.db.CreateFloorPlan(s.buildFloorPlan(imp, prop.ID, row, reportID)); err != nil {
			failed++
			log.Printf("[Importer] row failed (%s / %s): %v", subjectName, row.FloorPlanName, err)
			continue
		}
		imported++
	}

	return s.finish(imp, start, imported, failed, result.Stats.NullFromNonEmpty)
}

func (s *Service) begin(source models.ImportSource, fileName string, size int64, reportID *uint) (*models.DataImport, time.Time, error) {
	imp := &models.DataImport{
		ReportID: reportID,
		Source:   source,
		FileName: fileName,
		FileSize: size,
		Status:   models.ImportStatusProcessing,
	}
	if err := s.db.CreateImport(imp); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to create import record: %w", err)
	}
	if s.logImports {
		log.Printf("[Importer] %s import %d started: %s (%d bytes)", source, imp.ID, fileName, size)
	}
	return imp, time.Now(), nil
}

func (s *Service) buildFloorPlan(imp *models.DataImport, propertyID uint, row excel.FloorPlanRow, reportID *uint) *models.FloorPlan {
	return &models.FloorPlan{
		ReportID:       reportID,
		PropertyID:     propertyID,
		ImportID:       &imp.ID,
		FloorPlanName:  row.FloorPlanName,
		Bedrooms:       row.Bedrooms,
		Bathrooms:      row.Bathrooms,
		SquareFeet:     row.SquareFeet,
		NumberOfUnits:  row.NumberOfUnits,
		UnitsAvailable: row.UnitsAvailable,
		MarketRent:     row.MarketRent,
		AmcRent:        row.InPlaceRent,
		RentPsf:        excel.RentPerSquareFoot(row.MarketRent, row.SquareFeet),
		RediqColumnS:   row.RecentLeases,
		DataSource:     imp.Source,
	}
}

// fail settles an import that hit a structural problem. Error status is
// terminal; nothing retries a failed import, the file gets re-uploaded.
func (s *Service) fail(imp *models.DataImport, start time.Time, cause error) error {
	elapsed := time.Since(start).Milliseconds()
	imp.Status = models.ImportStatusError
	imp.ErrorMessage = cause.Error()
	imp.ProcessingTimeMs = &elapsed
	if err := s.db.UpdateImport(imp); err != nil {
		log.Printf("[Importer] failed to record import error: %v", err)
	}
	log.Printf("[Importer] %s import %d failed: %v", imp.Source, imp.ID, cause)
	return cause
}

func (s *Service) finish(imp *models.DataImport, start time.Time, imported, failed, nullCoercions int) (*Summary, error) {
	if s.strict && failed > 0 {
		// Strict mode trades partial progress for all-or-nothing semantics.
		if err := s.db.DeleteFloorPlansByImport(imp.ID); err != nil {
			log.Printf("[Importer] strict rollback failed for import %d: %v", imp.ID, err)
		}
		return nil, s.fail(imp, start, fmt.Errorf("strict mode: %d of %d rows failed", failed, imported+failed))
	}

	elapsed := time.Since(start).Milliseconds()
	imp.Status = models.ImportStatusCompleted
	imp.RecordsImported = imported
	imp.RecordsFailed = failed
	imp.NullCoercions = nullCoercions
	imp.ProcessingTimeMs = &elapsed
	if err := s.db.UpdateImport(imp); err != nil {
		return nil, fmt.Errorf("failed to finalize import: %w", err)
	}

	if s.logImports {
		log.Printf("[Importer] %s import %d completed: %d imported, %d failed, %d cells coerced to null (%dms)",
			imp.Source, imp.ID, imported, failed, nullCoercions, elapsed)
	}
	return &Summary{
		ImportID:         imp.ID,
		RecordsImported:  imported,
		RecordsFailed:    failed,
		NullCoercions:    nullCoercions,
		ProcessingTimeMs: elapsed,
	}, nil
}
