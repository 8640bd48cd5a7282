package cleanup

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"market-survey-portal/internal/models"
)

// Service handles retention cleanup of old import records. Imports are the
// high-churn table: every upload attempt leaves one behind, including the
// failed ones nobody will look at again.
type Service struct {
	db *gorm.DB
}

// NewService creates a new cleanup service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CleanupConfig holds configuration for cleanup operations
type CleanupConfig struct {
	RetentionDays    int  // Days to keep settled imports before deletion (default: 90)
	MaxDeletionCount int  // Maximum number of imports to delete in one run (safety limit)
	DryRun           bool // If true, only log what would be deleted without actually deleting
}

// DefaultCleanupConfig returns default configuration
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:    90,
		MaxDeletionCount: 200,
		DryRun:           false,
	}
}

// CleanupResult holds the result of a cleanup operation
type CleanupResult struct {
	TargetCount    int       `json:"target_count"`
	DeletedCount   int       `json:"deleted_count"`
	ErrorCount     int       `json:"error_count"`
	DryRun         bool      `json:"dry_run"`
	ExecutedAt     time.Time `json:"executed_at"`
	DeletedImports []uint    `json:"deleted_imports"`
	Errors         []string  `json:"errors,omitempty"`
}

// FindExpiredImports finds settled imports older than the retention window
// that no report still references.
func (s *Service) FindExpiredImports(retentionDays int) ([]models.DataImport, error) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)

	var imports []models.DataImport
	err := s.db.
		Where("status IN ? AND created_at < ?",
			[]models.ImportStatus{models.ImportStatusCompleted, models.ImportStatusError},
			cutoffDate).
		Where("id NOT IN (?)",
			s.db.Model(&models.MarketReport{}).Select("aiq_import_id").Where("aiq_import_id IS NOT NULL")).
		Where("id NOT IN (?)",
			s.db.Model(&models.MarketReport{}).Select("rediq_import_id").Where("rediq_import_id IS NOT NULL")).
		Find(&imports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired imports: %w", err)
	}

	log.Printf("[Cleanup] found %d imports expired before %s", len(imports), cutoffDate.Format("2006-01-02"))
	return imports, nil
}

// Run deletes expired imports along with the floor plans they wrote, leaving
// an audit log entry for each.
func (s *Service) Run(config CleanupConfig) (*CleanupResult, error) {
	result := &CleanupResult{
		DryRun:     config.DryRun,
		ExecutedAt: time.Now(),
	}

	expired, err := s.FindExpiredImports(config.RetentionDays)
	if err != nil {
		return nil, err
	}

	result.TargetCount = len(expired)
	if result.TargetCount == 0 {
		log.Println("[Cleanup] no expired imports found")
		return result, nil
	}

	// Safety check: abort if too many imports would be deleted
	if result.TargetCount > config.MaxDeletionCount {
		return nil, fmt.Errorf("safety check failed: %d imports exceed max deletion limit of %d",
			result.TargetCount, config.MaxDeletionCount)
	}

	log.Printf("[Cleanup] starting: %d imports to delete (retention: %d days, dry-run: %v)",
		result.TargetCount, config.RetentionDays, config.DryRun)

	for _, imp := range expired {
		if config.DryRun {
			log.Printf("[Cleanup] [DRY-RUN] would delete import %d (%s, %s)", imp.ID, imp.Source, imp.FileName)
			result.DeletedImports = append(result.DeletedImports, imp.ID)
			result.DeletedCount++
			continue
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			deleteLog := models.ImportDeleteLog{
				ImportID: imp.ID,
				Source:   string(imp.Source),
				FileName: imp.FileName,
				Reason:   models.DeleteReasonExpired,
			}
			if err := tx.Create(&deleteLog).Error; err != nil {
				return err
			}
			if err := tx.Where("import_id = ?", imp.ID).Delete(&models.FloorPlan{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.DataImport{}, imp.ID).Error
		})
		if err != nil {
			errMsg := fmt.Sprintf("failed to delete import %d: %v", imp.ID, err)
			log.Printf("[Cleanup] ERROR: %s", errMsg)
			result.Errors = append(result.Errors, errMsg)
			result.ErrorCount++
			continue
		}

		log.Printf("[Cleanup] deleted import %d (%s, %s)", imp.ID, imp.Source, imp.FileName)
		result.DeletedImports = append(result.DeletedImports, imp.ID)
		result.DeletedCount++
	}

	log.Printf("[Cleanup] completed: %d/%d deleted, %d errors (dry-run: %v)",
		result.DeletedCount, result.TargetCount, result.ErrorCount, config.DryRun)

	return result, nil
}

// GetDeleteStats returns statistics about deleted imports
func (s *Service) GetDeleteStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalDeleted int64
	if err := s.db.Model(&models.ImportDeleteLog{}).Count(&totalDeleted).Error; err != nil {
		return nil, err
	}
	stats["total_deleted"] = totalDeleted

	var reasonCounts []struct {
		Reason string
		Count  int64
	}
	if err := s.db.Model(&models.ImportDeleteLog{}).
		Select("reason, count(*) as count").
		Group("reason").
		Scan(&reasonCounts).Error; err != nil {
		return nil, err
	}

	reasonMap := make(map[string]int64)
	for _, rc := range reasonCounts {
		reasonMap[rc.Reason] = rc.Count
	}
	stats["by_reason"] = reasonMap

	var recentDeleted int64
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	if err := s.db.Model(&models.ImportDeleteLog{}).
		Where("deleted_at >= ?", thirtyDaysAgo).
		Count(&recentDeleted).Error; err != nil {
		return nil, err
	}
	stats["deleted_last_30_days"] = recentDeleted

	expired, err := s.FindExpiredImports(90)
	if err != nil {
		return nil, err
	}
	stats["expired_ready_for_deletion"] = len(expired)

	return stats, nil
}

// GetRecentDeleteLogs returns recent delete log entries
func (s *Service) GetRecentDeleteLogs(limit int) ([]models.ImportDeleteLog, error) {
	var logs []models.ImportDeleteLog
	err := s.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
