package cleanup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"market-survey-portal/internal/database"
	"market-survey-portal/internal/models"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.NewGormDBFromDB(db).InitSchema())
	return NewService(db), db
}

func seedImport(t *testing.T, db *gorm.DB, status models.ImportStatus, ageDays int) *models.DataImport {
	t.Helper()
	imp := &models.DataImport{
		Source:   models.ImportSourceAIQ,
		FileName: "old.xlsx",
		Status:   status,
	}
	require.NoError(t, db.Create(imp).Error)

	created := time.Now().AddDate(0, 0, -ageDays)
	require.NoError(t, db.Model(imp).Update("created_at", created).Error)
	return imp
}

func TestFindExpiredImports(t *testing.T) {
	svc, db := newTestService(t)

	old := seedImport(t, db, models.ImportStatusCompleted, 120)
	seedImport(t, db, models.ImportStatusCompleted, 10)       // too recent
	seedImport(t, db, models.ImportStatusProcessing, 120)     // not settled
	oldErr := seedImport(t, db, models.ImportStatusError, 95) // failed imports expire too

	expired, err := svc.FindExpiredImports(90)
	require.NoError(t, err)
	require.Len(t, expired, 2)

	ids := []uint{expired[0].ID, expired[1].ID}
	assert.Contains(t, ids, old.ID)
	assert.Contains(t, ids, oldErr.ID)
}

func TestFindExpiredImportsSkipsReportReferenced(t *testing.T) {
	svc, db := newTestService(t)

	kept := seedImport(t, db, models.ImportStatusCompleted, 120)
	expired := seedImport(t, db, models.ImportStatusCompleted, 120)

	report := &models.MarketReport{
		Name:                "Q1 survey",
		SubjectPropertyName: "Subject Towers",
		Status:              models.ReportStatusComplete,
		AiqImportID:         &kept.ID,
	}
	require.NoError(t, db.Create(report).Error)

	found, err := svc.FindExpiredImports(90)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, expired.ID, found[0].ID, "imports a report still references are kept")
}

func TestRunDeletesImportAndFloorPlans(t *testing.T) {
	svc, db := newTestService(t)

	imp := seedImport(t, db, models.ImportStatusCompleted, 120)
	fp := &models.FloorPlan{
		PropertyID:    1,
		ImportID:      &imp.ID,
		FloorPlanName: "A1",
		DataSource:    models.ImportSourceAIQ,
	}
	require.NoError(t, db.Create(fp).Error)

	result, err := svc.Run(DefaultCleanupConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, result.TargetCount)
	assert.Equal(t, 1, result.DeletedCount)
	assert.Equal(t, 0, result.ErrorCount)

	var importCount, planCount, logCount int64
	db.Model(&models.DataImport{}).Count(&importCount)
	db.Model(&models.FloorPlan{}).Count(&planCount)
	db.Model(&models.ImportDeleteLog{}).Count(&logCount)
	assert.Zero(t, importCount)
	assert.Zero(t, planCount)
	assert.Equal(t, int64(1), logCount, "every deletion leaves an audit entry")

	logs, err := svc.GetRecentDeleteLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, imp.ID, logs[0].ImportID)
	assert.Equal(t, models.DeleteReasonExpired, logs[0].Reason)
}

func TestRunDryRunDeletesNothing(t *testing.T) {
	svc, db := newTestService(t)
	seedImport(t, db, models.ImportStatusCompleted, 120)

	cfg := DefaultCleanupConfig()
	cfg.DryRun = true
	result, err := svc.Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DeletedCount)
	assert.True(t, result.DryRun)

	var importCount int64
	db.Model(&models.DataImport{}).Count(&importCount)
	assert.Equal(t, int64(1), importCount)
}

func TestRunSafetyLimit(t *testing.T) {
	svc, db := newTestService(t)
	for i := 0; i < 3; i++ {
		seedImport(t, db, models.ImportStatusCompleted, 120)
	}

	cfg := DefaultCleanupConfig()
	cfg.MaxDeletionCount = 2
	_, err := svc.Run(cfg)
	assert.Error(t, err, "exceeding the deletion cap aborts the run")
}
