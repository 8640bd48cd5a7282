package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"market-survey-portal/internal/models"
)

func newDraftReport(t *testing.T, gdb *GormDB) *models.MarketReport {
	t.Helper()
	report := &models.MarketReport{
		Name:                "Q3 market survey",
		SubjectPropertyName: "Subject Towers",
		Status:              models.ReportStatusDraft,
	}
	require.NoError(t, gdb.CreateReport(report))
	return report
}

func TestAttachImportToReport(t *testing.T) {
	gdb := newTestGormDB(t)
	report := newDraftReport(t, gdb)

	aiqImp := &models.DataImport{Source: models.ImportSourceAIQ, FileName: "aiq.xlsx", Status: models.ImportStatusCompleted}
	require.NoError(t, gdb.CreateImport(aiqImp))
	rediqImp := &models.DataImport{Source: models.ImportSourceRedIQ, FileName: "rediq.xlsx", Status: models.ImportStatusCompleted}
	require.NoError(t, gdb.CreateImport(rediqImp))

	require.NoError(t, gdb.AttachImportToReport(report.ID, aiqImp.ID, models.ImportSourceAIQ))

	summaries, err := gdb.ListReports()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].HasAIQ)
	assert.False(t, summaries[0].HasRedIQ)
	assert.False(t, summaries[0].IsComplete)

	require.NoError(t, gdb.AttachImportToReport(report.ID, rediqImp.ID, models.ImportSourceRedIQ))

	summaries, err = gdb.ListReports()
	require.NoError(t, err)
	assert.True(t, summaries[0].IsComplete, "both slots filled makes the report complete")
}

func TestSetReportStatusStampsCompletedAt(t *testing.T) {
	gdb := newTestGormDB(t)
	report := newDraftReport(t, gdb)

	updated, err := gdb.SetReportStatus(report.ID, models.ReportStatusComplete)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusComplete, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	stamped := *updated.CompletedAt

	// Archiving and completing again keeps the original timestamp.
	_, err = gdb.SetReportStatus(report.ID, models.ReportStatusArchived)
	require.NoError(t, err)
	again, err := gdb.SetReportStatus(report.ID, models.ReportStatusComplete)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.Equal(t, stamped.Unix(), again.CompletedAt.Unix())
}

func TestDeleteReportCascadesScopedData(t *testing.T) {
	gdb := newTestGormDB(t)
	report := newDraftReport(t, gdb)

	imp := &models.DataImport{ReportID: &report.ID, Source: models.ImportSourceAIQ, FileName: "aiq.xlsx", Status: models.ImportStatusCompleted}
	require.NoError(t, gdb.CreateImport(imp))

	prop, err := gdb.FindOrCreateProperty("Competitor Court", false)
	require.NoError(t, err)
	require.NoError(t, gdb.CreateFloorPlan(&models.FloorPlan{
		ReportID:      &report.ID,
		PropertyID:    prop.ID,
		ImportID:      &imp.ID,
		FloorPlanName: "A1",
		DataSource:    models.ImportSourceAIQ,
	}))

	require.NoError(t, gdb.DeleteReport(report.ID))

	_, err = gdb.GetReportByID(report.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	rows, err := gdb.GetConsolidatedRows(nil)
	require.NoError(t, err)
	assert.Empty(t, rows, "scoped floor plans go with the report")

	imports, err := gdb.GetImportHistory(10)
	require.NoError(t, err)
	assert.Empty(t, imports)

	// Shared reference data survives.
	props, err := gdb.GetProperties()
	require.NoError(t, err)
	assert.Len(t, props, 1)
}
