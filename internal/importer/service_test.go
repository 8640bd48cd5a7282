package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"market-survey-portal/internal/config"
	"market-survey-portal/internal/database"
	"market-survey-portal/internal/models"
)

// Both backends must be able to carry an import end to end.
var (
	_ Store = (*database.GormDB)(nil)
	_ Store = (*database.DB)(nil)
)

func newTestDB(t *testing.T) *database.GormDB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	gdb := database.NewGormDBFromDB(db)
	require.NoError(t, gdb.InitSchema())
	return gdb
}

func newTestService(t *testing.T, db *database.GormDB, strict bool) *Service {
	t.Helper()
	cfg := config.DefaultConfig().Importer
	cfg.StrictMode = strict
	return NewService(db, cfg, false)
}

// writeSheet builds an xlsx with one named sheet whose rows place values at
// the given column offsets.
func writeSheet(t *testing.T, sheetName string, rows []map[int]string) []byte {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	require.NoError(t, wb.SetSheetName("Sheet1", sheetName))

	for i, cells := range rows {
		for col, val := range cells {
			axis, err := excelize.CoordinatesToCellName(col+1, i+1)
			require.NoError(t, err)
			require.NoError(t, wb.SetCellValue(sheetName, axis, val))
		}
	}

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func aiqWorkbook(t *testing.T, dataRows []map[int]string) []byte {
	rows := append([]map[int]string{{0: "Property", 1: "Floor Plan"}}, dataRows...)
	return writeSheet(t, "Floor Plan Data", rows)
}

func rediqWorkbook(t *testing.T, dataRows []map[int]string) []byte {
	rows := append([]map[int]string{{0: "Floor Plan"}}, dataRows...)
	return writeSheet(t, "Floor Plan Summary", rows)
}

func TestImportAIQ(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, false)

	data := aiqWorkbook(t, []map[int]string{
		{0: "Alpha Apartments", 1: "A1", 2: "1", 3: "1", 4: "800", 5: "40", 13: "3", 14: "$1,200"},
		{0: "Alpha Apartments", 1: "B2", 2: "2", 3: "2", 4: "1100", 5: "24", 13: "1", 14: "$1,870.50"},
		{0: "Beta Lofts", 1: "S1", 2: "0", 3: "1", 4: "520", 5: "16", 13: "0", 14: "990"},
	})

	summary, err := svc.ImportAIQ("survey.xlsx", data, "Alpha Apartments", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RecordsImported)
	assert.Equal(t, 0, summary.RecordsFailed)
	assert.Equal(t, 0, summary.NullCoercions)

	imp, err := db.GetImportByID(summary.ImportID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusCompleted, imp.Status)
	assert.Equal(t, models.ImportSourceAIQ, imp.Source)
	assert.NotNil(t, imp.ProcessingTimeMs)

	// The property matching the subject name got flagged.
	props, err := db.GetProperties()
	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "Alpha Apartments", props[0].Name)
	assert.True(t, props[0].IsSubject)
	assert.False(t, props[1].IsSubject)

	// Consolidated view: subject first, PSF derived at ingest.
	rows, err := db.GetConsolidatedRows(nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].IsSubject)
	assert.Equal(t, "Alpha Apartments", rows[0].PropertyName)
	require.NotNil(t, rows[0].RentPsf)
	assert.Equal(t, 1.5, *rows[0].RentPsf)
	assert.Equal(t, "Beta Lofts", rows[2].PropertyName)
}

func TestImportAIQCoercionFailureIsNotRowFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, false)

	data := aiqWorkbook(t, []map[int]string{
		{0: "Alpha Apartments", 1: "A1", 4: "800", 14: "not disclosed"},
	})

	summary, err := svc.ImportAIQ("survey.xlsx", data, "", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.RecordsImported)
	assert.Equal(t, 0, summary.RecordsFailed, "unparseable cells degrade to null, the row still lands")
	assert.Equal(t, 1, summary.NullCoercions)

	rows, err := db.GetConsolidatedRows(nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].MarketRent)
	assert.Nil(t, rows[0].RentPsf)
}

func TestImportAIQSkipsMalformedRows(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, false)

	data := aiqWorkbook(t, []map[int]string{
		{0: "Alpha Apartments", 1: "A1", 14: "1200"},
		{1: "orphan plan with no property"},
		{0: "Beta Lofts", 1: "S1", 14: "990"},
	})

	summary, err := svc.ImportAIQ("survey.xlsx", data, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RecordsImported)
	assert.Equal(t, 0, summary.RecordsFailed)
}

func TestImportAIQStructuralFailureMarksImportError(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, false)

	data := writeSheet(t, "Wrong Sheet", []map[int]string{{0: "nothing"}})

	_, err := svc.ImportAIQ("bad.xlsx", data, "", nil)
	require.Error(t, err)

	// The import record still exists and carries the terminal error.
	imports, err := db.GetImportHistory(10)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, models.ImportStatusError, imports[0].Status)
	assert.NotEmpty(t, imports[0].ErrorMessage)
	assert.True(t, imports[0].IsTerminal())
}

func TestImportAIQRowFailuresContinue(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, false)

	data := aiqWorkbook(t, []map[int]string{
		{0: "Alpha Apartments", 1: "A1", 14: "1200"},
		{0: "Beta Lofts", 1: "S1", 14: "990"},
	})

	// Dropping the table makes every row write fail without touching parsing.
	require.NoError(t, db.DB().Migrator().DropTable(&models.FloorPlan{}))

	summary, err := svc.ImportAIQ("survey.xlsx", data, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.RecordsImported)
	assert.Equal(t, 2, summary.RecordsFailed)

	imp, err := db.GetImportByID(summary.ImportID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusCompleted, imp.Status, "partial failure still completes outside strict mode")
	assert.Equal(t, 2, imp.RecordsFailed)
}

func TestImportAIQStrictModeRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, true)

	data := aiqWorkbook(t, []map[int]string{
		{0: "Alpha Apartments", 1: "A1", 14: "1200"},
	})

	require.NoError(t, db.DB().Migrator().DropTable(&models.FloorPlan{}))

	_, err := svc.ImportAIQ("survey.xlsx", data, "", nil)
	require.Error(t, err)

	imports, err := db.GetImportHistory(10)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, models.ImportStatusError, imports[0].Status)
	assert.Contains(t, imports[0].ErrorMessage, "strict mode")
}

func TestImportRedIQ(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, false)

	data := rediqWorkbook(t, []map[int]string{
		{0: "A1 - 1x1", 3: "1", 4: "1", 5: "720", 6: "48", 15: "$1,350", 16: "$1,290", 18: "1290, 1310"},
		{0: "Total", 6: "48"},
		{0: "B2 - 2x2", 3: "2", 4: "2", 5: "1050", 6: "36", 15: "$1,895", 16: "$1,840"},
	})

	summary, err := svc.ImportRedIQ("subject.xlsx", data, "Subject Towers", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.RecordsImported, "aggregate rows are skipped")

	props, err := db.GetProperties()
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "Subject Towers", props[0].Name)
	assert.True(t, props[0].IsSubject)

	rows, err := db.GetConsolidatedRows(nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].AmcRent)
	assert.Equal(t, 1290.0, *rows[0].AmcRent, "in-place rent lands in the AMC rent column")
	assert.Equal(t, "1290, 1310", rows[0].RecentLeases)
	assert.Equal(t, "RedIQ", rows[0].DataSource)
}

func TestImportRedIQRequiresSubjectName(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, false)

	_, err := svc.ImportRedIQ("subject.xlsx", []byte("irrelevant"), "", nil)
	require.Error(t, err)

	// Nothing was recorded: the requirement fails before the pipeline starts.
	imports, err := db.GetImportHistory(10)
	require.NoError(t, err)
	assert.Empty(t, imports)
}

func TestImportSubjectFlagIsSticky(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, false)

	first := aiqWorkbook(t, []map[int]string{
		{0: "Alpha Apartments", 1: "A1", 14: "1200"},
	})
	_, err := svc.ImportAIQ("one.xlsx", first, "Alpha Apartments", nil)
	require.NoError(t, err)

	// A later import that does not name Alpha as subject must not demote it.
	second := aiqWorkbook(t, []map[int]string{
		{0: "Alpha Apartments", 1: "B2", 14: "1500"},
	})
	_, err = svc.ImportAIQ("two.xlsx", second, "", nil)
	require.NoError(t, err)

	props, err := db.GetProperties()
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.True(t, props[0].IsSubject)
}
