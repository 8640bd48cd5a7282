package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"market-survey-portal/internal/database"
	"market-survey-portal/internal/models"
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

func newTestService(t *testing.T) (*Service, *database.GormDB) {
	t.Helper()
	gdb := newTestDB(t)
	return NewService(gdb, nil), gdb
}

// recordingIndexer captures the last result pushed to the index.
type recordingIndexer struct {
	last  *models.SearchResult
	calls int
}

func (r *recordingIndexer) IndexResult(result *models.SearchResult) error {
	r.calls++
	r.last = result
	return nil
}

func seedResult(t *testing.T, gdb *database.GormDB) *models.SearchResult {
	t.Helper()
	search := &models.PropertySearch{
		Name:           "seed",
		GeographicArea: "Dallas, TX",
		Status:         models.SearchStatusCompleted,
	}
	require.NoError(t, gdb.CreateSearch(search))

	result := &models.SearchResult{
		SearchID:        search.ID,
		PropertyName:    "Riverside Apartments",
		OpportunityType: models.OpportunityNewListing,
		UrgencyLevel:    models.UrgencyImmediate,
		Score:           85,
		Status:          models.ResultStatusNew,
	}
	require.NoError(t, gdb.DB().Create(result).Error)
	return result
}

func strPtr(s string) *string { return &s }

func TestUpdateResultStatusRecordsHistory(t *testing.T) {
	svc, gdb := newTestService(t)
	seeded := seedResult(t, gdb)

	updated, err := svc.UpdateResult(seeded.ID, strPtr("reviewing"), strPtr("worth a call"))
	require.NoError(t, err)
	assert.Equal(t, models.ResultStatusReviewing, updated.Status)
	assert.Equal(t, "worth a call", updated.Notes)

	changes, err := svc.RecentChanges(10)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, models.ResultStatusNew, changes[0].OldStatus)
	assert.Equal(t, models.ResultStatusReviewing, changes[0].NewStatus)
	assert.Equal(t, "worth a call", changes[0].Note)
	assert.Equal(t, seeded.SearchID, changes[0].SearchID)
}

func TestUpdateResultNotesOnlySkipsHistory(t *testing.T) {
	svc, gdb := newTestService(t)
	seeded := seedResult(t, gdb)

	updated, err := svc.UpdateResult(seeded.ID, nil, strPtr("just a note"))
	require.NoError(t, err)
	assert.Equal(t, models.ResultStatusNew, updated.Status)
	assert.Equal(t, "just a note", updated.Notes)

	changes, err := svc.RecentChanges(10)
	require.NoError(t, err)
	assert.Empty(t, changes, "notes alone are not a pipeline transition")
}

func TestUpdateResultSameStatusSkipsHistory(t *testing.T) {
	svc, gdb := newTestService(t)
	seeded := seedResult(t, gdb)

	_, err := svc.UpdateResult(seeded.ID, strPtr("new"), nil)
	require.NoError(t, err)

	changes, err := svc.RecentChanges(10)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestUpdateResultInvalidStatus(t *testing.T) {
	svc, gdb := newTestService(t)
	seeded := seedResult(t, gdb)

	_, err := svc.UpdateResult(seeded.ID, strPtr("bogus"), nil)
	assert.Error(t, err)

	// Nothing changed.
	result, err := gdb.GetResultByID(seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultStatusNew, result.Status)
}

func TestUpdateResultRefreshesIndex(t *testing.T) {
	gdb := newTestDB(t)
	idx := &recordingIndexer{}
	svc := NewService(gdb, idx)
	seeded := seedResult(t, gdb)

	_, err := svc.UpdateResult(seeded.ID, strPtr("contacted"), nil)
	require.NoError(t, err)

	require.NotNil(t, idx.last)
	assert.Equal(t, seeded.ID, idx.last.ID)
	assert.Equal(t, models.ResultStatusContacted, idx.last.Status)
}

func TestUpdateResultFailedLookupSkipsIndex(t *testing.T) {
	gdb := newTestDB(t)
	idx := &recordingIndexer{}
	svc := NewService(gdb, idx)

	_, err := svc.UpdateResult(9999, strPtr("reviewing"), nil)
	assert.Error(t, err)
	assert.Zero(t, idx.calls)
}

func TestUpdateResultUnknownID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateResult(9999, strPtr("reviewing"), nil)
	assert.Error(t, err)
}
