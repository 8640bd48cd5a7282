package database

import (
	"time"

	"gorm.io/gorm"

	"market-survey-portal/internal/models"
)

// CreateSearch inserts a new property search in pending status
func (gdb *GormDB) CreateSearch(search *models.PropertySearch) error {
	return gdb.db.Create(search).Error
}

// ListSearches returns all searches, newest first
func (gdb *GormDB) ListSearches() ([]models.PropertySearch, error) {
	var searches []models.PropertySearch
	err := gdb.db.Order("created_at DESC").Find(&searches).Error
	return searches, err
}

// GetSearchByID retrieves a single search
func (gdb *GormDB) GetSearchByID(id uint) (*models.PropertySearch, error) {
	var search models.PropertySearch
	if err := gdb.db.First(&search, id).Error; err != nil {
		return nil, err
	}
	return &search, nil
}

// GetSearchResults returns a search's results ordered by score, best first
func (gdb *GormDB) GetSearchResults(searchID uint) ([]models.SearchResult, error) {
	var results []models.SearchResult
	err := gdb.db.Where("search_id = ?", searchID).Order("score DESC").Find(&results).Error
	return results, err
}

// MarkSearchRunning flips a search into running and stamps the start time
func (gdb *GormDB) MarkSearchRunning(id uint) error {
	now := time.Now()
	return gdb.db.Model(&models.PropertySearch{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.SearchStatusRunning,
			"started_at": &now,
		}).Error
}

// CompleteSearch stores results and rolls urgency counts up onto the search,
// all in one transaction.
func (gdb *GormDB) CompleteSearch(searchID uint, results []models.SearchResult) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		counts := map[models.UrgencyLevel]int{}
		for i := range results {
			results[i].SearchID = searchID
			if err := tx.Create(&results[i]).Error; err != nil {
				return err
			}
			counts[results[i].UrgencyLevel]++
		}

		now := time.Now()
		return tx.Model(&models.PropertySearch{}).Where("id = ?", searchID).
			Updates(map[string]interface{}{
				"status":                   models.SearchStatusCompleted,
				"completed_at":             &now,
				"total_results":            len(results),
				"immediate_opportunities":  counts[models.UrgencyImmediate],
				"developing_opportunities": counts[models.UrgencyDeveloping],
				"future_opportunities":     counts[models.UrgencyFuture],
			}).Error
	})
}

// FailSearch records a terminal error on a search run
func (gdb *GormDB) FailSearch(id uint, message string) error {
	now := time.Now()
	return gdb.db.Model(&models.PropertySearch{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.SearchStatusError,
			"completed_at":  &now,
			"error_message": message,
		}).Error
}

// RequeueSearch resets a search to pending so the worker picks it up again.
// Previous results are cleared first.
func (gdb *GormDB) RequeueSearch(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("search_id = ?", id).Delete(&models.SearchResult{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.PropertySearch{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":        models.SearchStatusPending,
				"error_message": "",
			}).Error
	})
}

// NextPendingSearch returns the oldest pending search, or nil when the queue
// is empty.
func (gdb *GormDB) NextPendingSearch() (*models.PropertySearch, error) {
	var search models.PropertySearch
	err := gdb.db.Where("status = ?", models.SearchStatusPending).
		Order("created_at ASC").First(&search).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &search, nil
}

// GetRecurringSearches returns completed recurring searches due for a re-run
func (gdb *GormDB) GetRecurringSearches() ([]models.PropertySearch, error) {
	var searches []models.PropertySearch
	err := gdb.db.Where("is_recurring = ? AND status IN ?", true,
		[]models.SearchStatus{models.SearchStatusCompleted, models.SearchStatusError}).
		Find(&searches).Error
	return searches, err
}

// DeleteSearch removes a search and all of its results
func (gdb *GormDB) DeleteSearch(id uint) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("search_id = ?", id).Delete(&models.SearchResult{}).Error; err != nil {
			return err
		}
		if err := tx.Where("search_id = ?", id).Delete(&models.ResultStatusChange{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PropertySearch{}, id).Error
	})
}

// GetResultByID retrieves a single search result
func (gdb *GormDB) GetResultByID(id uint) (*models.SearchResult, error) {
	var result models.SearchResult
	if err := gdb.db.First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateResult persists changed result fields
func (gdb *GormDB) UpdateResult(result *models.SearchResult) error {
	return gdb.db.Save(result).Error
}

// RecordStatusChange appends one pipeline transition to the history
func (gdb *GormDB) RecordStatusChange(change *models.ResultStatusChange) error {
	return gdb.db.Create(change).Error
}

// GetRecentStatusChanges returns the latest pipeline transitions, newest first
func (gdb *GormDB) GetRecentStatusChanges(limit int) ([]models.ResultStatusChange, error) {
	if limit <= 0 {
		limit = 50
	}
	var changes []models.ResultStatusChange
	err := gdb.db.Order("detected_at DESC").Limit(limit).Find(&changes).Error
	return changes, err
}

// GetAllResults returns every search result, used for search reindexing
func (gdb *GormDB) GetAllResults() ([]models.SearchResult, error) {
	var results []models.SearchResult
	err := gdb.db.Order("id ASC").Find(&results).Error
	return results, err
}
