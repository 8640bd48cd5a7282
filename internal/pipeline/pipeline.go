package pipeline

import (
	"fmt"
	"log"

	"market-survey-portal/internal/database"
	"market-survey-portal/internal/models"
)

// resultIndexer pushes updated results back into the search index so status
// and notes stay filterable.
type resultIndexer interface {
	IndexResult(result *models.SearchResult) error
}

// Service applies review-pipeline updates to search results and keeps the
// transition history. History is what tells a reviewer how a deal moved, so
// every status change is recorded, not just the latest state.
type Service struct {
	db    *database.GormDB
	index resultIndexer
}

// NewService creates a pipeline service. A nil index skips reindexing.
func NewService(db *database.GormDB, index resultIndexer) *Service {
	return &Service{db: db, index: index}
}

// UpdateResult applies a status and/or notes change to a result. A nil field
// leaves the current value alone. Status transitions are appended to the
// change history; notes-only updates are not.
func (s *Service) UpdateResult(resultID uint, status *string, notes *string) (*models.SearchResult, error) {
	result, err := s.db.GetResultByID(resultID)
	if err != nil {
		return nil, err
	}

	var change *models.ResultStatusChange
	if status != nil {
		if !models.ValidResultStatus(*status) {
			return nil, fmt.Errorf("invalid result status %q", *status)
		}
		newStatus := models.ResultStatus(*status)
		if newStatus != result.Status {
			change = &models.ResultStatusChange{
				ResultID:  result.ID,
				SearchID:  result.SearchID,
				OldStatus: result.Status,
				NewStatus: newStatus,
			}
			result.Status = newStatus
		}
	}
	if notes != nil {
		result.Notes = *notes
		if change != nil {
			change.Note = *notes
		}
	}

	if err := s.db.UpdateResult(result); err != nil {
		return nil, err
	}

	if change != nil {
		if err := s.db.RecordStatusChange(change); err != nil {
			// History is observational; the update itself already landed.
			log.Printf("[Pipeline] failed to record status change for result %d: %v", resultID, err)
		} else {
			log.Printf("[Pipeline] result %d moved %s -> %s", resultID, change.OldStatus, change.NewStatus)
		}
	}

	if s.index != nil {
		// Same best-effort contract as indexing after a search run.
		if err := s.index.IndexResult(result); err != nil {
			log.Printf("[Pipeline] failed to reindex result %d: %v", resultID, err)
		}
	}

	return result, nil
}

// RecentChanges returns the latest pipeline transitions, newest first
func (s *Service) RecentChanges(limit int) ([]models.ResultStatusChange, error) {
	return s.db.GetRecentStatusChanges(limit)
}
