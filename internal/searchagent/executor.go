package searchagent

import (
	"fmt"
	"log"

	"market-survey-portal/internal/database"
	"market-survey-portal/internal/search"
)

// Executor drives one search through its lifecycle:
// pending -> running -> completed or error.
type Executor struct {
	db    *database.GormDB
	agent *Agent
	index *search.SearchClient
}

// NewExecutor wires an executor. The index client may be nil when no search
// engine is configured; indexing is then skipped.
func NewExecutor(db *database.GormDB, agent *Agent, index *search.SearchClient) *Executor {
	return &Executor{db: db, agent: agent, index: index}
}

// Execute runs a search by ID. Agent failures settle the search in error
// status with the message stored; the error is also returned to the caller.
func (e *Executor) Execute(searchID uint) error {
	s, err := e.db.GetSearchByID(searchID)
	if err != nil {
		return fmt.Errorf("search %d not found: %w", searchID, err)
	}

	if err := e.db.MarkSearchRunning(s.ID); err != nil {
		return fmt.Errorf("failed to start search %d: %w", s.ID, err)
	}
	log.Printf("[SearchExecutor] search %d (%s) running", s.ID, s.Name)

	results, err := e.agent.Run(s)
	if err != nil {
		if ferr := e.db.FailSearch(s.ID, err.Error()); ferr != nil {
			log.Printf("[SearchExecutor] failed to record error on search %d: %v", s.ID, ferr)
		}
		return err
	}

	if err := e.db.CompleteSearch(s.ID, results); err != nil {
		if ferr := e.db.FailSearch(s.ID, err.Error()); ferr != nil {
			log.Printf("[SearchExecutor] failed to record error on search %d: %v", s.ID, ferr)
		}
		return fmt.Errorf("failed to store results for search %d: %w", s.ID, err)
	}

	// Indexing is best effort; the run already succeeded.
	if e.index != nil && len(results) > 0 {
		if err := e.index.IndexResults(results); err != nil {
			log.Printf("[SearchExecutor] failed to index results for search %d: %v", s.ID, err)
		}
	}

	log.Printf("[SearchExecutor] search %d completed with %d results", s.ID, len(results))
	return nil
}
