package scheduler

import (
	"log"
	"time"

	"market-survey-portal/internal/database"
	"market-survey-portal/internal/models"
	"market-survey-portal/internal/searchagent"
)

// QueueWorker drains pending property searches one at a time. Searches land
// in pending either from a user creating one or from the scheduler re-queuing
// a recurring search.
type QueueWorker struct {
	db           *database.GormDB
	executor     *searchagent.Executor
	stopChan     chan struct{}
	isRunning    bool
	pollInterval time.Duration
}

// NewQueueWorker creates a new queue worker
func NewQueueWorker(db *database.GormDB, executor *searchagent.Executor, pollInterval time.Duration) *QueueWorker {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Second
	}
	return &QueueWorker{
		db:           db,
		executor:     executor,
		stopChan:     make(chan struct{}),
		pollInterval: pollInterval,
	}
}

// Start starts the queue worker
func (w *QueueWorker) Start() {
	if w.isRunning {
		log.Println("QueueWorker: already running")
		return
	}

	w.isRunning = true
	log.Printf("QueueWorker: started (poll_interval=%v)", w.pollInterval)

	go w.run()
}

// Stop stops the queue worker
func (w *QueueWorker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("QueueWorker: stopping...")
	w.isRunning = false
	close(w.stopChan)
}

// run is the main worker loop
func (w *QueueWorker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			log.Println("QueueWorker: stopped")
			return
		case <-ticker.C:
			w.processNext()
		}
	}
}

// processNext executes the oldest pending search, if any. The executor owns
// the status transitions, including settling failures in error status, so a
// bad search never comes back around.
func (w *QueueWorker) processNext() {
	search, err := w.db.NextPendingSearch()
	if err != nil {
		log.Printf("QueueWorker: error fetching next pending search: %v", err)
		return
	}
	if search == nil {
		return
	}

	log.Printf("QueueWorker: processing search %d (%s)", search.ID, search.Name)
	if err := w.executor.Execute(search.ID); err != nil {
		log.Printf("QueueWorker: search %d failed: %v", search.ID, err)
	}
}

// GetQueueStats returns current search queue statistics
func (w *QueueWorker) GetQueueStats() map[string]interface{} {
	counts := map[models.SearchStatus]int64{}
	for _, status := range []models.SearchStatus{
		models.SearchStatusPending,
		models.SearchStatusRunning,
		models.SearchStatusCompleted,
		models.SearchStatusError,
	} {
		var n int64
		w.db.DB().Model(&models.PropertySearch{}).Where("status = ?", status).Count(&n)
		counts[status] = n
	}

	return map[string]interface{}{
		"pending":    counts[models.SearchStatusPending],
		"running":    counts[models.SearchStatusRunning],
		"completed":  counts[models.SearchStatusCompleted],
		"error":      counts[models.SearchStatusError],
		"is_running": w.isRunning,
	}
}
