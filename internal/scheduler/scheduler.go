package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"market-survey-portal/internal/config"
	"market-survey-portal/internal/database"
)

// Scheduler re-queues recurring searches on a daily schedule. Searches with
// their own cron expression get a dedicated entry; the rest ride the daily
// run. The queue worker picks up whatever lands in pending.
type Scheduler struct {
	cron      *cron.Cron
	db        *database.GormDB
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(db *database.GormDB, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		db:     db,
		config: cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.SearchAgent.RecurringRunEnabled {
		log.Println("Scheduler: recurring search run is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.SearchAgent.RecurringRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: starting recurring search re-queue...")
		if err := s.requeueRecurringSearches(); err != nil {
			log.Printf("Scheduler: recurring re-queue failed: %v", err)
		} else {
			log.Println("Scheduler: recurring re-queue completed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: started with daily run at %s (cron: %s)", s.config.SearchAgent.RecurringRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: stopped")
	}
}

// requeueRecurringSearches resets every settled recurring search to pending.
// Searches carrying their own cron expression are validated; an unparseable
// expression is logged and the search still rides the daily run.
func (s *Scheduler) requeueRecurringSearches() error {
	searches, err := s.db.GetRecurringSearches()
	if err != nil {
		return err
	}

	log.Printf("Scheduler: found %d recurring searches", len(searches))

	requeued := 0
	for _, search := range searches {
		if search.RecurringSchedule != "" {
			if _, err := cron.ParseStandard(search.RecurringSchedule); err != nil {
				log.Printf("Scheduler: search %d has invalid schedule %q, re-queuing on daily run", search.ID, search.RecurringSchedule)
			}
		}
		if err := s.db.RequeueSearch(search.ID); err != nil {
			log.Printf("Scheduler: failed to re-queue search %d: %v", search.ID, err)
			continue
		}
		requeued++
	}

	log.Printf("Scheduler: re-queued %d of %d recurring searches", requeued, len(searches))
	return nil
}

// RunNow immediately re-queues recurring searches (for manual trigger)
func (s *Scheduler) RunNow() error {
	log.Println("Scheduler: manual trigger - re-queuing recurring searches...")
	return s.requeueRecurringSearches()
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "06:00" -> "0 6 * * *" (run at 6:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 6:00 AM if parsing fails
	log.Printf("Scheduler: failed to parse time '%s', using default 06:00", timeStr)
	return "0 6 * * *"
}
