package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces sliding-window rate limits for one named operation scope,
// e.g. spreadsheet uploads or search runs.
type Limiter struct {
	name      string
	perMinute int
	perHour   int
	enabled   bool

	minuteWindow []time.Time
	hourWindow   []time.Time
	mu           sync.Mutex
}

// New creates a limiter. A limit of zero disables that window.
func New(name string, perMinute, perHour int, enabled bool) *Limiter {
	return &Limiter{
		name:         name,
		perMinute:    perMinute,
		perHour:      perHour,
		enabled:      enabled,
		minuteWindow: make([]time.Time, 0),
		hourWindow:   make([]time.Time, 0),
	}
}

// Allow checks whether one more operation fits under the limits, recording it
// when it does.
func (l *Limiter) Allow() bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.cleanup(now)

	if l.perMinute > 0 && len(l.minuteWindow) >= l.perMinute {
		return false
	}
	if l.perHour > 0 && len(l.hourWindow) >= l.perHour {
		return false
	}

	l.minuteWindow = append(l.minuteWindow, now)
	l.hourWindow = append(l.hourWindow, now)
	return true
}

// cleanup removes expired entries from the time windows
func (l *Limiter) cleanup(now time.Time) {
	l.minuteWindow = filterTimes(l.minuteWindow, now.Add(-1*time.Minute))
	l.hourWindow = filterTimes(l.hourWindow, now.Add(-1*time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// Stats contains limiter statistics
type Stats struct {
	Name                string `json:"name"`
	Enabled             bool   `json:"enabled"`
	RequestsLastMinute  int    `json:"requests_last_minute"`
	RequestsLastHour    int    `json:"requests_last_hour"`
	LimitPerMinute      int    `json:"limit_per_minute"`
	LimitPerHour        int    `json:"limit_per_hour"`
	RemainingThisMinute int    `json:"remaining_this_minute"`
	RemainingThisHour   int    `json:"remaining_this_hour"`
}

// GetStats returns current limiter statistics
func (l *Limiter) GetStats() Stats {
	if !l.enabled {
		return Stats{Name: l.name, Enabled: false}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanup(time.Now())

	return Stats{
		Name:                l.name,
		Enabled:             true,
		RequestsLastMinute:  len(l.minuteWindow),
		RequestsLastHour:    len(l.hourWindow),
		LimitPerMinute:      l.perMinute,
		LimitPerHour:        l.perHour,
		RemainingThisMinute: maxInt(0, l.perMinute-len(l.minuteWindow)),
		RemainingThisHour:   maxInt(0, l.perHour-len(l.hourWindow)),
	}
}

// Reset clears all tracked requests (useful for testing)
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.minuteWindow = make([]time.Time, 0)
	l.hourWindow = make([]time.Time, 0)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
