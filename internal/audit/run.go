package audit

import "time"

// Run is one recorded feed build: when it ran, how long it took, and what the
// assembled feed looked like.
type Run struct {
	Date      time.Time     `json:"date"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	FeedItems int           `json:"feed_items"`
	Themed    int           `json:"themed"`
	AllStable bool          `json:"all_stable"`
	Trigger   string        `json:"trigger"`
}

// Triggers recorded with each run.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)
