package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/rerate/internal/audit"
	"github.com/wonny/rerate/internal/engine"
	"github.com/wonny/rerate/pkg/logger"
)

// DailyScanJob rebuilds the re-rating feed for the whole watch list once per
// trading day, after estimate vendors publish their end-of-day refresh.
type DailyScanJob struct {
	engine *engine.Engine
	runs   *audit.Repository
	logger *logger.Logger
}

// NewDailyScanJob creates the daily scan job
func NewDailyScanJob(eng *engine.Engine, runs *audit.Repository, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{
		engine: eng,
		runs:   runs,
		logger: log.Named("daily-scan"),
	}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule runs weekdays at 17:30 ET, after vendor estimate refreshes land
func (j *DailyScanJob) Schedule() string {
	return "0 30 17 * * 1-5"
}

// Run executes the daily scan and records the run in the audit trail
func (j *DailyScanJob) Run(ctx context.Context) error {
	started := time.Now()

	feed, err := j.engine.BuildFeed(ctx)
	if err != nil {
		return fmt.Errorf("daily scan: %w", err)
	}

	themed := 0
	for _, item := range feed.Items {
		if item.Themed != nil {
			themed++
		}
	}

	run := &audit.Run{
		Date:      feed.Date,
		StartedAt: started,
		Duration:  time.Since(started),
		FeedItems: len(feed.Items),
		Themed:    themed,
		AllStable: feed.AllStable,
		Trigger:   audit.TriggerScheduled,
	}
	if err := j.runs.SaveRun(ctx, run); err != nil {
		j.logger.WithError(err).Warn("Failed to record feed run")
	}

	j.logger.WithFields(map[string]interface{}{
		"items":      len(feed.Items),
		"all_stable": feed.AllStable,
		"duration":   run.Duration.String(),
	}).Info("Daily scan finished")

	return nil
}
