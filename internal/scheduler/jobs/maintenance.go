package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/rerate/internal/feed"
	"github.com/wonny/rerate/pkg/logger"
)

// Card history kept for a year, matching snapshot retention
const cardRetentionDays = 365

// MaintenanceJob prunes aged card history
type MaintenanceJob struct {
	cards  *feed.Repository
	logger *logger.Logger
}

// NewMaintenanceJob creates the maintenance job
func NewMaintenanceJob(cards *feed.Repository, log *logger.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		cards:  cards,
		logger: log.Named("maintenance"),
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Schedule runs Sundays at 03:00
func (j *MaintenanceJob) Schedule() string {
	return "0 0 3 * * 0"
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -cardRetentionDays)

	pruned, err := j.cards.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("maintenance: %w", err)
	}

	j.logger.WithField("pruned", pruned).Info("Card history pruned")
	return nil
}
