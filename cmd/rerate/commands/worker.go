package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/rerate/internal/scheduler"
	"github.com/wonny/rerate/internal/scheduler/jobs"
)

// workerCmd runs the scheduler with the daily scan and maintenance jobs
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the scheduled worker",
	Long: `Starts the job scheduler:

  daily_scan   - weekdays at 17:30: rebuild the watch-list feed
  maintenance  - Sundays at 03:00: prune aged card history

Example:
  go run ./cmd/rerate worker
  go run ./cmd/rerate worker --run-now daily_scan`,
	RunE: runWorker,
}

var runNowJob string

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().StringVar(&runNowJob, "run-now", "", "trigger a job immediately on startup")
}

func runWorker(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	sched := scheduler.New(rt.logger.Named("scheduler"))

	if err := sched.AddJob(jobs.NewDailyScanJob(rt.engine, rt.runs, rt.logger)); err != nil {
		return fmt.Errorf("register daily scan: %w", err)
	}
	if err := sched.AddJob(jobs.NewMaintenanceJob(rt.cards, rt.logger)); err != nil {
		return fmt.Errorf("register maintenance: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if runNowJob != "" {
		if err := sched.RunJob(runNowJob); err != nil {
			return fmt.Errorf("run job %s: %w", runNowJob, err)
		}
	}

	rt.logger.WithField("jobs", sched.GetAllJobs()).Info("Worker running")
	fmt.Println("Worker running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	rt.logger.Info("Worker stopping")
	return nil
}
