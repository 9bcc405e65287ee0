package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// runsCmd prints the feed run history
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent feed build runs",
	Long: `Prints the run-history audit trail: one row per trading day with
feed size, themed cluster count, and build duration.

Example:
  go run ./cmd/rerate runs
  go run ./cmd/rerate runs --date 2026-08-28`,
	RunE: runRuns,
}

var (
	runsLimit int
	runsDate  string
)

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "number of runs to show")
	runsCmd.Flags().StringVar(&runsDate, "date", "", "show a single run for this date (YYYY-MM-DD)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if runsDate != "" {
		date, err := time.Parse("2006-01-02", runsDate)
		if err != nil {
			return fmt.Errorf("parse --date: %w", err)
		}
		run, err := rt.runs.GetRun(ctx, date)
		if err != nil {
			return err
		}
		printRunHeader()
		printRun(run.Date, run.FeedItems, run.Themed, run.AllStable, run.Duration, run.Trigger)
		return nil
	}

	runs, err := rt.runs.RecentRuns(ctx, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}

	printRunHeader()
	for _, run := range runs {
		printRun(run.Date, run.FeedItems, run.Themed, run.AllStable, run.Duration, run.Trigger)
	}
	return nil
}

func printRunHeader() {
	fmt.Printf("%-12s %6s %7s %7s %10s %s\n", "DATE", "ITEMS", "THEMED", "STABLE", "DURATION", "TRIGGER")
}

func printRun(date time.Time, items, themed int, stable bool, duration time.Duration, trigger string) {
	fmt.Printf("%-12s %6d %7d %7v %10s %s\n",
		date.Format("2006-01-02"), items, themed, stable, duration.Round(time.Millisecond), trigger)
}
