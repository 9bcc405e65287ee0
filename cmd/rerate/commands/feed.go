package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// feedCmd builds the daily feed for the configured watch list
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Build the daily re-rating feed",
	Long: `Runs the pipeline across the whole watch list, clusters same-category
signals into themed cards, and prints the assembled feed.

Example:
  go run ./cmd/rerate feed
  go run ./cmd/rerate feed --json`,
	RunE: runFeed,
}

var feedJSON bool

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().BoolVar(&feedJSON, "json", false, "print the feed as JSON")
}

func runFeed(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	feed, err := rt.engine.BuildFeed(ctx)
	if err != nil {
		return fmt.Errorf("build feed: %w", err)
	}

	if feedJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(feed)
	}

	fmt.Printf("=== Feed %s ===\n", feed.Date.Format("2006-01-02"))

	if feed.AllStable {
		fmt.Println("All instruments stable today.")
		return nil
	}

	for i, item := range feed.Items {
		if item.Themed != nil {
			t := item.Themed
			fmt.Printf("%d. [%s] %s (max severity %d, %s)\n", i+1, t.Category, t.Theme, t.MaxSeverity, t.Tone)
			for _, member := range t.Items {
				fmt.Printf("     %-6s %s (severity %d)\n", member.Symbol, member.KeyMetric, member.Severity)
			}
			continue
		}
		c := item.Primary
		fmt.Printf("%d. %-6s [%s] %s (severity %d, %s)\n", i+1, c.Symbol, c.Category, c.Title, c.Severity, c.Tone)
		fmt.Printf("     %s\n", c.Summary)
	}

	return nil
}
