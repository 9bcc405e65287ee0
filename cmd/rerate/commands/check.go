package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// checkCmd runs the full pipeline for one symbol and prints the result
var checkCmd = &cobra.Command{
	Use:   "check [symbol]",
	Short: "Evaluate one instrument now",
	Long: `Runs the full re-rating pipeline for a single symbol: fetches today's
estimates and prices, computes revision deltas against the stored snapshot
series, scores the four pillars, runs the signal detectors, and prints the
state plus the dominant card (if any).

Example:
  go run ./cmd/rerate check AAPL
  go run ./cmd/rerate check NVDA --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var checkJSON bool

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the full state as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	symbol := strings.ToUpper(args[0])

	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	state, card, err := rt.engine.CheckInstrument(ctx, symbol)
	if err != nil {
		return fmt.Errorf("check %s: %w", symbol, err)
	}

	if checkJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"state": state,
			"card":  card,
		})
	}

	fmt.Printf("=== %s ===\n", symbol)
	fmt.Printf("Thesis:     %s (pulse %+d, confidence %s)\n", state.Thesis, state.Pulse, state.Confidence)
	fmt.Printf("Pillars:    rev %.1f  div %.1f  val %.1f  risk %.1f  (total %.1f)\n",
		state.Pillars.Revisions, state.Pillars.Divergence,
		state.Pillars.Valuation, state.Pillars.RiskChange, state.PillarTotal)
	fmt.Printf("Risk:       structural %s (%s), flow %s (%s)\n",
		state.StructuralRisk.Level, state.StructuralRisk.Note,
		state.FlowRisk.Level, state.FlowRisk.Note)

	if state.Insight != nil {
		fmt.Printf("Insight:    %s %s\n", state.Insight.Emoji, strings.Join(state.Insight.Lines, " / "))
	}

	if card == nil {
		fmt.Println("\nNo signal today: nothing cleared the severity floor.")
		return nil
	}

	fmt.Printf("\n[%s] %s (severity %d, %s)\n", card.Category, card.Title, card.Severity, card.Tone)
	fmt.Printf("  %s\n", card.Summary)
	fmt.Printf("  Key metric: %s\n", card.KeyMetric)
	if card.ConfidenceCaveat != "" {
		fmt.Printf("  Caveat: %s\n", card.ConfidenceCaveat)
	}
	if card.EarningsContext {
		fmt.Println("  Context: recent earnings report applies")
	}

	return nil
}
