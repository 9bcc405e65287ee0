package severity

import (
	"fmt"
	"math"

	"github.com/wonny/rerate/internal/contracts"
)

// Divergence: price and revisions actively conflicting.
const (
	divRevDeadband  = 0.5
	divPriceDropPct = -2.0
	divPriceRisePct = 2.0
	divBaseSeverity = 70
	divMagnitudeCap = 30
)

// detectDivergence fires only on an active conflict between revision
// direction and 7d price action
func detectDivergence(state *contracts.InstrumentState) *contracts.SignalScore {
	if state.Deltas.EPS7dPct == nil || state.Market.Price7dPct == nil {
		return nil
	}
	rev := *state.Deltas.EPS7dPct
	price := *state.Market.Price7dPct

	bullish := rev > divRevDeadband && price < divPriceDropPct
	bearish := rev < -divRevDeadband && price > divPriceRisePct
	if !bullish && !bearish {
		return nil
	}

	magnitude := int(math.Round(math.Abs(rev) + math.Abs(price)))
	if magnitude > divMagnitudeCap {
		magnitude = divMagnitudeCap
	}

	confidence := contracts.ConfidenceHigh
	if !state.Deltas.HasStoredHistory {
		confidence = contracts.ConfidenceMedium
	}

	return &contracts.SignalScore{
		Category:   contracts.CategoryDivergence,
		Severity:   divBaseSeverity + magnitude,
		Confidence: confidence,
		Evidence: map[string]string{
			"eps_7d_pct":   fmt.Sprintf("%.2f", rev),
			"price_7d_pct": fmt.Sprintf("%.2f", price),
			"direction":    divergenceDirection(bullish),
		},
	}
}

func divergenceDirection(bullish bool) string {
	if bullish {
		return "positive"
	}
	return "negative"
}
