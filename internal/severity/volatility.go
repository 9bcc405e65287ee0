package severity

import (
	"fmt"
	"math"

	"github.com/wonny/rerate/internal/contracts"
)

// Volatility Event: tiered additive severity once the vol regime is extreme.
const (
	volEventMinVol    = 50.0
	volEventMinBeta   = 1.5
	volEventMinMove   = 25.0
	volEventBase      = 50
	volEventHighVol   = 60.0
	volEventHighBonus = 20
	volEventBigMove   = 30.0
	volEventMoveBonus = 20
)

func detectVolatilityEvent(state *contracts.InstrumentState) *contracts.SignalScore {
	if state.Market.Vol30dAnnualized == nil {
		return nil
	}
	vol := *state.Market.Vol30dAnnualized
	if vol < volEventMinVol {
		return nil
	}

	move := 0.0
	if state.Market.Price30dPct != nil {
		move = math.Abs(*state.Market.Price30dPct)
	}
	highBeta := state.Market.Beta != nil && *state.Market.Beta >= volEventMinBeta

	if !highBeta && move <= volEventMinMove {
		return nil
	}

	severity := volEventBase
	if vol > volEventHighVol {
		severity += volEventHighBonus
	}
	if move > volEventBigMove {
		severity += volEventMoveBonus
	}

	return &contracts.SignalScore{
		Category:   contracts.CategoryVolatilityEvent,
		Severity:   severity,
		Confidence: contracts.ConfidenceHigh,
		Evidence: map[string]string{
			"vol_30d":       fmt.Sprintf("%.1f", vol),
			"price_30d_pct": fmt.Sprintf("%.2f", move),
		},
	}
}
