package severity

import (
	"fmt"
	"math"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/internal/scoring"
)

// Valuation Shift: a move in FCF yield, or a flip to negative FCF.
const (
	valYieldWeight = 20.0
	valFlipBonus   = 35
)

func detectValuationShift(state *contracts.InstrumentState) *contracts.SignalScore {
	delta := scoring.FCFYieldDelta(state.Fundamental)
	flip := scoring.NegativeFCFFlip(state.Fundamental)

	if (delta == nil || *delta == 0) && !flip {
		return nil
	}

	severity := 0
	deltaVal := 0.0
	if delta != nil {
		deltaVal = *delta
		severity = int(math.Round(math.Abs(deltaVal) * valYieldWeight))
	}
	if flip {
		severity += valFlipBonus
	}

	confidence := contracts.ConfidenceMedium
	if flip {
		confidence = contracts.ConfidenceHigh
	}

	return &contracts.SignalScore{
		Category:   contracts.CategoryValuationShift,
		Severity:   severity,
		Confidence: confidence,
		Evidence: map[string]string{
			"fcf_yield_delta": fmt.Sprintf("%.2f", deltaVal),
			"negative_flip":   fmt.Sprintf("%t", flip),
		},
	}
}
