package severity

import (
	"fmt"
	"math"

	"github.com/wonny/rerate/internal/contracts"
)

// Positioning Shift: short-interest and institutional-ownership deltas.
const (
	posShortWeight     = 12.0
	posOwnershipWeight = 8.0
)

// detectPositioningShift is suppressed when both underlying sources report
// unavailability; zero-from-a-live-source is a real observation, unknown is not.
func detectPositioningShift(state *contracts.InstrumentState) *contracts.SignalScore {
	pos := state.Positioning

	if pos.ShortDataUnavailable && pos.OwnershipDataUnavailable {
		return nil
	}
	if pos.ShortInterestDeltaPct == nil && pos.InstOwnershipDeltaPct == nil {
		return nil
	}

	shortDelta := floatOrZero(pos.ShortInterestDeltaPct)
	ownDelta := floatOrZero(pos.InstOwnershipDeltaPct)

	severity := int(math.Round(math.Abs(shortDelta)*posShortWeight + math.Abs(ownDelta)*posOwnershipWeight))

	confidence := contracts.ConfidenceMedium
	if pos.ShortDataUnavailable || pos.OwnershipDataUnavailable {
		confidence = contracts.ConfidenceLow
	}

	return &contracts.SignalScore{
		Category:   contracts.CategoryPositioningShift,
		Severity:   severity,
		Confidence: confidence,
		Evidence: map[string]string{
			"short_interest_delta": fmt.Sprintf("%.2f", shortDelta),
			"inst_ownership_delta": fmt.Sprintf("%.2f", ownDelta),
		},
	}
}
