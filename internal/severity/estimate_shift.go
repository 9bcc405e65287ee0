package severity

import (
	"fmt"
	"math"

	"github.com/wonny/rerate/internal/contracts"
)

// Estimate Shift: revision magnitude normalized by the instrument's own
// historical revision volatility.
const (
	estWeight7d       = 2.0
	estWeight30d      = 0.5
	estStdDevFloor    = 2.0
	estSurpriseScale  = 25.0
	estExtremePct     = 20.0
	estExtremeBonus   = 15
	estNarrowingBonus = 10
	estMegaCapFloor   = 500e9
	estMegaCapDampen  = 0.7
)

// detectEstimateShift fires on any non-zero 7d/30d revision
func detectEstimateShift(state *contracts.InstrumentState) *contracts.SignalScore {
	eps7d := floatOrZero(state.Deltas.EPS7dPct)
	eps30d := floatOrZero(state.Deltas.EPS30dPct)

	if eps7d == 0 && eps30d == 0 {
		return nil
	}

	weighted := math.Abs(eps7d)*estWeight7d + math.Abs(eps30d)*estWeight30d
	denom := math.Max(estStdDevFloor, blendedStdDev(state.Deltas))
	surprise := weighted / denom

	severity := int(math.Round(math.Min(100, surprise*estSurpriseScale)))

	if math.Abs(eps7d) > estExtremePct {
		severity += estExtremeBonus
	}
	if narrowingDispersion(state.Deltas) {
		severity += estNarrowingBonus
	}

	// Mega caps move the tape on smaller revisions; dampen to compensate
	if state.Fundamental.MarketCap > estMegaCapFloor {
		severity = int(math.Round(float64(severity) * estMegaCapDampen))
	}

	return &contracts.SignalScore{
		Category:   contracts.CategoryEstimateShift,
		Severity:   severity,
		Confidence: estimateConfidence(state.Deltas),
		Evidence: map[string]string{
			"eps_7d_pct":  fmt.Sprintf("%.2f", eps7d),
			"eps_30d_pct": fmt.Sprintf("%.2f", eps30d),
			"surprise":    fmt.Sprintf("%.2f", surprise),
		},
	}
}

// blendedStdDev weights the 7d bucket double when both buckets exist
func blendedStdDev(deltas contracts.RevisionDeltas) float64 {
	std7 := deltas.StdDev7d
	std30 := deltas.StdDev30d

	switch {
	case std7 != nil && std30 != nil:
		return (*std7*2 + *std30) / 3
	case std7 != nil:
		return *std7
	case std30 != nil:
		return *std30
	default:
		return 0
	}
}

func narrowingDispersion(deltas contracts.RevisionDeltas) bool {
	if deltas.DispersionNow == nil || deltas.DispersionPrior == nil {
		return false
	}
	return *deltas.DispersionNow < *deltas.DispersionPrior
}

func estimateConfidence(deltas contracts.RevisionDeltas) contracts.ConfidenceLevel {
	if !deltas.HasStoredHistory {
		return contracts.ConfidenceLow
	}
	if deltas.StdDev7d != nil || deltas.StdDev30d != nil {
		return contracts.ConfidenceHigh
	}
	return contracts.ConfidenceMedium
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
