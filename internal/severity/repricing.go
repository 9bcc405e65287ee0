package severity

import (
	"fmt"
	"math"

	"github.com/wonny/rerate/internal/contracts"
)

// Forced Repricing: a price move that exceeds what 30d volatility budgets
// for, happens without revisions, or contradicts the revision direction.
const (
	repricingBudgetMult    = 2.0
	repricingFlatDeadband  = 0.5
	repricingFlatMovePct   = 8.0
	repricingContraMovePct = 5.0
	repricingWeight        = 2.0
	repricingUnusualBonus  = 15
	repricingWeakRSBonus   = 10
	repricingWeakRSPct     = -5.0

	// 30 calendar days of an annualized vol figure
	volBudgetScale = 0.2867 // sqrt(30/365)
)

// detectForcedRepricing suppresses in-budget, revision-aligned moves as noise
func detectForcedRepricing(state *contracts.InstrumentState) *contracts.SignalScore {
	if state.Market.Price30dPct == nil {
		return nil
	}
	price30 := *state.Market.Price30dPct
	eps30 := floatOrZero(state.Deltas.EPS30dPct)

	unusual := exceedsVolBudget(price30, state.Market.Vol30dAnnualized)
	flatMove := math.Abs(eps30) <= repricingFlatDeadband && math.Abs(price30) > repricingFlatMovePct
	contradiction := (eps30 > repricingFlatDeadband && price30 < -repricingContraMovePct) ||
		(eps30 < -repricingFlatDeadband && price30 > repricingContraMovePct)

	if !unusual && !flatMove && !contradiction {
		return nil
	}

	severity := int(math.Round(math.Abs(price30) * repricingWeight))
	if unusual {
		severity += repricingUnusualBonus
	}
	if state.Market.RelativeStrength7d != nil && *state.Market.RelativeStrength7d < repricingWeakRSPct {
		severity += repricingWeakRSBonus
	}

	confidence := contracts.ConfidenceMedium
	if unusual && contradiction {
		confidence = contracts.ConfidenceHigh
	}

	return &contracts.SignalScore{
		Category:   contracts.CategoryForcedRepricing,
		Severity:   severity,
		Confidence: confidence,
		Evidence: map[string]string{
			"price_30d_pct": fmt.Sprintf("%.2f", price30),
			"unusual_move":  fmt.Sprintf("%t", unusual),
			"contradiction": fmt.Sprintf("%t", contradiction),
		},
	}
}

// exceedsVolBudget checks the move against 2x the vol-implied 30d budget
func exceedsVolBudget(price30 float64, vol *float64) bool {
	if vol == nil || *vol <= 0 {
		return false
	}
	budget := *vol * volBudgetScale
	return math.Abs(price30) > repricingBudgetMult*budget
}
