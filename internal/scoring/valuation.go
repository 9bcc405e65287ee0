package scoring

import (
	"github.com/wonny/rerate/internal/contracts"
)

// scoreValuation computes the 0-25 valuation-compression pillar from the
// change in free-cash-flow yield versus roughly one quarter earlier.
// Upside credit requires non-negative 30d revisions; the score is capped
// low while the current yield is non-positive.
func scoreValuation(deltas contracts.RevisionDeltas, fund contracts.FundamentalData) float64 {
	if fund.FCFYieldNow == nil || fund.FCFYieldPrior == nil {
		return ValuationNeutral
	}

	yieldDelta := *fund.FCFYieldNow - *fund.FCFYieldPrior
	score := ValuationNeutral + yieldDelta*valuationYieldSlope

	if !revisionsNonNegative(deltas.EPS30dPct) && score > ValuationNeutral {
		// Cheapening on falling estimates is a value trap, not compression
		score = ValuationNeutral
	}

	if *fund.FCFYieldNow <= 0 && score > valuationNegYieldCap {
		score = valuationNegYieldCap
	}

	return clampPillar(score, ValuationMax)
}

func revisionsNonNegative(eps30d *float64) bool {
	if eps30d == nil {
		return true
	}
	return *eps30d >= valuationRevisionGate
}

// FCFYieldDelta returns the change in FCF yield when both points exist
func FCFYieldDelta(fund contracts.FundamentalData) *float64 {
	if fund.FCFYieldNow == nil || fund.FCFYieldPrior == nil {
		return nil
	}
	delta := *fund.FCFYieldNow - *fund.FCFYieldPrior
	return &delta
}

// NegativeFCFFlip reports a yield that crossed from positive to non-positive
func NegativeFCFFlip(fund contracts.FundamentalData) bool {
	if fund.FCFYieldNow == nil || fund.FCFYieldPrior == nil {
		return false
	}
	return *fund.FCFYieldPrior > 0 && *fund.FCFYieldNow <= 0
}
