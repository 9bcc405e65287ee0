package scoring

import (
	"math"

	"github.com/wonny/rerate/internal/contracts"
)

// scoreRevisions computes the 0-40 revisions pillar: piecewise-linear
// sub-scores for eps7d, eps30d, revenue30d plus a directional component.
// Missing deltas resolve to each sub-score's neutral midpoint.
func scoreRevisions(deltas contracts.RevisionDeltas) float64 {
	total := scoreEPS7d(deltas.EPS7dPct) +
		scoreEPS30d(deltas.EPS30dPct) +
		scoreRevenue30d(deltas.Revenue30dPct) +
		scoreDirectional(deltas.EPS7dPct, deltas.EPS30dPct)

	return clampPillar(total, RevisionsMax)
}

// scoreEPS7d: neutral 7.5, finer slope between 0.5% and 2%, scaled 2x beyond
func scoreEPS7d(pct *float64) float64 {
	if pct == nil {
		return eps7dSubNeutral
	}

	adj := piecewiseAdjust(*pct, eps7dDeadband, eps7dFineLimit, eps7dFineSlope, eps7dCoarseSlope)
	return clampPillar(eps7dSubNeutral+adj, eps7dSubMax)
}

func scoreEPS30d(pct *float64) float64 {
	if pct == nil {
		return eps30dSubNeutral
	}

	adj := piecewiseAdjust(*pct, eps30dDeadband, eps30dFineLimit, eps30dFineSlope, eps30dCoarseSlope)
	return clampPillar(eps30dSubNeutral+adj, eps30dSubMax)
}

func scoreRevenue30d(pct *float64) float64 {
	if pct == nil {
		return revenueSubNeutral
	}

	adj := piecewiseAdjust(*pct, revenueDeadband, math.MaxFloat64, revenueSlope, revenueSlope)
	return clampPillar(revenueSubNeutral+adj, revenueSubMax)
}

// scoreDirectional: 10/5/0 for up/flat/down with a deadband on sign.
// eps7d decides; eps30d stands in when eps7d is missing.
func scoreDirectional(eps7d, eps30d *float64) float64 {
	pct := eps7d
	if pct == nil {
		pct = eps30d
	}
	if pct == nil {
		return directionalFlat
	}

	switch {
	case *pct > directionDeadband:
		return directionalUp
	case *pct < -directionDeadband:
		return directionalDown
	default:
		return directionalFlat
	}
}

// piecewiseAdjust maps a signed percentage onto a score adjustment: zero
// inside the deadband, a fine slope out to fineLimit, a coarse slope beyond.
func piecewiseAdjust(pct, deadband, fineLimit, fineSlope, coarseSlope float64) float64 {
	mag := math.Abs(pct)
	if mag <= deadband {
		return 0
	}

	var adj float64
	if mag <= fineLimit {
		adj = mag * fineSlope
	} else {
		adj = fineLimit*fineSlope + (mag-fineLimit)*coarseSlope
	}

	if pct < 0 {
		return -adj
	}
	return adj
}
