package revision

import (
	"math"
	"time"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/internal/snapshot"
	"github.com/wonny/rerate/pkg/logger"
)

// Day-gap buckets for historical revision volatility
const (
	gap7dMin  = 5
	gap7dMax  = 10
	gap30dMin = 25
	gap30dMax = 35

	// Minimum samples per bucket before a std dev is reported
	minBucketSamples = 2
)

// Calculator derives revision deltas from the snapshot series and today's
// consensus. Pure except for logging; recomputed on every call.
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new revision delta calculator
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{logger: log}
}

// Compute produces 7d/30d percentage deltas, dispersion, and historical
// standard deviation for one instrument. series must be newest-first.
//
// Cold start: when no snapshot exists at or before 7 days ago, the prior
// fiscal-period estimate stands in as the base for BOTH windows. That
// conflates two time horizons; HasStoredHistory=false flags it so consumers
// can show a confidence caveat.
func (c *Calculator) Compute(series []contracts.EstimateSnapshot, today *contracts.EstimateData, asOf time.Time) contracts.RevisionDeltas {
	deltas := contracts.RevisionDeltas{}
	if today == nil {
		return deltas
	}

	snap7 := snapshot.AtOrBefore(series, asOf.AddDate(0, 0, -7))
	snap30 := snapshot.AtOrBefore(series, asOf.AddDate(0, 0, -30))

	if snap7 != nil {
		deltas.HasStoredHistory = true
		deltas.EPS7dPct = pctChange(today.EPSNextFY, snap7.EPSNextFY)
		deltas.PriorBaseEPS = cloneFloat(&snap7.EPSNextFY)
		deltas.DispersionPrior = dispersionOf(snap7)

		if snap30 != nil {
			deltas.EPS30dPct = pctChange(today.EPSNextFY, snap30.EPSNextFY)
			deltas.Revenue30dPct = pctChange(today.RevenueNextFY, snap30.RevenueNextFY)
		} else {
			// Not enough depth for a true 30d base; reuse the 7d base
			deltas.EPS30dPct = pctChange(today.EPSNextFY, snap7.EPSNextFY)
			deltas.Revenue30dPct = pctChange(today.RevenueNextFY, snap7.RevenueNextFY)
		}
	} else {
		// Cold start: fall back to the prior estimate period for both windows
		if today.PriorPeriodEPS != nil {
			fallback := pctChange(today.EPSNextFY, *today.PriorPeriodEPS)
			deltas.EPS7dPct = fallback
			deltas.EPS30dPct = cloneFloat(fallback)
			deltas.PriorBaseEPS = cloneFloat(today.PriorPeriodEPS)
		}
		if today.PriorPeriodRevenue != nil {
			deltas.Revenue30dPct = pctChange(today.RevenueNextFY, *today.PriorPeriodRevenue)
		}

		c.logger.WithFields(map[string]interface{}{
			"symbol": today.Symbol,
		}).Debug("No stored snapshot history, using prior-period fallback")
	}

	deltas.DispersionNow = dispersionNow(today)
	deltas.StdDev7d, deltas.StdDev30d = historicalStdDev(series)

	return deltas
}

// dispersionNow computes today's analyst spread as % of consensus
func dispersionNow(today *contracts.EstimateData) *float64 {
	if today.EPSHigh == nil || today.EPSLow == nil {
		return nil
	}
	return dispersion(*today.EPSHigh, *today.EPSLow, today.EPSNextFY)
}

// dispersionOf computes a stored snapshot's analyst spread
func dispersionOf(snap *contracts.EstimateSnapshot) *float64 {
	if snap == nil || snap.EPSHigh == nil || snap.EPSLow == nil {
		return nil
	}
	return dispersion(*snap.EPSHigh, *snap.EPSLow, snap.EPSNextFY)
}

func dispersion(high, low, avg float64) *float64 {
	if avg == 0 {
		return nil
	}
	d := (high - low) / math.Abs(avg) * 100
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return nil
	}
	return &d
}

// historicalStdDev collects all snapshot-pair percentage changes, buckets
// them by day gap into ~7d (5-10) and ~30d (25-35) windows, and returns the
// sample standard deviation per bucket. A bucket needs >= 2 values (which
// implies >= 4 snapshots overall) or it yields nil.
func historicalStdDev(series []contracts.EstimateSnapshot) (std7, std30 *float64) {
	var bucket7, bucket30 []float64

	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			newer, older := series[i], series[j]
			gap := int(newer.Date.Sub(older.Date).Hours() / 24)

			change := pctChange(newer.EPSNextFY, older.EPSNextFY)
			if change == nil {
				continue
			}

			switch {
			case gap >= gap7dMin && gap <= gap7dMax:
				bucket7 = append(bucket7, *change)
			case gap >= gap30dMin && gap <= gap30dMax:
				bucket30 = append(bucket30, *change)
			}
		}
	}

	return sampleStdDev(bucket7), sampleStdDev(bucket30)
}

// sampleStdDev computes the n-1 standard deviation, nil below the sample floor
func sampleStdDev(values []float64) *float64 {
	if len(values) < minBucketSamples {
		return nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(len(values)-1))
	if math.IsNaN(std) || math.IsInf(std, 0) {
		return nil
	}
	return &std
}

// pctChange guards the zero-base and non-finite cases
func pctChange(current, base float64) *float64 {
	if base == 0 {
		return nil
	}
	pct := (current - base) / math.Abs(base) * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return nil
	}
	return &pct
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
