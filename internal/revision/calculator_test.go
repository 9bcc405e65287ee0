package revision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/internal/snapshot"
	"github.com/wonny/rerate/pkg/logger"
)

var asOf = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return asOf.AddDate(0, 0, offset)
}

func snap(date time.Time, eps, revenue float64) contracts.EstimateSnapshot {
	return contracts.EstimateSnapshot{
		Symbol:        "AAPL",
		Date:          date,
		EPSNextFY:     eps,
		RevenueNextFY: revenue,
	}
}

func fp(v float64) *float64 { return &v }

func TestCompute_StoredHistory(t *testing.T) {
	calc := NewCalculator(logger.Nop())

	series := snapshot.Normalize([]contracts.EstimateSnapshot{
		snap(day(-8), 5.0, 1000),
		snap(day(-31), 4.0, 900),
	})
	today := &contracts.EstimateData{
		Symbol:        "AAPL",
		EPSNextFY:     5.5,
		RevenueNextFY: 1080,
	}

	deltas := calc.Compute(series, today, asOf)

	assert.True(t, deltas.HasStoredHistory)
	require.NotNil(t, deltas.EPS7dPct)
	assert.InDelta(t, 10.0, *deltas.EPS7dPct, 0.001) // 5.0 -> 5.5
	require.NotNil(t, deltas.EPS30dPct)
	assert.InDelta(t, 37.5, *deltas.EPS30dPct, 0.001) // 4.0 -> 5.5
	require.NotNil(t, deltas.Revenue30dPct)
	assert.InDelta(t, 20.0, *deltas.Revenue30dPct, 0.001) // 900 -> 1080
	require.NotNil(t, deltas.PriorBaseEPS)
	assert.Equal(t, 5.0, *deltas.PriorBaseEPS)
}

func TestCompute_ShallowHistoryReuses7dBase(t *testing.T) {
	calc := NewCalculator(logger.Nop())

	// Only a ~7d-deep snapshot exists; the 30d window reuses it as base
	series := snapshot.Normalize([]contracts.EstimateSnapshot{
		snap(day(-9), 5.0, 1000),
	})
	today := &contracts.EstimateData{Symbol: "AAPL", EPSNextFY: 5.5, RevenueNextFY: 1100}

	deltas := calc.Compute(series, today, asOf)

	assert.True(t, deltas.HasStoredHistory)
	require.NotNil(t, deltas.EPS30dPct)
	assert.InDelta(t, *deltas.EPS7dPct, *deltas.EPS30dPct, 0.001)
}

func TestCompute_ColdStartFallback(t *testing.T) {
	calc := NewCalculator(logger.Nop())

	today := &contracts.EstimateData{
		Symbol:             "AAPL",
		EPSNextFY:          5.5,
		RevenueNextFY:      1100,
		PriorPeriodEPS:     fp(5.0),
		PriorPeriodRevenue: fp(1000),
	}

	deltas := calc.Compute(nil, today, asOf)

	assert.False(t, deltas.HasStoredHistory)
	require.NotNil(t, deltas.EPS7dPct)
	assert.InDelta(t, 10.0, *deltas.EPS7dPct, 0.001)
	require.NotNil(t, deltas.EPS30dPct)
	assert.InDelta(t, 10.0, *deltas.EPS30dPct, 0.001, "fallback base serves both windows")
	require.NotNil(t, deltas.Revenue30dPct)
	assert.InDelta(t, 10.0, *deltas.Revenue30dPct, 0.001)
	require.NotNil(t, deltas.PriorBaseEPS)
	assert.Equal(t, 5.0, *deltas.PriorBaseEPS)
}

func TestCompute_ColdStartWithoutPriorPeriod(t *testing.T) {
	calc := NewCalculator(logger.Nop())

	today := &contracts.EstimateData{Symbol: "AAPL", EPSNextFY: 5.5, RevenueNextFY: 1100}

	deltas := calc.Compute(nil, today, asOf)

	assert.False(t, deltas.HasStoredHistory)
	assert.Nil(t, deltas.EPS7dPct)
	assert.Nil(t, deltas.EPS30dPct)
	assert.Nil(t, deltas.Revenue30dPct)
}

func TestCompute_Dispersion(t *testing.T) {
	calc := NewCalculator(logger.Nop())

	today := &contracts.EstimateData{
		Symbol:        "AAPL",
		EPSNextFY:     5.0,
		RevenueNextFY: 1000,
		EPSHigh:       fp(6.0),
		EPSLow:        fp(4.5),
	}

	deltas := calc.Compute(nil, today, asOf)

	require.NotNil(t, deltas.DispersionNow)
	assert.InDelta(t, 30.0, *deltas.DispersionNow, 0.001) // (6.0-4.5)/5.0
}

func TestCompute_ZeroBaseGuard(t *testing.T) {
	calc := NewCalculator(logger.Nop())

	series := snapshot.Normalize([]contracts.EstimateSnapshot{
		snap(day(-8), 0, 0),
	})
	today := &contracts.EstimateData{Symbol: "AAPL", EPSNextFY: 5.5, RevenueNextFY: 1100}

	deltas := calc.Compute(series, today, asOf)

	assert.True(t, deltas.HasStoredHistory)
	assert.Nil(t, deltas.EPS7dPct, "zero base yields no delta, not infinity")
}

func TestHistoricalStdDev_Buckets(t *testing.T) {
	// Four snapshots spaced a week apart produce three ~7d gaps and two
	// ~14d/21d gaps (outside both buckets)
	series := snapshot.Normalize([]contracts.EstimateSnapshot{
		snap(day(0), 5.0, 1000),
		snap(day(-7), 4.9, 1000),
		snap(day(-14), 5.1, 1000),
		snap(day(-21), 5.0, 1000),
	})

	std7, std30 := historicalStdDev(series)

	require.NotNil(t, std7)
	assert.Greater(t, *std7, 0.0)
	assert.Nil(t, std30, "no pairs in the 25-35 day bucket")
}

func TestHistoricalStdDev_SampleFloor(t *testing.T) {
	// A single 7d pair is below the two-sample floor
	series := snapshot.Normalize([]contracts.EstimateSnapshot{
		snap(day(0), 5.0, 1000),
		snap(day(-7), 4.9, 1000),
	})

	std7, std30 := historicalStdDev(series)

	assert.Nil(t, std7)
	assert.Nil(t, std30)
}
