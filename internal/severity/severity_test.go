package severity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/logger"
)

func fp(v float64) *float64 { return &v }

func TestDetectEstimateShift(t *testing.T) {
	t.Run("no revision is silent", func(t *testing.T) {
		assert.Nil(t, detectEstimateShift(&contracts.InstrumentState{}))
	})

	t.Run("surprise formula", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{
				EPS7dPct:         fp(12.0),
				EPS30dPct:        fp(8.0),
				StdDev7d:         fp(3.0),
				HasStoredHistory: true,
			},
		}
		got := detectEstimateShift(state)

		require.NotNil(t, got)
		// weighted = 12*2 + 8*0.5 = 28; denom = max(2, 3) = 3
		// severity = min(100, 28/3*25) = 100
		assert.Equal(t, 100, got.Severity)
		assert.Equal(t, contracts.ConfidenceHigh, got.Confidence)
	})

	t.Run("std dev floor", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{
				EPS7dPct:         fp(1.0),
				HasStoredHistory: true,
			},
		}
		got := detectEstimateShift(state)

		require.NotNil(t, got)
		// weighted = 2; denom floors at 2; severity = 1*25 = 25
		assert.Equal(t, 25, got.Severity)
		assert.Equal(t, contracts.ConfidenceMedium, got.Confidence)
	})

	t.Run("extreme and narrowing bonuses", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{
				EPS7dPct:         fp(22.0),
				DispersionNow:    fp(15.0),
				DispersionPrior:  fp(25.0),
				HasStoredHistory: true,
			},
		}
		got := detectEstimateShift(state)

		require.NotNil(t, got)
		// base min(100, 44/2*25) = 100, +15 extreme, +10 narrowing = 125
		assert.Equal(t, 125, got.Severity)
	})

	t.Run("mega cap dampening", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas:      contracts.RevisionDeltas{EPS7dPct: fp(1.0), HasStoredHistory: true},
			Fundamental: contracts.FundamentalData{MarketCap: 600e9},
		}
		got := detectEstimateShift(state)

		require.NotNil(t, got)
		assert.Equal(t, 18, got.Severity) // round(25 * 0.7)
	})

	t.Run("cold start lowers confidence", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{EPS7dPct: fp(5.0)},
		}
		got := detectEstimateShift(state)

		require.NotNil(t, got)
		assert.Equal(t, contracts.ConfidenceLow, got.Confidence)
	})
}

func TestDetectForcedRepricing(t *testing.T) {
	t.Run("in-budget aligned move is silent", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{EPS30dPct: fp(3.0)},
			Market: contracts.MarketData{
				Price30dPct:      fp(4.0),
				Vol30dAnnualized: fp(40.0), // budget = 2*40*0.2867 = 22.9
			},
		}
		assert.Nil(t, detectForcedRepricing(state))
	})

	t.Run("vol budget breach", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Market: contracts.MarketData{
				Price30dPct:      fp(-20.0),
				Vol30dAnnualized: fp(30.0), // budget = 2*30*0.2867 = 17.2
			},
		}
		got := detectForcedRepricing(state)

		require.NotNil(t, got)
		// flat gate also fires (eps30 missing, |move| > 8): round(20*2)+15
		assert.Equal(t, 55, got.Severity)
	})

	t.Run("move without revisions", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Market: contracts.MarketData{Price30dPct: fp(10.0)},
		}
		got := detectForcedRepricing(state)

		require.NotNil(t, got)
		assert.Equal(t, 20, got.Severity) // round(10*2), no bonuses
	})

	t.Run("contradiction with weak relative strength", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{EPS30dPct: fp(4.0)},
			Market: contracts.MarketData{
				Price30dPct:        fp(-7.0),
				RelativeStrength7d: fp(-6.0),
			},
		}
		got := detectForcedRepricing(state)

		require.NotNil(t, got)
		assert.Equal(t, 24, got.Severity) // round(7*2) + 10 weak RS
		assert.Equal(t, contracts.ConfidenceMedium, got.Confidence)
	})
}

func TestDetectDivergence(t *testing.T) {
	t.Run("aligned move is silent", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{EPS7dPct: fp(3.0)},
			Market: contracts.MarketData{Price7dPct: fp(2.0)},
		}
		assert.Nil(t, detectDivergence(state))
	})

	t.Run("bullish conflict", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{EPS7dPct: fp(12.0), HasStoredHistory: true},
			Market: contracts.MarketData{Price7dPct: fp(-3.0)},
		}
		got := detectDivergence(state)

		require.NotNil(t, got)
		assert.Equal(t, 85, got.Severity) // 70 + round(12+3)
		assert.Equal(t, contracts.ConfidenceHigh, got.Confidence)
		assert.Equal(t, "positive", got.Evidence["direction"])
	})

	t.Run("magnitude cap", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Deltas: contracts.RevisionDeltas{EPS7dPct: fp(-40.0), HasStoredHistory: true},
			Market: contracts.MarketData{Price7dPct: fp(10.0)},
		}
		got := detectDivergence(state)

		require.NotNil(t, got)
		assert.Equal(t, 100, got.Severity) // 70 + capped 30
		assert.Equal(t, "negative", got.Evidence["direction"])
	})
}

func TestDetectRiskChange(t *testing.T) {
	t.Run("quiet state is silent", func(t *testing.T) {
		assert.Nil(t, detectRiskChange(&contracts.InstrumentState{}))
	})

	t.Run("single downgrade stays below the floor", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Events: contracts.RiskEvents{Downgrades7d: 1},
		}
		// One downgrade alone does not open the gate
		assert.Nil(t, detectRiskChange(state))
	})

	t.Run("downgrade cluster", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Events: contracts.RiskEvents{Downgrades7d: 3},
		}
		got := detectRiskChange(state)

		require.NotNil(t, got)
		assert.Equal(t, 40, got.Severity)
		assert.Equal(t, contracts.ConfidenceMedium, got.Confidence)
	})

	t.Run("leverage breach plus insider spike", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Fundamental: contracts.FundamentalData{
				NetDebt: fp(400),
				EBITDA:  fp(100),
			},
			Events: contracts.RiskEvents{
				InsiderSellValue7d:  3_000_000,
				InsiderWeeklyAvg12M: 1_000_000,
			},
		}
		got := detectRiskChange(state)

		require.NotNil(t, got)
		assert.Equal(t, 90, got.Severity) // 60 + 30
		assert.Equal(t, contracts.ConfidenceHigh, got.Confidence)
	})

	t.Run("earnings window revision risk", func(t *testing.T) {
		state := &contracts.InstrumentState{
			EarningsContext: true,
			Deltas:          contracts.RevisionDeltas{EPS30dPct: fp(-2.0)},
		}
		got := detectRiskChange(state)

		require.NotNil(t, got)
		assert.Equal(t, 35, got.Severity)
	})
}

func TestDetectValuationShift(t *testing.T) {
	t.Run("no yield data is silent", func(t *testing.T) {
		assert.Nil(t, detectValuationShift(&contracts.InstrumentState{}))
	})

	t.Run("yield move", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Fundamental: contracts.FundamentalData{
				FCFYieldNow:   fp(6.0),
				FCFYieldPrior: fp(4.0),
			},
		}
		got := detectValuationShift(state)

		require.NotNil(t, got)
		assert.Equal(t, 40, got.Severity) // round(2*20)
		assert.Equal(t, contracts.ConfidenceMedium, got.Confidence)
	})

	t.Run("negative flip", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Fundamental: contracts.FundamentalData{
				FCFYieldNow:   fp(-1.0),
				FCFYieldPrior: fp(1.0),
			},
		}
		got := detectValuationShift(state)

		require.NotNil(t, got)
		assert.Equal(t, 75, got.Severity) // round(2*20) + 35
		assert.Equal(t, contracts.ConfidenceHigh, got.Confidence)
	})
}

func TestDetectPositioningShift(t *testing.T) {
	t.Run("both sources unavailable is silent", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Positioning: contracts.PositioningData{
				ShortDataUnavailable:     true,
				OwnershipDataUnavailable: true,
			},
		}
		assert.Nil(t, detectPositioningShift(state))
	})

	t.Run("delta weighting", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Positioning: contracts.PositioningData{
				ShortInterestDeltaPct: fp(2.0),
				InstOwnershipDeltaPct: fp(-1.5),
			},
		}
		got := detectPositioningShift(state)

		require.NotNil(t, got)
		assert.Equal(t, 36, got.Severity) // round(2*12 + 1.5*8)
		assert.Equal(t, contracts.ConfidenceMedium, got.Confidence)
	})

	t.Run("one source missing lowers confidence", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Positioning: contracts.PositioningData{
				ShortInterestDeltaPct: fp(3.0),
				ShortDataUnavailable:  false,

				OwnershipDataUnavailable: true,
			},
		}
		got := detectPositioningShift(state)

		require.NotNil(t, got)
		assert.Equal(t, contracts.ConfidenceLow, got.Confidence)
	})
}

func TestDetectVolatilityEvent(t *testing.T) {
	t.Run("calm regime is silent", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Market: contracts.MarketData{Vol30dAnnualized: fp(30.0), Beta: fp(2.0)},
		}
		assert.Nil(t, detectVolatilityEvent(state))
	})

	t.Run("high vol needs beta or a big move", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Market: contracts.MarketData{Vol30dAnnualized: fp(55.0), Beta: fp(1.0), Price30dPct: fp(5.0)},
		}
		assert.Nil(t, detectVolatilityEvent(state))
	})

	t.Run("tiered severity", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Market: contracts.MarketData{
				Vol30dAnnualized: fp(65.0),
				Beta:             fp(1.8),
				Price30dPct:      fp(-35.0),
			},
		}
		got := detectVolatilityEvent(state)

		require.NotNil(t, got)
		assert.Equal(t, 90, got.Severity) // 50 + 20 + 20
		assert.Equal(t, contracts.ConfidenceHigh, got.Confidence)
	})
}

func TestEngine_EvaluateClampsAndOrders(t *testing.T) {
	eng := NewEngine(logger.Nop())

	state := &contracts.InstrumentState{
		Symbol: "NVDA",
		Deltas: contracts.RevisionDeltas{
			EPS7dPct:         fp(22.0),
			DispersionNow:    fp(15.0),
			DispersionPrior:  fp(25.0),
			HasStoredHistory: true,
		},
		Market: contracts.MarketData{Price7dPct: fp(-3.0)},
	}

	candidates := eng.Evaluate(state)

	require.Len(t, candidates, 2)
	assert.Equal(t, contracts.CategoryEstimateShift, candidates[0].Category)
	assert.Equal(t, 100, candidates[0].Severity, "raw 125 clamped to 100")
	assert.Equal(t, contracts.CategoryDivergence, candidates[1].Category)
}

func TestSelect(t *testing.T) {
	t.Run("empty yields nil", func(t *testing.T) {
		assert.Nil(t, Select(nil))
	})

	t.Run("below floor yields nil", func(t *testing.T) {
		got := Select([]contracts.SignalScore{
			{Category: contracts.CategoryPositioningShift, Severity: 20},
		})
		assert.Nil(t, got)
	})

	t.Run("highest severity wins", func(t *testing.T) {
		got := Select([]contracts.SignalScore{
			{Category: contracts.CategoryEstimateShift, Severity: 60},
			{Category: contracts.CategoryDivergence, Severity: 85},
		})
		require.NotNil(t, got)
		assert.Equal(t, contracts.CategoryDivergence, got.Category)
	})

	t.Run("tie keeps evaluation order", func(t *testing.T) {
		got := Select([]contracts.SignalScore{
			{Category: contracts.CategoryEstimateShift, Severity: 70},
			{Category: contracts.CategoryDivergence, Severity: 70},
		})
		require.NotNil(t, got)
		assert.Equal(t, contracts.CategoryEstimateShift, got.Category)
	})
}
