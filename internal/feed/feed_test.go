package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/logger"
)

func fp(v float64) *float64 { return &v }

func TestCardBuilder_Build(t *testing.T) {
	builder := NewCardBuilder(logger.Nop())

	t.Run("nil signal yields nil", func(t *testing.T) {
		assert.Nil(t, builder.Build(&contracts.InstrumentState{Symbol: "AAPL"}, nil))
	})

	tests := []struct {
		name      string
		state     contracts.InstrumentState
		signal    contracts.SignalScore
		wantTone  contracts.Tone
		wantTitle string
	}{
		{
			name: "estimate shift up is bullish",
			state: contracts.InstrumentState{
				Symbol: "NVDA",
				Deltas: contracts.RevisionDeltas{EPS7dPct: fp(12.0), HasStoredHistory: true},
			},
			signal:    contracts.SignalScore{Category: contracts.CategoryEstimateShift, Severity: 80},
			wantTone:  contracts.ToneBullish,
			wantTitle: "Estimates Reset Higher",
		},
		{
			name: "estimate shift down is bearish",
			state: contracts.InstrumentState{
				Symbol: "INTC",
				Deltas: contracts.RevisionDeltas{EPS7dPct: fp(-8.0), HasStoredHistory: true},
			},
			signal:    contracts.SignalScore{Category: contracts.CategoryEstimateShift, Severity: 60},
			wantTone:  contracts.ToneBearish,
			wantTitle: "Estimates Reset Lower",
		},
		{
			name: "risk change is always bearish",
			state: contracts.InstrumentState{
				Symbol:   "XYZ",
				Deltas:   contracts.RevisionDeltas{HasStoredHistory: true},
				FlowRisk: contracts.RiskAssessment{Level: contracts.RiskElevated, Note: "3 analyst downgrades in 7d"},
			},
			signal:   contracts.SignalScore{Category: contracts.CategoryRiskChange, Severity: 40},
			wantTone: contracts.ToneBearish,
		},
		{
			name: "positive divergence is bullish",
			state: contracts.InstrumentState{
				Symbol: "AMD",
				Deltas: contracts.RevisionDeltas{EPS7dPct: fp(10.0), HasStoredHistory: true},
				Market: contracts.MarketData{Price7dPct: fp(-4.0)},
			},
			signal:    contracts.SignalScore{Category: contracts.CategoryDivergence, Severity: 84},
			wantTone:  contracts.ToneBullish,
			wantTitle: "Positive Divergence",
		},
		{
			name: "valuation flip is bearish",
			state: contracts.InstrumentState{
				Symbol: "RIVN",
				Deltas: contracts.RevisionDeltas{HasStoredHistory: true},
				Fundamental: contracts.FundamentalData{
					FCFYieldNow:   fp(-1.0),
					FCFYieldPrior: fp(0.5),
				},
			},
			signal:    contracts.SignalScore{Category: contracts.CategoryValuationShift, Severity: 65},
			wantTone:  contracts.ToneBearish,
			wantTitle: "FCF Turned Negative",
		},
		{
			name: "rising short interest is bearish",
			state: contracts.InstrumentState{
				Symbol: "GME",
				Deltas: contracts.RevisionDeltas{HasStoredHistory: true},
				Positioning: contracts.PositioningData{
					ShortInterestDeltaPct: fp(2.5),
				},
			},
			signal:   contracts.SignalScore{Category: contracts.CategoryPositioningShift, Severity: 30},
			wantTone: contracts.ToneBearish,
		},
		{
			name: "volatility event is neutral",
			state: contracts.InstrumentState{
				Symbol: "COIN",
				Deltas: contracts.RevisionDeltas{HasStoredHistory: true},
				Market: contracts.MarketData{Vol30dAnnualized: fp(70.0)},
			},
			signal:   contracts.SignalScore{Category: contracts.CategoryVolatilityEvent, Severity: 70},
			wantTone: contracts.ToneNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := builder.Build(&tt.state, &tt.signal)

			require.NotNil(t, card)
			assert.Equal(t, tt.state.Symbol, card.Symbol)
			assert.Equal(t, tt.signal.Category, card.Category)
			assert.Equal(t, tt.signal.Severity, card.Severity)
			assert.Equal(t, tt.wantTone, card.Tone)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, card.Title)
			}
			assert.NotEmpty(t, card.Summary)
			assert.NotEmpty(t, card.KeyMetric)
		})
	}
}

func TestCardBuilder_ConfidenceCaveat(t *testing.T) {
	builder := NewCardBuilder(logger.Nop())

	t.Run("wide dispersion", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Symbol: "AAPL",
			Deltas: contracts.RevisionDeltas{
				EPS7dPct:         fp(5.0),
				DispersionNow:    fp(45.0),
				HasStoredHistory: true,
			},
		}
		card := builder.Build(state, &contracts.SignalScore{Category: contracts.CategoryEstimateShift, Severity: 40})
		require.NotNil(t, card)
		assert.Contains(t, card.ConfidenceCaveat, "dispersed")
	})

	t.Run("cold start", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Symbol: "AAPL",
			Deltas: contracts.RevisionDeltas{EPS7dPct: fp(5.0)},
		}
		card := builder.Build(state, &contracts.SignalScore{Category: contracts.CategoryEstimateShift, Severity: 40})
		require.NotNil(t, card)
		assert.Contains(t, card.ConfidenceCaveat, "prior estimate period")
	})

	t.Run("clean state has no caveat", func(t *testing.T) {
		state := &contracts.InstrumentState{
			Symbol: "AAPL",
			Deltas: contracts.RevisionDeltas{EPS7dPct: fp(5.0), HasStoredHistory: true},
		}
		card := builder.Build(state, &contracts.SignalScore{
			Category:   contracts.CategoryEstimateShift,
			Severity:   40,
			Confidence: contracts.ConfidenceHigh,
		})
		require.NotNil(t, card)
		assert.Empty(t, card.ConfidenceCaveat)
	})
}

func primaryCard(symbol string, category contracts.SignalCategory, severity int, tone contracts.Tone) *contracts.PrimaryCard {
	return &contracts.PrimaryCard{
		Symbol:    symbol,
		Category:  category,
		Severity:  severity,
		Tone:      tone,
		Title:     "t",
		Summary:   "s",
		KeyMetric: "k",
		CreatedAt: time.Now(),
	}
}

func TestClusterer_Assemble(t *testing.T) {
	clusterer := NewClusterer(logger.Nop(), 5)
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	t.Run("empty is all stable", func(t *testing.T) {
		feed := clusterer.Assemble(date, nil)
		assert.True(t, feed.AllStable)
		assert.Empty(t, feed.Items)
	})

	t.Run("single card stays individual", func(t *testing.T) {
		feed := clusterer.Assemble(date, []*contracts.PrimaryCard{
			primaryCard("AAPL", contracts.CategoryEstimateShift, 60, contracts.ToneBullish),
		})

		require.Len(t, feed.Items, 1)
		assert.NotNil(t, feed.Items[0].Primary)
		assert.Nil(t, feed.Items[0].Themed)
		assert.False(t, feed.AllStable)
	})

	t.Run("two same-category cards cluster", func(t *testing.T) {
		feed := clusterer.Assemble(date, []*contracts.PrimaryCard{
			primaryCard("AAPL", contracts.CategoryEstimateShift, 60, contracts.ToneBullish),
			primaryCard("MSFT", contracts.CategoryEstimateShift, 80, contracts.ToneBearish),
		})

		require.Len(t, feed.Items, 1)
		themed := feed.Items[0].Themed
		require.NotNil(t, themed)
		assert.Equal(t, "Estimate Shock Day", themed.Theme)
		assert.Equal(t, 80, themed.MaxSeverity)
		assert.Equal(t, contracts.ToneBearish, themed.Tone, "tone follows the top member")
		require.Len(t, themed.Items, 2)
		assert.Equal(t, "MSFT", themed.Items[0].Symbol, "members sorted severity descending")
	})

	t.Run("divergence never clusters", func(t *testing.T) {
		feed := clusterer.Assemble(date, []*contracts.PrimaryCard{
			primaryCard("AAPL", contracts.CategoryDivergence, 80, contracts.ToneBullish),
			primaryCard("MSFT", contracts.CategoryDivergence, 75, contracts.ToneBearish),
		})

		require.Len(t, feed.Items, 2)
		assert.NotNil(t, feed.Items[0].Primary)
		assert.NotNil(t, feed.Items[1].Primary)
	})

	t.Run("sorted by severity and truncated", func(t *testing.T) {
		cards := []*contracts.PrimaryCard{
			primaryCard("A", contracts.CategoryDivergence, 72, contracts.ToneBullish),
			primaryCard("B", contracts.CategoryValuationShift, 44, contracts.ToneBearish),
			primaryCard("C", contracts.CategoryPositioningShift, 31, contracts.ToneBearish),
			primaryCard("D", contracts.CategoryVolatilityEvent, 90, contracts.ToneNeutral),
			primaryCard("E", contracts.CategoryRiskChange, 55, contracts.ToneBearish),
			primaryCard("F", contracts.CategoryDivergence, 99, contracts.ToneBearish),
		}

		feed := clusterer.Assemble(date, cards)

		require.Len(t, feed.Items, 5, "feed truncated to the cap")
		severities := make([]int, len(feed.Items))
		for i, item := range feed.Items {
			severities[i] = item.EffectiveSeverity()
		}
		assert.Equal(t, []int{99, 90, 72, 55, 44}, severities)
	})
}
