package feed

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/internal/scoring"
	"github.com/wonny/rerate/pkg/logger"
)

// Dispersion above this is considered wide enough for a caveat
const wideDispersionPct = 30.0

// CardBuilder renders a selected signal into a category-specific card
// SSOT: card rendering happens here and nowhere else
type CardBuilder struct {
	logger *logger.Logger
}

// NewCardBuilder creates a new card builder
func NewCardBuilder(log *logger.Logger) *CardBuilder {
	return &CardBuilder{logger: log}
}

// Build renders the dominant signal for an instrument. Returns nil when the
// signal is nil (silent instrument).
func (b *CardBuilder) Build(state *contracts.InstrumentState, signal *contracts.SignalScore) *contracts.PrimaryCard {
	if signal == nil {
		return nil
	}

	card := &contracts.PrimaryCard{
		Symbol:          state.Symbol,
		Category:        signal.Category,
		Severity:        signal.Severity,
		EarningsContext: state.EarningsContext,
		CreatedAt:       time.Now(),
	}

	switch signal.Category {
	case contracts.CategoryEstimateShift:
		b.renderEstimateShift(card, state)
	case contracts.CategoryForcedRepricing:
		b.renderForcedRepricing(card, state)
	case contracts.CategoryDivergence:
		b.renderDivergence(card, state)
	case contracts.CategoryRiskChange:
		b.renderRiskChange(card, state)
	case contracts.CategoryValuationShift:
		b.renderValuationShift(card, state)
	case contracts.CategoryPositioningShift:
		b.renderPositioningShift(card, state)
	case contracts.CategoryVolatilityEvent:
		b.renderVolatilityEvent(card, state)
	}

	card.ConfidenceCaveat = confidenceCaveat(state, signal)

	return card
}

// renderEstimateShift: tone from the sign of the dominant revision window
func (b *CardBuilder) renderEstimateShift(card *contracts.PrimaryCard, state *contracts.InstrumentState) {
	window, pct := dominantRevision(state.Deltas)

	switch {
	case pct > 0:
		card.Tone = contracts.ToneBullish
		card.Title = "Estimates Reset Higher"
	case pct < 0:
		card.Tone = contracts.ToneBearish
		card.Title = "Estimates Reset Lower"
	default:
		card.Tone = contracts.ToneNeutral
		card.Title = "Estimate Shift"
	}

	card.KeyMetric = fmt.Sprintf("EPS est %s %+.1f%%", window, pct)
	card.Summary = fmt.Sprintf("Consensus next-FY EPS moved %+.1f%% over the last %s window.", pct, window)
}

func (b *CardBuilder) renderForcedRepricing(card *contracts.PrimaryCard, state *contracts.InstrumentState) {
	price := floatOrZero(state.Market.Price30dPct)
	if price >= 0 {
		card.Tone = contracts.ToneBullish
	} else {
		card.Tone = contracts.ToneBearish
	}

	card.Title = "Price Repricing Underway"
	card.KeyMetric = fmt.Sprintf("Price 30d %+.1f%%", price)
	card.Summary = fmt.Sprintf("Shares moved %+.1f%% in 30 days, beyond what estimates or volatility explain.", price)
}

func (b *CardBuilder) renderDivergence(card *contracts.PrimaryCard, state *contracts.InstrumentState) {
	rev := floatOrZero(state.Deltas.EPS7dPct)
	price := floatOrZero(state.Market.Price7dPct)

	if rev > 0 {
		card.Tone = contracts.ToneBullish
		card.Title = "Positive Divergence"
		card.Summary = fmt.Sprintf("Estimates up %+.1f%% while price fell %+.1f%%; fundamentals lead price.", rev, price)
	} else {
		card.Tone = contracts.ToneBearish
		card.Title = "Risk Divergence"
		card.Summary = fmt.Sprintf("Estimates cut %+.1f%% while price held %+.1f%%; price may catch down.", rev, price)
	}

	card.KeyMetric = fmt.Sprintf("Est %+.1f%% vs px %+.1f%%", rev, price)
}

func (b *CardBuilder) renderRiskChange(card *contracts.PrimaryCard, state *contracts.InstrumentState) {
	// Risk cards are bearish by construction
	card.Tone = contracts.ToneBearish
	card.Title = "Risk Profile Worsening"
	card.KeyMetric = state.FlowRisk.Note
	if state.StructuralRisk.Score <= -4 {
		card.KeyMetric = state.StructuralRisk.Note
	}
	card.Summary = fmt.Sprintf("Risk flags accumulating: %s (flow %s, structural %s).",
		card.KeyMetric, state.FlowRisk.Level, state.StructuralRisk.Level)
}

func (b *CardBuilder) renderValuationShift(card *contracts.PrimaryCard, state *contracts.InstrumentState) {
	delta := scoring.FCFYieldDelta(state.Fundamental)
	flip := scoring.NegativeFCFFlip(state.Fundamental)
	deltaVal := floatOrZero(delta)

	switch {
	case flip:
		card.Tone = contracts.ToneBearish
		card.Title = "FCF Turned Negative"
	case deltaVal > 0:
		card.Tone = contracts.ToneBullish
		card.Title = "Valuation Compressing"
	default:
		card.Tone = contracts.ToneBearish
		card.Title = "Valuation Stretching"
	}

	card.KeyMetric = fmt.Sprintf("FCF yield %+.1fpp", deltaVal)
	card.Summary = fmt.Sprintf("Free-cash-flow yield shifted %+.1f points versus last quarter.", deltaVal)
}

func (b *CardBuilder) renderPositioningShift(card *contracts.PrimaryCard, state *contracts.InstrumentState) {
	short := floatOrZero(state.Positioning.ShortInterestDeltaPct)
	own := floatOrZero(state.Positioning.InstOwnershipDeltaPct)

	switch {
	case short > 0:
		card.Tone = contracts.ToneBearish
	case short < 0 || own > 0:
		card.Tone = contracts.ToneBullish
	default:
		card.Tone = contracts.ToneNeutral
	}

	card.Title = "Positioning Shift"
	card.KeyMetric = fmt.Sprintf("Short int %+.1fpp, inst own %+.1fpp", short, own)
	card.Summary = "Short interest or institutional ownership moved notably this period."
}

func (b *CardBuilder) renderVolatilityEvent(card *contracts.PrimaryCard, state *contracts.InstrumentState) {
	vol := floatOrZero(state.Market.Vol30dAnnualized)

	card.Tone = contracts.ToneNeutral
	card.Title = "Volatility Regime Shift"
	card.KeyMetric = fmt.Sprintf("30d vol %.0f%%", vol)
	card.Summary = fmt.Sprintf("Realized volatility at %.0f%% annualized; expect wide daily swings.", vol)
}

// confidenceCaveat attaches a caveat on wide dispersion, low conviction, or
// cold-start fallback deltas
func confidenceCaveat(state *contracts.InstrumentState, signal *contracts.SignalScore) string {
	if state.Deltas.DispersionNow != nil && *state.Deltas.DispersionNow > wideDispersionPct {
		return "Analyst estimates are widely dispersed; treat the consensus with caution."
	}
	if signal.Confidence == contracts.ConfidenceLow {
		return "Low conviction: supporting data is thin for this signal."
	}
	if !state.Deltas.HasStoredHistory {
		return "Revision history is shallow; deltas approximated from the prior estimate period."
	}
	return ""
}

// dominantRevision picks the larger-magnitude of the 7d/30d windows
func dominantRevision(deltas contracts.RevisionDeltas) (window string, pct float64) {
	eps7d := floatOrZero(deltas.EPS7dPct)
	eps30d := floatOrZero(deltas.EPS30dPct)

	if math.Abs(eps7d) >= math.Abs(eps30d) {
		return "7d", eps7d
	}
	return "30d", eps30d
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
