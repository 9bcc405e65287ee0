package scoring

import (
	"math"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/logger"
)

// Scorer computes the four pillars, the daily pulse, thesis state,
// confidence, and qualifying flags for one instrument state.
// SSOT: pillar scoring happens here and nowhere else.
type Scorer struct {
	logger *logger.Logger
}

// NewScorer creates a new pillar scorer
func NewScorer(log *logger.Logger) *Scorer {
	return &Scorer{logger: log}
}

// Score fills the computed fields of a state whose raw inputs (deltas,
// market, fundamental, risk assessments) are already populated.
func (s *Scorer) Score(state *contracts.InstrumentState) {
	divScore, insight := scoreDivergence(state.Deltas, state.Market)

	state.Pillars = contracts.PillarScores{
		Revisions:  scoreRevisions(state.Deltas),
		Divergence: divScore,
		Valuation:  scoreValuation(state.Deltas, state.Fundamental),
		RiskChange: scoreRiskChange(state.FlowRisk),
	}
	state.Insight = insight
	state.PillarTotal = state.Pillars.Total()

	state.Pulse = computePulse(state.PillarTotal)
	state.Thesis = thesisFromPulse(state.Pulse)
	state.Confidence = s.deriveConfidence(state)
	state.Flags = computeFlags(state)
	state.EarningsContext = recapRelevant(state)

	s.logger.WithFields(map[string]interface{}{
		"symbol": state.Symbol,
		"pulse":  state.Pulse,
		"thesis": state.Thesis,
		"total":  state.PillarTotal,
	}).Debug("Scored instrument")
}

// computePulse compresses the pillar total into the -10..+10 pulse
func computePulse(total float64) int {
	pulse := int(math.Round((total - NeutralTotal) / PulseDivisor))
	if pulse < PulseMin {
		return PulseMin
	}
	if pulse > PulseMax {
		return PulseMax
	}
	return pulse
}

func thesisFromPulse(pulse int) contracts.ThesisStatus {
	switch {
	case pulse >= ThesisImprovingMin:
		return contracts.ThesisImproving
	case pulse <= ThesisDeterioratingMax:
		return contracts.ThesisDeteriorating
	default:
		return contracts.ThesisStable
	}
}

// deriveConfidence combines thesis direction with the 50/200-day trend and
// leverage, then applies the volatility-alert downgrade.
func (s *Scorer) deriveConfidence(state *contracts.InstrumentState) contracts.ConfidenceLevel {
	trendUp := state.Market.Trend50Over200
	leverageHigh := state.StructuralRisk.Score <= -4

	var conf contracts.ConfidenceLevel
	switch state.Thesis {
	case contracts.ThesisImproving:
		switch {
		case trendUp != nil && *trendUp && !leverageHigh:
			conf = contracts.ConfidenceHigh
		case trendUp != nil && !*trendUp && leverageHigh:
			conf = contracts.ConfidenceLow
		default:
			conf = contracts.ConfidenceMedium
		}
	case contracts.ThesisDeteriorating:
		// A downtrend or stretched balance sheet corroborates deterioration
		if (trendUp != nil && !*trendUp) || leverageHigh {
			conf = contracts.ConfidenceHigh
		} else {
			conf = contracts.ConfidenceMedium
		}
	default:
		conf = contracts.ConfidenceMedium
	}

	// Volatility alert: a >20% 30d move makes any read less trustworthy
	if state.Market.Price30dPct != nil && math.Abs(*state.Market.Price30dPct) > volatilityAlertMovePct {
		conf = conf.Downgrade()
	}

	return conf
}

// computeFlags evaluates the battery of qualifying booleans
func computeFlags(state *contracts.InstrumentState) contracts.StateFlags {
	flags := contracts.StateFlags{}

	eps7d := 0.0
	if state.Deltas.EPS7dPct != nil {
		eps7d = math.Abs(*state.Deltas.EPS7dPct)
	}

	flags.RevisionMagnitude = eps7d > revisionMagnitudePct
	flags.MajorRecalibration = eps7d > majorRecalibrationPct
	flags.UnusualSpike = flags.RevisionMagnitude && state.Fundamental.MarketCap >= unusualSpikeMarketCap

	if state.Deltas.PriorBaseEPS != nil &&
		math.Abs(*state.Deltas.PriorBaseEPS) < reliabilityBaseEPS &&
		eps7d > reliabilitySwingPct {
		// Percentage swings off a near-zero base are arithmetic artifacts
		flags.ReliabilityWarning = true
	}

	if state.Market.Price30dPct != nil {
		move := math.Abs(*state.Market.Price30dPct)
		flags.UncertaintyElevated = move > uncertaintyMovePct
		if move > volatilityAlertMovePct && state.Market.Beta != nil && *state.Market.Beta < lowBetaCeiling {
			flags.VolatilityExceedsBeta = true
		}
	}

	return flags
}

// recapRelevant decides whether an earnings recap reference belongs on cards:
// within 7 days of the last report, or within 30 days with a revision or
// price-move trigger.
func recapRelevant(state *contracts.InstrumentState) bool {
	last := state.Fundamental.LastEarningsDate
	if last == nil {
		return false
	}

	days := int(state.AsOf.Sub(*last).Hours() / 24)
	if days < 0 {
		return false
	}
	if days <= recapRecentDays {
		return true
	}
	if days > recapTriggerDays {
		return false
	}

	if state.Deltas.EPS7dPct != nil && math.Abs(*state.Deltas.EPS7dPct) > recapTriggerRevPct {
		return true
	}
	if state.Market.Price7dPct != nil && math.Abs(*state.Market.Price7dPct) > recapTriggerPxPct {
		return true
	}
	return false
}
