package scoring

// Pillar bounds and neutral baselines. The neutral sum (50) is the fixed
// comparison point for the daily pulse.
const (
	RevisionsMax     = 40.0
	RevisionsNeutral = 20.0

	DivergenceMax     = 20.0
	DivergenceNeutral = 12.0

	ValuationMax     = 25.0
	ValuationNeutral = 10.0

	RiskChangeMax     = 15.0
	RiskChangeNeutral = 8.0

	NeutralTotal = RevisionsNeutral + DivergenceNeutral + ValuationNeutral + RiskChangeNeutral // 50

	PulseDivisor = 5.0
	PulseMin     = -10
	PulseMax     = 10

	// Thesis cutoffs on pulse
	ThesisImprovingMin     = 5
	ThesisDeterioratingMax = -5
)

// Revisions pillar sub-score parameters
const (
	eps7dSubMax      = 15.0
	eps7dSubNeutral  = 7.5
	eps7dDeadband    = 0.5 // % revision treated as flat
	eps7dFineLimit   = 2.0 // fine slope applies between deadband and here
	eps7dFineSlope   = 1.875
	eps7dCoarseSlope = 2.0 // scaled 2x beyond +-2%

	eps30dSubMax      = 10.0
	eps30dSubNeutral  = 5.0
	eps30dDeadband    = 0.5
	eps30dFineLimit   = 3.0
	eps30dFineSlope   = 1.0
	eps30dCoarseSlope = 1.25

	revenueSubMax     = 5.0
	revenueSubNeutral = 2.5
	revenueDeadband   = 0.5
	revenueSlope      = 0.75

	directionalUp     = 10.0
	directionalFlat   = 5.0
	directionalDown   = 0.0
	directionDeadband = 0.5 // % deadband on revision sign
)

// Divergence pillar parameters
const (
	divergencePriceDropPct  = -2.0 // price weakness cutoff
	divergencePriceRallyPct = 3.0  // strong rally against falling revisions
	scorePositiveDivergence = 20.0
	scoreRiskDivergenceHard = 0.0
	scoreRiskDivergenceSoft = 5.0
	scoreErosionWatch       = 13.0
	scoreAligned            = 10.0
)

// Valuation pillar parameters
const (
	valuationYieldSlope   = 5.0  // points per percentage point of FCF-yield change
	valuationNegYieldCap  = 6.0  // ceiling while current yield <= 0
	valuationRevisionGate = -0.5 // eps30d below this blocks upside credit
)

// Confidence / flag thresholds
const (
	volatilityAlertMovePct = 20.0 // 30d move that downgrades confidence
	revisionMagnitudePct   = 10.0
	majorRecalibrationPct  = 20.0
	unusualSpikeMarketCap  = 200e9
	reliabilityBaseEPS     = 0.10
	reliabilitySwingPct    = 50.0
	uncertaintyMovePct     = 30.0
	lowBetaCeiling         = 1.0

	// Earnings recap relevance
	recapRecentDays    = 7
	recapTriggerDays   = 30
	recapTriggerRevPct = 5.0
	recapTriggerPxPct  = 5.0
)

// Divergence insight types, order-sensitive
const (
	InsightPositiveDivergence = "positive_divergence"
	InsightRiskDivergenceHard = "risk_divergence_strong"
	InsightRiskDivergenceSoft = "risk_divergence"
	InsightErosionWatch       = "erosion_watch"
	InsightAligned            = "aligned"
	InsightNoData             = "no_data"
)

func clampPillar(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
