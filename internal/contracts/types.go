package contracts

import "time"

// ThesisStatus is the daily verdict on an instrument's investment thesis
type ThesisStatus string

const (
	ThesisImproving     ThesisStatus = "improving"
	ThesisStable        ThesisStatus = "stable"
	ThesisDeteriorating ThesisStatus = "deteriorating"
)

// ConfidenceLevel expresses conviction in a thesis or signal
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Downgrade returns the confidence one notch lower
func (c ConfidenceLevel) Downgrade() ConfidenceLevel {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	case ConfidenceMedium:
		return ConfidenceLow
	default:
		return ConfidenceLow
	}
}

// Tone is the user-facing direction of a card
type Tone string

const (
	ToneBullish Tone = "bullish"
	ToneBearish Tone = "bearish"
	ToneNeutral Tone = "neutral"
)

// RiskLevel classifies structural and flow risk
type RiskLevel string

const (
	RiskLow        RiskLevel = "low"
	RiskIncreasing RiskLevel = "increasing"
	RiskElevated   RiskLevel = "elevated"
	RiskHigh       RiskLevel = "high"
)

// EstimateSnapshot is one persisted consensus-estimate observation.
// At most one exists per (symbol, date); writing the same day overwrites.
type EstimateSnapshot struct {
	Symbol        string    `json:"symbol"`
	Date          time.Time `json:"date"`
	EPSNextFY     float64   `json:"eps_next_fy"`
	RevenueNextFY float64   `json:"revenue_next_fy"`
	AnalystCount  *int      `json:"analyst_count,omitempty"`
	EPSHigh       *float64  `json:"eps_high,omitempty"`
	EPSLow        *float64  `json:"eps_low,omitempty"`
}

// RevisionDeltas is derived from the snapshot series on every run; never persisted.
type RevisionDeltas struct {
	EPS7dPct      *float64 `json:"eps_7d_pct"`
	EPS30dPct     *float64 `json:"eps_30d_pct"`
	Revenue30dPct *float64 `json:"revenue_30d_pct"`

	// HasStoredHistory is true only when a snapshot at or before 7 days ago
	// existed. False means the prior-period fallback was used.
	HasStoredHistory bool `json:"has_stored_history"`

	// PriorBaseEPS is the base value the 7d delta was computed against
	// (stored snapshot or prior-period fallback)
	PriorBaseEPS *float64 `json:"prior_base_eps,omitempty"`

	// Analyst dispersion (high-low spread as % of consensus)
	DispersionNow   *float64 `json:"dispersion_now,omitempty"`
	DispersionPrior *float64 `json:"dispersion_prior,omitempty"`

	// Historical standard deviation of this instrument's own revisions
	StdDev7d  *float64 `json:"std_dev_7d,omitempty"`
	StdDev30d *float64 `json:"std_dev_30d,omitempty"`
}

// PillarScores holds the four bounded daily sub-scores
type PillarScores struct {
	Revisions  float64 `json:"revisions"`  // 0-40, neutral 20
	Divergence float64 `json:"divergence"` // 0-20, neutral 12
	Valuation  float64 `json:"valuation"`  // 0-25, neutral 10
	RiskChange float64 `json:"risk_change"` // 0-15, neutral 8
}

// Total sums the four pillars
func (p PillarScores) Total() float64 {
	return p.Revisions + p.Divergence + p.Valuation + p.RiskChange
}

// DivergenceInsight is the human-readable explanation of the divergence pillar
type DivergenceInsight struct {
	Type  string   `json:"type"`
	Emoji string   `json:"emoji"`
	Lines []string `json:"lines"`
}

// RiskAssessment is the output of one risk classifier
type RiskAssessment struct {
	Level RiskLevel `json:"level"`
	Score int       `json:"score"` // 0 or negative offsets
	Note  string    `json:"note"`
}

// StateFlags is the battery of qualifying booleans computed with each state
type StateFlags struct {
	RevisionMagnitude    bool `json:"revision_magnitude"`     // |eps7d| > 10%
	MajorRecalibration   bool `json:"major_recalibration"`    // |eps7d| > 20%
	UnusualSpike         bool `json:"unusual_spike"`          // magnitude flag on a mega cap
	ReliabilityWarning   bool `json:"reliability_warning"`    // near-zero base with a large swing
	UncertaintyElevated  bool `json:"uncertainty_elevated"`   // |price30d| > 30%
	VolatilityExceedsBeta bool `json:"volatility_exceeds_beta"` // large move on a low-beta name
}

// MarketData is the price-derived input slice of an instrument state
type MarketData struct {
	Price7dPct        *float64 `json:"price_7d_pct"`
	Price30dPct       *float64 `json:"price_30d_pct"`
	Trend50Over200    *bool    `json:"trend_50_over_200,omitempty"`
	Vol30dAnnualized  *float64 `json:"vol_30d_annualized,omitempty"`
	Beta              *float64 `json:"beta,omitempty"`
	RelativeStrength7d *float64 `json:"relative_strength_7d,omitempty"`
}

// FundamentalData is the fundamentals-derived input slice of an instrument state
type FundamentalData struct {
	MarketCap        float64    `json:"market_cap"`
	Sector           string     `json:"sector,omitempty"`
	NetDebt          *float64   `json:"net_debt,omitempty"`
	EBITDA           *float64   `json:"ebitda,omitempty"`
	FCFYieldNow      *float64   `json:"fcf_yield_now,omitempty"`
	FCFYieldPrior    *float64   `json:"fcf_yield_prior,omitempty"` // ~1 quarter back
	LastEarningsDate *time.Time `json:"last_earnings_date,omitempty"`
}

// RiskEvents is the 7-day event window feeding the flow classifier
type RiskEvents struct {
	Downgrades7d        int     `json:"downgrades_7d"`
	Upgrades7d          int     `json:"upgrades_7d"`
	InsiderSellValue7d  float64 `json:"insider_sell_value_7d"`
	InsiderWeeklyAvg12M float64 `json:"insider_weekly_avg_12m"`
}

// PositioningData carries short-interest / ownership deltas with explicit
// availability flags so the detector can distinguish zero from unknown.
type PositioningData struct {
	ShortInterestDeltaPct    *float64 `json:"short_interest_delta_pct,omitempty"`
	InstOwnershipDeltaPct    *float64 `json:"inst_ownership_delta_pct,omitempty"`
	ShortDataUnavailable     bool     `json:"short_data_unavailable"`
	OwnershipDataUnavailable bool     `json:"ownership_data_unavailable"`
}

// InstrumentState is the full ephemeral computation result for one instrument
// at one point in time. Recomputed per request; never persisted.
type InstrumentState struct {
	Symbol string    `json:"symbol"`
	AsOf   time.Time `json:"as_of"`

	Deltas      RevisionDeltas  `json:"deltas"`
	Market      MarketData      `json:"market"`
	Fundamental FundamentalData `json:"fundamental"`
	Events      RiskEvents      `json:"events"`
	Positioning PositioningData `json:"positioning"`

	Pillars     PillarScores       `json:"pillars"`
	PillarTotal float64            `json:"pillar_total"`
	Pulse       int                `json:"pulse"` // -10..+10
	Thesis      ThesisStatus       `json:"thesis"`
	Confidence  ConfidenceLevel    `json:"confidence"`
	Insight     *DivergenceInsight `json:"insight,omitempty"`

	StructuralRisk RiskAssessment `json:"structural_risk"`
	FlowRisk       RiskAssessment `json:"flow_risk"`

	Flags StateFlags `json:"flags"`

	// EarningsContext is true when the last report is recent enough (or a
	// trigger fired within 30 days of it) for a recap reference on cards.
	EarningsContext bool `json:"earnings_context"`
}
