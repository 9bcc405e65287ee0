package contracts

// SignalCategory identifies one of the seven signal detectors
type SignalCategory string

const (
	CategoryEstimateShift   SignalCategory = "estimate_shift"
	CategoryForcedRepricing SignalCategory = "forced_repricing"
	CategoryDivergence      SignalCategory = "divergence"
	CategoryRiskChange      SignalCategory = "risk_change"
	CategoryValuationShift  SignalCategory = "valuation_shift"
	CategoryPositioningShift SignalCategory = "positioning_shift"
	CategoryVolatilityEvent SignalCategory = "volatility_event"
)

// SignalScore is one detector's candidate for an instrument.
// Multiple may exist per instrument; at most one survives selection.
type SignalScore struct {
	Category   SignalCategory    `json:"category"`
	Severity   int               `json:"severity"` // 0-100 after clamping
	Confidence ConfidenceLevel   `json:"confidence"`
	Evidence   map[string]string `json:"evidence,omitempty"`
}

// MinSeverity is the floor below which candidates are discarded after
// all detectors have run.
const MinSeverity = 25

// ClampSeverity bounds a raw severity into [0, 100]
func ClampSeverity(severity int) int {
	if severity < 0 {
		return 0
	}
	if severity > 100 {
		return 100
	}
	return severity
}
