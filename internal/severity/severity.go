package severity

import (
	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/logger"
)

// Detector inspects a computed instrument state and returns a candidate
// signal, or nil when its emission gate does not fire. Detectors are pure.
type Detector func(state *contracts.InstrumentState) *contracts.SignalScore

// EvaluationOrder is the fixed detector order. It is load-bearing: the
// dominant-signal selector resolves severity ties by this order, so it must
// stay an explicit constant rather than incidental call order.
var EvaluationOrder = []contracts.SignalCategory{
	contracts.CategoryEstimateShift,
	contracts.CategoryForcedRepricing,
	contracts.CategoryDivergence,
	contracts.CategoryRiskChange,
	contracts.CategoryValuationShift,
	contracts.CategoryPositioningShift,
	contracts.CategoryVolatilityEvent,
}

// detectors maps each category to its detector
var detectors = map[contracts.SignalCategory]Detector{
	contracts.CategoryEstimateShift:    detectEstimateShift,
	contracts.CategoryForcedRepricing:  detectForcedRepricing,
	contracts.CategoryDivergence:       detectDivergence,
	contracts.CategoryRiskChange:       detectRiskChange,
	contracts.CategoryValuationShift:   detectValuationShift,
	contracts.CategoryPositioningShift: detectPositioningShift,
	contracts.CategoryVolatilityEvent:  detectVolatilityEvent,
}

// Engine runs all seven detectors in evaluation order
// SSOT: signal candidate generation happens here and nowhere else
type Engine struct {
	logger *logger.Logger
}

// NewEngine creates a new severity engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Evaluate returns every candidate signal, in evaluation order, with
// severities clamped to [0, 100]. The minimum-severity floor is applied
// later, at selection.
func (e *Engine) Evaluate(state *contracts.InstrumentState) []contracts.SignalScore {
	var candidates []contracts.SignalScore

	for _, category := range EvaluationOrder {
		detect := detectors[category]
		score := detect(state)
		if score == nil {
			continue
		}

		score.Severity = contracts.ClampSeverity(score.Severity)
		candidates = append(candidates, *score)
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":     state.Symbol,
		"candidates": len(candidates),
	}).Debug("Evaluated signal detectors")

	return candidates
}
