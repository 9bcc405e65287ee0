package severity

import (
	"github.com/wonny/rerate/internal/contracts"
)

// Select picks the dominant signal: the single highest-severity candidate at
// or above the minimum-severity floor. Candidates arrive in evaluation order,
// and a strict comparison keeps the earlier candidate on ties, so tie-break
// follows EvaluationOrder. Returns nil when nothing qualifies (the
// instrument is silent for the day).
func Select(candidates []contracts.SignalScore) *contracts.SignalScore {
	var best *contracts.SignalScore

	for i := range candidates {
		c := &candidates[i]
		if c.Severity < contracts.MinSeverity {
			continue
		}
		if best == nil || c.Severity > best.Severity {
			best = c
		}
	}

	return best
}
