package scoring

import (
	"github.com/wonny/rerate/internal/contracts"
)

// scoreRiskChange computes the 0-15 risk-change pillar. Only the fast 7-day
// flow score moves it; structural leverage changes too slowly to belong in a
// daily score and is deliberately excluded.
func scoreRiskChange(flow contracts.RiskAssessment) float64 {
	return clampPillar(RiskChangeNeutral+float64(flow.Score), RiskChangeMax)
}
