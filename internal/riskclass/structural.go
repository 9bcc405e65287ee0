package riskclass

import (
	"github.com/wonny/rerate/internal/contracts"
)

// Structural risk: slow-moving, balance-sheet derived. Net-debt/EBITDA tiers
// with fixed score offsets. Excluded from the daily risk-change pillar.

const (
	leverageComfortableMax = 2.0
	leverageElevatedMax    = 3.0
	leverageHighMax        = 5.0
	leverageSevereMax      = 7.0

	scoreComfortable = 0
	scoreElevated    = -2
	scoreHigh        = -4
	scoreSevere      = -6
	scoreExtreme     = -8
	scoreNegEBITDA   = -6
)

// Structural notes
const (
	NoteNetCash        = "Net Cash Position"
	NoteNegativeEBITDA = "Negative EBITDA Risk"
	NoteInsufficient   = "Leverage Data Unavailable"
)

// ClassifyStructural maps leverage to a level and score offset.
//
// A negative ratio is ambiguous: net cash (negative net debt, healthy) and
// negative EBITDA (unhealthy) share the sign, so the split is on EBITDA
// itself, not on the ratio.
func ClassifyStructural(netDebt, ebitda *float64) contracts.RiskAssessment {
	if netDebt == nil || ebitda == nil {
		return contracts.RiskAssessment{
			Level: contracts.RiskLow,
			Score: 0,
			Note:  NoteInsufficient,
		}
	}

	if *ebitda <= 0 {
		return contracts.RiskAssessment{
			Level: contracts.RiskHigh,
			Score: scoreNegEBITDA,
			Note:  NoteNegativeEBITDA,
		}
	}

	ratio := *netDebt / *ebitda

	if ratio < 0 {
		return contracts.RiskAssessment{
			Level: contracts.RiskLow,
			Score: scoreComfortable,
			Note:  NoteNetCash,
		}
	}

	switch {
	case ratio < leverageComfortableMax:
		return contracts.RiskAssessment{Level: contracts.RiskLow, Score: scoreComfortable, Note: "Leverage Comfortable"}
	case ratio < leverageElevatedMax:
		return contracts.RiskAssessment{Level: contracts.RiskElevated, Score: scoreElevated, Note: "Leverage Elevated (2-3x)"}
	case ratio < leverageHighMax:
		return contracts.RiskAssessment{Level: contracts.RiskHigh, Score: scoreHigh, Note: "Leverage High (3-5x)"}
	case ratio < leverageSevereMax:
		return contracts.RiskAssessment{Level: contracts.RiskHigh, Score: scoreSevere, Note: "Leverage Severe (5-7x)"}
	default:
		return contracts.RiskAssessment{Level: contracts.RiskHigh, Score: scoreExtreme, Note: "Leverage Extreme (>7x)"}
	}
}

// LeverageRatio returns net-debt/EBITDA when both inputs are present and
// EBITDA is non-zero
func LeverageRatio(netDebt, ebitda *float64) *float64 {
	if netDebt == nil || ebitda == nil || *ebitda == 0 {
		return nil
	}
	ratio := *netDebt / *ebitda
	return &ratio
}
