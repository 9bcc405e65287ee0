package severity

import (
	"fmt"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/internal/riskclass"
)

// Risk Change: additive severity from independent risk contributors.
const (
	riskLeverageBreach   = 3.0
	riskLeverageWeight   = 60
	riskClusterMin       = 2
	riskClusterWeight    = 40
	riskSingleDowngrade  = 20
	riskInsiderRatio     = 2.0
	riskInsiderWeight    = 30
	riskEarningsWeight   = 35
	riskNegativeRevision = -0.5
)

// detectRiskChange fires when any of the four contributors is active:
// a leverage breach, a downgrade cluster, an insider-selling spike, or
// negative revisions inside the earnings window.
func detectRiskChange(state *contracts.InstrumentState) *contracts.SignalScore {
	ratio := riskclass.LeverageRatio(state.Fundamental.NetDebt, state.Fundamental.EBITDA)
	leverageBreach := ratio != nil && state.Fundamental.EBITDA != nil &&
		*state.Fundamental.EBITDA > 0 && *ratio > riskLeverageBreach

	downgrades := state.Events.Downgrades7d
	downgradeCluster := downgrades >= riskClusterMin

	insiderSpike := riskclass.InsiderRatio(&state.Events) >= riskInsiderRatio

	earningsRisk := state.EarningsContext &&
		state.Deltas.EPS30dPct != nil && *state.Deltas.EPS30dPct < riskNegativeRevision

	if !leverageBreach && !downgradeCluster && !insiderSpike && !earningsRisk {
		return nil
	}

	severity := 0
	contributors := 0

	if leverageBreach {
		severity += riskLeverageWeight
		contributors++
	}
	if downgradeCluster {
		severity += riskClusterWeight
		contributors++
	} else if downgrades >= 1 {
		severity += riskSingleDowngrade
	}
	if insiderSpike {
		severity += riskInsiderWeight
		contributors++
	}
	if earningsRisk {
		severity += riskEarningsWeight
		contributors++
	}

	confidence := contracts.ConfidenceMedium
	if contributors >= 2 {
		confidence = contracts.ConfidenceHigh
	}

	evidence := map[string]string{
		"downgrades_7d": fmt.Sprintf("%d", downgrades),
		"insider_spike": fmt.Sprintf("%t", insiderSpike),
	}
	if ratio != nil {
		evidence["net_debt_ebitda"] = fmt.Sprintf("%.2f", *ratio)
	}

	return &contracts.SignalScore{
		Category:   contracts.CategoryRiskChange,
		Severity:   severity,
		Confidence: confidence,
		Evidence:   evidence,
	}
}
