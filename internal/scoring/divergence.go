package scoring

import (
	"fmt"

	"github.com/wonny/rerate/internal/contracts"
)

// scoreDivergence compares the 7d price return to the revision direction.
// The branch order is load-bearing: positive divergence wins over the
// risk-divergence branches, which win over erosion watch.
func scoreDivergence(deltas contracts.RevisionDeltas, mkt contracts.MarketData) (float64, *contracts.DivergenceInsight) {
	if mkt.Price7dPct == nil {
		return DivergenceNeutral, &contracts.DivergenceInsight{
			Type:  InsightNoData,
			Emoji: "⚖️",
			Lines: []string{"Price history unavailable, divergence not evaluated"},
		}
	}

	price := *mkt.Price7dPct
	revUp, revDown := revisionDirection(deltas.EPS7dPct)
	rev := 0.0
	if deltas.EPS7dPct != nil {
		rev = *deltas.EPS7dPct
	}

	switch {
	case revUp && price < divergencePriceDropPct:
		return scorePositiveDivergence, &contracts.DivergenceInsight{
			Type:  InsightPositiveDivergence,
			Emoji: "🔀",
			Lines: []string{
				fmt.Sprintf("Estimates up %.1f%% while price fell %.1f%%", rev, price),
				"Fundamentals improving into price weakness",
			},
		}

	case revDown && price > divergencePriceRallyPct:
		return scoreRiskDivergenceHard, &contracts.DivergenceInsight{
			Type:  InsightRiskDivergenceHard,
			Emoji: "⚠️",
			Lines: []string{
				fmt.Sprintf("Estimates cut %.1f%% while price rallied %.1f%%", rev, price),
				"Price is ignoring deteriorating fundamentals",
			},
		}

	case revDown && price > 0:
		return scoreRiskDivergenceSoft, &contracts.DivergenceInsight{
			Type:  InsightRiskDivergenceSoft,
			Emoji: "⚠️",
			Lines: []string{
				fmt.Sprintf("Estimates cut %.1f%% with price still positive", rev),
			},
		}

	case !revUp && !revDown && price < divergencePriceDropPct:
		return scoreErosionWatch, &contracts.DivergenceInsight{
			Type:  InsightErosionWatch,
			Emoji: "👀",
			Lines: []string{
				fmt.Sprintf("Price fell %.1f%% without an estimate change", price),
				"Watching for estimates to follow price",
			},
		}

	default:
		return scoreAligned, &contracts.DivergenceInsight{
			Type:  InsightAligned,
			Emoji: "⚖️",
			Lines: []string{"Price and estimates moving together"},
		}
	}
}

// revisionDirection applies the sign deadband to the 7d revision
func revisionDirection(eps7d *float64) (up, down bool) {
	if eps7d == nil {
		return false, false
	}
	if *eps7d > directionDeadband {
		return true, false
	}
	if *eps7d < -directionDeadband {
		return false, true
	}
	return false, false
}
