package riskclass

import (
	"fmt"
	"strings"

	"github.com/wonny/rerate/internal/contracts"
)

// Flow risk: fast-moving, derived from the trailing 7-day event window.
// This is the only risk input the daily risk-change pillar reacts to.

const (
	downgradeSingleScore  = -1
	downgradeClusterScore = -2
	downgradeWaveScore    = -3

	downgradeClusterMin = 2
	downgradeWaveMin    = 4

	insiderSpikeRatio   = 2.0
	insiderSurgeRatio   = 4.0
	insiderSpikeScore   = -1
	insiderSurgeScore   = -2

	// Extra penalty when >= 2 medium-severity flow components co-occur
	clusterEscalationScore = -1
	mediumComponentScore   = -2

	flowElevatedCutoff   = -4
	flowIncreasingCutoff = -1
)

// ClassifyFlow scores the 7-day event window and maps it to a level
func ClassifyFlow(events *contracts.RiskEvents) contracts.RiskAssessment {
	if events == nil {
		return contracts.RiskAssessment{
			Level: contracts.RiskLow,
			Score: 0,
			Note:  "No Recent Flow Events",
		}
	}

	var notes []string

	downgradeScore := scoreDowngrades(events.Downgrades7d)
	if downgradeScore != 0 {
		notes = append(notes, fmt.Sprintf("%d analyst downgrades in 7d", events.Downgrades7d))
	}

	insiderScore := scoreInsiderSelling(events.InsiderSellValue7d, events.InsiderWeeklyAvg12M)
	if insiderScore != 0 {
		notes = append(notes, "insider selling above trailing average")
	}

	total := downgradeScore + insiderScore

	// Cluster escalation: multiple medium-severity components in one window
	mediumCount := 0
	if downgradeScore <= mediumComponentScore {
		mediumCount++
	}
	if insiderScore <= mediumComponentScore {
		mediumCount++
	}
	if mediumCount >= 2 {
		total += clusterEscalationScore
		notes = append(notes, "multiple concurrent flow warnings")
	}

	note := "No Recent Flow Events"
	if len(notes) > 0 {
		note = strings.Join(notes, "; ")
	}

	return contracts.RiskAssessment{
		Level: flowLevel(total),
		Score: total,
		Note:  note,
	}
}

func scoreDowngrades(count int) int {
	switch {
	case count >= downgradeWaveMin:
		return downgradeWaveScore
	case count >= downgradeClusterMin:
		return downgradeClusterScore
	case count == 1:
		return downgradeSingleScore
	default:
		return 0
	}
}

func scoreInsiderSelling(sellValue7d, weeklyAvg12M float64) int {
	if weeklyAvg12M <= 0 || sellValue7d <= 0 {
		return 0
	}

	ratio := sellValue7d / weeklyAvg12M
	switch {
	case ratio >= insiderSurgeRatio:
		return insiderSurgeScore
	case ratio >= insiderSpikeRatio:
		return insiderSpikeScore
	default:
		return 0
	}
}

func flowLevel(score int) contracts.RiskLevel {
	switch {
	case score <= flowElevatedCutoff:
		return contracts.RiskElevated
	case score <= flowIncreasingCutoff:
		return contracts.RiskIncreasing
	default:
		return contracts.RiskLow
	}
}

// InsiderRatio exposes the spike ratio for detectors; 0 when undefined
func InsiderRatio(events *contracts.RiskEvents) float64 {
	if events == nil || events.InsiderWeeklyAvg12M <= 0 {
		return 0
	}
	return events.InsiderSellValue7d / events.InsiderWeeklyAvg12M
}
