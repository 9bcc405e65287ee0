package snapshot

import (
	"sort"
	"time"

	"github.com/wonny/rerate/internal/contracts"
)

// RetentionDays bounds the stored history per instrument
const RetentionDays = 365

// Normalize sorts a series newest-first and deduplicates by calendar date,
// keeping the first (newest) entry for each date.
func Normalize(series []contracts.EstimateSnapshot) []contracts.EstimateSnapshot {
	sorted := make([]contracts.EstimateSnapshot, len(series))
	copy(sorted, series)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	seen := make(map[string]bool, len(sorted))
	out := sorted[:0]
	for _, s := range sorted {
		key := s.Date.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}

	return out
}

// AtOrBefore returns the most recent snapshot not after the target date,
// scanning a newest-first series. Returns nil when none qualifies.
func AtOrBefore(series []contracts.EstimateSnapshot, target time.Time) *contracts.EstimateSnapshot {
	for i := range series {
		if !series[i].Date.After(target) {
			return &series[i]
		}
	}
	return nil
}

// Trim drops entries older than the retention window relative to asOf,
// oldest-first. Input and output are newest-first.
func Trim(series []contracts.EstimateSnapshot, asOf time.Time) []contracts.EstimateSnapshot {
	cutoff := asOf.AddDate(0, 0, -RetentionDays)
	out := series[:0]
	for _, s := range series {
		if s.Date.Before(cutoff) {
			continue
		}
		out = append(out, s)
	}
	return out
}
