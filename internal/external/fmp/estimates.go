package fmp

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/redis"
)

// analystEstimate mirrors /v3/analyst-estimates rows
type analystEstimate struct {
	Date                  string  `json:"date"`
	EstimatedEPSAvg       float64 `json:"estimatedEpsAvg"`
	EstimatedEPSHigh      float64 `json:"estimatedEpsHigh"`
	EstimatedEPSLow       float64 `json:"estimatedEpsLow"`
	EstimatedRevenueAvg   float64 `json:"estimatedRevenueAvg"`
	NumberAnalystsEPS     int     `json:"numberAnalystEstimatedEps"`
	NumberAnalystsRevenue int     `json:"numberAnalystsEstimatedRevenue"`
}

// FetchEstimates returns the next-fiscal-year consensus, plus the following
// period's figures as the cold-start fallback base.
func (c *Client) FetchEstimates(ctx context.Context, symbol string) (*contracts.EstimateData, error) {
	var rows []analystEstimate

	params := url.Values{}
	params.Set("period", "annual")
	params.Set("limit", "10")

	key := redis.EstimatesKey(symbol)
	path := fmt.Sprintf("/v3/analyst-estimates/%s", symbol)
	if err := c.cachedJSON(ctx, key, path, params, redis.TTLShort, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no analyst estimates for %s", symbol)
	}

	// Rows arrive in arbitrary order; sort ascending by fiscal date and take
	// the first period ending after today as next-FY
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	today := time.Now().Format("2006-01-02")
	nextIdx := -1
	for i, row := range rows {
		if row.Date > today {
			nextIdx = i
			break
		}
	}
	if nextIdx == -1 {
		return nil, fmt.Errorf("no forward estimate period for %s", symbol)
	}

	next := rows[nextIdx]
	data := &contracts.EstimateData{
		Symbol:        symbol,
		EPSNextFY:     next.EstimatedEPSAvg,
		RevenueNextFY: next.EstimatedRevenueAvg,
	}
	if next.NumberAnalystsEPS > 0 {
		count := next.NumberAnalystsEPS
		data.AnalystCount = &count
	}
	if next.EstimatedEPSHigh != 0 || next.EstimatedEPSLow != 0 {
		high, low := next.EstimatedEPSHigh, next.EstimatedEPSLow
		data.EPSHigh = &high
		data.EPSLow = &low
	}

	// Prior fiscal period backs the cold-start fallback
	if nextIdx > 0 {
		prior := rows[nextIdx-1]
		if prior.EstimatedEPSAvg != 0 {
			eps := prior.EstimatedEPSAvg
			data.PriorPeriodEPS = &eps
		}
		if prior.EstimatedRevenueAvg != 0 {
			rev := prior.EstimatedRevenueAvg
			data.PriorPeriodRevenue = &rev
		}
	}

	return data, nil
}
