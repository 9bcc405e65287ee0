package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/redis"
)

const (
	eventWindowDays      = 7
	insiderLookbackWeeks = 52
)

type gradeRow struct {
	Symbol        string `json:"symbol"`
	PublishedDate string `json:"publishedDate"`
	NewGrade      string `json:"newGrade"`
	PreviousGrade string `json:"previousGrade"`
	GradingAction string `json:"action"`
}

type insiderTradeRow struct {
	Symbol          string  `json:"symbol"`
	TransactionDate string  `json:"transactionDate"`
	TransactionType string  `json:"transactionType"`
	SecuritiesSold  float64 `json:"securitiesTransacted"`
	Price           float64 `json:"price"`
}

// FetchRiskEvents counts analyst grade changes in the trailing 7 days and
// sums insider sells against the trailing 12-month weekly average.
func (c *Client) FetchRiskEvents(ctx context.Context, symbol string) (*contracts.RiskEvents, error) {
	events := &contracts.RiskEvents{}
	now := time.Now()
	windowStart := now.AddDate(0, 0, -eventWindowDays)

	var grades []gradeRow
	gParams := url.Values{}
	gParams.Set("limit", "50")
	gradesKey := fmt.Sprintf("grades:%s", symbol)
	if err := c.cachedJSON(ctx, gradesKey, fmt.Sprintf("/v3/grade/%s", symbol), gParams, redis.TTLShort, &grades); err != nil {
		return nil, err
	}

	for _, row := range grades {
		date, err := time.Parse("2006-01-02 15:04:05", row.PublishedDate)
		if err != nil {
			if date, err = time.Parse("2006-01-02", row.PublishedDate); err != nil {
				continue
			}
		}
		if date.Before(windowStart) {
			continue
		}
		switch strings.ToLower(row.GradingAction) {
		case "downgrade":
			events.Downgrades7d++
		case "upgrade":
			events.Upgrades7d++
		}
	}

	var trades []insiderTradeRow
	iParams := url.Values{}
	iParams.Set("symbol", symbol)
	iParams.Set("limit", "500")
	insiderKey := fmt.Sprintf("insider:%s", symbol)
	if err := c.cachedJSON(ctx, insiderKey, "/v4/insider-trading", iParams, redis.TTLShort, &trades); err != nil {
		// Insider data is a paid-tier endpoint on some plans; degrade quietly
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Insider trades unavailable")
		return events, nil
	}

	lookbackStart := now.AddDate(0, 0, -insiderLookbackWeeks*7)
	var totalSellValue float64
	for _, row := range trades {
		if !isSale(row.TransactionType) {
			continue
		}
		date, err := time.Parse("2006-01-02", row.TransactionDate)
		if err != nil || date.Before(lookbackStart) {
			continue
		}
		value := row.SecuritiesSold * row.Price
		totalSellValue += value
		if !date.Before(windowStart) {
			events.InsiderSellValue7d += value
		}
	}
	events.InsiderWeeklyAvg12M = totalSellValue / insiderLookbackWeeks

	return events, nil
}

func isSale(transactionType string) bool {
	t := strings.ToUpper(transactionType)
	return strings.HasPrefix(t, "S") // S-Sale variants
}
