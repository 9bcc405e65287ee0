package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/redis"
)

type companyProfile struct {
	Symbol       string  `json:"symbol"`
	MarketCap    float64 `json:"mktCap"`
	Sector       string  `json:"sector"`
	Beta         float64 `json:"beta"`
	LastDividend float64 `json:"lastDiv"`
}

type keyMetricsRow struct {
	Date                   string  `json:"date"`
	NetDebt                float64 `json:"netDebt"`
	EnterpriseValue        float64 `json:"enterpriseValue"`
	FreeCashFlowYield      float64 `json:"freeCashFlowYield"`
	EVToEBITDA             float64 `json:"enterpriseValueOverEBITDA"`
	MarketCap              float64 `json:"marketCap"`
	FreeCashFlowPerShare   float64 `json:"freeCashFlowPerShare"`
	OperatingCashFlowRatio float64 `json:"operatingCashFlowSalesRatio"`
}

type earningsRow struct {
	Date   string  `json:"date"`
	Symbol string  `json:"symbol"`
	EPS    float64 `json:"eps"`
}

// FetchFundamentals assembles profile, leverage, and FCF-yield data from the
// profile and quarterly key-metrics endpoints.
func (c *Client) FetchFundamentals(ctx context.Context, symbol string) (*contracts.FundamentalData, error) {
	var profiles []companyProfile
	key := redis.ProfileKey(symbol)
	if err := c.cachedJSON(ctx, key, fmt.Sprintf("/v3/profile/%s", symbol), nil, redis.TTLMedium, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile for %s", symbol)
	}
	profile := profiles[0]

	data := &contracts.FundamentalData{
		MarketCap: profile.MarketCap,
		Sector:    profile.Sector,
	}

	// Key metrics: latest quarter now, the one before as the prior reading
	var metrics []keyMetricsRow
	params := url.Values{}
	params.Set("period", "quarter")
	params.Set("limit", "2")
	metricsKey := fmt.Sprintf("metrics:%s", symbol)
	if err := c.cachedJSON(ctx, metricsKey, fmt.Sprintf("/v3/key-metrics/%s", symbol), params, redis.TTLMedium, &metrics); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Key metrics unavailable")
	} else if len(metrics) > 0 {
		latest := metrics[0]
		netDebt := latest.NetDebt
		data.NetDebt = &netDebt

		if latest.EVToEBITDA != 0 && latest.EnterpriseValue != 0 {
			ebitda := latest.EnterpriseValue / latest.EVToEBITDA
			data.EBITDA = &ebitda
		}

		yieldNow := latest.FreeCashFlowYield * 100
		data.FCFYieldNow = &yieldNow

		if len(metrics) > 1 {
			yieldPrior := metrics[1].FreeCashFlowYield * 100
			data.FCFYieldPrior = &yieldPrior
		}
	}

	// Most recent reported earnings date for the recap window
	var earnings []earningsRow
	eParams := url.Values{}
	eParams.Set("limit", "4")
	earningsKey := fmt.Sprintf("earnings:%s", symbol)
	if err := c.cachedJSON(ctx, earningsKey, fmt.Sprintf("/v3/historical/earning_calendar/%s", symbol), eParams, redis.TTLMedium, &earnings); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Earnings calendar unavailable")
	} else {
		today := time.Now()
		for _, row := range earnings {
			date, err := time.Parse("2006-01-02", row.Date)
			if err != nil || date.After(today) {
				continue
			}
			if data.LastEarningsDate == nil || date.After(*data.LastEarningsDate) {
				d := date
				data.LastEarningsDate = &d
			}
		}
	}

	return data, nil
}

// FetchBeta returns the profile beta as a fallback when the regression beta
// cannot be computed from price history
func (c *Client) FetchBeta(ctx context.Context, symbol string) (*float64, error) {
	var profiles []companyProfile
	key := redis.ProfileKey(symbol)
	if err := c.cachedJSON(ctx, key, fmt.Sprintf("/v3/profile/%s", symbol), nil, redis.TTLMedium, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 || profiles[0].Beta == 0 {
		return nil, nil
	}
	beta := profiles[0].Beta
	return &beta, nil
}
