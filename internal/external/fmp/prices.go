package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/pkg/redis"
)

// historicalPriceResponse mirrors /v3/historical-price-full
type historicalPriceResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string  `json:"date"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"historical"`
}

// FetchPrices returns up to `days` daily closes, newest-first
func (c *Client) FetchPrices(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error) {
	var resp historicalPriceResponse

	params := url.Values{}
	params.Set("timeseries", fmt.Sprintf("%d", days))

	key := redis.PricesKey(symbol)
	path := fmt.Sprintf("/v3/historical-price-full/%s", symbol)
	if err := c.cachedJSON(ctx, key, path, params, redis.TTLShort, &resp); err != nil {
		return nil, err
	}
	if len(resp.Historical) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	// FMP returns newest-first already; parse and keep that order
	points := make([]contracts.PricePoint, 0, len(resp.Historical))
	for _, row := range resp.Historical {
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			c.logger.WithField("date", row.Date).Warn("Skipping unparseable price date")
			continue
		}
		points = append(points, contracts.PricePoint{
			Date:   date,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no parseable price rows for %s", symbol)
	}

	return points, nil
}
