package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/rerate/pkg/config"
	"github.com/wonny/rerate/pkg/httputil"
	"github.com/wonny/rerate/pkg/logger"
	"github.com/wonny/rerate/pkg/redis"
)

// Client talks to the Financial Modeling Prep REST API. It implements the
// estimate, price, fundamentals, and risk-event provider interfaces.
// SSOT: all FMP endpoint URLs are built here and nowhere else
type Client struct {
	http    *httputil.Client
	cache   *redis.Cache
	logger  *logger.Logger
	limiter *rate.Limiter

	baseURL string
	apiKey  string
}

// NewClient creates an FMP client. The in-process limiter smooths bursts;
// the redis limiter on the HTTP client enforces the cross-process quota.
func NewClient(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) *Client {
	httpClient := httputil.NewWithTimeout(log.Named("fmp"), 20*time.Second)
	if redisClient != nil && redisClient.Enabled() {
		httpClient = httpClient.WithRateLimiter(redis.NewRateLimiter(redisClient, "rerate"), redis.FMPRateLimit)
	}

	perSecond := rate.Limit(float64(cfg.FMP.RateLimit) / 60.0)

	return &Client{
		http:    httpClient,
		cache:   redis.NewCache(redisClient, "fmp"),
		logger:  log.Named("fmp"),
		limiter: rate.NewLimiter(perSecond, 5),
		baseURL: cfg.FMP.BaseURL,
		apiKey:  cfg.FMP.APIKey,
	}
}

// getJSON fetches an endpoint with rate limiting and API key injection
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("fmp rate limit: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	if err := c.http.GetJSON(ctx, endpoint, dest); err != nil {
		return fmt.Errorf("fmp %s: %w", path, err)
	}
	return nil
}

// cachedJSON reads a payload from cache, or fetches and caches it
func (c *Client) cachedJSON(ctx context.Context, cacheKey, path string, params url.Values, ttl time.Duration, dest interface{}) error {
	found, err := c.cache.Get(ctx, cacheKey, dest)
	if err != nil {
		c.logger.WithError(err).WithField("key", cacheKey).Warn("Cache read failed")
	}
	if found {
		return nil
	}

	if err := c.getJSON(ctx, path, params, dest); err != nil {
		return err
	}

	if err := c.cache.Set(ctx, cacheKey, dest, ttl); err != nil {
		c.logger.WithError(err).WithField("key", cacheKey).Warn("Cache write failed")
	}
	return nil
}
