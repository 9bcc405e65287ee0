package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rerate/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()

	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}
	client, err := New(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")

	// With Redis disabled every request passes
	allowed, remaining, err := limiter.Allow(context.Background(), FMPRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, FMPRateLimit.Limit, remaining)
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	// Disabled cache is a no-op: sets succeed, gets always miss
	require.NoError(t, cache.Set(ctx, "key", "value", TTLShort))

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "EstimatesKey",
			fn:       func() string { return EstimatesKey("NVDA") },
			expected: "estimates:NVDA",
		},
		{
			name:     "PricesKey",
			fn:       func() string { return PricesKey("AAPL") },
			expected: "prices:AAPL",
		},
		{
			name:     "ProfileKey",
			fn:       func() string { return ProfileKey("MSFT") },
			expected: "profile:MSFT",
		},
		{
			name:     "FeedKey",
			fn:       func() string { return FeedKey("2026-08-31") },
			expected: "feed:2026-08-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn())
		})
	}
}
