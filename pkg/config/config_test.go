package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.NotEmpty(t, cfg.Port)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, "SPY", cfg.Engine.Benchmark)
	assert.GreaterOrEqual(t, cfg.Engine.FeedSize, 1)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("ENGINE_WORKERS", "4")
	t.Setenv("FEED_SIZE", "3")
	t.Setenv("WATCHLIST", "nvda, aapl ,MSFT")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 3, cfg.Engine.FeedSize)
	assert.Equal(t, []string{"NVDA", "AAPL", "MSFT"}, cfg.Engine.Watchlist)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("ENV", "sandbox")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("ENGINE_WORKERS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	t.Setenv("TEST_DURATION", "not-a-duration")
	assert.Equal(t, 30*time.Minute, getEnvAsDuration("TEST_DURATION", "30m"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))

	t.Setenv("TEST_INT", "not-a-number")
	assert.Equal(t, 50, getEnvAsInt("TEST_INT", 50))
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", " spy , qqq,")
	assert.Equal(t, []string{"SPY", "QQQ"}, getEnvAsList("TEST_LIST", ""))

	t.Setenv("TEST_LIST", "")
	assert.Nil(t, getEnvAsList("TEST_LIST", ""))
}
