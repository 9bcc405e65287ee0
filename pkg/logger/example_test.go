package logger_test

import (
	"errors"

	"github.com/wonny/rerate/pkg/config"
	"github.com/wonny/rerate/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Engine started")
	log.Warn("Positioning source unavailable")

	log.Infof("Scanned %d instruments", 25)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	log.WithField("symbol", "NVDA").Info("Instrument checked")

	log.WithFields(map[string]interface{}{
		"symbol":   "AAPL",
		"category": "EstimateShift",
		"severity": 62,
	}).Info("Signal selected")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("estimate feed timeout")
	log.WithError(err).Error("Failed to fetch estimates")

	log.WithError(err).
		WithFields(map[string]interface{}{
			"retry_count": 3,
			"timeout_ms":  5000,
		}).
		Error("Fetch failed after retries")
}
