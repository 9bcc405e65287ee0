package commands

import (
	"fmt"

	"github.com/wonny/rerate/internal/audit"
	"github.com/wonny/rerate/internal/engine"
	"github.com/wonny/rerate/internal/external/finviz"
	"github.com/wonny/rerate/internal/external/fmp"
	"github.com/wonny/rerate/internal/feed"
	"github.com/wonny/rerate/internal/snapshot"
	"github.com/wonny/rerate/pkg/config"
	"github.com/wonny/rerate/pkg/database"
	"github.com/wonny/rerate/pkg/logger"
	"github.com/wonny/rerate/pkg/redis"
)

// runtime bundles the wired application for command entry points
type runtime struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *database.DB
	redis  *redis.Client
	engine *engine.Engine
	cards  *feed.Repository
	runs   *audit.Repository
}

// buildRuntime loads config and wires the engine with its providers and stores
func buildRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
		redisClient = redis.Disabled()
	}

	fmpClient := fmp.NewClient(cfg, log, redisClient)
	finvizScraper := finviz.NewScraper(cfg, log, redisClient)

	snapshots := snapshot.NewRepository(db.Pool)
	cards := feed.NewRepository(db.Pool)
	runs := audit.NewRepository(db.Pool)
	cache := redis.NewCache(redisClient, "rerate")

	eng := engine.New(cfg, log, engine.Providers{
		Estimates:    fmpClient,
		Prices:       fmpClient,
		Fundamentals: fmpClient,
		RiskEvents:   fmpClient,
		Positioning:  finvizScraper,
	}, snapshots, cards, cache)

	return &runtime{
		cfg:    cfg,
		logger: log,
		db:     db,
		redis:  redisClient,
		engine: eng,
		cards:  cards,
		runs:   runs,
	}, nil
}

// close releases the runtime's connections
func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.redis != nil {
		rt.redis.Close()
	}
}
