package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/internal/feed"
	"github.com/wonny/rerate/internal/market"
	"github.com/wonny/rerate/internal/revision"
	"github.com/wonny/rerate/internal/riskclass"
	"github.com/wonny/rerate/internal/scoring"
	"github.com/wonny/rerate/internal/severity"
	"github.com/wonny/rerate/pkg/config"
	"github.com/wonny/rerate/pkg/logger"
	"github.com/wonny/rerate/pkg/redis"
)

// priceHistoryDays covers the 200-day trend window plus slack for holidays
const priceHistoryDays = 260

// Providers bundles the external data dependencies of the engine
type Providers struct {
	Estimates    contracts.EstimateProvider
	Prices       contracts.PriceProvider
	Fundamentals contracts.FundamentalsProvider
	RiskEvents   contracts.RiskEventProvider
	Positioning  contracts.PositioningProvider
}

// Engine runs the daily re-rating pipeline: fetch, delta, score, detect,
// select, render. One Engine serves the whole watch list.
type Engine struct {
	cfg       *config.Config
	logger    *logger.Logger
	providers Providers

	snapshots contracts.SnapshotStore
	cards     contracts.CardStore

	revisions *revision.Calculator
	scorer    *scoring.Scorer
	detectors *severity.Engine
	builder   *feed.CardBuilder
	clusterer *feed.Clusterer

	cache *redis.Cache

	// Per-symbol locks serialize the snapshot read-compute-write section so
	// concurrent runs of the same instrument cannot interleave upserts
	mu       sync.Mutex
	symLocks map[string]*sync.Mutex
}

// New creates a re-rating engine
func New(cfg *config.Config, log *logger.Logger, providers Providers,
	snapshots contracts.SnapshotStore, cards contracts.CardStore, cache *redis.Cache) *Engine {
	return &Engine{
		cfg:       cfg,
		logger:    log.Named("engine"),
		providers: providers,
		snapshots: snapshots,
		cards:     cards,
		revisions: revision.NewCalculator(log),
		scorer:    scoring.NewScorer(log),
		detectors: severity.NewEngine(log),
		builder:   feed.NewCardBuilder(log),
		clusterer: feed.NewClusterer(log, cfg.Engine.FeedSize),
		cache:     cache,
		symLocks:  make(map[string]*sync.Mutex),
	}
}

// CheckInstrument runs the full pipeline for one symbol. The returned card
// is nil when no signal clears the severity floor (a quiet day).
func (e *Engine) CheckInstrument(ctx context.Context, symbol string) (*contracts.InstrumentState, *contracts.PrimaryCard, error) {
	asOf := time.Now()

	inputs, err := e.fetchInputs(ctx, symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch inputs for %s: %w", symbol, err)
	}

	state := &contracts.InstrumentState{
		Symbol: symbol,
		AsOf:   asOf,
	}

	state.Deltas, err = e.computeDeltas(ctx, symbol, inputs.estimates, asOf)
	if err != nil {
		return nil, nil, err
	}

	state.Market = market.Snapshot(inputs.prices, inputs.benchmark)
	if state.Market.Beta == nil {
		state.Market.Beta = inputs.beta
	}
	if inputs.fundamentals != nil {
		state.Fundamental = *inputs.fundamentals
	}
	if inputs.riskEvents != nil {
		state.Events = *inputs.riskEvents
	}
	if inputs.positioning != nil {
		state.Positioning = *inputs.positioning
	} else {
		state.Positioning = contracts.PositioningData{
			ShortDataUnavailable:     true,
			OwnershipDataUnavailable: true,
		}
	}

	state.StructuralRisk = riskclass.ClassifyStructural(state.Fundamental.NetDebt, state.Fundamental.EBITDA)
	state.FlowRisk = riskclass.ClassifyFlow(inputs.riskEvents)

	e.scorer.Score(state)

	candidates := e.detectors.Evaluate(state)
	selected := severity.Select(candidates)
	card := e.builder.Build(state, selected)

	if card == nil {
		e.logger.WithField("symbol", symbol).Debug("Instrument quiet today")
	}

	return state, card, nil
}

// BuildFeed runs the pipeline over the configured watch list, clusters the
// resulting cards, persists them, and caches the assembled feed. Failures are
// isolated per symbol: one bad instrument never sinks the run.
func (e *Engine) BuildFeed(ctx context.Context) (contracts.Feed, error) {
	watchlist := e.cfg.Engine.Watchlist
	if len(watchlist) == 0 {
		return contracts.Feed{}, fmt.Errorf("watchlist is empty")
	}

	start := time.Now()
	e.logger.WithFields(map[string]interface{}{
		"instruments": len(watchlist),
		"workers":     e.cfg.Engine.Workers,
	}).Info("Building daily feed")

	results := make([]*contracts.PrimaryCard, len(watchlist))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Engine.Workers)
	for i, symbol := range watchlist {
		i, symbol := i, symbol
		g.Go(func() error {
			_, card, err := e.CheckInstrument(gctx, symbol)
			if err != nil {
				e.logger.WithError(err).WithField("symbol", symbol).Warn("Instrument check failed, skipping")
				return nil
			}
			results[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return contracts.Feed{}, err
	}

	var cards []*contracts.PrimaryCard
	for _, card := range results {
		if card != nil {
			cards = append(cards, card)
		}
	}

	today := time.Now()
	assembled := e.clusterer.Assemble(today, cards)

	e.persistCards(ctx, cards)
	e.cacheFeed(ctx, today, assembled)

	e.logger.WithFields(map[string]interface{}{
		"cards":      len(cards),
		"feed_items": len(assembled.Items),
		"all_stable": assembled.AllStable,
		"elapsed":    time.Since(start).String(),
	}).Info("Daily feed assembled")

	return assembled, nil
}

// CachedFeed returns today's feed from cache, if present
func (e *Engine) CachedFeed(ctx context.Context, date time.Time) (*contracts.Feed, bool) {
	if e.cache == nil {
		return nil, false
	}
	var f contracts.Feed
	found, err := e.cache.Get(ctx, redis.FeedKey(date.Format("2006-01-02")), &f)
	if err != nil || !found {
		return nil, false
	}
	return &f, true
}

// RecentCards returns the persisted card history for one symbol
func (e *Engine) RecentCards(ctx context.Context, symbol string, limit int) ([]*contracts.PrimaryCard, error) {
	if e.cards == nil {
		return nil, fmt.Errorf("card store not configured")
	}
	return e.cards.RecentCards(ctx, symbol, limit)
}

// instrumentInputs holds the fan-out fetch results for one symbol
type instrumentInputs struct {
	estimates    *contracts.EstimateData
	prices       []contracts.PricePoint
	benchmark    []contracts.PricePoint
	fundamentals *contracts.FundamentalData
	beta         *float64
	riskEvents   *contracts.RiskEvents
	positioning  *contracts.PositioningData
}

// fetchInputs fans out the provider calls. Estimates and prices are
// mandatory; the rest degrade to nil and score neutral downstream.
func (e *Engine) fetchInputs(ctx context.Context, symbol string) (*instrumentInputs, error) {
	inputs := &instrumentInputs{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := e.providers.Estimates.FetchEstimates(gctx, symbol)
		if err != nil {
			return fmt.Errorf("estimates: %w", err)
		}
		inputs.estimates = data
		return nil
	})
	g.Go(func() error {
		prices, err := e.providers.Prices.FetchPrices(gctx, symbol, priceHistoryDays)
		if err != nil {
			return fmt.Errorf("prices: %w", err)
		}
		inputs.prices = prices
		return nil
	})
	g.Go(func() error {
		bench, err := e.providers.Prices.FetchPrices(gctx, e.cfg.Engine.Benchmark, priceHistoryDays)
		if err != nil {
			e.logger.WithError(err).Warn("Benchmark prices unavailable")
			return nil
		}
		inputs.benchmark = bench
		return nil
	})
	g.Go(func() error {
		fund, err := e.providers.Fundamentals.FetchFundamentals(gctx, symbol)
		if err != nil {
			e.logger.WithError(err).WithField("symbol", symbol).Warn("Fundamentals unavailable")
			return nil
		}
		inputs.fundamentals = fund

		beta, err := e.providers.Fundamentals.FetchBeta(gctx, symbol)
		if err == nil {
			inputs.beta = beta
		}
		return nil
	})
	g.Go(func() error {
		events, err := e.providers.RiskEvents.FetchRiskEvents(gctx, symbol)
		if err != nil {
			e.logger.WithError(err).WithField("symbol", symbol).Warn("Risk events unavailable")
			return nil
		}
		inputs.riskEvents = events
		return nil
	})
	g.Go(func() error {
		pos, err := e.providers.Positioning.FetchPositioning(gctx, symbol)
		if err != nil {
			e.logger.WithError(err).WithField("symbol", symbol).Warn("Positioning unavailable")
			return nil
		}
		inputs.positioning = pos
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// computeDeltas serializes the load-compute-upsert cycle per symbol
func (e *Engine) computeDeltas(ctx context.Context, symbol string, estimates *contracts.EstimateData, asOf time.Time) (contracts.RevisionDeltas, error) {
	lock := e.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	series, err := e.snapshots.LoadSeries(ctx, symbol)
	if err != nil {
		return contracts.RevisionDeltas{}, fmt.Errorf("load snapshots for %s: %w", symbol, err)
	}

	deltas := e.revisions.Compute(series, estimates, asOf)

	snap := contracts.EstimateSnapshot{
		Symbol:        symbol,
		Date:          asOf,
		EPSNextFY:     estimates.EPSNextFY,
		RevenueNextFY: estimates.RevenueNextFY,
		AnalystCount:  estimates.AnalystCount,
		EPSHigh:       estimates.EPSHigh,
		EPSLow:        estimates.EPSLow,
	}
	if err := e.snapshots.UpsertToday(ctx, snap); err != nil {
		return contracts.RevisionDeltas{}, fmt.Errorf("upsert snapshot for %s: %w", symbol, err)
	}

	return deltas, nil
}

func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.symLocks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		e.symLocks[symbol] = lock
	}
	return lock
}

func (e *Engine) persistCards(ctx context.Context, cards []*contracts.PrimaryCard) {
	if e.cards == nil {
		return
	}
	for _, card := range cards {
		if err := e.cards.SaveCard(ctx, card); err != nil {
			e.logger.WithError(err).WithField("symbol", card.Symbol).Warn("Card persist failed")
		}
	}
}

func (e *Engine) cacheFeed(ctx context.Context, date time.Time, f contracts.Feed) {
	if e.cache == nil {
		return
	}
	key := redis.FeedKey(date.Format("2006-01-02"))
	if err := e.cache.Set(ctx, key, f, e.cfg.Engine.CacheTTL); err != nil {
		e.logger.WithError(err).Warn("Feed cache write failed")
	}
}
