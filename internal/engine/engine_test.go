package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rerate/internal/contracts"
	"github.com/wonny/rerate/internal/snapshot"
	"github.com/wonny/rerate/pkg/config"
	"github.com/wonny/rerate/pkg/logger"
)

func fp(v float64) *float64 { return &v }

// stubProviders serves canned data for every symbol
type stubProviders struct {
	estimates contracts.EstimateData
	prices    []contracts.PricePoint
	fund      *contracts.FundamentalData
}

func (s *stubProviders) FetchEstimates(ctx context.Context, symbol string) (*contracts.EstimateData, error) {
	est := s.estimates
	est.Symbol = symbol
	return &est, nil
}

func (s *stubProviders) FetchPrices(ctx context.Context, symbol string, days int) ([]contracts.PricePoint, error) {
	return s.prices, nil
}

func (s *stubProviders) FetchFundamentals(ctx context.Context, symbol string) (*contracts.FundamentalData, error) {
	if s.fund == nil {
		return &contracts.FundamentalData{}, nil
	}
	fund := *s.fund
	return &fund, nil
}

func (s *stubProviders) FetchBeta(ctx context.Context, symbol string) (*float64, error) {
	return nil, nil
}

func (s *stubProviders) FetchRiskEvents(ctx context.Context, symbol string) (*contracts.RiskEvents, error) {
	return &contracts.RiskEvents{}, nil
}

func (s *stubProviders) FetchPositioning(ctx context.Context, symbol string) (*contracts.PositioningData, error) {
	return &contracts.PositioningData{
		ShortDataUnavailable:     true,
		OwnershipDataUnavailable: true,
	}, nil
}

// memoryCardStore implements contracts.CardStore in process memory
type memoryCardStore struct {
	mu    sync.Mutex
	cards []*contracts.PrimaryCard
}

func (m *memoryCardStore) SaveCard(ctx context.Context, card *contracts.PrimaryCard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards = append(m.cards, card)
	return nil
}

func (m *memoryCardStore) RecentCards(ctx context.Context, symbol string, limit int) ([]*contracts.PrimaryCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*contracts.PrimaryCard
	for i := len(m.cards) - 1; i >= 0 && len(out) < limit; i-- {
		if m.cards[i].Symbol == symbol {
			out = append(out, m.cards[i])
		}
	}
	return out, nil
}

func flatPrices(n int, close float64) []contracts.PricePoint {
	now := time.Now()
	out := make([]contracts.PricePoint, n)
	for i := range out {
		out[i] = contracts.PricePoint{
			Date:  now.AddDate(0, 0, -i),
			Close: close,
		}
	}
	return out
}

func testConfig(watchlist ...string) *config.Config {
	return &config.Config{
		Env: "development",
		Engine: config.EngineConfig{
			Watchlist: watchlist,
			Benchmark: "SPY",
			Workers:   2,
			FeedSize:  5,
			CacheTTL:  time.Minute,
		},
	}
}

func seedHistory(t *testing.T, store *snapshot.MemoryStore, symbol string, eps, revenue float64) {
	t.Helper()

	now := time.Now()
	for _, daysAgo := range []int{31, 8} {
		err := store.UpsertToday(context.Background(), contracts.EstimateSnapshot{
			Symbol:        symbol,
			Date:          now.AddDate(0, 0, -daysAgo),
			EPSNextFY:     eps,
			RevenueNextFY: revenue,
		})
		require.NoError(t, err)
	}
}

func TestCheckInstrument_QuietDay(t *testing.T) {
	providers := &stubProviders{
		estimates: contracts.EstimateData{
			EPSNextFY:      5.0,
			RevenueNextFY:  900.0,
			PriorPeriodEPS: fp(5.0),
		},
		prices: flatPrices(260, 100.0),
	}

	eng := New(testConfig("NVDA"), logger.Nop(), Providers{
		Estimates:    providers,
		Prices:       providers,
		Fundamentals: providers,
		RiskEvents:   providers,
		Positioning:  providers,
	}, snapshot.NewMemoryStore(), &memoryCardStore{}, nil)

	state, card, err := eng.CheckInstrument(context.Background(), "NVDA")
	require.NoError(t, err)

	assert.Equal(t, contracts.ThesisStable, state.Thesis)
	assert.False(t, state.Deltas.HasStoredHistory, "cold start on an empty store")
	assert.Nil(t, card, "no signal clears the floor on a flat day")
}

func TestCheckInstrument_EstimateShock(t *testing.T) {
	providers := &stubProviders{
		estimates: contracts.EstimateData{
			EPSNextFY:     6.0,
			RevenueNextFY: 1080.0,
		},
		prices: flatPrices(260, 100.0),
		fund: &contracts.FundamentalData{
			MarketCap:     100e9,
			FCFYieldNow:   fp(5.0),
			FCFYieldPrior: fp(4.0),
		},
	}

	store := snapshot.NewMemoryStore()
	seedHistory(t, store, "NVDA", 5.0, 900.0)

	eng := New(testConfig("NVDA"), logger.Nop(), Providers{
		Estimates:    providers,
		Prices:       providers,
		Fundamentals: providers,
		RiskEvents:   providers,
		Positioning:  providers,
	}, store, &memoryCardStore{}, nil)

	state, card, err := eng.CheckInstrument(context.Background(), "NVDA")
	require.NoError(t, err)

	require.NotNil(t, state.Deltas.EPS7dPct)
	assert.InDelta(t, 20.0, *state.Deltas.EPS7dPct, 0.001)
	assert.True(t, state.Deltas.HasStoredHistory)
	assert.Equal(t, contracts.ThesisImproving, state.Thesis)

	require.NotNil(t, card)
	assert.Equal(t, contracts.CategoryEstimateShift, card.Category)
	assert.Equal(t, contracts.ToneBullish, card.Tone)
	assert.Equal(t, 100, card.Severity)
}

func TestBuildFeed_ClustersSharedCategory(t *testing.T) {
	providers := &stubProviders{
		estimates: contracts.EstimateData{
			EPSNextFY:     6.0,
			RevenueNextFY: 1080.0,
		},
		prices: flatPrices(260, 100.0),
		fund: &contracts.FundamentalData{
			MarketCap:     100e9,
			FCFYieldNow:   fp(5.0),
			FCFYieldPrior: fp(4.0),
		},
	}

	store := snapshot.NewMemoryStore()
	seedHistory(t, store, "NVDA", 5.0, 900.0)
	seedHistory(t, store, "AAPL", 5.0, 900.0)

	cardStore := &memoryCardStore{}
	eng := New(testConfig("NVDA", "AAPL"), logger.Nop(), Providers{
		Estimates:    providers,
		Prices:       providers,
		Fundamentals: providers,
		RiskEvents:   providers,
		Positioning:  providers,
	}, store, cardStore, nil)

	feed, err := eng.BuildFeed(context.Background())
	require.NoError(t, err)

	assert.False(t, feed.AllStable)
	require.Len(t, feed.Items, 1, "two estimate-shift cards collapse into one theme")
	require.NotNil(t, feed.Items[0].Themed)
	assert.Equal(t, "Estimate Shock Day", feed.Items[0].Themed.Theme)
	assert.Len(t, feed.Items[0].Themed.Items, 2)

	assert.Len(t, cardStore.cards, 2, "both primary cards persisted")

	recent, err := eng.RecentCards(context.Background(), "NVDA", 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestBuildFeed_EmptyWatchlist(t *testing.T) {
	providers := &stubProviders{prices: flatPrices(260, 100.0)}

	eng := New(testConfig(), logger.Nop(), Providers{
		Estimates:    providers,
		Prices:       providers,
		Fundamentals: providers,
		RiskEvents:   providers,
		Positioning:  providers,
	}, snapshot.NewMemoryStore(), &memoryCardStore{}, nil)

	_, err := eng.BuildFeed(context.Background())
	assert.Error(t, err)
}
