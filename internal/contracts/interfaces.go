package contracts

import (
	"context"
	"time"
)

// SSOT: repository and provider interface definitions live here and nowhere else

// SnapshotStore persists the per-instrument estimate history
type SnapshotStore interface {
	// LoadSeries returns snapshots newest-first, deduplicated by date,
	// bounded by the retention window.
	LoadSeries(ctx context.Context, symbol string) ([]EstimateSnapshot, error)

	// UpsertToday writes today's snapshot, overwriting any same-day entry,
	// and prunes entries beyond retention oldest-first.
	UpsertToday(ctx context.Context, snap EstimateSnapshot) error
}

// EstimateData is today's consensus observation from the estimates provider
type EstimateData struct {
	Symbol        string
	EPSNextFY     float64
	RevenueNextFY float64
	AnalystCount  *int
	EPSHigh       *float64
	EPSLow        *float64

	// Prior fiscal-period consensus, used as the cold-start fallback base
	PriorPeriodEPS     *float64
	PriorPeriodRevenue *float64
}

// PricePoint is one daily close observation
type PricePoint struct {
	Date   time.Time
	Close  float64
	Volume int64
}

// EstimateProvider returns analyst consensus data
type EstimateProvider interface {
	FetchEstimates(ctx context.Context, symbol string) (*EstimateData, error)
}

// PriceProvider returns daily close series, newest-first
type PriceProvider interface {
	FetchPrices(ctx context.Context, symbol string, days int) ([]PricePoint, error)
}

// FundamentalsProvider returns profile/valuation/leverage data
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, symbol string) (*FundamentalData, error)
	FetchBeta(ctx context.Context, symbol string) (*float64, error)
}

// RiskEventProvider returns the trailing event window
type RiskEventProvider interface {
	FetchRiskEvents(ctx context.Context, symbol string) (*RiskEvents, error)
}

// PositioningProvider returns short-interest / ownership deltas
type PositioningProvider interface {
	FetchPositioning(ctx context.Context, symbol string) (*PositioningData, error)
}

// CardStore persists selected primary cards for audit
type CardStore interface {
	SaveCard(ctx context.Context, card *PrimaryCard) error
	RecentCards(ctx context.Context, symbol string, limit int) ([]*PrimaryCard, error)
}
