package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rerate/internal/contracts"
)

// Repository implements contracts.SnapshotStore on PostgreSQL
// SSOT: estimate snapshot persistence lives here and nowhere else
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new snapshot repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadSeries returns snapshots for a symbol, newest-first, bounded by retention
func (r *Repository) LoadSeries(ctx context.Context, symbol string) ([]contracts.EstimateSnapshot, error) {
	query := `
		SELECT symbol, snapshot_date, eps_next_fy, revenue_next_fy, analyst_count, eps_high, eps_low
		FROM data.estimate_snapshots
		WHERE symbol = $1 AND snapshot_date >= $2
		ORDER BY snapshot_date DESC
	`

	cutoff := time.Now().AddDate(0, 0, -RetentionDays)

	rows, err := r.pool.Query(ctx, query, symbol, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load snapshot series: %w", err)
	}
	defer rows.Close()

	var series []contracts.EstimateSnapshot
	for rows.Next() {
		var s contracts.EstimateSnapshot
		if err := rows.Scan(&s.Symbol, &s.Date, &s.EPSNextFY, &s.RevenueNextFY,
			&s.AnalystCount, &s.EPSHigh, &s.EPSLow); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		series = append(series, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return Normalize(series), nil
}

// UpsertToday writes today's snapshot, overwriting any same-day entry,
// then prunes entries beyond retention.
func (r *Repository) UpsertToday(ctx context.Context, snap contracts.EstimateSnapshot) error {
	query := `
		INSERT INTO data.estimate_snapshots
			(symbol, snapshot_date, eps_next_fy, revenue_next_fy, analyst_count, eps_high, eps_low)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol, snapshot_date) DO UPDATE SET
			eps_next_fy = EXCLUDED.eps_next_fy,
			revenue_next_fy = EXCLUDED.revenue_next_fy,
			analyst_count = EXCLUDED.analyst_count,
			eps_high = EXCLUDED.eps_high,
			eps_low = EXCLUDED.eps_low
	`

	day := snap.Date.Truncate(24 * time.Hour)
	_, err := r.pool.Exec(ctx, query,
		snap.Symbol, day, snap.EPSNextFY, snap.RevenueNextFY,
		snap.AnalystCount, snap.EPSHigh, snap.EPSLow,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	prune := `
		DELETE FROM data.estimate_snapshots
		WHERE symbol = $1 AND snapshot_date < $2
	`
	cutoff := day.AddDate(0, 0, -RetentionDays)
	if _, err := r.pool.Exec(ctx, prune, snap.Symbol, cutoff); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}

	return nil
}
