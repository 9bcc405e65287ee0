package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles run-history persistence
// SSOT: feed run records are written and read here and nowhere else
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new run-history repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun records a feed build. Re-running the same date overwrites the
// previous record so the table holds one row per trading day.
func (r *Repository) SaveRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO audit.feed_runs (
			date, started_at, duration_ms, feed_items, themed, all_stable, triggered_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE SET
			started_at = EXCLUDED.started_at,
			duration_ms = EXCLUDED.duration_ms,
			feed_items = EXCLUDED.feed_items,
			themed = EXCLUDED.themed,
			all_stable = EXCLUDED.all_stable,
			triggered_by = EXCLUDED.triggered_by
	`

	_, err := r.pool.Exec(ctx, query,
		run.Date, run.StartedAt, run.Duration.Milliseconds(),
		run.FeedItems, run.Themed, run.AllStable, run.Trigger,
	)

	if err != nil {
		return fmt.Errorf("failed to save feed run: %w", err)
	}

	return nil
}

// GetRun retrieves the run record for a specific date
func (r *Repository) GetRun(ctx context.Context, date time.Time) (*Run, error) {
	query := `
		SELECT date, started_at, duration_ms, feed_items, themed, all_stable, triggered_by
		FROM audit.feed_runs
		WHERE date = $1
	`

	run, err := scanRun(r.pool.QueryRow(ctx, query, date))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no run recorded for %s", date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed run: %w", err)
	}

	return run, nil
}

// RecentRuns retrieves the latest run records, newest first
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT date, started_at, duration_ms, feed_items, themed, all_stable, triggered_by
		FROM audit.feed_runs
		ORDER BY date DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var durationMS int64

	err := row.Scan(
		&run.Date, &run.StartedAt, &durationMS,
		&run.FeedItems, &run.Themed, &run.AllStable, &run.Trigger,
	)
	if err != nil {
		return nil, err
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
