package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rerate/internal/contracts"
)

// Repository implements contracts.CardStore on PostgreSQL
// SSOT: card history persistence lives here and nowhere else
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new card repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveCard appends one selected card to the history table
func (r *Repository) SaveCard(ctx context.Context, card *contracts.PrimaryCard) error {
	query := `
		INSERT INTO data.signal_cards
			(symbol, category, title, summary, key_metric, tone, severity,
			 confidence_caveat, earnings_context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		card.Symbol, string(card.Category), card.Title, card.Summary, card.KeyMetric,
		string(card.Tone), card.Severity, card.ConfidenceCaveat, card.EarningsContext,
		card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}

	return nil
}

// RecentCards returns the latest cards for a symbol, newest-first
func (r *Repository) RecentCards(ctx context.Context, symbol string, limit int) ([]*contracts.PrimaryCard, error) {
	query := `
		SELECT symbol, category, title, summary, key_metric, tone, severity,
		       confidence_caveat, earnings_context, created_at
		FROM data.signal_cards
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent cards: %w", err)
	}
	defer rows.Close()

	var cards []*contracts.PrimaryCard
	for rows.Next() {
		var card contracts.PrimaryCard
		var category, tone string
		if err := rows.Scan(&card.Symbol, &category, &card.Title, &card.Summary,
			&card.KeyMetric, &tone, &card.Severity, &card.ConfidenceCaveat,
			&card.EarningsContext, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		card.Category = contracts.SignalCategory(category)
		card.Tone = contracts.Tone(tone)
		cards = append(cards, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// PruneBefore deletes card history older than the cutoff; returns rows removed
func (r *Repository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM data.signal_cards WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune cards: %w", err)
	}
	return tag.RowsAffected(), nil
}
