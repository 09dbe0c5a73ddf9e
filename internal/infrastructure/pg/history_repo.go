package pg

import (
	"context"
	"fmt"

	"tokenprices-service/internal/application"
	"tokenprices-service/internal/domain"

	"github.com/shopspring/decimal"
)

type HistoryRepo struct{ db *DB }

var _ application.QuoteHistoryRepo = (*HistoryRepo)(nil)

func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

// AppendHistory inserts one observation. Duplicates of (token, observed_at, source) are ignored.
func (r *HistoryRepo) AppendHistory(ctx context.Context, h domain.QuoteHistory) error {
	_, err := r.db.Pool.Exec(ctx, `
        INSERT INTO price_history(token, price, observed_at, source)
        VALUES ($1, $2::numeric, $3, $4)
        ON CONFLICT (token, observed_at, source) DO NOTHING
    `, string(h.Token), h.Price.String(), h.ObservedAt.UTC(), h.Source)
	if err != nil {
		return fmt.Errorf("append history %s: %w", h.Token, err)
	}
	return nil
}

// Latest returns the newest observations for token, most recent first.
func (r *HistoryRepo) Latest(ctx context.Context, token domain.TokenID, limit int) ([]domain.QuoteHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Pool.Query(ctx, `
        SELECT id, token, price::text, observed_at, source, inserted_at
        FROM price_history
        WHERE token = $1
        ORDER BY observed_at DESC
        LIMIT $2
    `, string(token), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.QuoteHistory
	for rows.Next() {
		var (
			h     domain.QuoteHistory
			tok   string
			price string
		)
		if err := rows.Scan(&h.ID, &tok, &price, &h.ObservedAt, &h.Source, &h.InsertedAt); err != nil {
			return nil, err
		}
		h.Token = domain.TokenID(tok)
		if h.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
