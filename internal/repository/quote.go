package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfeld/cointrack-backend/internal/models"
)

// QuoteRepo persists the last fetched quote per asset so the price cache
// survives restarts.
type QuoteRepo struct {
	pool *pgxpool.Pool
}

func NewQuoteRepo(pool *pgxpool.Pool) *QuoteRepo {
	return &QuoteRepo{pool: pool}
}

func (r *QuoteRepo) UpsertQuote(ctx context.Context, q models.PriceQuote) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO price_quotes (asset, price_usd, change_24h_pct, fetched_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (asset) DO UPDATE
		 SET price_usd = EXCLUDED.price_usd,
		     change_24h_pct = EXCLUDED.change_24h_pct,
		     fetched_at = EXCLUDED.fetched_at`,
		q.Asset, q.PriceUSD, q.Change24hPct, q.FetchedAt,
	)
	return err
}

func (r *QuoteRepo) ListQuotes(ctx context.Context) ([]models.PriceQuote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT asset, price_usd, change_24h_pct, fetched_at
		 FROM price_quotes ORDER BY asset ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PriceQuote
	for rows.Next() {
		var q models.PriceQuote
		if err := rows.Scan(&q.Asset, &q.PriceUSD, &q.Change24hPct, &q.FetchedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
