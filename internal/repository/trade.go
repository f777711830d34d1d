package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfeld/cointrack-backend/internal/models"
)

type TradeRepo struct {
	pool *pgxpool.Pool
}

func NewTradeRepo(pool *pgxpool.Pool) *TradeRepo {
	return &TradeRepo{pool: pool}
}

const tradeColumns = `id, date, asset, type, price, quantity, fee, total_value,
	 exchange, order_type, account_id, created_at`

func (r *TradeRepo) Insert(ctx context.Context, t *models.Trade) (*models.Trade, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO trades
		 (id, date, asset, type, price, quantity, fee, total_value, exchange, order_type, account_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING `+tradeColumns,
		t.ID, t.Date, t.Asset, t.Type, t.Price, t.Quantity, t.Fee, t.TotalValue,
		t.Exchange, t.OrderType, t.AccountID,
	)
	return scanTrade(row)
}

func (r *TradeRepo) Update(ctx context.Context, t *models.Trade) (*models.Trade, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE trades SET
		   date = $2, asset = $3, type = $4, price = $5, quantity = $6,
		   fee = $7, total_value = $8, exchange = $9, order_type = $10, account_id = $11
		 WHERE id = $1
		 RETURNING `+tradeColumns,
		t.ID, t.Date, t.Asset, t.Type, t.Price, t.Quantity, t.Fee, t.TotalValue,
		t.Exchange, t.OrderType, t.AccountID,
	)
	updated, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("trade %s not found", t.ID)
	}
	return updated, err
}

func (r *TradeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trades WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trade %s not found", id)
	}
	return nil
}

func (r *TradeRepo) GetByID(ctx context.Context, id string) (*models.Trade, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
	t, err := scanTrade(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// ListAll returns trades in ledger order (date ascending, insertion order on
// ties). If accountID is non-empty, only that account's trades are returned.
func (r *TradeRepo) ListAll(ctx context.Context, accountID string) ([]models.Trade, error) {
	query, args := buildAccountQuery(
		`SELECT `+tradeColumns+` FROM trades WHERE 1=1`,
		nil,
		accountID,
	)
	query += " ORDER BY date ASC, created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

// ListRecent returns the newest trades first, for display paging.
func (r *TradeRepo) ListRecent(ctx context.Context, accountID string, limit int) ([]models.Trade, error) {
	query, args := buildAccountQuery(
		`SELECT `+tradeColumns+` FROM trades WHERE 1=1`,
		nil,
		accountID,
	)
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

// Assets returns the distinct non-USD symbols present in the ledger.
func (r *TradeRepo) Assets(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT asset FROM trades WHERE asset <> $1 ORDER BY asset ASC`,
		models.USDAsset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// CountToday implements the daily trade counter for the ledger validator.
func (r *TradeRepo) CountToday(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trades
		 WHERE created_at >= date_trunc('day', now())
		   AND type IN ($1, $2)`,
		models.TypeBuy, models.TypeSell,
	).Scan(&count)
	return count, err
}

// buildAccountQuery appends an account_id clause when accountID is non-empty.
func buildAccountQuery(baseQuery string, baseArgs []any, accountID string) (string, []any) {
	if accountID == "" {
		return baseQuery, baseArgs
	}
	args := append(baseArgs, accountID)
	return baseQuery + fmt.Sprintf(" AND account_id = $%d", len(args)), args
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTrade(row scannable) (*models.Trade, error) {
	var t models.Trade
	err := row.Scan(
		&t.ID, &t.Date, &t.Asset, &t.Type, &t.Price, &t.Quantity, &t.Fee,
		&t.TotalValue, &t.Exchange, &t.OrderType, &t.AccountID, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTrades(rows rowsIter) ([]models.Trade, error) {
	var out []models.Trade
	for rows.Next() {
		var t models.Trade
		if err := rows.Scan(
			&t.ID, &t.Date, &t.Asset, &t.Type, &t.Price, &t.Quantity, &t.Fee,
			&t.TotalValue, &t.Exchange, &t.OrderType, &t.AccountID, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
