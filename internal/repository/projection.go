package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfeld/cointrack-backend/internal/models"
)

// ProjectionRepo persists the saved what-if table. Rows are stored per account
// scope with an explicit position so they replay in the order the user entered
// them; an empty account id is the all-accounts scope.
type ProjectionRepo struct {
	pool *pgxpool.Pool
}

func NewProjectionRepo(pool *pgxpool.Pool) *ProjectionRepo {
	return &ProjectionRepo{pool: pool}
}

// Replace swaps the saved rows for one scope atomically.
func (r *ProjectionRepo) Replace(ctx context.Context, accountID string, rows []models.ProjectionRow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM projections WHERE account_id = $1`, accountID); err != nil {
		return err
	}

	for i, row := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO projections (account_id, position, asset, type, price, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			accountID, i, row.Asset, row.Type, row.Price, row.Quantity,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ProjectionRepo) List(ctx context.Context, accountID string) ([]models.ProjectionRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT asset, type, price, quantity, account_id
		 FROM projections WHERE account_id = $1 ORDER BY position ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProjectionRow
	for rows.Next() {
		var p models.ProjectionRow
		if err := rows.Scan(&p.Asset, &p.Type, &p.Price, &p.Quantity, &p.AccountID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
