package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfeld/cointrack-backend/internal/models"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) CreateGroup(ctx context.Context, name string) (*models.AccountGroup, error) {
	var g models.AccountGroup
	err := r.pool.QueryRow(ctx,
		`INSERT INTO account_groups (id, name) VALUES ($1, $2)
		 RETURNING id, name, created_at`,
		uuid.NewString(), name,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *AccountRepo) ListGroups(ctx context.Context) ([]models.AccountGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM account_groups ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AccountGroup
	for rows.Next() {
		var g models.AccountGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *AccountRepo) Create(ctx context.Context, name, groupID string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (id, name, group_id) VALUES ($1, $2, NULLIF($3, ''))
		 RETURNING id, name, COALESCE(group_id, ''), created_at`,
		uuid.NewString(), name, groupID,
	).Scan(&a.ID, &a.Name, &a.GroupID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(group_id, ''), created_at
		 FROM accounts ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.GroupID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(group_id, ''), created_at
		 FROM accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.GroupID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) Rename(ctx context.Context, id, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// Delete removes an account. Its trades are kept but orphaned; callers
// decide whether to reassign them first.
func (r *AccountRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}
