package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slooze/foodorder/internal/platform/db"
	"github.com/slooze/foodorder/internal/shared"
)

// Repository persists payment methods.
type Repository interface {
	List(ctx context.Context) ([]Method, error)
	// Create stores m and makes it the only default method.
	Create(ctx context.Context, m Method) error
	Delete(ctx context.Context, id string) (Method, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const (
	listMethods = `
SELECT id, name, last4, is_active, is_default, created_at
FROM payment_methods
ORDER BY created_at DESC, id`

	clearDefault = `UPDATE payment_methods SET is_default = false WHERE is_default`

	insertMethod = `
INSERT INTO payment_methods (id, name, last4, is_active, is_default, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	deleteMethod = `
DELETE FROM payment_methods WHERE id = $1
RETURNING id, name, last4, is_active, is_default, created_at`
)

// List implements Repository.
func (r *PGRepository) List(ctx context.Context) ([]Method, error) {
	rows, err := r.pool.Query(ctx, listMethods)
	if err != nil {
		return nil, fmt.Errorf("payments: list: %w", err)
	}
	defer rows.Close()
	var out []Method
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create implements Repository.
func (r *PGRepository) Create(ctx context.Context, m Method) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if m.IsDefault {
			if _, err := tx.Exec(ctx, clearDefault); err != nil {
				return fmt.Errorf("payments: clear default: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, insertMethod, m.ID, m.Name, m.Last4, m.IsActive, m.IsDefault, m.CreatedAt); err != nil {
			return fmt.Errorf("payments: insert: %w", err)
		}
		return nil
	})
}

// Delete implements Repository.
func (r *PGRepository) Delete(ctx context.Context, id string) (Method, error) {
	m, err := scanMethod(r.pool.QueryRow(ctx, deleteMethod, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Method{}, fmt.Errorf("%w: payment method %s", shared.ErrNotFound, id)
		}
		return Method{}, err
	}
	return m, nil
}

func scanMethod(row pgx.Row) (Method, error) {
	var m Method
	err := row.Scan(&m.ID, &m.Name, &m.Last4, &m.IsActive, &m.IsDefault, &m.CreatedAt)
	return m, err
}

var _ Repository = (*PGRepository)(nil)
