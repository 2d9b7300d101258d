package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/slooze/foodorder/internal/platform/db"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const findUserByEmail = `
SELECT id, email, name, password_hash, role, region, created_at
FROM users
WHERE lower(email) = lower($1)`

// FindByEmail fetches a user by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var (
		u      User
		role   string
		region *string
	)
	err := r.db.QueryRow(ctx, findUserByEmail, strings.TrimSpace(email)).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &region, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	u.Role = rbac.Role(role)
	if region != nil {
		u.Region = rbac.RegionPtr(rbac.Region(*region))
	}
	return &u, nil
}

var _ Repository = (*PGRepository)(nil)
