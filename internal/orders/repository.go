package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slooze/foodorder/internal/platform/db"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Repository exposes order persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	// ListOrders returns orders newest first; a nil region means every region.
	ListOrders(ctx context.Context, region *rbac.Region) ([]Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	// UpdateStatus moves the order from one status to another. It returns
	// shared.ErrInvalidState when the order is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
}

// TxRepository is the write side available inside a transaction.
type TxRepository interface {
	InsertOrder(ctx context.Context, o Order) error
	InsertLine(ctx context.Context, orderID string, position int, l Line) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
	db   db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool, db: pool}
}

// WithTx runs fn inside a read-committed transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, pgTx{db: tx})
	})
}

type pgTx struct {
	db db.DBTX
}

const (
	insertOrder = `
INSERT INTO orders (id, restaurant_id, user_id, status, total_amount, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertLine = `
INSERT INTO order_items (id, order_id, menu_item_id, name, price, quantity, line_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectOrders = `
SELECT o.id, o.status, o.total_amount, o.user_id, o.created_at, o.updated_at,
       r.id, r.name, r.region
FROM orders o JOIN restaurants r ON r.id = o.restaurant_id`

	selectLines = `
SELECT id, order_id, coalesce(menu_item_id, ''), name, price, quantity
FROM order_items
WHERE order_id = ANY($1)
ORDER BY order_id, line_order`

	updateStatus = `
UPDATE orders SET status = $3, updated_at = $4
WHERE id = $1 AND status = $2`
)

func (t pgTx) InsertOrder(ctx context.Context, o Order) error {
	_, err := t.db.Exec(ctx, insertOrder, o.ID, o.Restaurant.ID, o.CreatedBy, string(o.Status), o.TotalAmount, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("orders: insert order: %w", err)
	}
	return nil
}

func (t pgTx) InsertLine(ctx context.Context, orderID string, position int, l Line) error {
	var menuItemID *string
	if l.MenuItemID != "" {
		menuItemID = &l.MenuItemID
	}
	_, err := t.db.Exec(ctx, insertLine, l.ID, orderID, menuItemID, l.Name, l.Price, l.Quantity, position)
	if err != nil {
		return fmt.Errorf("orders: insert line: %w", err)
	}
	return nil
}

// ListOrders implements Repository.
func (r *PGRepository) ListOrders(ctx context.Context, region *rbac.Region) ([]Order, error) {
	query := selectOrders + ` ORDER BY o.created_at DESC, o.id`
	args := []any{}
	if region != nil {
		query = selectOrders + ` WHERE r.region = $1 ORDER BY o.created_at DESC, o.id`
		args = append(args, string(*region))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder implements Repository.
func (r *PGRepository) GetOrder(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, selectOrders+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("%w: order %s", shared.ErrNotFound, id)
		}
		return Order{}, err
	}
	list := []Order{o}
	if err := r.attachLines(ctx, list); err != nil {
		return Order{}, err
	}
	return list[0], nil
}

// UpdateStatus implements Repository.
func (r *PGRepository) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	tag, err := r.db.Exec(ctx, updateStatus, id, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order %s is no longer %s", shared.ErrInvalidState, id, from)
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o              Order
		status, region string
	)
	err := row.Scan(&o.ID, &status, &o.TotalAmount, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
		&o.Restaurant.ID, &o.Restaurant.Name, &region)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	o.Restaurant.Region = rbac.Region(region)
	return o, nil
}

func (r *PGRepository) attachLines(ctx context.Context, list []Order) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	index := make(map[string]int, len(list))
	for i, o := range list {
		ids[i] = o.ID
		index[o.ID] = i
		list[i].Lines = []Line{}
	}
	rows, err := r.db.Query(ctx, selectLines, ids)
	if err != nil {
		return fmt.Errorf("orders: lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			l       Line
			orderID string
		)
		if err := rows.Scan(&l.ID, &orderID, &l.MenuItemID, &l.Name, &l.Price, &l.Quantity); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			list[i].Lines = append(list[i].Lines, l)
		}
	}
	return rows.Err()
}

var _ Repository = (*PGRepository)(nil)
