package restaurants

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/slooze/foodorder/internal/platform/db"
	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Repository defines catalogue persistence.
type Repository interface {
	// ListRestaurants returns restaurants with menus; a nil region means every region.
	ListRestaurants(ctx context.Context, region *rbac.Region) ([]Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (Restaurant, error)
	// GetMenuItem returns the item together with the region of its restaurant.
	GetMenuItem(ctx context.Context, id string) (MenuItem, rbac.Region, error)
	UpdateMenuItemPrice(ctx context.Context, id string, price decimal.Decimal) (MenuItem, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const (
	listRestaurants = `
SELECT id, name, region FROM restaurants
WHERE ($1::text IS NULL OR region = $1)
ORDER BY name`

	getRestaurant = `SELECT id, name, region FROM restaurants WHERE id = $1`

	listMenuItems = `
SELECT id, restaurant_id, name, price, category FROM menu_items
WHERE restaurant_id = ANY($1)
ORDER BY name, id`

	getMenuItem = `
SELECT m.id, m.restaurant_id, m.name, m.price, m.category, r.region
FROM menu_items m JOIN restaurants r ON r.id = m.restaurant_id
WHERE m.id = $1`

	updateMenuItemPrice = `
UPDATE menu_items SET price = $2, updated_at = now()
WHERE id = $1
RETURNING id, restaurant_id, name, price, category`
)

// ListRestaurants implements Repository.
func (r *PGRepository) ListRestaurants(ctx context.Context, region *rbac.Region) ([]Restaurant, error) {
	var filter *string
	if region != nil {
		s := string(*region)
		filter = &s
	}
	rows, err := r.db.Query(ctx, listRestaurants, filter)
	if err != nil {
		return nil, fmt.Errorf("restaurants: list: %w", err)
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		var (
			rest   Restaurant
			region string
		)
		if err := rows.Scan(&rest.ID, &rest.Name, &region); err != nil {
			return nil, err
		}
		rest.Region = rbac.Region(region)
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachMenus(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRestaurant implements Repository.
func (r *PGRepository) GetRestaurant(ctx context.Context, id string) (Restaurant, error) {
	var (
		rest   Restaurant
		region string
	)
	err := r.db.QueryRow(ctx, getRestaurant, id).Scan(&rest.ID, &rest.Name, &region)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Restaurant{}, fmt.Errorf("%w: restaurant %s", shared.ErrNotFound, id)
		}
		return Restaurant{}, err
	}
	rest.Region = rbac.Region(region)
	list := []Restaurant{rest}
	if err := r.attachMenus(ctx, list); err != nil {
		return Restaurant{}, err
	}
	return list[0], nil
}

// GetMenuItem implements Repository.
func (r *PGRepository) GetMenuItem(ctx context.Context, id string) (MenuItem, rbac.Region, error) {
	var (
		item   MenuItem
		region string
	)
	err := r.db.QueryRow(ctx, getMenuItem, id).
		Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Price, &item.Category, &region)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MenuItem{}, "", fmt.Errorf("%w: menu item %s", shared.ErrNotFound, id)
		}
		return MenuItem{}, "", err
	}
	return item, rbac.Region(region), nil
}

// UpdateMenuItemPrice implements Repository.
func (r *PGRepository) UpdateMenuItemPrice(ctx context.Context, id string, price decimal.Decimal) (MenuItem, error) {
	var item MenuItem
	err := r.db.QueryRow(ctx, updateMenuItemPrice, id, price).
		Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Price, &item.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MenuItem{}, fmt.Errorf("%w: menu item %s", shared.ErrNotFound, id)
		}
		return MenuItem{}, err
	}
	return item, nil
}

func (r *PGRepository) attachMenus(ctx context.Context, list []Restaurant) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]string, len(list))
	index := make(map[string]int, len(list))
	for i, rest := range list {
		ids[i] = rest.ID
		index[rest.ID] = i
		list[i].MenuItems = []MenuItem{}
	}
	rows, err := r.db.Query(ctx, listMenuItems, ids)
	if err != nil {
		return fmt.Errorf("restaurants: menu items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item MenuItem
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Price, &item.Category); err != nil {
			return err
		}
		if i, ok := index[item.RestaurantID]; ok {
			list[i].MenuItems = append(list[i].MenuItems, item)
		}
	}
	return rows.Err()
}

var _ Repository = (*PGRepository)(nil)
