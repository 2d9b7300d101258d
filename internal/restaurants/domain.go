// Package restaurants serves the region-partitioned restaurant catalogue.
package restaurants

import (
	"github.com/shopspring/decimal"

	"github.com/slooze/foodorder/internal/rbac"
)

// MaxPrice is the largest amount a NUMERIC(12,2) price column holds.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// MenuItem is a purchasable dish owned by exactly one restaurant.
type MenuItem struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurantId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     *string         `json:"category,omitempty"`
}

// Restaurant belongs to a single region fixed at creation.
type Restaurant struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Region    rbac.Region `json:"region"`
	MenuItems []MenuItem  `json:"menuItems"`
}

// Item returns the menu item with id when it is on this restaurant's menu.
func (r Restaurant) Item(id string) (MenuItem, bool) {
	for _, it := range r.MenuItems {
		if it.ID == id {
			return it, true
		}
	}
	return MenuItem{}, false
}
