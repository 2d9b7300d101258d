// Package orders implements order placement and the PENDING → PAID | CANCELLED lifecycle.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/slooze/foodorder/internal/rbac"
)

// MaxTotal is the largest amount orders.total_amount NUMERIC(12,2) holds.
var MaxTotal = decimal.RequireFromString("9999999999.99")

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether s may move to target.
func (s Status) CanTransitionTo(target Status) bool {
	return s == StatusPending && (target == StatusPaid || target == StatusCancelled)
}

// Line is a snapshot of a menu item taken when the order was placed.
type Line struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// RestaurantRef identifies the restaurant an order was placed with.
type RestaurantRef struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Region rbac.Region `json:"region"`
}

// Order is a placed order with its snapshot lines.
type Order struct {
	ID           string          `json:"id"`
	Status       Status          `json:"status"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Currency     string          `json:"currency"`
	DisplayTotal string          `json:"displayTotal"`
	Restaurant   RestaurantRef   `json:"restaurant"`
	CreatedBy    string          `json:"createdBy"`
	Lines        []Line          `json:"items"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// LineInput requests quantity units of a menu item.
type LineInput struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1,max=1000"`
}

// CreateInput is the payload for placing an order. Prices are never accepted
// from the caller.
type CreateInput struct {
	RestaurantID string      `json:"restaurantId" validate:"required"`
	Items        []LineInput `json:"items" validate:"required,min=1,dive"`
}
