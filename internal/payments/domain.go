// Package payments manages the global list of payment methods. Only ADMIN may
// read or change it.
package payments

import "time"

// Method is a stored payment instrument. Only the last four digits are kept.
type Method struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Last4     string    `json:"last4"`
	IsActive  bool      `json:"isActive"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateInput describes a new payment method.
type CreateInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Last4 string `json:"last4" validate:"required,len=4,number"`
}
