// Package warehouse maintains the authoritative main-warehouse stock
// levels consulted and adjusted by project transfers.
package warehouse

import (
	"errors"
	"time"
)

// Item is the stock level of one product in the main warehouse.
type Item struct {
	ProductID    int64     `json:"product_id"`
	Quantity     float64   `json:"quantity"`
	ReorderPoint *float64  `json:"reorder_point,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LowStock reports whether the item is at or below its warehouse threshold.
func (i Item) LowStock() bool {
	return i.ReorderPoint != nil && i.Quantity <= *i.ReorderPoint
}

var (
	// ErrItemNotFound indicates no stock row exists for the product.
	ErrItemNotFound = errors.New("warehouse: item not found")
	// ErrInsufficientStock indicates a decrement would go below zero.
	ErrInsufficientStock = errors.New("warehouse: insufficient stock")
	// ErrInvalidQuantity indicates a non-positive movement amount.
	ErrInvalidQuantity = errors.New("warehouse: quantity must be positive")
)
