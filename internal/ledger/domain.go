// Package ledger tracks inventory movements between the main warehouse
// and active construction projects. Movements are appended to an
// immutable transaction log; the current per-project inventory is always
// derived by folding that log.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Action enumerates supported movement types.
type Action string

const (
	// ActionCheckedOut moves stock from the main warehouse into a project.
	ActionCheckedOut Action = "checked_out"
	// ActionReturned moves stock from a project back to the main warehouse.
	ActionReturned Action = "returned"
	// ActionAdjusted records stock consumed within the project, e.g. installed.
	ActionAdjusted Action = "adjusted"
)

// Valid reports whether the action is a known movement type.
func (a Action) Valid() bool {
	switch a {
	case ActionCheckedOut, ActionReturned, ActionAdjusted:
		return true
	}
	return false
}

// Actor identifies who performed a movement. Stored denormalized on the
// record so attribution survives later role or name changes.
type Actor struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// Record is one movement event. Once written it is never updated or
// deleted; product metadata is snapshotted so historical cost stays
// fixed even if the catalog price changes later.
type Record struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	ProjectID   int64           `json:"project_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Action      Action          `json:"action"`
	Quantity    float64         `json:"quantity"`
	Unit        string          `json:"unit"`
	Supplier    string          `json:"supplier"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	TotalValue  decimal.Decimal `json:"total_value"`
	// ReorderPoint is the project-scoped low stock threshold. Nil means
	// no alert configured, which is distinct from zero.
	ReorderPoint *float64  `json:"reorder_point,omitempty"`
	ActionBy     Actor     `json:"action_by"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot is the reconciled state of one product within one project.
// It is derived, never stored authoritatively; the cached copy can be
// rebuilt from the ledger at any time.
type Snapshot struct {
	ProjectID   int64  `json:"project_id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	Supplier    string `json:"supplier"`

	CurrentQuantity    float64 `json:"current_quantity"`
	TotalTransferredIn float64 `json:"total_transferred_in"`
	TotalReturnedOut   float64 `json:"total_returned_out"`
	TotalAdjusted      float64 `json:"total_adjusted"`

	// UnitPrice is the latest sale price snapshot seen in the ledger.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// TotalValue is capitalized cost: grows on checkout, shrinks on
	// return. Adjusted (used) movements leave it untouched.
	TotalValue decimal.Decimal `json:"total_value"`
	// TotalCost values the remaining stock at the current unit price.
	TotalCost decimal.Decimal `json:"total_cost"`

	ReorderPoint   *float64  `json:"reorder_point,omitempty"`
	IsLowStock     bool      `json:"is_low_stock"`
	LastMovementAt time.Time `json:"last_movement_at"`
}

// TransferInput describes a movement request.
type TransferInput struct {
	ProjectID    int64
	ProductID    int64
	Action       Action
	Quantity     float64
	Unit         string
	Notes        string
	ReorderPoint *float64
	ActionBy     Actor
}

// Validation and persistence failures returned to callers for
// field-level display.
var (
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("ledger: quantity must be positive")
	// ErrInvalidAction indicates an unknown movement type.
	ErrInvalidAction = errors.New("ledger: unknown action")
	// ErrInsufficientMainStock indicates the warehouse cannot cover a checkout.
	ErrInsufficientMainStock = errors.New("ledger: insufficient stock in main warehouse")
	// ErrInsufficientProjectStock indicates the project holds less than requested.
	ErrInsufficientProjectStock = errors.New("ledger: insufficient stock in project")
	// ErrProductNotFound indicates an unknown product.
	ErrProductNotFound = errors.New("ledger: product not found")
	// ErrProjectNotFound indicates an unknown project.
	ErrProjectNotFound = errors.New("ledger: project not found")
	// ErrProjectClosed indicates the project no longer accepts movements.
	ErrProjectClosed = errors.New("ledger: project is not active")
	// ErrPersistence indicates the ledger write failed; the caller should retry.
	ErrPersistence = errors.New("ledger: write failed")
)
