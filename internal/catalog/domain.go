// Package catalog manages product master data referenced by the
// warehouse and project ledgers.
package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Product is one catalog entry. Ledger records snapshot these fields at
// transfer time, so editing a product never rewrites history.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	Supplier  string          `json:"supplier"`
	SalePrice decimal.Decimal `json:"sale_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductInput carries create/update fields.
type ProductInput struct {
	Name      string
	Category  string
	Unit      string
	Supplier  string
	SalePrice decimal.Decimal
}

var (
	// ErrProductNotFound indicates an unknown product id.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrDuplicateName indicates another product already uses the name.
	ErrDuplicateName = errors.New("catalog: product name already exists")
	// ErrInvalidProduct indicates missing or malformed fields.
	ErrInvalidProduct = errors.New("catalog: invalid product")
)
