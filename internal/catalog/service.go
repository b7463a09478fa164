package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitetrack/sitetrack/internal/ledger"
	"github.com/sitetrack/sitetrack/internal/shared"
)

// Store abstracts persistence for Service.
type Store interface {
	Create(ctx context.Context, input ProductInput) (Product, error)
	Update(ctx context.Context, id int64, input ProductInput) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	List(ctx context.Context, category string) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Service wraps catalog business rules.
type Service struct {
	store Store
}

// NewService constructs Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and inserts a product.
func (s *Service) Create(ctx context.Context, input ProductInput) (Product, error) {
	if err := validateInput(&input); err != nil {
		return Product{}, err
	}
	return s.store.Create(ctx, input)
}

// Update validates and rewrites a product.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (Product, error) {
	if err := validateInput(&input); err != nil {
		return Product{}, err
	}
	return s.store.Update(ctx, id, input)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.store.Get(ctx, id)
}

// List returns products, optionally filtered by category.
func (s *Service) List(ctx context.Context, category string) ([]Product, error) {
	return s.store.List(ctx, category)
}

// Categories returns the distinct product categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

// GetProduct implements the ledger catalog port, translating not-found
// into the shared sentinel the ledger service matches on.
func (s *Service) GetProduct(ctx context.Context, productID int64) (ledger.ProductInfo, error) {
	product, err := s.store.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ledger.ProductInfo{}, shared.ErrNotFound
		}
		return ledger.ProductInfo{}, err
	}
	return ledger.ProductInfo{
		ID:        product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Unit:      product.Unit,
		Supplier:  product.Supplier,
		SalePrice: product.SalePrice,
	}, nil
}

func validateInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	input.Unit = strings.TrimSpace(input.Unit)
	input.Supplier = strings.TrimSpace(input.Supplier)
	if input.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidProduct)
	}
	if input.Unit == "" {
		return fmt.Errorf("%w: unit required", ErrInvalidProduct)
	}
	if input.SalePrice.IsNegative() {
		return fmt.Errorf("%w: sale price must not be negative", ErrInvalidProduct)
	}
	return nil
}
