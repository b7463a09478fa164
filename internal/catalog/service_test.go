package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sitetrack/sitetrack/internal/shared"
)

type fakeStore struct {
	products map[int64]Product
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: map[int64]Product{}}
}

func (s *fakeStore) Create(ctx context.Context, input ProductInput) (Product, error) {
	for _, p := range s.products {
		if p.Name == input.Name {
			return Product{}, ErrDuplicateName
		}
	}
	s.nextID++
	p := Product{ID: s.nextID, Name: input.Name, Category: input.Category, Unit: input.Unit, Supplier: input.Supplier, SalePrice: input.SalePrice}
	s.products[p.ID] = p
	return p, nil
}

func (s *fakeStore) Update(ctx context.Context, id int64, input ProductInput) (Product, error) {
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	p.Name = input.Name
	p.SalePrice = input.SalePrice
	s.products[id] = p
	return p, nil
}

func (s *fakeStore) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *fakeStore) List(ctx context.Context, category string) ([]Product, error) {
	var out []Product
	for _, p := range s.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) Categories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductInput{Name: " ", Unit: "pc"})
	require.ErrorIs(t, err, ErrInvalidProduct)

	_, err = svc.Create(ctx, ProductInput{Name: "Deformed Bar 12mm", Unit: ""})
	require.ErrorIs(t, err, ErrInvalidProduct)

	_, err = svc.Create(ctx, ProductInput{Name: "Deformed Bar 12mm", Unit: "pc", SalePrice: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, ErrInvalidProduct)

	p, err := svc.Create(ctx, ProductInput{Name: "  Deformed Bar 12mm ", Unit: "pc", SalePrice: decimal.NewFromInt(250)})
	require.NoError(t, err)
	require.Equal(t, "Deformed Bar 12mm", p.Name)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, ProductInput{Name: "Portland Cement", Unit: "bag", SalePrice: decimal.NewFromInt(260)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, ProductInput{Name: "Portland Cement", Unit: "bag", SalePrice: decimal.NewFromInt(270)})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestGetProductMapsToLedgerPort(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	created, err := svc.Create(ctx, ProductInput{
		Name:      "Portland Cement",
		Category:  "Cement",
		Unit:      "bag",
		Supplier:  "Apex Builders Supply",
		SalePrice: decimal.NewFromInt(260),
	})
	require.NoError(t, err)

	info, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Portland Cement", info.Name)
	require.Equal(t, "Cement", info.Category)
	require.True(t, info.SalePrice.Equal(decimal.NewFromInt(260)))

	_, err = svc.GetProduct(ctx, 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
