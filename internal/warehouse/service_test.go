package warehouse

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	items map[int64]Item
}

func newMemStore() *memStore {
	return &memStore{items: map[int64]Item{}}
}

func (s *memStore) GetItem(ctx context.Context, productID int64) (Item, error) {
	item, ok := s.items[productID]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (s *memStore) List(ctx context.Context) ([]Item, error) {
	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s *memStore) Upsert(ctx context.Context, item Item) error {
	s.items[item.ProductID] = item
	return nil
}

func (s *memStore) Decrement(ctx context.Context, productID int64, qty float64) error {
	item, ok := s.items[productID]
	if !ok {
		return ErrItemNotFound
	}
	if item.Quantity < qty {
		return ErrInsufficientStock
	}
	item.Quantity -= qty
	s.items[productID] = item
	return nil
}

func (s *memStore) Increment(ctx context.Context, productID int64, qty float64) error {
	item := s.items[productID]
	item.ProductID = productID
	item.Quantity += qty
	s.items[productID] = item
	return nil
}

func newTestService(store *memStore) *Service {
	return NewService(store, nil, slog.Default())
}

func TestCheckoutValidatesAndDecrements(t *testing.T) {
	store := newMemStore()
	store.items[7] = Item{ProductID: 7, Quantity: 10}
	svc := newTestService(store)
	ctx := context.Background()

	require.ErrorIs(t, svc.Checkout(ctx, 7, 0), ErrInvalidQuantity)
	require.ErrorIs(t, svc.Checkout(ctx, 7, -1), ErrInvalidQuantity)
	require.ErrorIs(t, svc.Checkout(ctx, 7, 11), ErrInsufficientStock)
	require.ErrorIs(t, svc.Checkout(ctx, 99, 1), ErrItemNotFound)

	require.NoError(t, svc.Checkout(ctx, 7, 4))
	qty, err := svc.Available(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 6.0, qty)
}

func TestRestockAndAdjust(t *testing.T) {
	store := newMemStore()
	store.items[7] = Item{ProductID: 7, Quantity: 5}
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.Restock(ctx, 7, 3))
	require.ErrorIs(t, svc.AdjustQuantity(ctx, 7, 0), ErrInvalidQuantity)

	require.NoError(t, svc.AdjustQuantity(ctx, 7, -2))
	require.NoError(t, svc.AdjustQuantity(ctx, 7, 1))
	qty, err := svc.Available(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 7.0, qty)

	require.ErrorIs(t, svc.AdjustQuantity(ctx, 7, -8), ErrInsufficientStock)
}

func TestSetStockRejectsNegative(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	require.ErrorIs(t, svc.SetStock(ctx, Item{ProductID: 7, Quantity: -1}), ErrInvalidQuantity)
	require.NoError(t, svc.SetStock(ctx, Item{ProductID: 7, Quantity: 0}))
}

func TestLowStockThreshold(t *testing.T) {
	rp := 5.0
	require.True(t, Item{ProductID: 7, Quantity: 5, ReorderPoint: &rp}.LowStock())
	require.True(t, Item{ProductID: 7, Quantity: 4, ReorderPoint: &rp}.LowStock())
	require.False(t, Item{ProductID: 7, Quantity: 6, ReorderPoint: &rp}.LowStock())
	require.False(t, Item{ProductID: 7, Quantity: 0}.LowStock())
}
