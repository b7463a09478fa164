package warehouse

import (
	"context"
	"log/slog"
	"math"
)

// Store abstracts the persistence operations used by Service.
type Store interface {
	GetItem(ctx context.Context, productID int64) (Item, error)
	List(ctx context.Context) ([]Item, error)
	Upsert(ctx context.Context, item Item) error
	Decrement(ctx context.Context, productID int64, qty float64) error
	Increment(ctx context.Context, productID int64, qty float64) error
}

// Service exposes warehouse stock operations. The database is
// authoritative; the Redis mirror is updated best-effort after each
// successful write and resynced on drift.
type Service struct {
	store  Store
	mirror *Mirror
	logger *slog.Logger
}

// NewService constructs Service. mirror may be nil.
func NewService(store Store, mirror *Mirror, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, mirror: mirror, logger: logger}
}

// Available returns the current quantity for a product. The mirror
// serves hot reads; a miss falls through to the database and reprimes it.
func (s *Service) Available(ctx context.Context, productID int64) (float64, error) {
	if s.mirror != nil {
		qty, ok, err := s.mirror.Available(ctx, productID)
		if err == nil && ok {
			return qty, nil
		}
		if err != nil {
			s.logger.Warn("warehouse mirror read", slog.Any("error", err))
		}
	}
	item, err := s.store.GetItem(ctx, productID)
	if err != nil {
		return 0, err
	}
	s.syncMirror(ctx, productID, item.Quantity)
	return item.Quantity, nil
}

// Checkout removes qty from the warehouse, failing when stock is short.
func (s *Service) Checkout(ctx context.Context, productID int64, qty float64) error {
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return ErrInvalidQuantity
	}
	if err := s.store.Decrement(ctx, productID, qty); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Decrement(ctx, productID, qty); err != nil {
			s.resyncMirror(ctx, productID)
		}
	}
	return nil
}

// Restock adds qty back to the warehouse.
func (s *Service) Restock(ctx context.Context, productID int64, qty float64) error {
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return ErrInvalidQuantity
	}
	if err := s.store.Increment(ctx, productID, qty); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Increment(ctx, productID, qty); err != nil {
			s.resyncMirror(ctx, productID)
		}
	}
	return nil
}

// AdjustQuantity applies a signed stock correction, e.g. a recount.
func (s *Service) AdjustQuantity(ctx context.Context, productID int64, delta float64) error {
	if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return ErrInvalidQuantity
	}
	if delta > 0 {
		return s.Restock(ctx, productID, delta)
	}
	return s.Checkout(ctx, productID, -delta)
}

// SetStock creates or replaces a stock row, e.g. after receiving a
// supplier delivery or setting a warehouse threshold.
func (s *Service) SetStock(ctx context.Context, item Item) error {
	if item.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if err := s.store.Upsert(ctx, item); err != nil {
		return err
	}
	s.syncMirror(ctx, item.ProductID, item.Quantity)
	return nil
}

// List returns all warehouse stock rows.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.store.List(ctx)
}

func (s *Service) syncMirror(ctx context.Context, productID int64, qty float64) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Sync(ctx, productID, qty); err != nil {
		s.logger.Warn("warehouse mirror sync", slog.Int64("product_id", productID), slog.Any("error", err))
	}
}

func (s *Service) resyncMirror(ctx context.Context, productID int64) {
	item, err := s.store.GetItem(ctx, productID)
	if err != nil {
		s.logger.Warn("warehouse mirror resync", slog.Int64("product_id", productID), slog.Any("error", err))
		return
	}
	s.syncMirror(ctx, productID, item.Quantity)
}
