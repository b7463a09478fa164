package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/sitetrack/sitetrack/internal/notify"
	"github.com/sitetrack/sitetrack/internal/shared"
	"github.com/sitetrack/sitetrack/internal/warehouse"
)

// Repository persists and reads ledger records. Implementations must
// return records ordered by created_at ascending, ties broken by id.
type Repository interface {
	Append(ctx context.Context, rec Record) (Record, error)
	ListByProject(ctx context.Context, projectID int64) ([]Record, error)
	ListByProjectProduct(ctx context.Context, projectID, productID int64) ([]Record, error)
}

// WarehousePort exposes the authoritative main-warehouse stock.
type WarehousePort interface {
	Available(ctx context.Context, productID int64) (float64, error)
	Checkout(ctx context.Context, productID int64, qty float64) error
	Restock(ctx context.Context, productID int64, qty float64) error
}

// ProductInfo is the catalog metadata snapshotted onto each record.
type ProductInfo struct {
	ID        int64
	Name      string
	Category  string
	Unit      string
	Supplier  string
	SalePrice decimal.Decimal
}

// CatalogPort looks up product master data.
type CatalogPort interface {
	GetProduct(ctx context.Context, productID int64) (ProductInfo, error)
}

// ProjectInfo is the project context needed for validation and notifications.
type ProjectInfo struct {
	ID         int64
	Name       string
	Status     string
	OwnerEmail string
}

// ProjectPort looks up project context.
type ProjectPort interface {
	GetProject(ctx context.Context, projectID int64) (ProjectInfo, error)
}

// SnapshotCache stores reconciled snapshots per project.
type SnapshotCache interface {
	Get(ctx context.Context, projectID int64) ([]Snapshot, bool)
	Set(ctx context.Context, projectID int64, snapshots []Snapshot)
	Invalidate(ctx context.Context, projectID int64)
}

// Locker serializes transfers per (project, product) so the warehouse
// read-then-write cannot race a concurrent checkout.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// AuditPort records mutating operations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort counts transfer activity for the operators' dashboard.
type MetricsPort interface {
	CountTransfer(action string)
	CountLowStockAlert()
}

const projectStatusActive = "active"

// Service coordinates transfer commands and snapshot reads.
type Service struct {
	repo      Repository
	warehouse WarehousePort
	catalog   CatalogPort
	projects  ProjectPort
	cache     SnapshotCache
	locker    Locker
	notifier  notify.Dispatcher
	audit     AuditPort
	metrics   MetricsPort
	logger    *slog.Logger
	flight    singleflight.Group
}

// NewService builds the ledger service. cache, locker, notifier and
// audit may be nil; the service degrades to direct reads and skips the
// corresponding side effects.
func NewService(repo Repository, wh WarehousePort, catalog CatalogPort, projects ProjectPort, cache SnapshotCache, locker Locker, notifier notify.Dispatcher, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		warehouse: wh,
		catalog:   catalog,
		projects:  projects,
		cache:     cache,
		locker:    locker,
		notifier:  notifier,
		audit:     audit,
		logger:    logger,
	}
}

// WithMetrics attaches transfer counters. Optional.
func (s *Service) WithMetrics(m MetricsPort) *Service {
	s.metrics = m
	return s
}

// RecordTransfer validates and appends exactly one movement record.
// Validation order: quantity, then main-warehouse stock for checkouts,
// then reconciled project stock for returns and adjustments. A reorder
// point omitted on a later checkout is carried forward from the most
// recent checkout that set one, so the threshold is never silently lost.
func (s *Service) RecordTransfer(ctx context.Context, input TransferInput) (Record, error) {
	if !input.Action.Valid() {
		return Record{}, ErrInvalidAction
	}
	if input.Quantity <= 0 || math.IsNaN(input.Quantity) || math.IsInf(input.Quantity, 0) {
		return Record{}, ErrInvalidQuantity
	}

	project, err := s.projects.GetProject(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Record{}, ErrProjectNotFound
		}
		return Record{}, err
	}
	if project.Status != projectStatusActive {
		return Record{}, ErrProjectClosed
	}

	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Record{}, ErrProductNotFound
		}
		return Record{}, err
	}

	var rec Record
	lockKey := fmt.Sprintf("transfer:%d:%d", input.ProjectID, input.ProductID)
	err = s.withLock(ctx, lockKey, func(ctx context.Context) error {
		history, err := s.repo.ListByProjectProduct(ctx, input.ProjectID, input.ProductID)
		if err != nil {
			return err
		}

		reorderPoint := input.ReorderPoint
		switch input.Action {
		case ActionCheckedOut:
			if reorderPoint == nil {
				reorderPoint = latestReorderPoint(history)
			}
			if err := s.warehouse.Checkout(ctx, input.ProductID, input.Quantity); err != nil {
				switch {
				case errors.Is(err, warehouse.ErrInsufficientStock):
					return ErrInsufficientMainStock
				case errors.Is(err, warehouse.ErrItemNotFound):
					return ErrProductNotFound
				}
				return err
			}
		case ActionReturned, ActionAdjusted:
			if currentQuantity(history) < input.Quantity {
				return ErrInsufficientProjectStock
			}
		}

		rec = s.buildRecord(input, product, reorderPoint)
		stored, err := s.repo.Append(ctx, rec)
		if err != nil {
			if input.Action == ActionCheckedOut {
				if restockErr := s.warehouse.Restock(ctx, input.ProductID, input.Quantity); restockErr != nil {
					s.logger.Error("restock after failed append",
						slog.Int64("product_id", input.ProductID),
						slog.Float64("qty", input.Quantity),
						slog.Any("error", restockErr))
				}
			}
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		rec = stored

		if input.Action == ActionReturned {
			// The warehouse gets the stock back once the return is on
			// record. An infra failure here leaves the warehouse short,
			// never oversold, and is surfaced through logs.
			if err := s.warehouse.Restock(ctx, input.ProductID, input.Quantity); err != nil {
				s.logger.Error("restock on return",
					slog.Int64("product_id", input.ProductID),
					slog.Float64("qty", input.Quantity),
					slog.Any("error", err))
			}
		}

		s.afterWrite(ctx, project, product, rec, append(history, rec))
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) buildRecord(input TransferInput, product ProductInfo, reorderPoint *float64) Record {
	unit := input.Unit
	if unit == "" {
		unit = product.Unit
	}
	qty := decimal.NewFromFloat(input.Quantity)
	return Record{
		Code:         uuid.NewString(),
		ProjectID:    input.ProjectID,
		ProductID:    input.ProductID,
		ProductName:  product.Name,
		Category:     product.Category,
		Action:       input.Action,
		Quantity:     input.Quantity,
		Unit:         unit,
		Supplier:     product.Supplier,
		SalePrice:    product.SalePrice,
		TotalValue:   qty.Mul(product.SalePrice),
		ReorderPoint: reorderPoint,
		ActionBy:     input.ActionBy,
		Notes:        input.Notes,
		CreatedAt:    time.Now().UTC(),
	}
}

// afterWrite handles the non-transactional side effects of a successful
// append. None of them can fail the transfer.
func (s *Service) afterWrite(ctx context.Context, project ProjectInfo, product ProductInfo, rec Record, history []Record) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, rec.ProjectID)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  rec.ActionBy.UserID,
			Action:   "ledger:" + string(rec.Action),
			Entity:   "inventory_ledger",
			EntityID: rec.Code,
			Meta: map[string]any{
				"project_id": rec.ProjectID,
				"product_id": rec.ProductID,
				"qty":        rec.Quantity,
			},
		})
	}

	if s.metrics != nil {
		s.metrics.CountTransfer(string(rec.Action))
	}

	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(ctx, notify.TransferRecorded{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		ProductName: product.Name,
		Action:      string(rec.Action),
		Quantity:    rec.Quantity,
		Unit:        rec.Unit,
		ActorName:   rec.ActionBy.Name,
		RecordedAt:  rec.CreatedAt,
	})
	for _, snap := range Reconcile(history) {
		if snap.ProductID == rec.ProductID && snap.IsLowStock {
			if s.metrics != nil {
				s.metrics.CountLowStockAlert()
			}
			s.notifier.Dispatch(ctx, notify.LowStock{
				ProjectID:       project.ID,
				ProjectName:     project.Name,
				ProductName:     snap.ProductName,
				CurrentQuantity: snap.CurrentQuantity,
				ReorderPoint:    *snap.ReorderPoint,
				Unit:            snap.Unit,
			})
		}
	}
}

// CurrentInventory returns the reconciled snapshot for a project,
// served from cache when possible. Concurrent cold reads share a single
// rebuild via singleflight.
func (s *Service) CurrentInventory(ctx context.Context, projectID int64) ([]Snapshot, error) {
	if s.cache != nil {
		if snapshots, ok := s.cache.Get(ctx, projectID); ok {
			return snapshots, nil
		}
	}
	result, err, _ := s.flight.Do(strconv.FormatInt(projectID, 10), func() (any, error) {
		records, err := s.repo.ListByProject(ctx, projectID)
		if err != nil {
			return nil, err
		}
		snapshots := Reconcile(records)
		if s.cache != nil {
			s.cache.Set(ctx, projectID, snapshots)
		}
		return snapshots, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Snapshot), nil
}

// Transactions lists the raw ledger for a project, oldest first.
func (s *Service) Transactions(ctx context.Context, projectID int64) ([]Record, error) {
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return s.repo.ListByProject(ctx, projectID)
}

func (s *Service) withLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	return s.locker.WithLock(ctx, key, fn)
}
