package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sitetrack/sitetrack/internal/notify"
	"github.com/sitetrack/sitetrack/internal/shared"
	"github.com/sitetrack/sitetrack/internal/warehouse"
)

type fakeRepo struct {
	records    []Record
	nextID     int64
	failAppend bool
}

func (r *fakeRepo) Append(ctx context.Context, rec Record) (Record, error) {
	if r.failAppend {
		return Record{}, errors.New("connection reset")
	}
	r.nextID++
	rec.ID = r.nextID
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *fakeRepo) ListByProject(ctx context.Context, projectID int64) ([]Record, error) {
	out := []Record{}
	for _, rec := range r.records {
		if rec.ProjectID == projectID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByProjectProduct(ctx context.Context, projectID, productID int64) ([]Record, error) {
	out := []Record{}
	for _, rec := range r.records {
		if rec.ProjectID == projectID && rec.ProductID == productID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeWarehouse struct {
	stock map[int64]float64
}

func (w *fakeWarehouse) Available(ctx context.Context, productID int64) (float64, error) {
	qty, ok := w.stock[productID]
	if !ok {
		return 0, warehouse.ErrItemNotFound
	}
	return qty, nil
}

func (w *fakeWarehouse) Checkout(ctx context.Context, productID int64, qty float64) error {
	current, ok := w.stock[productID]
	if !ok {
		return warehouse.ErrItemNotFound
	}
	if current < qty {
		return warehouse.ErrInsufficientStock
	}
	w.stock[productID] = current - qty
	return nil
}

func (w *fakeWarehouse) Restock(ctx context.Context, productID int64, qty float64) error {
	w.stock[productID] += qty
	return nil
}

type fakeCatalog struct {
	products map[int64]ProductInfo
}

func (c *fakeCatalog) GetProduct(ctx context.Context, productID int64) (ProductInfo, error) {
	product, ok := c.products[productID]
	if !ok {
		return ProductInfo{}, shared.ErrNotFound
	}
	return product, nil
}

type fakeProjects struct {
	projects map[int64]ProjectInfo
}

func (p *fakeProjects) GetProject(ctx context.Context, projectID int64) (ProjectInfo, error) {
	project, ok := p.projects[projectID]
	if !ok {
		return ProjectInfo{}, shared.ErrNotFound
	}
	return project, nil
}

type recordingNotifier struct {
	payloads []notify.Payload
}

func (n *recordingNotifier) Dispatch(ctx context.Context, payload notify.Payload) {
	n.payloads = append(n.payloads, payload)
}

type fixture struct {
	repo      *fakeRepo
	warehouse *fakeWarehouse
	notifier  *recordingNotifier
	service   *Service
}

func newFixture(mainStock float64) *fixture {
	repo := &fakeRepo{}
	wh := &fakeWarehouse{stock: map[int64]float64{7: mainStock}}
	catalog := &fakeCatalog{products: map[int64]ProductInfo{
		7: {ID: 7, Name: "Deformed Bar 12mm", Category: "Steel", Unit: "pc", Supplier: "Metro Steel", SalePrice: decimal.NewFromInt(50)},
	}}
	projects := &fakeProjects{projects: map[int64]ProjectInfo{
		1: {ID: 1, Name: "Riverside Duplex", Status: "active"},
		2: {ID: 2, Name: "Closed Site", Status: "completed"},
	}}
	notifier := &recordingNotifier{}
	svc := NewService(repo, wh, catalog, projects, nil, nil, notifier, nil, nil)
	return &fixture{repo: repo, warehouse: wh, notifier: notifier, service: svc}
}

func checkout(qty float64, reorder *float64) TransferInput {
	return TransferInput{
		ProjectID:    1,
		ProductID:    7,
		Action:       ActionCheckedOut,
		Quantity:     qty,
		ReorderPoint: reorder,
		ActionBy:     Actor{UserID: 3, Name: "Ana Reyes", Role: "manager"},
	}
}

func TestRecordTransferInvalidQuantity(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()

	_, err := f.service.RecordTransfer(ctx, checkout(0, nil))
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.service.RecordTransfer(ctx, checkout(-5, nil))
	require.ErrorIs(t, err, ErrInvalidQuantity)

	require.Empty(t, f.repo.records, "no record may be appended on validation failure")
}

func TestRecordTransferInsufficientMainStock(t *testing.T) {
	f := newFixture(50)
	ctx := context.Background()

	_, err := f.service.RecordTransfer(ctx, checkout(100, nil))
	require.ErrorIs(t, err, ErrInsufficientMainStock)
	require.Empty(t, f.repo.records)
	require.InDelta(t, 50, f.warehouse.stock[7], 0.0001, "failed checkout must not touch warehouse stock")
}

func TestRecordTransferCheckoutDecrementsWarehouse(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()

	rec, err := f.service.RecordTransfer(ctx, checkout(30, nil))
	require.NoError(t, err)
	require.InDelta(t, 70, f.warehouse.stock[7], 0.0001)
	require.Equal(t, ActionCheckedOut, rec.Action)
	require.True(t, rec.TotalValue.Equal(decimal.NewFromInt(1500)), "30 * 50, got %s", rec.TotalValue)
	require.NotEmpty(t, rec.Code)
}

func TestRecordTransferReturnRestocksWarehouse(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()

	_, err := f.service.RecordTransfer(ctx, checkout(30, nil))
	require.NoError(t, err)

	_, err = f.service.RecordTransfer(ctx, TransferInput{
		ProjectID: 1, ProductID: 7, Action: ActionReturned, Quantity: 10,
		ActionBy: Actor{UserID: 3, Name: "Ana Reyes", Role: "manager"},
	})
	require.NoError(t, err)
	require.InDelta(t, 80, f.warehouse.stock[7], 0.0001)
}

func TestRecordTransferReturnExceedsProjectStock(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()

	_, err := f.service.RecordTransfer(ctx, checkout(10, nil))
	require.NoError(t, err)

	_, err = f.service.RecordTransfer(ctx, TransferInput{
		ProjectID: 1, ProductID: 7, Action: ActionReturned, Quantity: 11,
		ActionBy: Actor{UserID: 3, Name: "Ana Reyes", Role: "manager"},
	})
	require.ErrorIs(t, err, ErrInsufficientProjectStock)
	require.Len(t, f.repo.records, 1)
}

func TestRecordTransferReorderPointCarriesForward(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()

	_, err := f.service.RecordTransfer(ctx, checkout(5, ptr(10)))
	require.NoError(t, err)

	rec, err := f.service.RecordTransfer(ctx, checkout(3, nil))
	require.NoError(t, err)
	require.NotNil(t, rec.ReorderPoint, "omitting the threshold must not erase it")
	require.InDelta(t, 10, *rec.ReorderPoint, 0.0001)

	snapshots, err := f.service.CurrentInventory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.NotNil(t, snapshots[0].ReorderPoint)
	require.InDelta(t, 10, *snapshots[0].ReorderPoint, 0.0001)
}

func TestRecordTransferProjectClosed(t *testing.T) {
	f := newFixture(100)
	input := checkout(5, nil)
	input.ProjectID = 2

	_, err := f.service.RecordTransfer(context.Background(), input)
	require.ErrorIs(t, err, ErrProjectClosed)
}

func TestRecordTransferUnknownProductAndProject(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()

	input := checkout(5, nil)
	input.ProductID = 999
	_, err := f.service.RecordTransfer(ctx, input)
	require.ErrorIs(t, err, ErrProductNotFound)

	input = checkout(5, nil)
	input.ProjectID = 999
	_, err = f.service.RecordTransfer(ctx, input)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestRecordTransferCompensatesFailedAppend(t *testing.T) {
	f := newFixture(100)
	f.repo.failAppend = true

	_, err := f.service.RecordTransfer(context.Background(), checkout(30, nil))
	require.ErrorIs(t, err, ErrPersistence)
	require.InDelta(t, 100, f.warehouse.stock[7], 0.0001, "warehouse decrement must be rolled back")
	require.Empty(t, f.repo.records)
}

func TestRecordTransferDispatchesLowStockNotification(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()

	_, err := f.service.RecordTransfer(ctx, checkout(10, ptr(8)))
	require.NoError(t, err)

	_, err = f.service.RecordTransfer(ctx, TransferInput{
		ProjectID: 1, ProductID: 7, Action: ActionAdjusted, Quantity: 2,
		ActionBy: Actor{UserID: 3, Name: "Ana Reyes", Role: "manager"},
	})
	require.NoError(t, err)

	var lowStock []notify.LowStock
	for _, payload := range f.notifier.payloads {
		if p, ok := payload.(notify.LowStock); ok {
			lowStock = append(lowStock, p)
		}
	}
	require.NotEmpty(t, lowStock, "dropping to the threshold must raise a low stock notification")
	last := lowStock[len(lowStock)-1]
	require.InDelta(t, 8, last.CurrentQuantity, 0.0001)
	require.InDelta(t, 8, last.ReorderPoint, 0.0001)
}

func TestCurrentInventoryFoldsLedger(t *testing.T) {
	f := newFixture(100)
	ctx := context.Background()

	_, err := f.service.RecordTransfer(ctx, checkout(10, ptr(5)))
	require.NoError(t, err)
	_, err = f.service.RecordTransfer(ctx, TransferInput{
		ProjectID: 1, ProductID: 7, Action: ActionReturned, Quantity: 2,
		ActionBy: Actor{UserID: 3, Name: "Ana Reyes", Role: "manager"},
	})
	require.NoError(t, err)
	_, err = f.service.RecordTransfer(ctx, TransferInput{
		ProjectID: 1, ProductID: 7, Action: ActionAdjusted, Quantity: 3,
		ActionBy: Actor{UserID: 3, Name: "Ana Reyes", Role: "manager"},
	})
	require.NoError(t, err)

	snapshots, err := f.service.CurrentInventory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	snap := snapshots[0]
	require.InDelta(t, 5, snap.CurrentQuantity, 0.0001)
	require.True(t, snap.TotalValue.Equal(decimal.NewFromInt(400)))
	require.True(t, snap.IsLowStock)
}
