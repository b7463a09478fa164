package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Reconcile folds ledger records into one snapshot per product. The fold
// is pure and deterministic: running it twice over the same records
// yields identical output, which makes it the recovery path when a
// cached snapshot is lost or suspect.
//
// Per-action deltas:
//
//	checked_out  quantity += q, value += q*price
//	returned     quantity -= q, value -= q*price (both floored at zero)
//	adjusted     quantity -= q (value untouched; cost was capitalized
//	             at checkout and the material was consumed, not returned)
func Reconcile(records []Record) []Snapshot {
	byProduct := make(map[int64][]Record)
	order := make([]int64, 0)
	for _, rec := range records {
		if _, seen := byProduct[rec.ProductID]; !seen {
			order = append(order, rec.ProductID)
		}
		byProduct[rec.ProductID] = append(byProduct[rec.ProductID], rec)
	}

	snapshots := make([]Snapshot, 0, len(order))
	for _, productID := range order {
		group := byProduct[productID]
		// Stable keeps insertion order for equal timestamps.
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
		if snap, ok := foldProduct(group); ok {
			snapshots = append(snapshots, snap)
		}
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].ProductName != snapshots[j].ProductName {
			return snapshots[i].ProductName < snapshots[j].ProductName
		}
		return snapshots[i].ProductID < snapshots[j].ProductID
	})
	return snapshots
}

func foldProduct(group []Record) (Snapshot, bool) {
	if len(group) == 0 {
		return Snapshot{}, false
	}

	snap := Snapshot{
		ProjectID: group[0].ProjectID,
		ProductID: group[0].ProductID,
	}
	value := decimal.Zero

	for _, rec := range group {
		if rec.Quantity <= 0 {
			continue
		}
		// Metadata follows the most recent record so renames and price
		// updates show through without rewriting history.
		snap.ProductName = rec.ProductName
		snap.Category = rec.Category
		snap.Unit = rec.Unit
		snap.Supplier = rec.Supplier
		snap.LastMovementAt = rec.CreatedAt
		if rec.SalePrice.IsPositive() {
			snap.UnitPrice = rec.SalePrice
		}

		qty := decimal.NewFromFloat(rec.Quantity)
		switch rec.Action {
		case ActionCheckedOut:
			snap.CurrentQuantity += rec.Quantity
			snap.TotalTransferredIn += rec.Quantity
			value = value.Add(qty.Mul(rec.SalePrice))
			if rec.ReorderPoint != nil {
				rp := *rec.ReorderPoint
				snap.ReorderPoint = &rp
			}
		case ActionReturned:
			snap.CurrentQuantity -= rec.Quantity
			snap.TotalReturnedOut += rec.Quantity
			value = value.Sub(qty.Mul(rec.SalePrice))
		case ActionAdjusted:
			snap.CurrentQuantity -= rec.Quantity
			snap.TotalAdjusted += rec.Quantity
		}
		if snap.CurrentQuantity < 0 {
			snap.CurrentQuantity = 0
		}
		if value.IsNegative() {
			value = decimal.Zero
		}
	}

	if snap.CurrentQuantity <= 0 &&
		snap.TotalTransferredIn <= 0 &&
		snap.TotalReturnedOut <= 0 &&
		snap.TotalAdjusted <= 0 {
		return Snapshot{}, false
	}

	snap.TotalValue = value
	snap.TotalCost = decimal.NewFromFloat(snap.CurrentQuantity).Mul(snap.UnitPrice)
	snap.IsLowStock = snap.ReorderPoint != nil && snap.CurrentQuantity <= *snap.ReorderPoint
	return snap, true
}

// currentQuantity folds only the running quantity for one product. Used
// by the transfer handler to validate returns and adjustments without
// building full snapshots.
func currentQuantity(records []Record) float64 {
	var qty float64
	for _, rec := range records {
		switch rec.Action {
		case ActionCheckedOut:
			qty += rec.Quantity
		case ActionReturned, ActionAdjusted:
			qty -= rec.Quantity
		}
		if qty < 0 {
			qty = 0
		}
	}
	return qty
}

// latestReorderPoint returns the most recent threshold asserted by a
// checkout record, or nil when none was ever set.
func latestReorderPoint(records []Record) *float64 {
	var rp *float64
	for _, rec := range records {
		if rec.Action == ActionCheckedOut && rec.ReorderPoint != nil {
			v := *rec.ReorderPoint
			rp = &v
		}
	}
	return rp
}
