package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sitetrack/sitetrack/internal/shared"
)

// ExportKind selects which report an export produces.
type ExportKind string

const (
	// ExportTransactions is the raw movement log.
	ExportTransactions ExportKind = "transactions"
	// ExportInventory is the reconciled per-product state.
	ExportInventory ExportKind = "inventory"
	// ExportSummary aggregates the reconciled state per category.
	ExportSummary ExportKind = "summary"
)

// Valid reports whether the export kind is known.
func (k ExportKind) Valid() bool {
	switch k {
	case ExportTransactions, ExportInventory, ExportSummary:
		return true
	}
	return false
}

// ErrUnknownExportKind indicates an unsupported report kind.
var ErrUnknownExportKind = fmt.Errorf("ledger: unknown export kind")

// ExportRows produces header plus data rows for the requested kind.
// Pure transformation: records feed the transaction report, snapshots
// feed the inventory and summary reports. Formatting matches the JSON
// API display helpers so exported and on-screen figures agree.
func ExportRows(kind ExportKind, records []Record, snapshots []Snapshot) ([][]string, error) {
	switch kind {
	case ExportTransactions:
		return transactionRows(records), nil
	case ExportInventory:
		return inventoryRows(snapshots), nil
	case ExportSummary:
		return summaryRows(snapshots), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownExportKind, kind)
}

// WriteCSV streams the requested report as CSV: comma separated,
// double-quote escaped, one header row.
func WriteCSV(w io.Writer, kind ExportKind, records []Record, snapshots []Snapshot) error {
	rows, err := ExportRows(kind, records, snapshots)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func transactionRows(records []Record) [][]string {
	rows := [][]string{{
		"Date", "Code", "Product", "Category", "Action", "Quantity", "Unit",
		"Unit Price", "Total Value", "Performed By", "Role", "Notes",
	}}
	for _, rec := range records {
		rows = append(rows, []string{
			shared.FormatDate(rec.CreatedAt),
			rec.Code,
			rec.ProductName,
			rec.Category,
			actionLabel(rec.Action),
			shared.FormatQuantity(rec.Quantity),
			rec.Unit,
			shared.FormatPeso(rec.SalePrice),
			shared.FormatPeso(rec.TotalValue),
			rec.ActionBy.Name,
			rec.ActionBy.Role,
			rec.Notes,
		})
	}
	return rows
}

func inventoryRows(snapshots []Snapshot) [][]string {
	rows := [][]string{{
		"Product", "Category", "Unit", "Supplier", "Current Quantity",
		"Transferred In", "Returned", "Used", "Unit Price", "Total Value",
		"Total Cost", "Reorder Point", "Status",
	}}
	for _, snap := range snapshots {
		reorder := ""
		if snap.ReorderPoint != nil {
			reorder = shared.FormatQuantity(*snap.ReorderPoint)
		}
		rows = append(rows, []string{
			snap.ProductName,
			snap.Category,
			snap.Unit,
			snap.Supplier,
			shared.FormatQuantity(snap.CurrentQuantity),
			shared.FormatQuantity(snap.TotalTransferredIn),
			shared.FormatQuantity(snap.TotalReturnedOut),
			shared.FormatQuantity(snap.TotalAdjusted),
			shared.FormatPeso(snap.UnitPrice),
			shared.FormatPeso(snap.TotalValue),
			shared.FormatPeso(snap.TotalCost),
			reorder,
			StatusLabel(snap),
		})
	}
	return rows
}

type categoryTotals struct {
	products int
	quantity float64
	value    decimal.Decimal
	cost     decimal.Decimal
	lowStock int
}

func summaryRows(snapshots []Snapshot) [][]string {
	totals := make(map[string]*categoryTotals)
	for _, snap := range snapshots {
		category := snap.Category
		if category == "" {
			category = "Uncategorized"
		}
		agg, ok := totals[category]
		if !ok {
			agg = &categoryTotals{value: decimal.Zero, cost: decimal.Zero}
			totals[category] = agg
		}
		agg.products++
		agg.quantity += snap.CurrentQuantity
		agg.value = agg.value.Add(snap.TotalValue)
		agg.cost = agg.cost.Add(snap.TotalCost)
		if snap.IsLowStock {
			agg.lowStock++
		}
	}

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rows := [][]string{{
		"Category", "Products", "Total Quantity", "Total Value", "Total Cost", "Low Stock Items",
	}}
	for _, category := range categories {
		agg := totals[category]
		rows = append(rows, []string{
			category,
			strconv.Itoa(agg.products),
			shared.FormatQuantity(agg.quantity),
			shared.FormatPeso(agg.value),
			shared.FormatPeso(agg.cost),
			strconv.Itoa(agg.lowStock),
		})
	}
	return rows
}

// StatusLabel mirrors the on-screen stock badge. Zero quantity reads
// "Out of Stock"; low stock requires a configured reorder point.
func StatusLabel(snap Snapshot) string {
	switch {
	case snap.CurrentQuantity <= 0:
		return "Out of Stock"
	case snap.IsLowStock:
		return "Low Stock"
	default:
		return "In Stock"
	}
}

func actionLabel(action Action) string {
	switch action {
	case ActionCheckedOut:
		return "Checked Out"
	case ActionReturned:
		return "Returned"
	case ActionAdjusted:
		return "Used"
	}
	return string(action)
}
