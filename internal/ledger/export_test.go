package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportRowsUnknownKind(t *testing.T) {
	_, err := ExportRows(ExportKind("pivot"), nil, nil)
	require.ErrorIs(t, err, ErrUnknownExportKind)
}

func TestTransactionRowsFormatting(t *testing.T) {
	records := []Record{record(1, ActionCheckedOut, 10, 1250.5, nil)}
	records[0].ActionBy = Actor{Name: "Ana Reyes", Role: "manager"}
	records[0].Notes = "for footing, phase 1"

	rows, err := ExportRows(ExportTransactions, records, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{
		"Date", "Code", "Product", "Category", "Action", "Quantity", "Unit",
		"Unit Price", "Total Value", "Performed By", "Role", "Notes",
	}, rows[0])

	row := rows[1]
	require.Equal(t, "Deformed Bar 12mm", row[2])
	require.Equal(t, "Checked Out", row[4])
	require.Equal(t, "10", row[5])
	require.Equal(t, "₱1,250.50", row[7])
	require.Equal(t, "₱12,505.00", row[8])
	require.Equal(t, "Ana Reyes", row[9])
}

func TestInventoryRowsStatus(t *testing.T) {
	snapshots := Reconcile([]Record{
		record(1, ActionCheckedOut, 5, 50, ptr(5)),
	})

	rows, err := ExportRows(ExportInventory, nil, snapshots)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	require.Equal(t, "Deformed Bar 12mm", row[0])
	require.Equal(t, "5", row[4])
	require.Equal(t, "5", row[11])
	require.Equal(t, "Low Stock", row[12])
}

func TestSummaryRowsAggregateByCategory(t *testing.T) {
	steel := record(1, ActionCheckedOut, 10, 50, ptr(20))
	cement := record(2, ActionCheckedOut, 40, 250, nil)
	cement.ProductID = 8
	cement.ProductName = "Portland Cement"
	cement.Category = "Cement"

	rows, err := ExportRows(ExportSummary, nil, Reconcile([]Record{steel, cement}))
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per category")

	// Categories are sorted alphabetically.
	require.Equal(t, "Cement", rows[1][0])
	require.Equal(t, "1", rows[1][1])
	require.Equal(t, "₱10,000.00", rows[1][3])
	require.Equal(t, "Steel", rows[2][0])
	require.Equal(t, "1", rows[2][5], "steel item sits below its threshold")
}

func TestWriteCSVEscapesAndTerminates(t *testing.T) {
	records := []Record{record(1, ActionCheckedOut, 3, 100, nil)}
	records[0].Notes = `say "hello", twice`

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ExportTransactions, records, nil))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Date,Code,Product"), out)
	require.Contains(t, out, `"say ""hello"", twice"`)
	require.Contains(t, out, "\r\n")
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	snapshots := Reconcile([]Record{record(1, ActionCheckedOut, 5, 50, nil)})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ExportInventory, nil, snapshots))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Current Inventory")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	require.Equal(t, "Product", rows[0][0])
	require.Equal(t, "Deformed Bar 12mm", rows[1][0])
}
