package ledger

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var xlsxSheetNames = map[ExportKind]string{
	ExportTransactions: "Transactions",
	ExportInventory:    "Current Inventory",
	ExportSummary:      "Category Summary",
}

// WriteXLSX streams the requested report as a spreadsheet with the same
// rows the CSV export produces.
func WriteXLSX(w io.Writer, kind ExportKind, records []Record, snapshots []Snapshot) error {
	rows, err := ExportRows(kind, records, snapshots)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := xlsxSheetNames[kind]
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil && len(rows) > 0 {
		last, cellErr := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if cellErr == nil {
			_ = f.SetCellStyle(sheet, "A1", last, headerStyle)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("ledger: write xlsx: %w", err)
	}
	return nil
}
