// Package export writes inventory and finance reports as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/woodsbury/decimal128"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

const (
	InventorySheet    = "Inventory"
	TransactionsSheet = "Transactions"
	FinanceSheet      = "Finance"

	timeLayout = "2006-01-02 15:04:05"
)

var (
	inventoryHeader   = []any{"Branch", "Product Type", "Product", "Quantity", "Unit", "Last Updated"}
	transactionHeader = []any{"Date", "Branch", "Product Type", "Product", "Type", "Quantity"}
	financeHeader     = []any{"Date", "Branch", "Product Type", "Product", "Quantity", "Unit Price", "Total", "Type", "Source"}
)

// Report is the content of a workbook. Sheets without rows are left out,
// except Inventory which is always written.
type Report struct {
	Inventory    []inventory.Row
	Transactions []inventory.TransactionRow
	Ledger       []finance.Entry
	// Branches names the branch of each ledger entry.
	Branches map[uint64]inventory.Branch
}

// WriteInventory writes a workbook holding the Inventory sheet.
func WriteInventory(w io.Writer, rows []inventory.Row) error {
	return WriteWorkbook(w, rows, nil)
}

// WriteWorkbook writes the Inventory sheet and, when transactions are given,
// a Transactions sheet.
func WriteWorkbook(w io.Writer, rows []inventory.Row, txs []inventory.TransactionRow) error {
	return WriteReport(w, Report{Inventory: rows, Transactions: txs})
}

// WriteReport writes every sheet report carries. The Finance sheet ends with
// revenue, expense and net totals.
func WriteReport(w io.Writer, report Report) error {
	rows, txs := report.Inventory, report.Transactions
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), InventorySheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	inventoryRows := make([][]any, 0, len(rows))
	for _, row := range rows {
		inventoryRows = append(inventoryRows, []any{
			row.Branch.String(),
			row.ProductType.Label(),
			row.ProductName,
			row.Quantity,
			row.Unit,
			formatTime(row),
		})
	}
	if err := writeSheet(f, InventorySheet, inventoryHeader, inventoryRows); err != nil {
		return err
	}

	if len(txs) > 0 {
		if _, err := f.NewSheet(TransactionsSheet); err != nil {
			return fmt.Errorf("export: add sheet: %w", err)
		}
		txRows := make([][]any, 0, len(txs))
		for _, tx := range txs {
			txRows = append(txRows, []any{
				tx.CreatedAt.UTC().Format(timeLayout),
				tx.Branch.String(),
				tx.ProductType.Label(),
				tx.ProductName,
				tx.Type.Label(),
				tx.Quantity,
			})
		}
		if err := writeSheet(f, TransactionsSheet, transactionHeader, txRows); err != nil {
			return err
		}
	}

	if len(report.Ledger) > 0 {
		if err := writeLedger(f, report.Ledger, report.Branches); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func writeLedger(f *excelize.File, entries []finance.Entry, branches map[uint64]inventory.Branch) error {
	if _, err := f.NewSheet(FinanceSheet); err != nil {
		return fmt.Errorf("export: add sheet: %w", err)
	}
	rows := make([][]any, 0, len(entries)+4)
	for _, e := range entries {
		rows = append(rows, []any{
			e.CreatedAt.UTC().Format(timeLayout),
			branches[e.BranchID].String(),
			e.ProductType.Label(),
			e.ProductName,
			e.Quantity,
			amount(e.UnitPrice),
			amount(e.Total),
			e.Type.Label(),
			e.TransactionID,
		})
	}
	sum := finance.Summarize(entries)
	rows = append(rows,
		nil,
		[]any{finance.Revenue.Label(), nil, nil, nil, nil, nil, amount(sum.Revenue)},
		[]any{finance.Expense.Label(), nil, nil, nil, nil, nil, amount(sum.Expense)},
		[]any{"Net", nil, nil, nil, nil, nil, amount(sum.Net)},
	)
	return writeSheet(f, FinanceSheet, financeHeader, rows)
}

// amount writes money as a number cell with two decimal places.
func amount(d decimal128.Decimal) float64 {
	v, _ := strconv.ParseFloat(finance.Money(d), 64)
	return v
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("export: stream %s: %w", sheet, err)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("export: %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("export: %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export: flush %s: %w", sheet, err)
	}
	return nil
}

// formatTime leaves the cell out for records never updated.
func formatTime(row inventory.Row) any {
	if row.LastUpdated.IsZero() {
		return nil
	}
	return row.LastUpdated.UTC().Format(timeLayout)
}
