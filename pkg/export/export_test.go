package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/export"
	"github.com/goliatone/go-bakery/pkg/finance"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

var bole = inventory.Branch{ID: 1, Name: "Bole", City: "Addis Ababa"}

func TestWriteInventory(t *testing.T) {
	rows := []inventory.Row{
		{
			Record: inventory.Record{
				BranchID:    1,
				ProductType: catalog.ProductTypeFlour,
				ProductName: "Teff Flour",
				Quantity:    2.5,
				LastUpdated: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			},
			Branch: bole,
			Unit:   "kg",
		},
		{
			Record: inventory.Record{BranchID: 1, ProductType: catalog.ProductTypeBread, ProductName: "White Loaf", Quantity: 40},
			Branch: bole,
			Unit:   "unit",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteInventory(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.InventorySheet}, f.GetSheetList())

	got, err := f.GetRows(export.InventorySheet)
	require.NoError(t, err)
	want := [][]string{
		{"Branch", "Product Type", "Product", "Quantity", "Unit", "Last Updated"},
		{"Bole (Addis Ababa)", "Flour", "Teff Flour", "2.5", "kg", "2024-03-01 09:30:00"},
		{"Bole (Addis Ababa)", "Bread", "White Loaf", "40", "unit"},
	}
	assert.Equal(t, want, got)
}

func TestWriteWorkbook_Transactions(t *testing.T) {
	txs := []inventory.TransactionRow{{
		Transaction: inventory.Transaction{
			ID:          "tx-1",
			ProductType: catalog.ProductTypeInjera,
			ProductName: "Teff Injera",
			Quantity:    5,
			Type:        inventory.StockOut,
			CreatedAt:   time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC),
		},
		Branch: bole,
	}}

	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(&buf, nil, txs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.InventorySheet, export.TransactionsSheet}, f.GetSheetList())

	got, err := f.GetRows(export.TransactionsSheet)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"2024-03-02 07:00:00", "Bole (Addis Ababa)", "Injera", "Teff Injera", "Stock Out", "5"}, got[1])

	header, err := f.GetRows(export.InventorySheet)
	require.NoError(t, err)
	assert.Len(t, header, 1)
}

func TestWriteReport_FinanceSheet(t *testing.T) {
	created := time.Date(2024, 3, 2, 7, 0, 0, 0, time.UTC)
	ledger := []finance.Entry{
		{ID: "e-1", BranchID: 1, ProductType: catalog.ProductTypeBread, ProductName: "White Loaf", Quantity: 3,
			UnitPrice: finance.ParseMoney("10.00"), Total: finance.ParseMoney("30.00"), Type: finance.Revenue, TransactionID: "tx-1", CreatedAt: created},
		{ID: "e-2", BranchID: 1, ProductType: catalog.ProductTypeBread, ProductName: "White Loaf", Quantity: 3,
			UnitPrice: finance.ParseMoney("39.95"), Total: finance.ParseMoney("119.85"), Type: finance.Expense, TransactionID: "tx-1", CreatedAt: created},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteReport(&buf, export.Report{
		Ledger:   ledger,
		Branches: map[uint64]inventory.Branch{1: bole},
	}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.InventorySheet, export.FinanceSheet}, f.GetSheetList())

	got, err := f.GetRows(export.FinanceSheet)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, "Unit Price", got[0][5])
	assert.Equal(t, []string{"2024-03-02 07:00:00", "Bole (Addis Ababa)", "Bread", "White Loaf", "3", "39.95", "119.85", "Expense", "tx-1"}, got[2])
	assert.Equal(t, "Revenue", got[4][0])
	assert.Equal(t, "30", got[4][6])
	assert.Equal(t, "Net", got[6][0])
	assert.Equal(t, "-89.85", got[6][6])
}
