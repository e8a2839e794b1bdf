package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/etnz/allocation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *allocation.Report {
	hs := allocation.Holdings{
		{Name: "BTC", Category: "crypto", Quantity: allocation.Q(3000), Unit: allocation.SyntheticTotalUSD},
		{Name: "VEA", Category: "ETF", Quantity: allocation.Q(10), Unit: allocation.Shares},
		{Name: "CASH_TWD", Category: "cash", Quantity: allocation.Q(32000), Unit: allocation.AmountTWD},
	}
	prices := allocation.NewPriceTable(time.Date(2026, time.January, 5, 14, 30, 0, 0, time.UTC))
	prices.Set("VEA", decimal.NewFromInt(50))
	prices.Set(allocation.FXSymbol, decimal.RequireFromString("0.03125"))
	targets := allocation.TargetAllocation{
		{Bucket: "BTC", Fraction: allocation.P(0.5)},
		{Bucket: "VEA", Fraction: allocation.P(0.2)},
		{Bucket: "CASH", Fraction: allocation.P(0.3)},
	}
	return allocation.Evaluate(hs, prices, targets)
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestWorkbook(t *testing.T) {
	f, err := Workbook(sampleReport())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{HoldingsSheet, AllocationSheet}, f.GetSheetList())

	rows, err := f.GetRows(HoldingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Name", rows[0][0])
	assert.Equal(t, "CASH_TWD", raw(t, f, HoldingsSheet, "A4"))
	assert.Equal(t, "twd", raw(t, f, HoldingsSheet, "D4"))
	assert.Equal(t, "1000", raw(t, f, HoldingsSheet, "F4"))
	assert.Equal(t, "32000", raw(t, f, HoldingsSheet, "G4"))

	rows, err = f.GetRows(AllocationSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "BTC", raw(t, f, AllocationSheet, "A2"))
	assert.Equal(t, "3000", raw(t, f, AllocationSheet, "B2"))
	assert.Equal(t, "-750", raw(t, f, AllocationSheet, "E2"))
	assert.Equal(t, "sell", raw(t, f, AllocationSheet, "F2"))
	assert.Equal(t, "buy", raw(t, f, AllocationSheet, "F3"))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "VEA", raw(t, f, AllocationSheet, "A3"))
}

func TestWorkbook_Empty(t *testing.T) {
	r := allocation.Evaluate(nil, allocation.PriceTable{}, nil)
	f, err := Workbook(r)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(AllocationSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
