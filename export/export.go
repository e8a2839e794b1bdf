// Package export writes allocation reports to spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/etnz/allocation"
	"github.com/xuri/excelize/v2"
)

const (
	HoldingsSheet   = "Holdings"
	AllocationSheet = "Allocation"

	// built-in excel number formats
	numFmtAmount  = 4  // #,##0.00
	numFmtPercent = 10 // 0.00%
)

// Workbook builds a workbook with the holdings, the allocation and a pie chart
// of the buckets' current values. The caller closes the returned file.
func Workbook(r *allocation.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", HoldingsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming default sheet: %w", err)
	}
	if _, err := f.NewSheet(AllocationSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet %q: %w", AllocationSheet, err)
	}

	if err := writeSheet(f, HoldingsSheet, buildHoldings(r), map[string]int{
		"E": numFmtAmount, "F": numFmtAmount, "G": numFmtAmount, "H": numFmtPercent,
	}); err != nil {
		f.Close()
		return nil, err
	}
	buckets := buildAllocation(r)
	if err := writeSheet(f, AllocationSheet, buckets, map[string]int{
		"B": numFmtAmount, "C": numFmtPercent, "D": numFmtPercent, "E": numFmtAmount,
	}); err != nil {
		f.Close()
		return nil, err
	}

	if n := len(buckets) - 1; n > 0 {
		err := f.AddChart(AllocationSheet, "H2", &excelize.Chart{
			Type: excelize.Pie,
			Series: []excelize.ChartSeries{{
				Name:       AllocationSheet + "!$B$1",
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", AllocationSheet, n+1),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", AllocationSheet, n+1),
			}},
			Title: []excelize.RichTextRun{{Text: "Current allocation"}},
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("adding chart: %w", err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write writes the workbook of r to w, in xlsx format.
func Write(w io.Writer, r *allocation.Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// buildHoldings builds the Holdings sheet data.
// Columns: Name | Category | Quantity | Unit | Price | Value (USD) | Value (TWD) | Share | Note
func buildHoldings(r *allocation.Report) [][]any {
	data := [][]any{
		{"Name", "Category", "Quantity", "Unit", "Price", "Value (USD)", "Value (TWD)", "Share", "Note"},
	}
	for _, v := range r.Valuations {
		data = append(data, []any{
			v.Holding.Name,
			v.Holding.Category,
			v.Holding.Quantity.Decimal().InexactFloat64(),
			v.Holding.Unit.String(),
			v.Price.InexactFloat64(),
			v.Value.AsFloat(),
			v.ValueTWD.AsFloat(),
			v.Fraction.Float64(),
			v.Degraded.String(),
		})
	}
	return data
}

// buildAllocation builds the Allocation sheet data.
// Columns: Bucket | Current | Current % | Target % | Delta | Status
func buildAllocation(r *allocation.Report) [][]any {
	data := [][]any{
		{"Bucket", "Current", "Current %", "Target %", "Delta", "Status"},
	}
	for _, d := range r.Drifts {
		data = append(data, []any{
			d.Bucket,
			d.Current.AsFloat(),
			d.CurrentFraction.Float64(),
			d.Target.Float64(),
			d.Delta.AsFloat(),
			d.Status.String(),
		})
	}
	return data
}

// writeSheet writes rows from A1 and applies number formats by column.
func writeSheet(f *excelize.File, sheet string, rows [][]any, formats map[string]int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) < 2 {
		return nil
	}
	for col, numFmt := range formats {
		style, err := f.NewStyle(&excelize.Style{NumFmt: numFmt})
		if err != nil {
			return fmt.Errorf("creating style: %w", err)
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("%s2", col), fmt.Sprintf("%s%d", col, len(rows)), style); err != nil {
			return fmt.Errorf("styling %s column %s: %w", sheet, col, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
