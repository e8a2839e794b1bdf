package renderer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/allocation"
)

// tableRenderer writes markdown tables.
type tableRenderer struct {
	*strings.Builder
}

func newTableRenderer() *tableRenderer { return &tableRenderer{Builder: &strings.Builder{}} }

// Printf formats according to a format specifier and writes to the renderer's buffer.
func (r *tableRenderer) Printf(format string, args ...any) {
	fmt.Fprintf(r, format, args...)
}

// HoldingsMarkdown lists the holdings, without valuing them.
func HoldingsMarkdown(hs allocation.Holdings) string {
	r := newTableRenderer()
	r.Printf("## Holdings\n\n")
	if len(hs) == 0 {
		r.Printf("No holdings.\n")
		return r.String()
	}
	r.Printf("| Name | Category | Quantity | Unit | Manual Price |\n")
	r.Printf("|:---|:---|---:|:---|---:|\n")
	for _, h := range hs {
		price := ""
		if h.ManualPrice.Valid {
			price = h.ManualPrice.Decimal.String()
		}
		r.Printf("| %s | %s | %s | %s | %s |\n", h.Name, h.Category, h.Quantity, h.UnitText(), price)
	}
	return r.String()
}

// TargetsMarkdown lists the target buckets and their total.
func TargetsMarkdown(ta allocation.TargetAllocation) string {
	r := newTableRenderer()
	r.Printf("## Targets\n\n")
	if len(ta) == 0 {
		r.Printf("No targets.\n")
		return r.String()
	}
	r.Printf("| Bucket | Target | Members |\n")
	r.Printf("|:---|---:|:---|\n")
	for _, t := range ta {
		r.Printf("| %s | %s | %s |\n", t.Bucket, t.Fraction, strings.Join(t.Members, ", "))
	}
	r.Printf("| **Total** | **%s** | |\n", ta.Sum())
	return r.String()
}

// PricesMarkdown lists the prices of a snapshot, sorted by symbol, and the
// exchange rate.
func PricesMarkdown(p allocation.PriceTable) string {
	r := newTableRenderer()
	r.Printf("## Prices")
	if !p.FetchedAt.IsZero() {
		r.Printf(" on %s", p.FetchedAt.Format("2006-01-02 15:04"))
	}
	r.Printf("\n\n")
	r.Printf("| Symbol | Price |\n")
	r.Printf("|:---|---:|\n")
	for _, symbol := range slices.Sorted(maps.Keys(p.Prices)) {
		r.Printf("| %s | %s |\n", symbol, p.Prices[symbol])
	}
	if p.Quote.IsPositive() {
		r.Printf("| %s | %s |\n", allocation.FXSymbol, p.Quote)
	}
	rate, fallback := p.Rate()
	r.Printf("\nTWD per USD: %s", rate.StringFixed(2))
	if fallback {
		r.Printf(" (default, no quote)")
	}
	r.Printf("\n")
	return r.String()
}
