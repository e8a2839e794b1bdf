package renderer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/etnz/allocation"
	"github.com/shopspring/decimal"
)

// Slice is a labelled part of a pie chart.
type Slice struct {
	Label string
	Value allocation.Money
}

// Pie draws slices as horizontal bars, one per line, each proportional to its
// share of the total. A bar of the whole total would be width cells long.
// Slices that are not positive are left out. Pie returns "" when there is
// nothing to draw.
func Pie(slices []Slice, width int) string {
	var total allocation.Money
	labelWidth := 0
	for i, s := range slices {
		if i == 0 {
			total = allocation.M(0, s.Value.Currency())
		}
		if !s.Value.IsPositive() {
			continue
		}
		total = total.Add(s.Value)
		labelWidth = max(labelWidth, utf8.RuneCountInString(s.Label))
	}
	if !total.IsPositive() {
		return ""
	}

	w := decimal.NewFromInt(int64(width))
	var b strings.Builder
	for _, s := range slices {
		if !s.Value.IsPositive() {
			continue
		}
		share := s.Value.Ratio(total)
		cells := int(share.Decimal().Mul(w).Round(0).IntPart())
		fmt.Fprintf(&b, "%-*s %s %s\n", labelWidth, s.Label, strings.Repeat("█", cells), share)
	}
	return b.String()
}
