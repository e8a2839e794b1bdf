package allocation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func usd(v float64) Money { return M(v, USD) }
func twd(v float64) Money { return M(v, TWD) }
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var snapshotTime = time.Date(2026, time.January, 5, 14, 30, 0, 0, time.UTC)

// exact compares decimal based types by value.
var exact = cmp.Options{
	cmp.Comparer(func(a, b Money) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b Percent) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b Quantity) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
}

// priceTable builds a snapshot with a TWD quote and name/price pairs.
func priceTable(quote string, pairs ...string) PriceTable {
	p := NewPriceTable(snapshotTime)
	if quote != "" {
		p.Quote = dec(quote)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Set(pairs[i], dec(pairs[i+1]))
	}
	return p
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func assertMoney(t *testing.T, name string, got, want Money) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %v %s, want %v %s", name, got.Decimal(), got.Currency(), want.Decimal(), want.Currency())
	}
}
