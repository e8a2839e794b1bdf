package allocation

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// FXSymbol is the market symbol of the TWD quote, in USD for one TWD.
const FXSymbol = "TWDUSD=X"

// DefaultRate is the TWD per USD rate used when no quote is available.
//
// It keeps valuations going when the exchange rate cannot be fetched, at the
// cost of a possibly wrong total. Reports flag it with RateFallback.
var DefaultRate = decimal.RequireFromString("31.25")

// PriceTable is a snapshot of last trade prices.
type PriceTable struct {
	// Prices maps a holding name to its last price in its quote currency.
	Prices map[string]decimal.Decimal `json:"prices"`
	// Quote is the fetched FXSymbol value: USD for one TWD.
	Quote decimal.Decimal `json:"quote"`
	// FetchedAt is when the snapshot was taken.
	FetchedAt time.Time `json:"fetchedAt"`
}

// NewPriceTable returns an empty table taken at t.
func NewPriceTable(t time.Time) PriceTable {
	return PriceTable{Prices: make(map[string]decimal.Decimal), FetchedAt: t}
}

// Set records the price of name. The FX symbol goes to Quote.
func (p *PriceTable) Set(name string, price decimal.Decimal) {
	if name == FXSymbol {
		p.Quote = price
		return
	}
	if p.Prices == nil {
		p.Prices = make(map[string]decimal.Decimal)
	}
	p.Prices[name] = price
}

// Price returns the last price of name.
func (p PriceTable) Price(name string) (decimal.Decimal, bool) {
	v, ok := p.Prices[name]
	return v, ok
}

// Has reports whether name is quoted, the FX symbol included.
func (p PriceTable) Has(name string) bool {
	if name == FXSymbol {
		return p.Quote.IsPositive()
	}
	_, ok := p.Prices[name]
	return ok
}

// IsEmpty is true when there is neither a price nor a quote.
func (p PriceTable) IsEmpty() bool { return len(p.Prices) == 0 && p.Quote.IsZero() }

// Rate returns the number of TWD for one USD, as 1/Quote.
// When the quote is missing or not positive, DefaultRate is returned and
// fallback is true.
func (p PriceTable) Rate() (rate decimal.Decimal, fallback bool) {
	if !p.Quote.IsPositive() {
		return DefaultRate, true
	}
	return decimal.NewFromInt(1).Div(p.Quote), false
}

// Fresh reports whether the snapshot is younger than ttl at now.
func (p PriceTable) Fresh(now time.Time, ttl time.Duration) bool {
	if p.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(p.FetchedAt) < ttl
}

// Merge fills in prices missing from p with the ones in q.
func (p PriceTable) Merge(q PriceTable) PriceTable {
	r := NewPriceTable(p.FetchedAt)
	maps.Copy(r.Prices, q.Prices)
	maps.Copy(r.Prices, p.Prices)
	r.Quote = p.Quote
	if !r.Quote.IsPositive() {
		r.Quote = q.Quote
	}
	if r.FetchedAt.IsZero() {
		r.FetchedAt = q.FetchedAt
	}
	return r
}

// Missing lists the symbols not quoted in p.
func (p PriceTable) Missing(symbols []string) []string {
	var missing []string
	for _, s := range symbols {
		if !p.Has(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// Symbols lists the market symbols needed to value hs: share holdings that
// have no manual price, the FX symbol and any extra symbol to display. The
// list is sorted.
func Symbols(hs Holdings, extra ...string) []string {
	set := map[string]struct{}{FXSymbol: {}}
	for _, s := range extra {
		set[s] = struct{}{}
	}
	for _, h := range hs {
		if h.Unit != Shares || h.Name == "" {
			continue
		}
		if _, ok := h.manualPrice(); ok {
			continue
		}
		set[h.Name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
