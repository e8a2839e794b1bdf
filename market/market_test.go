package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/allocation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, time.January, 5, 14, 30, 0, 0, time.UTC)

// fakeProvider returns a copy of table restricted to the requested symbols.
type fakeProvider struct {
	name   string
	table  allocation.PriceTable
	err    error
	calls  int
	lastIn []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(_ context.Context, symbols []string) (allocation.PriceTable, error) {
	f.calls++
	f.lastIn = symbols
	if f.err != nil {
		return allocation.PriceTable{}, f.err
	}
	t := allocation.NewPriceTable(f.table.FetchedAt)
	for _, s := range symbols {
		if s == allocation.FXSymbol {
			t.Quote = f.table.Quote
			continue
		}
		if p, ok := f.table.Price(s); ok {
			t.Set(s, p)
		}
	}
	if t.IsEmpty() {
		return allocation.PriceTable{}, ErrFetchFailed
	}
	return t, nil
}

func table(at time.Time, quote string, pairs ...string) allocation.PriceTable {
	t := allocation.NewPriceTable(at)
	if quote != "" {
		t.Quote = decimal.RequireFromString(quote)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Set(pairs[i], decimal.RequireFromString(pairs[i+1]))
	}
	return t
}

func assertPrice(t *testing.T, tbl allocation.PriceTable, symbol, want string) {
	t.Helper()
	got, ok := tbl.Price(symbol)
	if assert.True(t, ok, "no price for %s", symbol) {
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s = %v, want %s", symbol, got, want)
	}
}

func TestChain_CompletesMissingSymbols(t *testing.T) {
	first := &fakeProvider{name: "first", table: table(t0, "", "VEA", "50")}
	second := &fakeProvider{name: "second", table: table(t0, "0.032", "VEA", "49", "TSLA", "400")}
	chain := Chain{first, second}

	got, err := chain.Fetch(context.Background(), []string{"VEA", "TSLA", allocation.FXSymbol})
	require.NoError(t, err)

	assertPrice(t, got, "VEA", "50")
	assertPrice(t, got, "TSLA", "400")
	assert.True(t, got.Quote.Equal(decimal.RequireFromString("0.032")))
	assert.ElementsMatch(t, []string{"TSLA", allocation.FXSymbol}, second.lastIn)
	assert.Equal(t, "first+second", chain.Name())
}

func TestChain_SkipsFailingProvider(t *testing.T) {
	broken := &fakeProvider{name: "broken", err: errors.New("boom")}
	ok := &fakeProvider{name: "ok", table: table(t0, "0.032", "VEA", "50")}

	got, err := Chain{broken, ok}.Fetch(context.Background(), []string{"VEA"})
	require.NoError(t, err)
	assertPrice(t, got, "VEA", "50")
}

func TestChain_AllFail(t *testing.T) {
	_, err := Chain{&fakeProvider{name: "a", err: errors.New("boom")}}.Fetch(context.Background(), []string{"VEA"})
	assert.ErrorIs(t, err, ErrFetchFailed)

	_, err = Chain{}.Fetch(context.Background(), []string{"VEA"})
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestEODHDTicker(t *testing.T) {
	tests := map[string]string{
		"VEA":      "VEA.US",
		"2330.TW":  "2330.TW",
		"TWDUSD=X": "TWDUSD.FOREX",
		"BTC-USD":  "BTC-USD.CC",
	}
	for in, want := range tests {
		assert.Equal(t, want, eodhdTicker(in), in)
	}
}
