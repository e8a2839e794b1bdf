package allocation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestPriceTable_Rate(t *testing.T) {
	tests := []struct {
		quote        string
		want         string
		wantFallback bool
	}{
		{"0.032", "31.25", false},
		{"0.04", "25", false},
		{"0", "31.25", true},
		{"", "31.25", true},
		{"-0.03", "31.25", true},
	}
	for _, tt := range tests {
		p := priceTable(tt.quote)
		got, fallback := p.Rate()
		if !got.Equal(dec(tt.want)) || fallback != tt.wantFallback {
			t.Errorf("quote %q: Rate() = %v, %v, want %v, %v", tt.quote, got, fallback, tt.want, tt.wantFallback)
		}
	}
}

func TestPriceTable_SetAndHas(t *testing.T) {
	p := NewPriceTable(snapshotTime)
	if !p.IsEmpty() {
		t.Error("new table is not empty")
	}
	p.Set(FXSymbol, dec("0.032"))
	p.Set("VEA", dec("50"))

	if !p.Quote.Equal(dec("0.032")) {
		t.Errorf("Quote = %v, want 0.032", p.Quote)
	}
	if _, ok := p.Prices[FXSymbol]; ok {
		t.Error("FX symbol stored as a price")
	}
	if !p.Has(FXSymbol) || !p.Has("VEA") || p.Has("TSLA") {
		t.Errorf("Has() inconsistent with %v", p)
	}
	if diff := cmp.Diff([]string{"TSLA"}, p.Missing([]string{"VEA", FXSymbol, "TSLA"})); diff != "" {
		t.Errorf("Missing() mismatch (-want +got):\n%s", diff)
	}
}

func TestPriceTable_Fresh(t *testing.T) {
	p := NewPriceTable(snapshotTime)
	ttl := 300 * time.Second
	if !p.Fresh(snapshotTime.Add(299*time.Second), ttl) {
		t.Error("snapshot should be fresh before the ttl")
	}
	if p.Fresh(snapshotTime.Add(300*time.Second), ttl) {
		t.Error("snapshot should be stale at the ttl")
	}
	if (PriceTable{}).Fresh(snapshotTime, ttl) {
		t.Error("zero snapshot should never be fresh")
	}
}

func TestPriceTable_Merge(t *testing.T) {
	a := priceTable("", "VEA", "50")
	b := priceTable("0.032", "VEA", "49", "TSLA", "400")
	got := a.Merge(b)

	want := map[string]decimal.Decimal{"VEA": dec("50"), "TSLA": dec("400")}
	if diff := cmp.Diff(want, got.Prices, exact); diff != "" {
		t.Errorf("Merge() prices mismatch (-want +got):\n%s", diff)
	}
	if !got.Quote.Equal(dec("0.032")) {
		t.Errorf("Merge() quote = %v, want 0.032", got.Quote)
	}
}

func TestSymbols(t *testing.T) {
	hs := Holdings{
		{Name: "VEA", Quantity: Q(1), Unit: Shares},
		Holding{Name: "TSLA", Quantity: Q(1), Unit: Shares}.WithManualPrice(10),
		{Name: "CASH_USD", Quantity: Q(1), Unit: AmountUSD},
		{Name: "2330.TW", Quantity: Q(1), Unit: Shares},
	}
	got := Symbols(hs, "BTC-USD")
	want := []string{"2330.TW", "BTC-USD", FXSymbol, "VEA"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Symbols() mismatch (-want +got):\n%s", diff)
	}
}
