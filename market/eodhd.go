package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etnz/allocation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultEODHDURL is the EOD Historical Data API root.
const DefaultEODHDURL = "https://eodhd.com/api/"

// EODHD fetches delayed real-time quotes from eodhd.com. It needs an API key,
// see https://eodhd.com/
type EODHD struct {
	base   string
	apiKey string
	client *http.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewEODHD creates an EODHD provider, base defaults to DefaultEODHDURL.
func NewEODHD(apiKey, base string, log zerolog.Logger) *EODHD {
	if base == "" {
		base = DefaultEODHDURL
	}
	return &EODHD{
		base:   strings.TrimSuffix(base, "/") + "/",
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.With().Str("provider", "eodhd").Logger(),
		now:    time.Now,
	}
}

func (*EODHD) Name() string { return "eodhd" }

// eodhdTicker converts a Yahoo style symbol to EODHD's "SYMBOL.EXCHANGE".
func eodhdTicker(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, "=X"):
		// The Ticker for forex is in the format "fromCurrency+toCurrency.FOREX".
		return strings.TrimSuffix(symbol, "=X") + ".FOREX"
	case strings.HasSuffix(symbol, "-USD"):
		return symbol + ".CC"
	case strings.Contains(symbol, "."):
		return symbol
	}
	return symbol + ".US"
}

// quote is an item of the real-time endpoint:
//
//	{"code":"VEA.US","timestamp":1767622800,"close":57.91,"previousClose":57.5, ...}
//
// Prices are "NA" when the market has no data.
type quote struct {
	Code          string `json:"code"`
	Close         any    `json:"close"`
	PreviousClose any    `json:"previousClose"`
}

func (q quote) price() (decimal.Decimal, bool) {
	for _, v := range []any{q.Close, q.PreviousClose} {
		if f, ok := v.(float64); ok && f > 0 {
			return decimal.NewFromFloat(f), true
		}
	}
	return decimal.Zero, false
}

func (e *EODHD) Fetch(ctx context.Context, symbols []string) (allocation.PriceTable, error) {
	if e.apiKey == "" {
		return allocation.PriceTable{}, fmt.Errorf("%w: eodhd: %w", ErrFetchFailed, errors.New("missing API key"))
	}
	table := allocation.NewPriceTable(e.now())
	if len(symbols) == 0 {
		return table, nil
	}

	bySymbol := make(map[string]string, len(symbols)) // eodhd ticker -> symbol
	tickers := make([]string, 0, len(symbols))
	for _, s := range symbols {
		t := eodhdTicker(s)
		bySymbol[t] = s
		tickers = append(tickers, t)
	}

	addr := fmt.Sprintf("%sreal-time/%s?fmt=json&api_token=%s", e.base, url.PathEscape(tickers[0]), url.QueryEscape(e.apiKey))
	if len(tickers) > 1 {
		addr += "&s=" + url.QueryEscape(strings.Join(tickers[1:], ","))
	}

	var raw json.RawMessage
	if err := jwget(ctx, e.client, addr, &raw); err != nil {
		return allocation.PriceTable{}, fmt.Errorf("%w: eodhd: %w", ErrFetchFailed, err)
	}
	// a single ticker returns an object, several an array.
	var quotes []quote
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &quotes); err != nil {
			return allocation.PriceTable{}, fmt.Errorf("%w: eodhd: %w", ErrFetchFailed, err)
		}
	} else {
		var q quote
		if err := json.Unmarshal(trimmed, &q); err != nil {
			return allocation.PriceTable{}, fmt.Errorf("%w: eodhd: %w", ErrFetchFailed, err)
		}
		quotes = append(quotes, q)
	}

	for _, q := range quotes {
		symbol, ok := bySymbol[q.Code]
		if !ok {
			e.log.Debug().Str("code", q.Code).Msg("unexpected ticker in response")
			continue
		}
		price, ok := q.price()
		if !ok {
			e.log.Warn().Str("symbol", symbol).Msg("no quote")
			continue
		}
		table.Set(symbol, price)
	}
	if table.IsEmpty() {
		return allocation.PriceTable{}, fmt.Errorf("%w: eodhd returned no price for %v", ErrFetchFailed, symbols)
	}
	return table, nil
}
