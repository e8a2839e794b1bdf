package market

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/allocation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultChartURL is Yahoo's public chart endpoint.
const DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// chartPricePath locates the last trade price in a chart response:
//
//	{"chart": {"result": [{"meta": {"symbol": "VEA", "regularMarketPrice": 57.9, ...}}]}}
const chartPricePath = "$.chart.result[0].meta.regularMarketPrice"

// Chart queries the chart endpoint one symbol at a time. It is slower than
// Yahoo's batch download but needs nothing but HTTP.
type Chart struct {
	base   string
	client *http.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewChart creates a chart provider, base defaults to DefaultChartURL.
func NewChart(base string, log zerolog.Logger) *Chart {
	if base == "" {
		base = DefaultChartURL
	}
	return &Chart{
		base:   strings.TrimSuffix(base, "/") + "/",
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log.With().Str("provider", "chart").Logger(),
		now:    time.Now,
	}
}

func (*Chart) Name() string { return "chart" }

func (c *Chart) Fetch(ctx context.Context, symbols []string) (allocation.PriceTable, error) {
	table := allocation.NewPriceTable(c.now())
	var lastErr error
	for _, symbol := range symbols {
		price, err := c.latest(ctx, symbol)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("no quote")
			lastErr = err
			continue
		}
		table.Set(symbol, price)
	}
	if table.IsEmpty() && len(symbols) > 0 {
		return allocation.PriceTable{}, fmt.Errorf("%w: chart: %w", ErrFetchFailed, lastErr)
	}
	return table, nil
}

func (c *Chart) latest(ctx context.Context, symbol string) (decimal.Decimal, error) {
	addr := c.base + url.PathEscape(symbol) + "?interval=1d&range=5d"
	var jobj any
	if err := jwget(ctx, c.client, addr, &jobj); err != nil {
		return decimal.Zero, fmt.Errorf("error in wget %q: %w", symbol, err)
	}
	jval, err := jsonpath.Get(chartPricePath, jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing %q: %q %w", symbol, chartPricePath, err)
	}
	// jsonpath can return a list of one answer or the answer itself.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case float64:
		if v <= 0 {
			return decimal.Zero, fmt.Errorf("no price for %q: %v", symbol, v)
		}
		return decimal.NewFromFloat(v), nil
	case string:
		// some mirrors quote numbers as strings
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil || f <= 0 {
			return decimal.Zero, fmt.Errorf("invalid price for %q: %q", symbol, v)
		}
		return decimal.NewFromFloat(f), nil
	}
	return decimal.Zero, fmt.Errorf("error parsing %q: %q not a number %v", symbol, chartPricePath, jval)
}
