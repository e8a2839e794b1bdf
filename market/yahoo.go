package market

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/allocation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/multi"
)

// Yahoo fetches the last daily close of every symbol in one batch download.
// Symbols use Yahoo's notation: VEA, 2330.TW, BTC-USD, TWDUSD=X.
type Yahoo struct {
	log zerolog.Logger
	now func() time.Time
}

// NewYahoo creates a Yahoo Finance provider.
func NewYahoo(log zerolog.Logger) *Yahoo {
	return &Yahoo{
		log: log.With().Str("provider", "yahoo").Logger(),
		now: time.Now,
	}
}

func (*Yahoo) Name() string { return "yahoo" }

// Fetch downloads the last five days of daily bars and keeps the last close.
func (y *Yahoo) Fetch(ctx context.Context, symbols []string) (allocation.PriceTable, error) {
	if err := ctx.Err(); err != nil {
		return allocation.PriceTable{}, fmt.Errorf("%w: yahoo: %w", ErrFetchFailed, err)
	}
	if len(symbols) == 0 {
		return allocation.NewPriceTable(y.now()), nil
	}

	params := models.DefaultDownloadParams()
	params.Symbols = symbols
	params.Period = "5d" // covers week-ends and holidays
	params.Interval = "1d"

	result, err := multi.Download(symbols, &params)
	if err != nil {
		return allocation.PriceTable{}, fmt.Errorf("%w: yahoo: %w", ErrFetchFailed, err)
	}

	table := allocation.NewPriceTable(y.now())
	for _, symbol := range symbols {
		if bars, ok := result.Data[symbol]; ok && len(bars) > 0 {
			table.Set(symbol, decimal.NewFromFloat(bars[len(bars)-1].Close))
		} else if err, ok := result.Errors[symbol]; ok {
			y.log.Warn().Err(err).Str("symbol", symbol).Msg("no quote")
		} else {
			y.log.Warn().Str("symbol", symbol).Msg("no bar returned")
		}
	}
	if table.IsEmpty() {
		return allocation.PriceTable{}, fmt.Errorf("%w: yahoo returned no price for %v", ErrFetchFailed, symbols)
	}
	y.log.Debug().Int("symbols", len(symbols)).Int("prices", len(table.Prices)).Msg("fetched")
	return table, nil
}
