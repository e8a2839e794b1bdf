// Package market fetches the last prices needed to value a portfolio.
//
// Providers are best effort: a symbol they cannot quote is simply missing
// from the returned PriceTable, and ErrFetchFailed is returned only when
// nothing could be fetched at all.
package market

import (
	"context"
	"errors"

	"github.com/etnz/allocation"
)

// ErrFetchFailed wraps every failure to produce a price table.
var ErrFetchFailed = errors.New("price fetch failed")

// Provider returns a price snapshot for symbols. The FX symbol
// allocation.FXSymbol is reported as the table's Quote.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) (allocation.PriceTable, error)
}
