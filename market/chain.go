package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/allocation"
)

// Chain asks providers in order. The first one that succeeds sets the
// snapshot; the following ones are only asked for the symbols still missing.
type Chain []Provider

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return strings.Join(names, "+")
}

func (c Chain) Fetch(ctx context.Context, symbols []string) (allocation.PriceTable, error) {
	var (
		table allocation.PriceTable
		found bool
		errs  []error
	)
	missing := symbols
	for _, p := range c {
		if found && len(missing) == 0 {
			break
		}
		t, err := p.Fetch(ctx, missing)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if found {
			table = table.Merge(t)
		} else {
			table, found = t, true
		}
		missing = table.Missing(symbols)
	}
	if !found {
		if len(errs) == 0 {
			errs = append(errs, errors.New("no provider"))
		}
		return allocation.PriceTable{}, fmt.Errorf("%w: %w", ErrFetchFailed, errors.Join(errs...))
	}
	return table, nil
}
