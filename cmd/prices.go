package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/market"
	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
)

type pricesCmd struct {
	refresh bool
	json    bool
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "fetch and print the prices the holdings need" }
func (*pricesCmd) Usage() string {
	return `alloc prices [-r] [-json] [<symbol>...]

  Fetches the last prices of the share holdings, of the TWD exchange rate and
  of any extra symbol given as argument.

  Prices are cached for -cache-ttl, -r ignores the cache.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.refresh, "r", false, "refresh, ignoring cached prices")
	f.BoolVar(&c.json, "json", false, "print the prices as JSON")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	hs, err := DecodeHoldings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	provider, err := openProvider()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if cache, ok := provider.(*market.Cache); ok && c.refresh {
		if err := cache.Invalidate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	prices, err := provider.Fetch(ctx, allocation.Symbols(hs, append([]string{renderer.BTCSymbol}, f.Args()...)...))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot fetch data: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(prices); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.PricesMarkdown(prices))
	return subcommands.ExitSuccess
}
