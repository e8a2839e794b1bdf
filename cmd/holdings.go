package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/allocation"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// holdingFlags are the flags shared by add and set.
type holdingFlags struct {
	name     string
	category string
	quantity float64
	unit     string
	price    float64
}

func (c *holdingFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Holding name, the market symbol for shares (e.g. VEA, 2330.TW)")
	f.StringVar(&c.category, "c", "", "Category, used to group holdings in buckets (e.g. ETF, cash)")
	f.Float64Var(&c.quantity, "q", 0, "Quantity: number of shares, or an amount for the other units")
	f.StringVar(&c.unit, "u", "shares", "Unit: shares, usd, twd or total_usd")
	f.Float64Var(&c.price, "p", 0, "Manual price, used instead of the market price. 0 removes it")
}

type addCmd struct{ holdingFlags }

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a holding" }
func (*addCmd) Usage() string {
	return `alloc add -n <name> -q <quantity> [-u <unit>] [-c <category>] [-p <price>]

  Adds a holding to the holdings file.

  Units:
    shares     quantity is a number of shares, valued at the market price.
               Names ending in .TW or .TWO are quoted in TWD.
    usd        quantity is an amount of USD.
    twd        quantity is an amount of TWD, converted at the market rate.
    total_usd  quantity is the total USD value of the position (crypto, options).

Usage Examples:
$ alloc add -n VEA -q 25 -c ETF
$ alloc add -n CASH_TWD -q 140000 -u twd -c cash
`
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	h, err := allocation.NewHolding(c.name, c.category, c.quantity, c.unit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.price > 0 {
		h = h.WithManualPrice(c.price)
	}

	hs, err := DecodeHoldings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := hs.Add(h); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodeHoldings(hs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Added %s to %s\n", h.Name, HoldingsFile())
	return subcommands.ExitSuccess
}

type setCmd struct{ holdingFlags }

func (*setCmd) Name() string     { return "set" }
func (*setCmd) Synopsis() string { return "change a holding" }
func (*setCmd) Usage() string {
	return `alloc set -n <name> [-q <quantity>] [-u <unit>] [-c <category>] [-p <price>]

  Changes the holding named <name>. Only the fields given as flags change.

Usage Examples:
# Sold 5 shares of VEA
$ alloc set -n VEA -q 20
`
}

func (c *setCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	hs, err := DecodeHoldings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	h, ok := hs.Get(c.name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: %v: %q\n", allocation.ErrNoSuchHolding, c.name)
		return subcommands.ExitFailure
	}

	var usageErr error
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "c":
			h.Category = c.category
		case "q":
			h.Quantity = allocation.Q(c.quantity)
		case "u":
			h.Unit, usageErr = allocation.ParseUnit(c.unit)
		case "p":
			if c.price > 0 {
				h = h.WithManualPrice(c.price)
			} else {
				h.ManualPrice = decimal.NullDecimal{}
			}
		}
	})
	if usageErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", usageErr)
		return subcommands.ExitUsageError
	}

	if err := hs.Set(h); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := EncodeHoldings(hs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Updated %s in %s\n", h.Name, HoldingsFile())
	return subcommands.ExitSuccess
}

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove holdings" }
func (*removeCmd) Usage() string {
	return `alloc remove <name>...

  Removes the named holdings from the holdings file.
`
}

func (*removeCmd) SetFlags(_ *flag.FlagSet) {}

func (*removeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: missing holding name")
		return subcommands.ExitUsageError
	}
	hs, err := DecodeHoldings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	for _, name := range f.Args() {
		if err := hs.Remove(name); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if err := EncodeHoldings(hs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Removed %d holding(s) from %s\n", f.NArg(), HoldingsFile())
	return subcommands.ExitSuccess
}
