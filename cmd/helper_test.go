package cmd

import (
	"bytes"
	"context"
	"flag"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/market"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// setGlobal sets *p to v for the duration of the test.
func setGlobal[T any](t *testing.T, p *T, v T) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

type fakeProvider struct {
	prices allocation.PriceTable
	err    error
	calls  int
}

func (*fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(_ context.Context, _ []string) (allocation.PriceTable, error) {
	f.calls++
	return f.prices, f.err
}

// samplePrices quotes VEA at 50 USD, and TWD at 32 per USD.
func samplePrices() allocation.PriceTable {
	p := allocation.NewPriceTable(time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC))
	p.Set("VEA", decimal.NewFromInt(50))
	p.Set("BTC-USD", decimal.NewFromInt(97000))
	p.Set(allocation.FXSymbol, decimal.RequireFromString("0.03125"))
	return p
}

// workspace points the holdings and targets files to a temporary directory,
// captures the output and serves prices from fake.
func workspace(t *testing.T, fake market.Provider) (dir string, out *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	out = &bytes.Buffer{}
	setGlobal(t, holdingsFile, filepath.Join(dir, "holdings.json"))
	setGlobal(t, targetsFile, filepath.Join(dir, "targets.json"))
	setGlobal(t, cacheFile, filepath.Join(dir, "prices.msgpack"))
	setGlobal(t, rawOutput, true)
	setGlobal(t, &stdout, io.Writer(out))
	setGlobal(t, &openProvider, func() (market.Provider, error) { return fake, nil })
	return dir, out
}

// sampleFiles writes 10 VEA and 32000 TWD, targeting half of each.
func sampleFiles(t *testing.T) {
	t.Helper()
	require.NoError(t, EncodeHoldings(allocation.Holdings{
		{Name: "VEA", Category: "ETF", Quantity: allocation.Q(10), Unit: allocation.Shares},
		{Name: "CASH_TWD", Category: "cash", Quantity: allocation.Q(32000), Unit: allocation.AmountTWD},
	}))
	require.NoError(t, EncodeTargets(allocation.TargetAllocation{
		{Bucket: "VEA", Fraction: allocation.P(0.5)},
		{Bucket: "CASH", Fraction: allocation.P(0.5)},
	}))
}

// run parses args for a fresh command c and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return c.Execute(context.Background(), fs)
}

func runCtx(t *testing.T, ctx context.Context, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return c.Execute(ctx, fs)
}
