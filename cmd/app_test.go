package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/market"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldingsCommands(t *testing.T) {
	dir, out := workspace(t, &fakeProvider{})

	assert.Equal(t, subcommands.ExitSuccess, run(t, &initCmd{}))
	assert.FileExists(t, filepath.Join(dir, "holdings.json"))
	assert.FileExists(t, filepath.Join(dir, "targets.json"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &initCmd{}), "init must not overwrite")
	assert.Equal(t, subcommands.ExitSuccess, run(t, &initCmd{}, "-f"))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &addCmd{}, "-n", "AAPL", "-q", "2", "-c", "stock"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &addCmd{}, "-n", "AAPL", "-q", "1"), "duplicate")
	assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{}, "-n", "X", "-u", "bushels"))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &setCmd{}, "-n", "AAPL", "-q", "3", "-p", "100"))
	hs, err := DecodeHoldings()
	require.NoError(t, err)
	h, ok := hs.Get("AAPL")
	require.True(t, ok)
	assert.True(t, h.Quantity.Equal(allocation.Q(3)))
	assert.Equal(t, "stock", h.Category, "set must keep the fields not given")
	assert.True(t, h.ManualPrice.Valid)
	assert.Equal(t, "100", h.ManualPrice.Decimal.String())

	assert.Equal(t, subcommands.ExitSuccess, run(t, &setCmd{}, "-n", "AAPL", "-p", "0"))
	hs, err = DecodeHoldings()
	require.NoError(t, err)
	h, _ = hs.Get("AAPL")
	assert.False(t, h.ManualPrice.Valid)
	assert.Equal(t, subcommands.ExitFailure, run(t, &setCmd{}, "-n", "MSFT", "-q", "1"))

	assert.Equal(t, subcommands.ExitUsageError, run(t, &removeCmd{}))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &removeCmd{}, "AAPL"))
	assert.Equal(t, subcommands.ExitFailure, run(t, &removeCmd{}, "AAPL"))
	hs, err = DecodeHoldings()
	require.NoError(t, err)
	assert.Equal(t, allocation.DefaultHoldings().Names(), hs.Names())

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &listCmd{}))
	assert.Contains(t, out.String(), "## Holdings")
	assert.Contains(t, out.String(), "| CASH_TWD | cash | 140000 | twd |")
	assert.Contains(t, out.String(), "## Targets")
}

func TestTargetCommand(t *testing.T) {
	_, out := workspace(t, &fakeProvider{})

	assert.Equal(t, subcommands.ExitUsageError, run(t, &targetCmd{}, "-f", "0.1"))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &targetCmd{}, "-b", "GOLD", "-f", "2"))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &targetCmd{}, "-b", "GOLD", "-f", "0.1", "-m", "GLD, IAU,"))
	ta, err := DecodeTargets()
	require.NoError(t, err)
	gold, ok := ta.Get("GOLD")
	require.True(t, ok)
	assert.Equal(t, []string{"GLD", "IAU"}, gold.Members)
	assert.Contains(t, out.String(), "| GOLD | 10.0% | GLD, IAU |")

	assert.Equal(t, subcommands.ExitSuccess, run(t, &targetCmd{}, "-b", "GOLD", "-rm"))
	ta, err = DecodeTargets()
	require.NoError(t, err)
	assert.Empty(t, ta)
	assert.Equal(t, subcommands.ExitFailure, run(t, &targetCmd{}, "-b", "GOLD", "-rm"))
}

func TestShowCommand(t *testing.T) {
	fake := &fakeProvider{prices: samplePrices()}
	_, out := workspace(t, fake)
	sampleFiles(t)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &showCmd{}))
	assert.Contains(t, out.String(), "# Allocation on 2026-01-05 14:30")
	assert.Contains(t, out.String(), "## Holdings")

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &showCmd{}, "-json"))
	var got struct {
		Total allocation.Money `json:"total"`
		Rate  string           `json:"rate"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.Total.Equal(allocation.M(1500, allocation.USD)), "total = %v", got.Total)
	assert.Equal(t, "32", got.Rate)
}

func TestShowCommand_FetchFails(t *testing.T) {
	workspace(t, &fakeProvider{err: market.ErrFetchFailed})
	sampleFiles(t)
	assert.Equal(t, subcommands.ExitFailure, run(t, &showCmd{}))
}

func TestShowCommand_NoFiles(t *testing.T) {
	_, out := workspace(t, &fakeProvider{prices: samplePrices()})
	assert.Equal(t, subcommands.ExitSuccess, run(t, &showCmd{}))
	assert.Contains(t, out.String(), "# Allocation")
}

func TestPricesCommand(t *testing.T) {
	_, out := workspace(t, &fakeProvider{prices: samplePrices()})
	sampleFiles(t)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &pricesCmd{}))
	assert.Contains(t, out.String(), "| VEA | 50 |")
	assert.Contains(t, out.String(), "TWD per USD: 32.00")

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &pricesCmd{}, "-json"))
	var got allocation.PriceTable
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "0.03125", got.Quote.String())
}

func TestWatchCommand(t *testing.T) {
	fake := &fakeProvider{prices: samplePrices()}
	_, out := workspace(t, fake)
	sampleFiles(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, subcommands.ExitSuccess, runCtx(t, ctx, &watchCmd{}))
	assert.Contains(t, out.String(), "# Allocation")
	assert.Equal(t, 1, fake.calls)

	assert.Equal(t, subcommands.ExitUsageError, runCtx(t, ctx, &watchCmd{}, "-s", "every now and then"))
}

func TestWatchCommand_FirstDisplayFails(t *testing.T) {
	workspace(t, &fakeProvider{err: errors.New("offline")})
	sampleFiles(t)
	assert.Equal(t, subcommands.ExitFailure, run(t, &watchCmd{}))
}

func TestExportCommand(t *testing.T) {
	dir, out := workspace(t, &fakeProvider{prices: samplePrices()})
	sampleFiles(t)
	file := filepath.Join(dir, "out.xlsx")

	assert.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{}, "-o", file))
	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Contains(t, out.String(), "Exported to "+file)
}

func TestCacheTTL(t *testing.T) {
	t.Setenv(EnvCacheTTL, "")
	assert.Equal(t, market.DefaultTTL, CacheTTL())

	t.Setenv(EnvCacheTTL, "90")
	assert.Equal(t, 90*time.Second, CacheTTL())

	t.Setenv(EnvCacheTTL, "2m")
	assert.Equal(t, 2*time.Minute, CacheTTL())

	t.Setenv(EnvCacheTTL, "soon")
	assert.Equal(t, market.DefaultTTL, CacheTTL())

	setGlobal(t, cacheTTL, time.Minute)
	assert.Equal(t, time.Minute, CacheTTL(), "the flag wins over the environment")
}

func TestSettings(t *testing.T) {
	t.Setenv(EnvHoldingsFile, "")
	setGlobal(t, holdingsFile, "")
	assert.Equal(t, "holdings.json", HoldingsFile())

	t.Setenv(EnvHoldingsFile, "/env/holdings.json")
	assert.Equal(t, "/env/holdings.json", HoldingsFile())

	setGlobal(t, holdingsFile, "/flag/holdings.json")
	assert.Equal(t, "/flag/holdings.json", HoldingsFile())

	t.Setenv(EnvVerbose, "1")
	assert.True(t, IsVerbose())
}

func TestNewProvider(t *testing.T) {
	setGlobal(t, cacheFile, filepath.Join(t.TempDir(), "prices.msgpack"))

	setGlobal(t, providerList, "chart, eodhd")
	p, err := NewProvider()
	require.NoError(t, err)
	assert.Equal(t, "chart+eodhd", p.Name())

	setGlobal(t, providerList, "yahoo")
	p, err = NewProvider()
	require.NoError(t, err)
	assert.Equal(t, "yahoo", p.Name())

	setGlobal(t, providerList, "bloomberg")
	_, err = NewProvider()
	assert.Error(t, err)

	setGlobal(t, providerList, " , ")
	_, err = NewProvider()
	assert.Error(t, err)
}

func TestCompletion(t *testing.T) {
	root := flag.NewFlagSet("alloc", flag.ContinueOnError)
	root.String("holdings-file", "", "")
	root.Bool("v", false, "")

	c := Completion(root)
	assert.Contains(t, c.Flags, "holdings-file")
	assert.Nil(t, c.Flags["v"], "boolean flags take no value")
	for _, cmd := range commands {
		assert.Contains(t, c.Sub, cmd.Name())
	}
	assert.Contains(t, c.Sub["show"].Flags, "json")
	assert.Equal(t, flagPredictors["u"], c.Sub["add"].Flags["u"])
	assert.NotNil(t, c.Sub["remove"].Args)
}

func TestTopicCommand(t *testing.T) {
	_, out := workspace(t, &fakeProvider{})
	assert.Equal(t, subcommands.ExitSuccess, run(t, &topicCmd{}))
	assert.Contains(t, out.String(), "* buckets:")

	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, run(t, &topicCmd{}, "rate"))
	assert.Contains(t, out.String(), "TWDUSD=X")

	assert.Equal(t, subcommands.ExitFailure, run(t, &topicCmd{}, "nope"))
}

func TestShowCommand_MalformedRow(t *testing.T) {
	_, out := workspace(t, &fakeProvider{prices: samplePrices()})
	require.NoError(t, os.WriteFile(HoldingsFile(), []byte(`[
  {"name": "VEA", "quantity": 10, "unit": "shares"},
  {"name": "BAD", "quantity": 1, "unit": "lots"}
]`), 0o644))

	assert.Equal(t, subcommands.ExitSuccess, run(t, &showCmd{}))
	assert.Contains(t, out.String(), "BAD: malformed row")
	assert.Contains(t, out.String(), "| BAD |")
}
