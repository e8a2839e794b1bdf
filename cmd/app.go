// Package cmd implements the CLI application to manage an allocation.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/allocation"
	"github.com/etnz/allocation/market"
	"github.com/etnz/allocation/renderer"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

const (
	EnvHoldingsFile = "ALLOC_HOLDINGS_FILE"
	EnvTargetsFile  = "ALLOC_TARGETS_FILE"
	EnvProvider     = "ALLOC_PROVIDER"
	EnvCacheTTL     = "ALLOC_CACHE_TTL"
	EnvCacheFile    = "ALLOC_CACHE_FILE"
	EnvVerbose      = "ALLOC_VERBOSE"
	EnvEODHDKey     = "EODHD_API_KEY"
)

// command is a subcommand and the group it is listed in.
type command struct {
	subcommands.Command
	group string
}

var commands = []command{
	{&initCmd{}, "holdings"},
	{&listCmd{}, "holdings"},
	{&addCmd{}, "holdings"},
	{&setCmd{}, "holdings"},
	{&removeCmd{}, "holdings"},
	{&targetCmd{}, "holdings"},
	{&pricesCmd{}, "market"},
	{&showCmd{}, "dashboard"},
	{&watchCmd{}, "dashboard"},
	{&serveCmd{}, "dashboard"},
	{&exportCmd{}, "dashboard"},
	{&assistCmd{}, "dashboard"},
	{&topicCmd{}, "help"},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range commands {
		c.Register(cmd.Command, cmd.group)
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
// Flags take precedence over the environment, resolved when used so that a .env file loaded by main applies.

var holdingsFile = flag.String("holdings-file", "", "Path to the holdings file (JSON). Defaults to $"+EnvHoldingsFile+" or holdings.json")
var targetsFile = flag.String("targets-file", "", "Path to the target allocation file (JSON). Defaults to $"+EnvTargetsFile+" or targets.json")
var providerList = flag.String("provider", "", "Comma separated market data providers, tried in order: yahoo, chart, eodhd. Defaults to $"+EnvProvider+" or yahoo,chart")
var cacheTTL = flag.Duration("cache-ttl", 0, "How long fetched prices are reused. Defaults to $"+EnvCacheTTL+" or 5m")
var cacheFile = flag.String("cache-file", "", "Path to the price cache shared between runs. Defaults to $"+EnvCacheFile+" or a file in the temp dir")
var eodhdKey = flag.String("eodhd-api-key", "", "EODHD API key, required by the eodhd provider. Defaults to $"+EnvEODHDKey+". You can get one at https://eodhd.com/")
var rawOutput = flag.Bool("raw", false, "print markdown as is, without terminal formatting")

// Verbose enables debug logs. Also set by $ALLOC_VERBOSE.
var Verbose = flag.Bool("v", false, "verbose logging")

// setting returns the flag value, or else the environment variable, or else def.
func setting(flagValue, env, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func HoldingsFile() string { return setting(*holdingsFile, EnvHoldingsFile, "holdings.json") }
func TargetsFile() string  { return setting(*targetsFile, EnvTargetsFile, "targets.json") }
func CacheFile() string    { return setting(*cacheFile, EnvCacheFile, market.DefaultCachePath()) }
func EODHDKey() string     { return setting(*eodhdKey, EnvEODHDKey, "") }

// CacheTTL accepts a duration ("5m") or a number of seconds ("300") in the environment.
func CacheTTL() time.Duration {
	if *cacheTTL > 0 {
		return *cacheTTL
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			return time.Duration(s) * time.Second
		}
		log.Warn().Str(EnvCacheTTL, v).Msg("invalid cache ttl, using the default")
	}
	return market.DefaultTTL
}

// IsVerbose reports whether -v or $ALLOC_VERBOSE is set.
func IsVerbose() bool {
	if *Verbose {
		return true
	}
	v, _ := strconv.ParseBool(os.Getenv(EnvVerbose))
	return v
}

// DecodeHoldings loads the holdings file. A missing file is an empty table.
func DecodeHoldings() (allocation.Holdings, error) {
	hs, err := allocation.LoadHoldings(HoldingsFile())
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("file", HoldingsFile()).Msg("holdings file does not exist, run 'alloc init' to create one")
		return allocation.Holdings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load holdings file %q: %w", HoldingsFile(), err)
	}
	return hs, nil
}

// EncodeHoldings replaces the holdings file.
func EncodeHoldings(hs allocation.Holdings) error {
	if err := allocation.SaveHoldings(HoldingsFile(), hs); err != nil {
		return fmt.Errorf("could not save holdings file %q: %w", HoldingsFile(), err)
	}
	return nil
}

// DecodeTargets loads the targets file. A missing file is an empty allocation.
func DecodeTargets() (allocation.TargetAllocation, error) {
	ta, err := allocation.LoadTargets(TargetsFile())
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("file", TargetsFile()).Msg("targets file does not exist, run 'alloc init' to create one")
		return allocation.TargetAllocation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load targets file %q: %w", TargetsFile(), err)
	}
	return ta, nil
}

// EncodeTargets replaces the targets file.
func EncodeTargets(ta allocation.TargetAllocation) error {
	if err := allocation.SaveTargets(TargetsFile(), ta); err != nil {
		return fmt.Errorf("could not save targets file %q: %w", TargetsFile(), err)
	}
	return nil
}

// NewProvider builds the chain of market data providers behind a cache.
func NewProvider() (*market.Cache, error) {
	var chain market.Chain
	for _, name := range strings.Split(setting(*providerList, EnvProvider, "yahoo,chart"), ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case "yahoo":
			chain = append(chain, market.NewYahoo(log.Logger))
		case "chart":
			chain = append(chain, market.NewChart("", log.Logger))
		case "eodhd":
			chain = append(chain, market.NewEODHD(EODHDKey(), "", log.Logger))
		default:
			return nil, fmt.Errorf("unknown provider %q, expected yahoo, chart or eodhd", name)
		}
	}
	var p market.Provider
	switch len(chain) {
	case 0:
		return nil, errors.New("no market data provider")
	case 1:
		p = chain[0]
	default:
		p = chain
	}
	return market.NewCache(p, CacheTTL(), CacheFile(), log.Logger), nil
}

// openProvider is the provider used by commands.
var openProvider = func() (market.Provider, error) { return NewProvider() }

// Evaluate loads the holdings and the targets, fetches the prices they need
// and values them.
//
// A failed fetch is returned as an error: nothing sensible can be displayed
// without prices.
func Evaluate(ctx context.Context, provider market.Provider) (*allocation.Report, error) {
	hs, err := DecodeHoldings()
	if err != nil {
		return nil, err
	}
	ta, err := DecodeTargets()
	if err != nil {
		return nil, err
	}
	prices, err := provider.Fetch(ctx, allocation.Symbols(hs, renderer.BTCSymbol))
	if err != nil {
		return nil, fmt.Errorf("cannot fetch data: %w", err)
	}

	r := allocation.Evaluate(hs, prices, ta)
	if r.RateFallback {
		log.Warn().Str("rate", r.Rate.String()).Msg("no TWD quote, using the default rate")
	}
	for _, v := range r.Valuations {
		if v.Degraded != allocation.NotDegraded {
			log.Warn().Str("holding", v.Holding.Name).Stringer("reason", v.Degraded).Msg("valued at zero")
		}
	}
	return r, nil
}

// stdout is where commands print their output.
var stdout io.Writer = os.Stdout

// renderMarkdown formats markdown for the terminal, unless -raw is set.
func renderMarkdown(md string) string {
	if *rawOutput {
		return md
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		log.Debug().Err(err).Msg("cannot create the markdown renderer")
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("cannot render markdown")
		return md
	}
	return out
}

func printMarkdown(md string) {
	fmt.Fprint(stdout, renderMarkdown(md))
}
