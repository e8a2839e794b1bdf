package market

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/etnz/allocation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// DefaultTTL is how long a snapshot is served before asking the provider again.
const DefaultTTL = 300 * time.Second

// DefaultCachePath is where snapshots are shared between runs.
func DefaultCachePath() string { return filepath.Join(os.TempDir(), "alloc-prices.msgpack") }

// Cache serves the last snapshot while it is fresh.
//
// The snapshot is kept in memory and, when path is set, on disk so that
// successive command runs share it. When a refresh fails the last snapshot is
// served, however old.
type Cache struct {
	provider Provider
	ttl      time.Duration
	path     string
	log      zerolog.Logger
	now      func() time.Time

	mu   sync.Mutex
	last allocation.PriceTable
	// asked are the symbols requested for last. Those the provider could not
	// quote are not asked again before the snapshot expires.
	asked map[string]bool
}

// NewCache wraps provider. An empty path keeps the cache in memory only.
func NewCache(provider Provider, ttl time.Duration, path string, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		provider: provider,
		ttl:      ttl,
		path:     path,
		log:      log.With().Str("provider", "cache").Logger(),
		now:      time.Now,
	}
}

func (c *Cache) Name() string { return c.provider.Name() }

// Fetch returns the cached snapshot if it is fresh and every symbol was
// already asked for, otherwise asks the provider.
func (c *Cache) Fetch(ctx context.Context, symbols []string) (allocation.PriceTable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last.IsEmpty() && c.path != "" {
		if t, asked, err := c.load(); err == nil {
			c.last, c.asked = t, asked
		} else if !errors.Is(err, fs.ErrNotExist) {
			c.log.Warn().Err(err).Str("path", c.path).Msg("ignoring unreadable snapshot")
		}
	}

	if c.last.Fresh(c.now(), c.ttl) && c.covers(symbols) {
		c.log.Debug().Time("fetched_at", c.last.FetchedAt).Msg("hit")
		return c.last, nil
	}

	t, err := c.provider.Fetch(ctx, symbols)
	if err != nil {
		if c.last.IsEmpty() {
			if !errors.Is(err, ErrFetchFailed) {
				err = fmt.Errorf("%w: %w", ErrFetchFailed, err)
			}
			return allocation.PriceTable{}, err
		}
		c.log.Warn().Err(err).Time("fetched_at", c.last.FetchedAt).Msg("refresh failed, serving stale prices")
		return c.last, nil
	}
	c.last = t
	c.asked = make(map[string]bool, len(symbols))
	for _, s := range symbols {
		c.asked[s] = true
	}
	if missing := t.Missing(symbols); len(missing) > 0 {
		c.log.Debug().Strs("symbols", missing).Msg("not quoted, not asked again until expiry")
	}
	if c.path != "" {
		if err := c.store(t, symbols); err != nil {
			c.log.Warn().Err(err).Str("path", c.path).Msg("cache write err (ignored)")
		}
	}
	return t, nil
}

// covers reports whether every symbol is quoted in the snapshot, or was
// already asked for it.
func (c *Cache) covers(symbols []string) bool {
	for _, s := range c.last.Missing(symbols) {
		if !c.asked[s] {
			return false
		}
	}
	return true
}

// Invalidate forgets the snapshot, in memory and on disk.
func (c *Cache) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last, c.asked = allocation.PriceTable{}, nil
	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// snapshot is the on-disk form of a price table.
type snapshot struct {
	Prices    map[string]string `msgpack:"prices"`
	Quote     string            `msgpack:"quote"`
	FetchedAt time.Time         `msgpack:"fetched_at"`
	Asked     []string          `msgpack:"asked"`
}

func (c *Cache) load() (allocation.PriceTable, map[string]bool, error) {
	content, err := os.ReadFile(c.path)
	if err != nil {
		return allocation.PriceTable{}, nil, err
	}
	var s snapshot
	if err := msgpack.Unmarshal(content, &s); err != nil {
		return allocation.PriceTable{}, nil, err
	}
	t := allocation.NewPriceTable(s.FetchedAt)
	for name, v := range s.Prices {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return allocation.PriceTable{}, nil, fmt.Errorf("invalid price for %s: %w", name, err)
		}
		t.Set(name, d)
	}
	if s.Quote != "" {
		q, err := decimal.NewFromString(s.Quote)
		if err != nil {
			return allocation.PriceTable{}, nil, fmt.Errorf("invalid quote: %w", err)
		}
		t.Quote = q
	}
	asked := make(map[string]bool, len(s.Asked))
	for _, a := range s.Asked {
		asked[a] = true
	}
	return t, asked, nil
}

func (c *Cache) store(t allocation.PriceTable, asked []string) error {
	s := snapshot{Prices: make(map[string]string, len(t.Prices)), FetchedAt: t.FetchedAt, Asked: asked}
	for name, v := range t.Prices {
		s.Prices[name] = v.String()
	}
	if !t.Quote.IsZero() {
		s.Quote = t.Quote.String()
	}
	content, err := msgpack.Marshal(&s)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
