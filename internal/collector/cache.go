package collector

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"PillarReport/internal/model"
)

type cacheKey struct {
	ticker string
	kind   model.StatementKind
}

// Cache memoizes Source responses per normalized (ticker, kind) for the
// lifetime of one run. Failed fetches are not stored. There is no eviction.
//
// The mutex is held across the underlying fetch, so concurrent callers are
// serialized and a key is never fetched twice.
type Cache struct {
	source Source
	log    zerolog.Logger

	mu         sync.Mutex
	statements map[cacheKey]*model.StatementBundle
	overviews  map[string]model.Overview
	prices     map[string]*model.PriceSeries
	fetches    int
}

// NewCache creates an empty run-scoped cache in front of source.
func NewCache(source Source, log zerolog.Logger) *Cache {
	return &Cache{
		source:     source,
		log:        log.With().Str("component", "cache").Logger(),
		statements: make(map[cacheKey]*model.StatementBundle),
		overviews:  make(map[string]model.Overview),
		prices:     make(map[string]*model.PriceSeries),
	}
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Statement returns the bundle for ticker and kind, fetching it on first use.
func (c *Cache) Statement(ctx context.Context, ticker string, kind model.StatementKind) (*model.StatementBundle, error) {
	t := NormalizeTicker(ticker)
	if t == "" {
		return nil, model.ErrEmptyTicker
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{ticker: t, kind: kind}
	if b, ok := c.statements[key]; ok {
		c.log.Debug().Str("ticker", t).Str("kind", string(kind)).Msg("cache hit")
		return b, nil
	}
	c.fetches++
	b, err := c.source.FetchStatement(ctx, t, kind)
	if err != nil {
		return nil, err
	}
	c.statements[key] = b
	return b, nil
}

// Overview returns the company overview for ticker, fetching it on first use.
func (c *Cache) Overview(ctx context.Context, ticker string) (model.Overview, error) {
	t := NormalizeTicker(ticker)
	if t == "" {
		return nil, model.ErrEmptyTicker
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if o, ok := c.overviews[t]; ok {
		c.log.Debug().Str("ticker", t).Str("kind", string(model.OverviewKind)).Msg("cache hit")
		return o, nil
	}
	c.fetches++
	o, err := c.source.FetchOverview(ctx, t)
	if err != nil {
		return nil, err
	}
	c.overviews[t] = o
	return o, nil
}

// Prices returns the daily price history for ticker, fetching it on first use.
func (c *Cache) Prices(ctx context.Context, ticker string) (*model.PriceSeries, error) {
	t := NormalizeTicker(ticker)
	if t == "" {
		return nil, model.ErrEmptyTicker
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.prices[t]; ok {
		return p, nil
	}
	c.fetches++
	p, err := c.source.FetchDailyPrices(ctx, t)
	if err != nil {
		return nil, err
	}
	c.prices[t] = p
	return p, nil
}

// Fetches returns how many source calls the cache has issued.
func (c *Cache) Fetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}
