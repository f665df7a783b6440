package networth

import (
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PriceKind discriminates the two namespaces of cached prices.
type PriceKind string

const (
	// PriceCurrent marks a latest-quote entry, fresh only within the cache's
	// max age.
	PriceCurrent PriceKind = "CURRENT"
	// PriceHistorical marks a dated close. Market closes are immutable facts,
	// so a historical entry never expires.
	PriceHistorical PriceKind = "HISTORICAL"
)

// cacheKey uniquely identifies an entry: (ticker, kind, date). The date is
// the zero value for current entries, so the two namespaces never collide.
type cacheKey struct {
	ticker string
	kind   PriceKind
	day    Date
}

func currentKey(ticker string) cacheKey {
	return cacheKey{ticker: ticker, kind: PriceCurrent}
}

func historicalKey(ticker string, day Date) cacheKey {
	return cacheKey{ticker: ticker, kind: PriceHistorical, day: day}
}

// cacheEntry is one cached price with its fetch timestamp.
type cacheEntry struct {
	key       cacheKey
	price     decimal.Decimal
	fetchedAt time.Time
}

// CacheStats reports the content of the cache.
type CacheStats struct {
	Total      int
	Current    int
	Historical int
	Fresh      int // historical entries plus current entries within the max age
}

// PriceCache decorates a PriceSource with a persisted, freshness-aware cache.
//
// Multiple concurrent readers are allowed; writers are exclusive. Delegate
// fetches happen outside any lock so a slow fetch never blocks readers of
// other keys; two callers missing the same key concurrently may both fetch,
// which is accepted since results are idempotent.
type PriceCache struct {
	source PriceSource
	path   string
	maxAge time.Duration
	now    func() time.Time
	log    zerolog.Logger

	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
}

// NewPriceCache creates a cache over the given delegate source, backed by the
// file at path. A missing file yields an empty cache; a malformed row is
// skipped with a warning. Current entries are considered fresh for maxAge.
func NewPriceCache(source PriceSource, path string, maxAge time.Duration, log zerolog.Logger) (*PriceCache, error) {
	c := &PriceCache{
		source:  source,
		path:    path,
		maxAge:  maxAge,
		now:     time.Now,
		log:     log.With().Str("component", "price_cache").Logger(),
		entries: make(map[cacheKey]cacheEntry),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload replaces the in-memory entries with the content of the backing file.
// A missing backing file resets the cache to empty.
func (c *PriceCache) Reload() error {
	entries, err := loadCacheFile(c.path, c.log)
	if errors.Is(err, fs.ErrNotExist) {
		entries, err = make(map[cacheKey]cacheEntry), nil
	}
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

// fresh reports whether an entry may be served without consulting the
// delegate.
func (c *PriceCache) fresh(e cacheEntry) bool {
	if e.key.kind == PriceHistorical {
		return true
	}
	return c.now().Sub(e.fetchedAt) < c.maxAge
}

// persistLocked rewrites the whole backing file. Callers must hold the write
// lock. A write failure degrades to an in-memory cache, it is never fatal.
func (c *PriceCache) persistLocked() {
	if err := saveCacheFile(c.path, c.entries); err != nil {
		c.log.Warn().Err(err).Str("path", c.path).Msg("could not persist price cache")
	}
}

// CurrentPrice returns the latest price for an instrument, from the cache
// when fresh, otherwise from the delegate. On delegate failure it returns
// absent without caching.
func (c *PriceCache) CurrentPrice(ticker string) (decimal.Decimal, bool) {
	key := currentKey(ticker)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.fresh(entry) {
		return entry.price, true
	}

	// Miss or stale: fetch outside the lock.
	price, ok := c.source.CurrentPrice(ticker)
	if !ok {
		return decimal.Zero, false
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{key: key, price: price, fetchedAt: c.now()}
	c.persistLocked()
	c.mu.Unlock()
	return price, true
}

// HistoricalPrice returns the price of an instrument on a given date. Any
// cached value, regardless of age, is a hit.
func (c *PriceCache) HistoricalPrice(ticker string, on Date) (decimal.Decimal, bool) {
	key := historicalKey(ticker, on)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return entry.price, true
	}

	price, ok := c.source.HistoricalPrice(ticker, on)
	if !ok {
		return decimal.Zero, false
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{key: key, price: price, fetchedAt: c.now()}
	c.persistLocked()
	c.mu.Unlock()
	return price, true
}

// HistoricalPrices returns a price per day over the range, inclusive.
//
// When every day is already cached the delegate is not consulted. Otherwise
// the delegate is asked once for the whole requested range, not just the
// missing days: one batched call replaces what would otherwise be one call
// per missing day.
func (c *PriceCache) HistoricalPrices(ticker string, rng Range) map[Date]decimal.Decimal {
	prices := make(map[Date]decimal.Decimal)
	missing := false

	c.mu.RLock()
	for day := range rng.Days() {
		if entry, ok := c.entries[historicalKey(ticker, day)]; ok {
			prices[day] = entry.price
		} else {
			missing = true
		}
	}
	c.mu.RUnlock()

	if !missing {
		return prices
	}

	fetched := c.source.HistoricalPrices(ticker, rng)
	if len(fetched) == 0 {
		return prices
	}

	c.mu.Lock()
	for day, price := range fetched {
		key := historicalKey(ticker, day)
		if _, ok := c.entries[key]; ok {
			// Historical entries are immutable once written.
			continue
		}
		c.entries[key] = cacheEntry{key: key, price: price, fetchedAt: c.now()}
		prices[day] = price
	}
	c.persistLocked()
	c.mu.Unlock()
	return prices
}

// CurrentPrices returns the latest price for each ticker, batching the
// delegate call for every ticker that is missing or stale.
func (c *PriceCache) CurrentPrices(tickers []string) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(tickers))
	var stale []string

	c.mu.RLock()
	for _, ticker := range tickers {
		if entry, ok := c.entries[currentKey(ticker)]; ok && c.fresh(entry) {
			prices[ticker] = entry.price
		} else {
			stale = append(stale, ticker)
		}
	}
	c.mu.RUnlock()

	if len(stale) == 0 {
		return prices
	}

	fetched := c.source.CurrentPrices(stale)
	if len(fetched) == 0 {
		return prices
	}

	c.mu.Lock()
	for ticker, price := range fetched {
		key := currentKey(ticker)
		c.entries[key] = cacheEntry{key: key, price: price, fetchedAt: c.now()}
		prices[ticker] = price
	}
	c.persistLocked()
	c.mu.Unlock()
	return prices
}

// Clear removes every entry from the cache and rewrites the backing file.
func (c *PriceCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]cacheEntry)
	c.persistLocked()
	c.mu.Unlock()
}

// ClearTicker removes every entry, current and historical, for one
// instrument.
func (c *PriceCache) ClearTicker(ticker string) {
	c.mu.Lock()
	for key := range c.entries {
		if key.ticker == ticker {
			delete(c.entries, key)
		}
	}
	c.persistLocked()
	c.mu.Unlock()
}

// Stats returns entry counts under the same shared-lock discipline as reads.
func (c *PriceCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var stats CacheStats
	for _, entry := range c.entries {
		stats.Total++
		switch entry.key.kind {
		case PriceCurrent:
			stats.Current++
		case PriceHistorical:
			stats.Historical++
		}
		if c.fresh(entry) {
			stats.Fresh++
		}
	}
	return stats
}

var _ PriceSource = (*PriceCache)(nil)
