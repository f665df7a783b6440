package networth

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a scripted PriceSource counting delegate calls.
type fakeSource struct {
	mu         sync.Mutex
	current    map[string]decimal.Decimal
	historical map[string]map[Date]decimal.Decimal

	currentCalls    int
	historicalCalls int
	rangeCalls      int
	batchCalls      int
}

func (s *fakeSource) CurrentPrice(ticker string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentCalls++
	price, ok := s.current[ticker]
	return price, ok
}

func (s *fakeSource) HistoricalPrice(ticker string, on Date) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historicalCalls++
	price, ok := s.historical[ticker][on]
	return price, ok
}

func (s *fakeSource) HistoricalPrices(ticker string, rng Range) map[Date]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rangeCalls++
	prices := make(map[Date]decimal.Decimal)
	for on, price := range s.historical[ticker] {
		if rng.Contains(on) {
			prices[on] = price
		}
	}
	return prices
}

func (s *fakeSource) CurrentPrices(tickers []string) map[string]decimal.Decimal {
	s.mu.Lock()
	s.batchCalls++
	s.mu.Unlock()
	prices := make(map[string]decimal.Decimal)
	for _, ticker := range tickers {
		if price, ok := s.CurrentPrice(ticker); ok {
			prices[ticker] = price
		}
	}
	return prices
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		current: map[string]decimal.Decimal{
			"AAPL": decimal.RequireFromString("190.5"),
			"MSFT": decimal.RequireFromString("410"),
		},
		historical: map[string]map[Date]decimal.Decimal{
			"AAPL": {
				day("2024-01-05"): decimal.RequireFromString("185.5"),
				day("2024-01-08"): decimal.RequireFromString("186"),
				day("2024-01-09"): decimal.RequireFromString("186.4"),
			},
		},
	}
}

func newTestCache(t *testing.T, source PriceSource) *PriceCache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.csv")
	c, err := NewPriceCache(source, path, 24*time.Hour, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestCurrentPriceFetchesOnceWhileFresh(t *testing.T) {
	source := newFakeSource()
	c := newTestCache(t, source)

	for i := 0; i < 5; i++ {
		price, ok := c.CurrentPrice("AAPL")
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.RequireFromString("190.5")))
	}
	assert.Equal(t, 1, source.currentCalls, "repeated reads within the freshness window must not refetch")
}

func TestCurrentPriceRefetchesWhenStale(t *testing.T) {
	source := newFakeSource()
	c := newTestCache(t, source)

	now := time.Now()
	c.now = func() time.Time { return now }

	_, ok := c.CurrentPrice("AAPL")
	require.True(t, ok)
	require.Equal(t, 1, source.currentCalls)

	// Just inside the window: still a hit.
	c.now = func() time.Time { return now.Add(23 * time.Hour) }
	_, _ = c.CurrentPrice("AAPL")
	assert.Equal(t, 1, source.currentCalls)

	// Past the window: refetch.
	c.now = func() time.Time { return now.Add(25 * time.Hour) }
	_, _ = c.CurrentPrice("AAPL")
	assert.Equal(t, 2, source.currentCalls)
}

func TestCurrentPriceDelegateFailureNotCached(t *testing.T) {
	source := newFakeSource()
	c := newTestCache(t, source)

	_, ok := c.CurrentPrice("TSLA")
	require.False(t, ok)

	_, ok = c.CurrentPrice("TSLA")
	assert.False(t, ok)
	assert.Equal(t, 2, source.currentCalls, "failures are not cached, each read retries")
	assert.Equal(t, 0, c.Stats().Total)
}

func TestHistoricalPriceNeverExpires(t *testing.T) {
	source := newFakeSource()
	c := newTestCache(t, source)

	now := time.Now()
	c.now = func() time.Time { return now }

	price, ok := c.HistoricalPrice("AAPL", day("2024-01-05"))
	require.True(t, ok)
	require.True(t, price.Equal(decimal.RequireFromString("185.5")))

	// Even far past the freshness window, the cached close is served and the
	// delegate is not consulted again.
	c.now = func() time.Time { return now.Add(1000 * time.Hour) }
	source.historical["AAPL"][day("2024-01-05")] = decimal.RequireFromString("999")

	price, ok = c.HistoricalPrice("AAPL", day("2024-01-05"))
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("185.5")), "historical entries are immutable")
	assert.Equal(t, 1, source.historicalCalls)
}

func TestHistoricalPricesBatchesWholeRange(t *testing.T) {
	source := newFakeSource()
	c := newTestCache(t, source)

	rng := NewRange(day("2024-01-05"), day("2024-01-09"))
	prices := c.HistoricalPrices("AAPL", rng)
	require.Len(t, prices, 3) // the 6th and 7th have no close
	assert.Equal(t, 1, source.rangeCalls, "missing days are fetched in one ranged call")
	assert.Equal(t, 0, source.historicalCalls)

	// Fully cached range: no delegate call at all. Days without a close stay
	// missing, so the range still counts as partially cached and triggers one
	// more batched fetch.
	prices = c.HistoricalPrices("AAPL", rng)
	require.Len(t, prices, 3)
	assert.Equal(t, 2, source.rangeCalls)

	// A sub-range of cached days is served without the delegate.
	prices = c.HistoricalPrices("AAPL", NewRange(day("2024-01-08"), day("2024-01-09")))
	require.Len(t, prices, 2)
	assert.Equal(t, 2, source.rangeCalls)
}

func TestCurrentPricesBatchesStaleTickers(t *testing.T) {
	source := newFakeSource()
	c := newTestCache(t, source)

	prices := c.CurrentPrices([]string{"AAPL", "MSFT"})
	require.Len(t, prices, 2)
	require.Equal(t, 1, source.batchCalls)

	// Both fresh now: served from the cache.
	prices = c.CurrentPrices([]string{"AAPL", "MSFT"})
	require.Len(t, prices, 2)
	assert.Equal(t, 1, source.batchCalls)
}

func TestCachePersistsAcrossInstances(t *testing.T) {
	source := newFakeSource()
	path := filepath.Join(t.TempDir(), "cache.csv")

	c1, err := NewPriceCache(source, path, 24*time.Hour, zerolog.Nop())
	require.NoError(t, err)
	_, ok := c1.CurrentPrice("AAPL")
	require.True(t, ok)
	_, ok = c1.HistoricalPrice("AAPL", day("2024-01-05"))
	require.True(t, ok)

	// A second cache over the same file starts warm.
	c2, err := NewPriceCache(source, path, 24*time.Hour, zerolog.Nop())
	require.NoError(t, err)

	stats := c2.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Current)
	assert.Equal(t, 1, stats.Historical)

	calls := source.currentCalls
	_, ok = c2.CurrentPrice("AAPL")
	require.True(t, ok)
	assert.Equal(t, calls, source.currentCalls, "persisted fresh entry must be served without a fetch")
}

func TestReloadMissingFileYieldsEmptyCache(t *testing.T) {
	c := newTestCache(t, newFakeSource())
	_, ok := c.CurrentPrice("AAPL")
	require.True(t, ok)
	require.Equal(t, 1, c.Stats().Total)

	c.path = filepath.Join(t.TempDir(), "absent.csv")
	require.NoError(t, c.Reload())
	assert.Equal(t, 0, c.Stats().Total)
}

func TestClearAndClearTicker(t *testing.T) {
	source := newFakeSource()
	c := newTestCache(t, source)

	c.CurrentPrices([]string{"AAPL", "MSFT"})
	c.HistoricalPrice("AAPL", day("2024-01-05"))
	require.Equal(t, 3, c.Stats().Total)

	c.ClearTicker("AAPL")
	stats := c.Stats()
	assert.Equal(t, 1, stats.Total, "both the current and historical AAPL entries go")
	assert.Equal(t, 1, stats.Current)

	c.Clear()
	assert.Equal(t, 0, c.Stats().Total)

	// The backing file was rewritten empty too.
	c2, err := NewPriceCache(source, c.path, 24*time.Hour, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, c2.Stats().Total)
}

func TestCacheSkipsMalformedPersistedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.csv")
	content := "ticker,type,date,price,fetched_at\n" +
		"AAPL,CURRENT,,190.5,2024-06-01T10:00:00Z\n" +
		"AAPL,BOGUS,,190.5,2024-06-01T10:00:00Z\n" +
		"AAPL,HISTORICAL,not-a-date,185,2024-06-01T10:00:00Z\n" +
		"MSFT,HISTORICAL,2024-01-05,not-a-price,2024-06-01T10:00:00Z\n" +
		"MSFT,HISTORICAL,2024-01-05,370,not-a-time\n" +
		"MSFT,HISTORICAL,2024-01-05,370,2024-06-01T10:00:00Z\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := NewPriceCache(newFakeSource(), path, 24*time.Hour, zerolog.Nop())
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Total, "only the well-formed rows load")
	assert.Equal(t, 1, stats.Current)
	assert.Equal(t, 1, stats.Historical)
}

func TestConcurrentReads(t *testing.T) {
	source := newFakeSource()
	c := newTestCache(t, source)

	// Warm the cache first so concurrent readers hit the shared-lock path.
	c.CurrentPrice("AAPL")
	c.HistoricalPrice("AAPL", day("2024-01-05"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.CurrentPrice("AAPL")
				c.HistoricalPrice("AAPL", day("2024-01-05"))
				c.Stats()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, source.currentCalls)
	assert.Equal(t, 1, source.historicalCalls)
}
