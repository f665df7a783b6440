package networth

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// The cache backing file is a flat CSV table: a header row followed by one
// row per entry. The whole file is rewritten on every mutation; correctness
// over efficiency.
var cacheHeader = []string{"ticker", "type", "date", "price", "fetched_at"}

// encodeCache writes the entries as CSV rows in a stable order.
func encodeCache(w io.Writer, entries map[cacheKey]cacheEntry) error {
	keys := make([]cacheKey, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.ticker != b.ticker {
			return a.ticker < b.ticker
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.day.Before(b.day)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(cacheHeader); err != nil {
		return err
	}
	for _, key := range keys {
		entry := entries[key]
		day := ""
		if key.kind == PriceHistorical {
			day = key.day.String()
		}
		record := []string{
			key.ticker,
			string(key.kind),
			day,
			entry.price.String(),
			entry.fetchedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// decodeCache reads CSV rows back into entries. A malformed row is logged
// and skipped; decoding continues with the remaining rows.
func decodeCache(r io.Reader, log zerolog.Logger) (map[cacheKey]cacheEntry, error) {
	entries := make(map[cacheKey]cacheEntry)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == "ticker" {
			continue // header row
		}
		if len(record) != 5 {
			log.Warn().Int("row", i+1).Msg("skipping cache row: want 5 columns")
			continue
		}

		kind := PriceKind(record[1])
		if kind != PriceCurrent && kind != PriceHistorical {
			log.Warn().Int("row", i+1).Str("type", record[1]).Msg("skipping cache row: unknown type")
			continue
		}

		var day Date
		if kind == PriceHistorical {
			day, err = ParseDate(record[2])
			if err != nil {
				log.Warn().Int("row", i+1).Str("date", record[2]).Msg("skipping cache row: bad date")
				continue
			}
		}

		price, err := decimal.NewFromString(record[3])
		if err != nil {
			log.Warn().Int("row", i+1).Str("price", record[3]).Msg("skipping cache row: bad price")
			continue
		}

		fetchedAt, err := time.Parse(time.RFC3339, record[4])
		if err != nil {
			log.Warn().Int("row", i+1).Str("fetched_at", record[4]).Msg("skipping cache row: bad timestamp")
			continue
		}

		key := cacheKey{ticker: record[0], kind: kind, day: day}
		entries[key] = cacheEntry{key: key, price: price, fetchedAt: fetchedAt}
	}
	return entries, nil
}

// saveCacheFile rewrites the whole backing file. The write is synchronous: a
// crash mid-write can corrupt the file, and load compensates by skipping rows
// that fail to parse.
func saveCacheFile(path string, entries map[cacheKey]cacheEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeCache(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// loadCacheFile reads the backing file into a fresh entry map.
func loadCacheFile(path string, log zerolog.Logger) (map[cacheKey]cacheEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeCache(f, log)
}
