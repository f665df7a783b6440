package networth

import "github.com/shopspring/decimal"

// PriceSource is the capability interface for price lookups.
//
// Implementations never return errors to callers: a network or parse failure
// is reported as an absent price (false, or an empty map) so that the cache
// layer only ever sees missing data.
type PriceSource interface {
	// CurrentPrice returns the latest known price for an instrument, or
	// false when no price is available.
	CurrentPrice(ticker string) (decimal.Decimal, bool)

	// HistoricalPrice returns the price of an instrument on a given date, or
	// false when no price is available.
	HistoricalPrice(ticker string, on Date) (decimal.Decimal, bool)

	// HistoricalPrices returns the known prices for every day in the range,
	// inclusive. Implementations without range support return an empty map.
	HistoricalPrices(ticker string, rng Range) map[Date]decimal.Decimal

	// CurrentPrices returns the latest known price for each of the given
	// instruments. Instruments without a price are omitted from the result.
	CurrentPrices(tickers []string) map[string]decimal.Decimal
}

// currentPrices is the default one-call-per-ticker implementation of
// PriceSource.CurrentPrices, for sources without batch support.
func currentPrices(s PriceSource, tickers []string) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(tickers))
	for _, ticker := range tickers {
		if price, ok := s.CurrentPrice(ticker); ok {
			prices[ticker] = price
		}
	}
	return prices
}
