package networth

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CSVSource serves prices from a CSV table of `ticker,date,price` rows.
//
// Lookups on days without a quote (weekends, holidays) fall back to the most
// recent price on or before the requested date.
type CSVSource struct {
	histories map[string]*History
	log       zerolog.Logger
}

// NewCSVSource reads the whole table from r. A malformed row is skipped with
// a warning, not a hard failure.
func NewCSVSource(r io.Reader, log zerolog.Logger) (*CSVSource, error) {
	s := &CSVSource{
		histories: make(map[string]*History),
		log:       log.With().Str("component", "csv_source").Logger(),
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == "ticker" {
			continue // header row
		}
		if len(record) != 3 {
			s.log.Warn().Int("row", i+1).Msg("skipping row: want 3 columns ticker,date,price")
			continue
		}
		day, err := ParseDate(record[1])
		if err != nil {
			s.log.Warn().Int("row", i+1).Str("date", record[1]).Msg("skipping row: bad date")
			continue
		}
		price, err := decimal.NewFromString(record[2])
		if err != nil {
			s.log.Warn().Int("row", i+1).Str("price", record[2]).Msg("skipping row: bad price")
			continue
		}
		h, ok := s.histories[record[0]]
		if !ok {
			h = &History{}
			s.histories[record[0]] = h
		}
		h.Append(day, price)
	}
	return s, nil
}

// OpenCSVSource reads the price table from a file.
func OpenCSVSource(path string, log zerolog.Logger) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewCSVSource(f, log)
}

// CurrentPrice returns the most recent price on or before today.
func (s *CSVSource) CurrentPrice(ticker string) (decimal.Decimal, bool) {
	return s.HistoricalPrice(ticker, Today())
}

// HistoricalPrice returns the price on the given date, falling back to the
// last known price before it.
func (s *CSVSource) HistoricalPrice(ticker string, on Date) (decimal.Decimal, bool) {
	h, ok := s.histories[ticker]
	if !ok {
		return decimal.Zero, false
	}
	return h.ValueAsOf(on)
}

// HistoricalPrices returns a price for every day in the range for which one
// can be resolved.
func (s *CSVSource) HistoricalPrices(ticker string, rng Range) map[Date]decimal.Decimal {
	prices := make(map[Date]decimal.Decimal)
	h, ok := s.histories[ticker]
	if !ok {
		return prices
	}
	for day := range rng.Days() {
		if price, found := h.ValueAsOf(day); found {
			prices[day] = price
		}
	}
	return prices
}

// CurrentPrices returns the latest price for each ticker.
func (s *CSVSource) CurrentPrices(tickers []string) map[string]decimal.Decimal {
	return currentPrices(s, tickers)
}

var _ PriceSource = (*CSVSource)(nil)
