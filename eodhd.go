package networth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// EodhdAPIKeyEnv is the environment variable read when no API key is given
// explicitly. You can get a key at https://eodhd.com/
const EodhdAPIKeyEnv = "EODHD_API_KEY"

const eodhdBaseURL = "https://eodhd.com/api"

// EODHDSource fetches prices from the EODHD quote API.
//
// All failures (network, timeout, bad status, parse) are swallowed and
// reported as absent prices: the caller never sees an error, only missing
// data.
type EODHDSource struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewEODHDSource creates a source for the given API key. An empty key falls
// back to the EODHD_API_KEY environment variable. The HTTP client applies a
// request timeout; a timeout is treated as a fetch failure.
func NewEODHDSource(apiKey string, log zerolog.Logger) *EODHDSource {
	if apiKey == "" {
		apiKey = os.Getenv(EodhdAPIKeyEnv)
	}
	return &EODHDSource{
		apiKey:  apiKey,
		baseURL: eodhdBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("component", "eodhd").Logger(),
	}
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func (s *EODHDSource) jwget(addr string, data interface{}) error {
	resp, err := s.client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v/%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// CurrentPrice fetches the latest quote from the real-time endpoint.
func (s *EODHDSource) CurrentPrice(ticker string) (decimal.Decimal, bool) {
	// https://eodhd.com/api/real-time/AAPL.US?fmt=json&api_token=...
	// {
	//   "code": "AAPL.US",
	//   "timestamp": 1698346200,
	//   "close": 171.205,
	//   ...
	addr := fmt.Sprintf("%s/real-time/%s?fmt=json&api_token=%s", s.baseURL, url.PathEscape(ticker), s.apiKey)

	var content struct {
		Close json.Number `json:"close"`
	}
	if err := s.jwget(addr, &content); err != nil {
		s.log.Warn().Str("ticker", ticker).Err(err).Msg("current price fetch failed")
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(content.Close.String())
	if err != nil {
		// EODHD returns the string "NA" for unknown tickers.
		s.log.Warn().Str("ticker", ticker).Str("close", content.Close.String()).Msg("unusable quote")
		return decimal.Zero, false
	}
	return price, true
}

// HistoricalPrice fetches the close of a single day from the eod endpoint.
func (s *EODHDSource) HistoricalPrice(ticker string, on Date) (decimal.Decimal, bool) {
	prices := s.HistoricalPrices(ticker, Range{From: on, To: on})
	price, ok := prices[on]
	return price, ok
}

// HistoricalPrices fetches daily closes for the whole range in one call.
// Bounds are included in the response.
func (s *EODHDSource) HistoricalPrices(ticker string, rng Range) map[Date]decimal.Decimal {
	// https://eodhd.com/api/eod/AAPL.US?fmt=json&api_token=...&from=2024-01-01&to=2024-02-01
	// [
	//   {
	//     "date": "2024-01-02",
	//     "open": 187.15,
	//     "adjusted_close": 185.4032,
	//     ...
	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		s.baseURL, url.PathEscape(ticker), s.apiKey, rng.From, rng.To)

	type row struct {
		Date  Date            `json:"date"`
		Close decimal.Decimal `json:"adjusted_close"`
	}
	content := make([]row, 0)
	if err := s.jwget(addr, &content); err != nil {
		s.log.Warn().Str("ticker", ticker).Err(err).Msg("historical prices fetch failed")
		return map[Date]decimal.Decimal{}
	}

	prices := make(map[Date]decimal.Decimal, len(content))
	for _, r := range content {
		prices[r.Date] = r.Close
	}
	return prices
}

// CurrentPrices fetches the latest quote for each ticker, one call per
// ticker.
func (s *EODHDSource) CurrentPrices(tickers []string) map[string]decimal.Decimal {
	return currentPrices(s, tickers)
}

var _ PriceSource = (*EODHDSource)(nil)
