package networth

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const sampleTable = `ticker,date,price
AAPL,2024-01-05,185.5
AAPL,2024-01-12,186.2
MSFT,2024-01-05,370
garbage-row
AAPL,not-a-date,187
AAPL,2024-01-19,not-a-price
`

func TestCSVSourceHistoricalPrice(t *testing.T) {
	s, err := NewCSVSource(strings.NewReader(sampleTable), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}

	tests := []struct {
		ticker string
		on     string
		want   string
		found  bool
	}{
		{ticker: "AAPL", on: "2024-01-05", want: "185.5", found: true},
		{ticker: "AAPL", on: "2024-01-07", want: "185.5", found: true}, // sunday, last close wins
		{ticker: "AAPL", on: "2024-01-12", want: "186.2", found: true},
		{ticker: "AAPL", on: "2024-01-04", found: false},
		{ticker: "MSFT", on: "2024-01-05", want: "370", found: true},
		{ticker: "TSLA", on: "2024-01-05", found: false},
	}
	for _, tt := range tests {
		got, found := s.HistoricalPrice(tt.ticker, day(tt.on))
		if found != tt.found {
			t.Errorf("HistoricalPrice(%s, %s) found = %v, want %v", tt.ticker, tt.on, found, tt.found)
			continue
		}
		if found && !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("HistoricalPrice(%s, %s) = %s, want %s", tt.ticker, tt.on, got, tt.want)
		}
	}
}

func TestCSVSourceSkipsMalformedRows(t *testing.T) {
	s, err := NewCSVSource(strings.NewReader(sampleTable), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	// The three malformed rows are dropped, the valid ones survive.
	if got := len(s.histories); got != 2 {
		t.Errorf("loaded %d tickers, want 2", got)
	}
	if got := s.histories["AAPL"].Len(); got != 2 {
		t.Errorf("AAPL history has %d points, want 2", got)
	}
}

func TestCSVSourceHistoricalPrices(t *testing.T) {
	s, err := NewCSVSource(strings.NewReader(sampleTable), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	prices := s.HistoricalPrices("AAPL", NewRange(day("2024-01-04"), day("2024-01-13")))
	// 2024-01-04 has no resolvable price, the other 9 days do.
	if len(prices) != 9 {
		t.Errorf("resolved %d days, want 9", len(prices))
	}
	if got := prices[day("2024-01-10")]; !got.Equal(decimal.RequireFromString("185.5")) {
		t.Errorf("price on 2024-01-10 = %s, want the 01-05 close", got)
	}
}

func TestCSVSourceCurrentPrices(t *testing.T) {
	s, err := NewCSVSource(strings.NewReader(sampleTable), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	prices := s.CurrentPrices([]string{"AAPL", "MSFT", "TSLA"})
	if len(prices) != 2 {
		t.Fatalf("CurrentPrices resolved %d tickers, want 2", len(prices))
	}
	if got := prices["AAPL"]; !got.Equal(decimal.RequireFromString("186.2")) {
		t.Errorf("AAPL current price = %s, want the latest close", got)
	}
}
