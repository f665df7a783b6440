package networth

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot(t *testing.T) {
	liquidity := LiquidityBucket(eur(4000))
	planned := PlannedBucket(eur(3000), eur(2000))
	emergency := EmergencyBucket(eur(3000), false)
	investments := BucketSummary{Name: BucketInvestments, Total: eur(10000), Invested: eur(10000)}

	s := NewSnapshot(day("2024-06-01"), liquidity, planned, emergency, investments)

	assert.True(t, s.NetWorth.Equal(eur(22000)), "net worth = %s", s.NetWorth)
	assert.True(t, s.LiquidCapital.Equal(eur(10000)), "liquid = %s", s.LiquidCapital)
	assert.True(t, s.Invested.Equal(eur(12000)), "invested = %s", s.Invested)
	assert.True(t, s.InvestedRatio.Equal(decimal.RequireFromString("0.5455")), "invested ratio = %s", s.InvestedRatio)
	assert.True(t, s.LiquidRatio.Equal(decimal.RequireFromString("0.4545")), "liquid ratio = %s", s.LiquidRatio)
	// The two ratios always close to one.
	assert.True(t, s.InvestedRatio.Add(s.LiquidRatio).Equal(decimal.NewFromInt(1)))
}

func TestNewSnapshotZeroNetWorth(t *testing.T) {
	s := NewSnapshot(day("2024-06-01"), LiquidityBucket(eur(0)))
	assert.True(t, s.NetWorth.IsZero())
	assert.True(t, s.InvestedRatio.IsZero(), "invested ratio on zero net worth = %s", s.InvestedRatio)
	// The liquid ratio stays the complement of the invested ratio.
	assert.True(t, s.LiquidRatio.Equal(decimal.NewFromInt(1)), "liquid ratio on zero net worth = %s", s.LiquidRatio)
}

func TestEmergencyBucketClassification(t *testing.T) {
	asCash := EmergencyBucket(eur(5000), false)
	assert.True(t, asCash.Liquid.Equal(eur(5000)))
	assert.True(t, asCash.Invested.IsZero())

	asFund := EmergencyBucket(eur(5000), true)
	assert.True(t, asFund.Invested.Equal(eur(5000)))
	assert.True(t, asFund.Liquid.IsZero())

	// Either way the bucket total is the capital.
	assert.True(t, asCash.Total.Equal(asFund.Total))
}

func TestInvestmentsBucketWeights(t *testing.T) {
	holdings := []Holding{
		{Ticker: "AAPL", Quantity: Q(10), Value: eur(1905)},
		{Ticker: "MSFT", Quantity: Q(5), Value: eur(2050)},
		{Ticker: "VWCE", Quantity: Q(20), Value: eur(2180)},
	}

	bucket, weighted := InvestmentsBucket(holdings)
	require.True(t, bucket.Total.Equal(eur(6135)), "total = %s", bucket.Total)
	assert.True(t, bucket.Invested.Equal(bucket.Total), "the investments bucket is fully invested")

	sum := decimal.Zero
	for _, h := range weighted {
		sum = sum.Add(h.Weight)
	}
	assert.True(t, sum.Sub(decimal.NewFromInt(1)).Abs().LessThanOrEqual(decimal.RequireFromString("0.000003")),
		"weights sum to %s, want 1 within rounding", sum)

	assert.True(t, weighted[0].Weight.Equal(decimal.RequireFromString("0.310513")),
		"AAPL weight = %s", weighted[0].Weight)
}

func TestInvestmentsBucketEmpty(t *testing.T) {
	bucket, weighted := InvestmentsBucket(nil)
	assert.True(t, bucket.Total.IsZero())
	assert.Empty(t, weighted)
}

func TestInvestmentsBucketZeroTotalWeights(t *testing.T) {
	bucket, weighted := InvestmentsBucket([]Holding{
		{Ticker: "AAPL", Quantity: Q(10), Value: eur(0)},
	})
	assert.True(t, bucket.Total.IsZero())
	require.Len(t, weighted, 1)
	assert.True(t, weighted[0].Weight.IsZero(), "zero bucket total gives zero weights, not a division error")
}

func TestInvestments(t *testing.T) {
	l := NewLedger(
		NewBuy(day("2024-01-10"), "", "AAPL", Q(10), eur(150), eur(0)),
		NewBuy(day("2024-02-01"), "", "MSFT", Q(5), eur(400), eur(0)),
		NewBuy(day("2024-02-10"), "", "TSLA", Q(2), eur(200), eur(0)),
		NewSell(day("2024-03-01"), "", "TSLA", Q(2), eur(210), eur(0)),
	)
	source := newFakeSource() // prices AAPL and MSFT, knows no TSLA

	bucket, holdings := Investments(l, source, day("2024-06-01"), "EUR")

	// TSLA was fully sold, so only two holdings remain.
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Ticker)
	assert.Equal(t, "MSFT", holdings[1].Ticker)

	assert.True(t, holdings[0].Value.Equal(eur(1905)), "AAPL value = %s", holdings[0].Value)
	assert.True(t, holdings[1].Value.Equal(eur(2050)), "MSFT value = %s", holdings[1].Value)
	assert.True(t, bucket.Total.Equal(eur(3955)), "bucket total = %s", bucket.Total)
}

func TestInvestmentsUnpricedInstrument(t *testing.T) {
	l := NewLedger(NewBuy(day("2024-01-10"), "", "UNKNOWN", Q(10), eur(10), eur(0)))

	bucket, holdings := Investments(l, newFakeSource(), day("2024-06-01"), "EUR")
	require.Len(t, holdings, 1)
	assert.True(t, holdings[0].Value.IsZero(), "an unpriced position is carried at zero")
	assert.True(t, bucket.Total.IsZero())
}
