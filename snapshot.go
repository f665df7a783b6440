package networth

import "github.com/shopspring/decimal"

// Bucket names the four account categories of the balance sheet.
const (
	BucketLiquidity   = "liquidity"
	BucketPlanned     = "planned"
	BucketEmergency   = "emergency"
	BucketInvestments = "investments"
)

// BucketSummary is the summarized state of one account category, split into
// its liquid and invested portions. Liquid plus invested always equals the
// total.
type BucketSummary struct {
	Name     string
	Total    Money
	Liquid   Money
	Invested Money
}

// LiquidityBucket summarizes the main account: fully liquid.
func LiquidityBucket(net Money) BucketSummary {
	return BucketSummary{Name: BucketLiquidity, Total: net, Liquid: net}
}

// PlannedBucket summarizes the planned-expense reserves, part held as cash
// and part invested.
func PlannedBucket(liquid, invested Money) BucketSummary {
	return BucketSummary{Name: BucketPlanned, Total: liquid.Add(invested), Liquid: liquid, Invested: invested}
}

// EmergencyBucket summarizes the emergency fund. The fund's own
// classification flag decides whether its capital counts as liquid or
// invested.
func EmergencyBucket(capital Money, invested bool) BucketSummary {
	b := BucketSummary{Name: BucketEmergency, Total: capital}
	if invested {
		b.Invested = capital
	} else {
		b.Liquid = capital
	}
	return b
}

// Holding is one instrument position valued at its current price.
type Holding struct {
	Ticker   string
	Quantity Quantity
	Price    decimal.Decimal
	Value    Money
	Weight   decimal.Decimal // share of the investments bucket, scale 6
}

// weightScale is the decimal scale of per-instrument weights.
const weightScale = 6

// InvestmentsBucket summarizes the investment holdings: fully invested.
// Each holding's weight is its value over the bucket total; when the total
// is zero every weight is zero.
func InvestmentsBucket(holdings []Holding) (BucketSummary, []Holding) {
	var total Money
	for _, h := range holdings {
		total = total.Add(h.Value)
	}

	weighted := make([]Holding, len(holdings))
	for i, h := range holdings {
		h.Weight = h.Value.Ratio(total).Round(weightScale)
		weighted[i] = h
	}

	return BucketSummary{Name: BucketInvestments, Total: total, Invested: total}, weighted
}

// Investments builds the investments bucket from the ledger's live positions
// valued at current prices through the given source. Instruments without a
// price are valued at zero.
func Investments(l *Ledger, src PriceSource, on Date, currency string) (BucketSummary, []Holding) {
	positions := l.Positions(on)
	tickers := make([]string, 0, len(positions))
	for ticker := range positions {
		tickers = append(tickers, ticker)
	}
	prices := src.CurrentPrices(tickers)

	holdings := make([]Holding, 0, len(positions))
	for _, ticker := range l.AllInstruments() {
		quantity, held := positions[ticker]
		if !held {
			continue
		}
		price := prices[ticker] // absent price values the position at zero
		holdings = append(holdings, Holding{
			Ticker:   ticker,
			Quantity: quantity,
			Price:    price,
			Value:    M(quantity.Decimal().Mul(price), currency).Round(),
		})
	}
	return InvestmentsBucket(holdings)
}

// ratioScale is the decimal scale of the snapshot's liquid/invested ratios.
const ratioScale = 4

// Snapshot aggregates the four bucket summaries into one view of the balance
// sheet. The invariant NetWorth == liquid contributions + invested
// contributions holds by construction; InvestedRatio + LiquidRatio == 1
// within rounding.
type Snapshot struct {
	On            Date
	Buckets       []BucketSummary
	LiquidCapital Money
	Invested      Money
	NetWorth      Money
	InvestedRatio decimal.Decimal // scale 4, 0 when net worth is 0
	LiquidRatio   decimal.Decimal
}

// NewSnapshot combines bucket summaries using each bucket's own
// liquid/invested split rather than a fixed mapping per category.
func NewSnapshot(on Date, buckets ...BucketSummary) Snapshot {
	var liquid, invested Money
	for _, b := range buckets {
		liquid = liquid.Add(b.Liquid)
		invested = invested.Add(b.Invested)
	}

	// On a zero net worth the invested ratio is zero by the Ratio edge case
	// and the liquid ratio is its complement, one.
	netWorth := liquid.Add(invested).Round()
	investedRatio := invested.Ratio(netWorth).Round(ratioScale)
	liquidRatio := decimal.NewFromInt(1).Sub(investedRatio)

	return Snapshot{
		On:            on,
		Buckets:       buckets,
		LiquidCapital: liquid,
		Invested:      invested,
		NetWorth:      netWorth,
		InvestedRatio: investedRatio,
		LiquidRatio:   liquidRatio,
	}
}
