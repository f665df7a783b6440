package networth

import (
	"math"

	"github.com/shopspring/decimal"
)

// PerformancePoint is the value of the portfolio at one sampled date.
type PerformancePoint struct {
	On    Date
	Value Money
}

// PerformanceReport is the value series over a range together with its
// return metrics. Annualized is nil when no annualized return is defined
// (zero initial value or an empty period).
type PerformanceReport struct {
	Range       Range
	Points      []PerformancePoint
	TotalReturn Percent
	Annualized  *Percent
}

// Start returns the value at the first sampled date.
func (r PerformanceReport) Start() Money { return r.Points[0].Value }

// End returns the value at the last sampled date.
func (r PerformanceReport) End() Money { return r.Points[len(r.Points)-1].Value }

// daysPerYear converts a day count into years for the annualized return.
const daysPerYear = 365.25

// Performance computes the historical value series of the ledger's holdings
// over the given range, sampled every intervalDays days.
//
// The series always starts at rng.From and ends at rng.To regardless of the
// stride. At each sample the positions are reconstructed as of that date and
// valued at the historical price; an absent price contributes zero. The
// inputs are not mutated; fetches may populate the price source's cache as a
// side effect.
func Performance(l *Ledger, src PriceSource, rng Range, intervalDays int, currency string) PerformanceReport {
	if intervalDays <= 0 {
		intervalDays = 30
	}

	report := PerformanceReport{Range: rng}
	for _, day := range sampleDates(rng, intervalDays) {
		report.Points = append(report.Points, PerformancePoint{
			On:    day,
			Value: valueOn(l, src, day, currency),
		})
	}

	initial, final := report.Start(), report.End()
	report.TotalReturn = totalReturn(initial, final)
	report.Annualized = annualizedReturn(initial, final, rng)
	return report
}

// sampleDates yields rng.From, then every intervalDays-th day, and always
// forces rng.To as the final sample if the stride does not hit it exactly.
func sampleDates(rng Range, intervalDays int) []Date {
	dates := []Date{rng.From}
	for d := rng.From.Add(intervalDays); !d.After(rng.To); d = d.Add(intervalDays) {
		dates = append(dates, d)
	}
	if last := dates[len(dates)-1]; last != rng.To {
		dates = append(dates, rng.To)
	}
	return dates
}

// valueOn prices the positions held on a given date. Instruments without a
// price contribute zero.
func valueOn(l *Ledger, src PriceSource, on Date, currency string) Money {
	total := decimal.Zero
	for ticker, quantity := range l.Positions(on) {
		price, ok := src.HistoricalPrice(ticker, on)
		if !ok {
			continue
		}
		total = total.Add(quantity.Decimal().Mul(price))
	}
	return M(total, currency).Round()
}

// totalReturn is the simple percentage change from initial to final. A zero
// initial value is a defined edge case yielding zero, not an error.
func totalReturn(initial, final Money) Percent {
	if initial.IsZero() {
		return 0
	}
	ret := final.Sub(initial).Ratio(initial).Mul(decimal.NewFromInt(100)).Round(2)
	return Percent(ret.InexactFloat64())
}

// annualizedReturn is the compound annual growth rate over the range, or nil
// when undefined. The fractional exponent goes through float64; the result is
// re-quantized to display scale, so precision loss is bounded to rounding.
func annualizedReturn(initial, final Money, rng Range) *Percent {
	years := float64(rng.To.Sub(rng.From)) / daysPerYear
	if years <= 0 || initial.IsZero() {
		return nil
	}
	ratio := final.Ratio(initial).InexactFloat64()
	if ratio <= 0 {
		// A net-short ledger can value the portfolio at or below zero. No
		// real growth rate exists then, and math.Pow would yield NaN.
		return nil
	}
	annualized := (math.Pow(ratio, 1/years) - 1) * 100
	p := Percent(decimal.NewFromFloat(annualized).Round(2).InexactFloat64())
	return &p
}
