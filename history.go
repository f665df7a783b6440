package networth

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// History stores a chronological series of prices, each associated with a
// specific date. It ensures that dates are unique and the series is always
// sorted.
type History struct {
	days   []Date
	values []decimal.Decimal
}

// Len returns the number of items in the history.
func (h *History) Len() int { return len(h.days) }

// Append adds a point to the history.
//
// Existing value at that date are overwritten.
func (h *History) Append(on Date, price decimal.Decimal) *History {
	if i := slices.Index(h.days, on); i >= 0 {
		// Found a point at that exact same day. We choose to replace, because
		// it gives higher priority to the last data.
		h.values[i] = price
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, price)
	h.sort()
	return h
}

// sort sorts the history in chronological order.
func (h *History) sort() {
	sort.Sort(chronological{h})
}

// chronological is a private implementation to make a history chronologically sorted.
type chronological struct{ *History }

func (s chronological) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }
func (s chronological) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

// Get returns the value at 'day' and true, or zero and false.
func (h *History) Get(day Date) (decimal.Decimal, bool) {
	if i := slices.Index(h.days, day); i >= 0 {
		return h.values[i], true
	}
	return decimal.Zero, false
}

// ValueAsOf returns the value on a given day, or the most recent value before
// it. It returns the value and true if found, otherwise zero and false.
func (h *History) ValueAsOf(day Date) (decimal.Decimal, bool) {
	// The days slice is sorted, so we can use binary search.
	i, found := slices.BinarySearchFunc(h.days, day, func(d, t Date) int {
		if d.After(t) {
			return 1
		}
		if d.Before(t) {
			return -1
		}
		return 0
	})

	if found {
		return h.values[i], true
	}

	// Not found. `i` is the index where `day` would be inserted.
	// The value we want is at `i-1`, the last entry before the target date.
	if i == 0 {
		return decimal.Zero, false // No date on or before the given day.
	}
	return h.values[i-1], true
}
