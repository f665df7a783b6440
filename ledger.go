package networth

import (
	"iter"
	"sort"
)

// Ledger represents the ordered transaction log of the balance sheet.
//
// In a Ledger transactions are always in chronological order. The log is
// append-only: reconstruction derives new aggregates without mutating it.
type Ledger struct {
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger(txs ...Transaction) *Ledger {
	l := &Ledger{transactions: make([]Transaction, 0, len(txs))}
	l.Append(txs...)
	return l
}

// Append appends transactions to this ledger and maintains the chronological
// order of transactions.
func (l *Ledger) Append(txs ...Transaction) {
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
}

// stableSort sorts the ledger by transaction date. The sort is stable, meaning
// transactions on the same day maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
}

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Transactions returns an iterator that yields each transaction in
// chronological order. Optional filters restrict the yielded transactions to
// those accepted by at least one filter.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			accept := len(filters) == 0
			for _, filter := range filters {
				if filter(tx) {
					accept = true
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// OldestTransactionDate returns the date of the earliest transaction in the
// ledger, or the zero date when the ledger is empty.
func (l *Ledger) OldestTransactionDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[0].When()
}

// NewestTransactionDate returns the date of the latest transaction in the
// ledger, or the zero date when the ledger is empty.
func (l *Ledger) NewestTransactionDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[len(l.transactions)-1].When()
}

// Positions reconstructs the net quantity held per instrument on a given
// date: +quantity for each buy, -quantity for each sell, over transactions
// dated on or before 'on'. Same-date transactions are summed regardless of
// their relative order. Instruments with a zero net quantity are omitted.
func (l *Ledger) Positions(on Date) map[string]Quantity {
	positions := make(map[string]Quantity)
	for _, tx := range l.transactions {
		if tx.When().After(on) {
			// The ledger is sorted by date, so it's safe to break.
			break
		}
		switch v := tx.(type) {
		case Buy:
			positions[v.Instrument] = positions[v.Instrument].Add(v.Quantity)
		case Sell:
			positions[v.Instrument] = positions[v.Instrument].Sub(v.Quantity)
		}
	}
	for ticker, q := range positions {
		if q.IsZero() {
			delete(positions, ticker)
		}
	}
	return positions
}

// Position reconstructs the net quantity held of a single instrument on a
// given date.
func (l *Ledger) Position(ticker string, on Date) Quantity {
	var position Quantity
	for _, tx := range l.transactions {
		if tx.When().After(on) {
			break
		}
		switch v := tx.(type) {
		case Buy:
			if v.Instrument == ticker {
				position = position.Add(v.Quantity)
			}
		case Sell:
			if v.Instrument == ticker {
				position = position.Sub(v.Quantity)
			}
		}
	}
	return position
}

// CashBalance computes the net cash in the account on a specific date:
// deposits minus withdrawals, minus buy costs, plus sell proceeds.
func (l *Ledger) CashBalance(on Date) Money {
	var balance Money
	for _, tx := range l.transactions {
		if tx.When().After(on) {
			break
		}
		switch v := tx.(type) {
		case Deposit:
			balance = balance.Add(v.Amount)
		case Withdraw:
			balance = balance.Sub(v.Amount)
		case Buy:
			balance = balance.Sub(v.Cost())
		case Sell:
			balance = balance.Add(v.Proceeds())
		}
	}
	return balance
}

// AllInstruments returns the sorted tickers of every instrument that appears
// in the ledger.
func (l *Ledger) AllInstruments() []string {
	visited := make(map[string]struct{})
	for _, tx := range l.transactions {
		switch v := tx.(type) {
		case Buy:
			visited[v.Instrument] = struct{}{}
		case Sell:
			visited[v.Instrument] = struct{}{}
		}
	}
	tickers := make([]string, 0, len(visited))
	for ticker := range visited {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// ByInstrument returns a predicate that filters transactions by instrument
// ticker.
func ByInstrument(ticker string) func(Transaction) bool {
	return func(tx Transaction) bool {
		switch v := tx.(type) {
		case Buy:
			return v.Instrument == ticker
		case Sell:
			return v.Instrument == ticker
		default:
			return false
		}
	}
}
