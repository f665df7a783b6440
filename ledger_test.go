package networth

import (
	"testing"
)

func day(str string) Date { return MustParseDate(str) }

func eur(v float64) Money { return M(v, "EUR") }

// sampleLedger builds a small ledger with cash movements and trades on AAPL
// and MSFT.
func sampleLedger() *Ledger {
	return NewLedger(
		NewDeposit(day("2024-01-01"), "seed", eur(10000)),
		NewBuy(day("2024-01-10"), "", "AAPL", Q(10), eur(150), eur(5)),
		NewBuy(day("2024-02-01"), "", "MSFT", Q(5), eur(400), eur(0)),
		NewSell(day("2024-03-01"), "", "AAPL", Q(4), eur(170), eur(5)),
		NewWithdraw(day("2024-03-15"), "", eur(1000)),
	)
}

func TestPositions(t *testing.T) {
	l := sampleLedger()

	tests := []struct {
		on   string
		want map[string]int64
	}{
		{on: "2023-12-31", want: map[string]int64{}},
		{on: "2024-01-10", want: map[string]int64{"AAPL": 10}},
		{on: "2024-02-15", want: map[string]int64{"AAPL": 10, "MSFT": 5}},
		{on: "2024-03-01", want: map[string]int64{"AAPL": 6, "MSFT": 5}},
		{on: "2024-12-31", want: map[string]int64{"AAPL": 6, "MSFT": 5}},
	}
	for _, tt := range tests {
		got := l.Positions(day(tt.on))
		if len(got) != len(tt.want) {
			t.Errorf("Positions(%s) has %d instruments, want %d", tt.on, len(got), len(tt.want))
			continue
		}
		for ticker, qty := range tt.want {
			if !got[ticker].Equal(Q(qty)) {
				t.Errorf("Positions(%s)[%s] = %s, want %d", tt.on, ticker, got[ticker], qty)
			}
		}
	}
}

func TestPositionsClosedAreOmitted(t *testing.T) {
	l := NewLedger(
		NewBuy(day("2024-01-01"), "", "AAPL", Q(10), eur(150), eur(0)),
		NewSell(day("2024-02-01"), "", "AAPL", Q(10), eur(160), eur(0)),
	)
	if got := l.Positions(day("2024-06-01")); len(got) != 0 {
		t.Errorf("Positions after full exit = %v, want empty", got)
	}
}

func TestPositionsSameDayOrderIndependent(t *testing.T) {
	buy := NewBuy(day("2024-01-15"), "", "AAPL", Q(10), eur(150), eur(0))
	sell := NewSell(day("2024-01-15"), "", "AAPL", Q(3), eur(155), eur(0))

	a := NewLedger(buy, sell)
	b := NewLedger(sell, buy)

	wantQty := Q(7)
	if got := a.Position("AAPL", day("2024-01-15")); !got.Equal(wantQty) {
		t.Errorf("buy-then-sell order: position = %s, want %s", got, wantQty)
	}
	if got := b.Position("AAPL", day("2024-01-15")); !got.Equal(wantQty) {
		t.Errorf("sell-then-buy order: position = %s, want %s", got, wantQty)
	}
}

func TestCashBalance(t *testing.T) {
	l := sampleLedger()

	tests := []struct {
		on   string
		want float64
	}{
		{on: "2023-12-31", want: 0},
		{on: "2024-01-01", want: 10000},
		{on: "2024-01-10", want: 10000 - (10*150 + 5)},
		{on: "2024-02-01", want: 10000 - 1505 - 2000},
		{on: "2024-03-01", want: 10000 - 1505 - 2000 + (4*170 - 5)},
		{on: "2024-03-15", want: 10000 - 1505 - 2000 + 675 - 1000},
	}
	for _, tt := range tests {
		if got := l.CashBalance(day(tt.on)); !got.Equal(eur(tt.want)) {
			t.Errorf("CashBalance(%s) = %s, want %s", tt.on, got, eur(tt.want))
		}
	}
}

func TestAppendKeepsChronologicalOrder(t *testing.T) {
	l := NewLedger()
	l.Append(NewDeposit(day("2024-03-01"), "", eur(3)))
	l.Append(NewDeposit(day("2024-01-01"), "", eur(1)))
	l.Append(NewDeposit(day("2024-02-01"), "", eur(2)))

	var dates []Date
	for _, tx := range l.Transactions() {
		dates = append(dates, tx.When())
	}
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(dates[i-1]) {
			t.Fatalf("transactions out of order: %v", dates)
		}
	}
}

func TestTransactionsFilter(t *testing.T) {
	l := sampleLedger()
	count := 0
	for _, tx := range l.Transactions(ByInstrument("AAPL")) {
		count++
		if tx.What() != CmdBuy && tx.What() != CmdSell {
			t.Errorf("ByInstrument matched a %s transaction", tx.What())
		}
	}
	if count != 2 {
		t.Errorf("ByInstrument(AAPL) matched %d transactions, want 2", count)
	}
}

func TestAllInstruments(t *testing.T) {
	l := sampleLedger()
	got := l.AllInstruments()
	want := []string{"AAPL", "MSFT"}
	if len(got) != len(want) {
		t.Fatalf("AllInstruments() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllInstruments()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOldestNewestTransactionDate(t *testing.T) {
	l := sampleLedger()
	if got := l.OldestTransactionDate(); got != day("2024-01-01") {
		t.Errorf("OldestTransactionDate() = %v", got)
	}
	if got := l.NewestTransactionDate(); got != day("2024-03-15") {
		t.Errorf("NewestTransactionDate() = %v", got)
	}
}

func TestSellValidateRejectsOversell(t *testing.T) {
	l := NewLedger(NewBuy(day("2024-01-01"), "", "AAPL", Q(5), eur(150), eur(0)))

	over := NewSell(day("2024-02-01"), "", "AAPL", Q(6), eur(160), eur(0))
	if _, err := over.Validate(l); err == nil {
		t.Error("selling more than the position should fail validation")
	}

	exact := NewSell(day("2024-02-01"), "", "AAPL", Q(5), eur(160), eur(0))
	if _, err := exact.Validate(l); err != nil {
		t.Errorf("selling the exact position should pass, got %v", err)
	}
}

func TestWithdrawValidateRejectsOverdraft(t *testing.T) {
	l := NewLedger(NewDeposit(day("2024-01-01"), "", eur(100)))

	over := NewWithdraw(day("2024-02-01"), "", eur(101))
	if _, err := over.Validate(l); err == nil {
		t.Error("withdrawing more than the balance should fail validation")
	}
}

func TestValidateDefaultsDateToToday(t *testing.T) {
	tx, err := NewDeposit(Date{}, "", eur(10)).Validate(nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if tx.When() != Today() {
		t.Errorf("zero date validated to %v, want today", tx.When())
	}
}
