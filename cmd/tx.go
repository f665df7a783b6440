package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/networth"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// txCmd holds the flags shared by all transaction subcommands.
type txCmd struct {
	date string
	memo string
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the transaction (YYYY-MM-DD, default today)")
	f.StringVar(&c.memo, "m", "", "Memo for the transaction")
}

// depositCmd records a cash deposit.
type depositCmd struct {
	txCmd
	amount   float64
	currency string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "Record a cash deposit into the account." }
func (*depositCmd) Usage() string {
	return `deposit -a <amount> [-c <currency>] [-d <date>] [-m <memo>]:
  Records a cash deposit into the account.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	c.txCmd.SetFlags(f)
	f.Float64Var(&c.amount, "a", 0, "Amount of cash to deposit")
	f.StringVar(&c.currency, "c", "", "Currency of the deposit (default the configured currency)")
}

func (c *depositCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, cur, status := c.common()
	if status != subcommands.ExitSuccess {
		return status
	}
	tx := networth.NewDeposit(day, c.memo, networth.M(c.amount, cur))
	return appendTransaction(tx)
}

// withdrawCmd records a cash withdrawal.
type withdrawCmd struct {
	txCmd
	amount   float64
	currency string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "Record a cash withdrawal from the account." }
func (*withdrawCmd) Usage() string {
	return `withdraw -a <amount> [-c <currency>] [-d <date>] [-m <memo>]:
  Records a cash withdrawal from the account.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	c.txCmd.SetFlags(f)
	f.Float64Var(&c.amount, "a", 0, "Amount of cash to withdraw")
	f.StringVar(&c.currency, "c", "", "Currency of the withdrawal (default the configured currency)")
}

func (c *withdrawCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, cur, status := c.common()
	if status != subcommands.ExitSuccess {
		return status
	}
	tx := networth.NewWithdraw(day, c.memo, networth.M(c.amount, cur))
	return appendTransaction(tx)
}

// common parses the shared transaction flags, resolving the configured
// currency when none was given.
func (c *txCmd) common() (networth.Date, string, subcommands.ExitStatus) {
	day, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid date: %v\n", err)
		return networth.Date{}, "", subcommands.ExitUsageError
	}
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return networth.Date{}, "", subcommands.ExitFailure
	}
	return day, cfg.Currency, subcommands.ExitSuccess
}

// tradeCmd holds the flags shared by buy and sell.
type tradeCmd struct {
	txCmd
	instrument string
	quantity   string
	price      string
	fees       string
	currency   string
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	c.txCmd.SetFlags(f)
	f.StringVar(&c.instrument, "i", "", "Ticker of the instrument to trade")
	f.StringVar(&c.quantity, "q", "", "Number of units traded")
	f.StringVar(&c.price, "p", "", "Price per unit")
	f.StringVar(&c.fees, "f", "0", "Transaction fees")
	f.StringVar(&c.currency, "c", "", "Currency of the trade (default the configured currency)")
}

// parse resolves the trade flags into their typed values. Quantities and
// prices are parsed as decimals to avoid float rounding on user input.
func (c *tradeCmd) parse() (day networth.Date, cur string, quantity networth.Quantity, unitPrice, fees networth.Money, status subcommands.ExitStatus) {
	day, cur, status = c.common()
	if status != subcommands.ExitSuccess {
		return
	}
	status = subcommands.ExitUsageError
	if c.instrument == "" {
		fmt.Fprintln(os.Stderr, "Missing instrument ticker (-i).")
		return
	}
	q, err := decimal.NewFromString(c.quantity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid quantity %q: %v\n", c.quantity, err)
		return
	}
	p, err := decimal.NewFromString(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid price %q: %v\n", c.price, err)
		return
	}
	fe, err := decimal.NewFromString(c.fees)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid fees %q: %v\n", c.fees, err)
		return
	}
	return day, cur, networth.Q(q), networth.M(p, cur), networth.M(fe, cur), subcommands.ExitSuccess
}

// buyCmd records an instrument purchase.
type buyCmd struct{ tradeCmd }

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "Record the purchase of an instrument." }
func (*buyCmd) Usage() string {
	return `buy -i <ticker> -q <quantity> -p <price> [-f <fees>] [-c <currency>] [-d <date>] [-m <memo>]:
  Records the purchase of an instrument. The cash cost (quantity x price + fees)
  is taken from the account balance.
`
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, _, quantity, unitPrice, fees, status := c.parse()
	if status != subcommands.ExitSuccess {
		return status
	}
	tx := networth.NewBuy(day, c.memo, c.instrument, quantity, unitPrice, fees)
	return appendTransaction(tx)
}

// sellCmd records an instrument sale.
type sellCmd struct{ tradeCmd }

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "Record the sale of an instrument." }
func (*sellCmd) Usage() string {
	return `sell -i <ticker> -q <quantity> -p <price> [-f <fees>] [-c <currency>] [-d <date>] [-m <memo>]:
  Records the sale of an instrument. The sale is rejected when the position
  held on that date is smaller than the quantity sold.
`
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, _, quantity, unitPrice, fees, status := c.parse()
	if status != subcommands.ExitSuccess {
		return status
	}
	tx := networth.NewSell(day, c.memo, c.instrument, quantity, unitPrice, fees)
	return appendTransaction(tx)
}
