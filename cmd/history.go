package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/etnz/networth"
	"github.com/google/subcommands"
)

// historyCmd prints the portfolio value series and its return metrics.
type historyCmd struct {
	from     string
	to       string
	interval int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "Display the portfolio value over time." }
func (*historyCmd) Usage() string {
	return `history [-from <date>] [-to <date>] [-i <days>]:
  Displays the portfolio value sampled over the range, with the total and
  annualized returns. The range defaults to the full ledger span.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Start of the range (YYYY-MM-DD, default the first transaction)")
	f.StringVar(&c.to, "to", "", "End of the range (YYYY-MM-DD, default today)")
	f.IntVar(&c.interval, "i", 30, "Days between samples")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ledger, err := DecodeLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if ledger.Len() == 0 {
		fmt.Fprintln(os.Stderr, "The ledger is empty.")
		return subcommands.ExitFailure
	}
	cache, err := OpenPriceCache(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	from := ledger.OldestTransactionDate()
	if c.from != "" {
		if from, err = networth.ParseDate(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid from date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	to := networth.Today()
	if c.to != "" {
		if to, err = networth.ParseDate(c.to); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid to date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	report := networth.Performance(ledger, cache, networth.NewRange(from, to), c.interval, cfg.Currency)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "Date\tValue")
	for _, p := range report.Points {
		fmt.Fprintf(w, "%s\t%s\n", p.On, p.Value)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total return\t%s\n", report.TotalReturn.SignedString())
	if report.Annualized != nil {
		fmt.Fprintf(w, "Annualized\t%s\n", report.Annualized.SignedString())
	} else {
		fmt.Fprintln(w, "Annualized\tn/a")
	}
	w.Flush()
	return subcommands.ExitSuccess
}
