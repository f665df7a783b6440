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

// summaryCmd prints the aggregated balance sheet.
type summaryCmd struct {
	date string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "Display the aggregated balance sheet." }
func (*summaryCmd) Usage() string {
	return `summary [-d <date>]:
  Displays the four bucket summaries and the net worth, with the liquid and
  invested split and the per-instrument weights.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the summary (YYYY-MM-DD, default today)")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid date: %v\n", err)
		return subcommands.ExitUsageError
	}
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
	cache, err := OpenPriceCache(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	cur := cfg.Currency
	liquidity := networth.LiquidityBucket(ledger.CashBalance(day))
	planned := networth.PlannedBucket(
		networth.M(cfg.Buckets.PlannedLiquid, cur),
		networth.M(cfg.Buckets.PlannedInvested, cur),
	)
	emergency := networth.EmergencyBucket(networth.M(cfg.Buckets.EmergencyCapital, cur), cfg.Buckets.EmergencyInvested)
	investments, holdings := networth.Investments(ledger, cache, day, cur)

	snapshot := networth.NewSnapshot(day, liquidity, planned, emergency, investments)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "Balance sheet on %s\n\n", snapshot.On)
	fmt.Fprintln(w, "Bucket\tTotal\tLiquid\tInvested")
	for _, b := range snapshot.Buckets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.Name, b.Total, b.Liquid, b.Invested)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Net worth\t%s\n", snapshot.NetWorth)
	fmt.Fprintf(w, "Liquid\t%s\t(%s)\n", snapshot.LiquidCapital, snapshot.LiquidRatio)
	fmt.Fprintf(w, "Invested\t%s\t(%s)\n", snapshot.Invested, snapshot.InvestedRatio)

	if len(holdings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Ticker\tQuantity\tPrice\tValue\tWeight")
		for _, h := range holdings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", h.Ticker, h.Quantity, h.Price, h.Value, h.Weight)
		}
	}
	w.Flush()
	return subcommands.ExitSuccess
}
