package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// cacheStatsCmd prints the price cache counters.
type cacheStatsCmd struct{}

func (*cacheStatsCmd) Name() string             { return "cache-stats" }
func (*cacheStatsCmd) Synopsis() string         { return "Display price cache statistics." }
func (*cacheStatsCmd) SetFlags(f *flag.FlagSet) {}
func (*cacheStatsCmd) Usage() string {
	return `cache-stats:
  Displays the number of cached prices, split between current and historical
  entries, and how many current entries are still fresh.
`
}

func (c *cacheStatsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	cache, err := OpenPriceCache(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	stats := cache.Stats()
	fmt.Printf("Entries:    %d\n", stats.Total)
	fmt.Printf("Current:    %d (%d fresh)\n", stats.Current, stats.Fresh)
	fmt.Printf("Historical: %d\n", stats.Historical)
	return subcommands.ExitSuccess
}

// cacheClearCmd empties the price cache.
type cacheClearCmd struct {
	ticker string
}

func (*cacheClearCmd) Name() string     { return "cache-clear" }
func (*cacheClearCmd) Synopsis() string { return "Clear the price cache." }
func (*cacheClearCmd) Usage() string {
	return `cache-clear [-i <ticker>]:
  Removes all cached prices, or only those of one instrument.
`
}

func (c *cacheClearCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "i", "", "Clear only this instrument's prices")
}

func (c *cacheClearCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	cache, err := OpenPriceCache(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.ticker != "" {
		cache.ClearTicker(c.ticker)
		fmt.Printf("Cleared cached prices for %s.\n", c.ticker)
	} else {
		cache.Clear()
		fmt.Println("Cleared the price cache.")
	}
	return subcommands.ExitSuccess
}
