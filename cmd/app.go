// Package cmd implements the CLI application to manage the balance sheet.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/networth"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&depositCmd{}, "transactions")
	c.Register(&withdrawCmd{}, "transactions")
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")

	c.Register(&summaryCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")

	c.Register(&cacheStatsCmd{}, "cache")
	c.Register(&cacheClearCmd{}, "cache")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var configFile = flag.String("config", "networth.yaml", "Path to the YAML configuration file")
var verbose = flag.Bool("v", false, "Enable warning logs on stderr")

// logger returns the CLI logger: silent unless -v is set.
func logger() zerolog.Logger {
	if *verbose {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.Nop()
}

// LoadConfig reads the app configuration, substituting defaults when the file
// does not exist.
func LoadConfig() (*networth.Config, error) {
	cfg, err := networth.LoadConfig(*configFile)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = &networth.Config{}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

// DecodeLedger reads the transaction ledger named by the configuration. A
// missing file yields an empty ledger.
func DecodeLedger(cfg *networth.Config) (*networth.Ledger, error) {
	f, err := os.Open(cfg.LedgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return networth.NewLedger(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return networth.DecodeLedger(f)
}

// OpenPriceCache builds the configured price source wrapped in the persisted
// cache: the CSV table when one is configured, the quote API otherwise.
func OpenPriceCache(cfg *networth.Config) (*networth.PriceCache, error) {
	log := logger()

	var source networth.PriceSource
	if cfg.PricesFile != "" {
		csv, err := networth.OpenCSVSource(cfg.PricesFile, log)
		if err != nil {
			return nil, fmt.Errorf("cannot open price table %q: %w", cfg.PricesFile, err)
		}
		source = csv
	} else {
		source = networth.NewEODHDSource(cfg.APIKey, log)
	}

	return networth.NewPriceCache(source, cfg.CacheFile, cfg.CacheMaxAge(), log)
}

// appendTransaction validates a transaction against the current ledger and
// appends it to the ledger file.
func appendTransaction(tx networth.Transaction) subcommands.ExitStatus {
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

	tx, err = tx.Validate(ledger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	f, err := os.OpenFile(cfg.LedgerFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", cfg.LedgerFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := networth.EncodeTransaction(f, tx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s on %s.\n", tx.What(), tx.When())
	return subcommands.ExitSuccess
}

// parseDateFlag parses a -d flag value, defaulting to today when empty.
func parseDateFlag(str string) (networth.Date, error) {
	if str == "" {
		return networth.Today(), nil
	}
	return networth.ParseDate(str)
}
