package networth

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the file-backed configuration of the balance sheet: where the
// data lives, how long current prices stay fresh, and the standing inputs of
// the planned-expense and emergency buckets.
type Config struct {
	LedgerFile string `yaml:"ledger_file"`
	CacheFile  string `yaml:"cache_file"`
	PricesFile string `yaml:"prices_file,omitempty"` // optional CSV price table instead of the quote API
	Currency   string `yaml:"currency"`
	CacheHours int    `yaml:"cache_hours"`
	APIKey     string `yaml:"eodhd_api_key,omitempty"` // falls back to the EODHD_API_KEY environment variable

	Buckets BucketsConfig `yaml:"buckets"`
}

// BucketsConfig carries the standing bucket inputs that do not derive from
// the transaction ledger.
type BucketsConfig struct {
	PlannedLiquid     float64 `yaml:"planned_liquid"`
	PlannedInvested   float64 `yaml:"planned_invested"`
	EmergencyCapital  float64 `yaml:"emergency_capital"`
	EmergencyInvested bool    `yaml:"emergency_invested"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if c.LedgerFile == "" {
		c.LedgerFile = "transactions.jsonl"
	}
	if c.CacheFile == "" {
		c.CacheFile = "prices_cache.csv"
	}
	if c.Currency == "" {
		c.Currency = "EUR"
	}
	if c.CacheHours == 0 {
		c.CacheHours = 24
	}
	if c.CacheHours < 0 {
		return fmt.Errorf("cache_hours must be positive, got %d", c.CacheHours)
	}
	if c.Buckets.PlannedLiquid < 0 || c.Buckets.PlannedInvested < 0 || c.Buckets.EmergencyCapital < 0 {
		return fmt.Errorf("bucket amounts cannot be negative")
	}
	return nil
}

// CacheMaxAge returns the freshness window of current price entries.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CacheHours) * time.Hour
}
