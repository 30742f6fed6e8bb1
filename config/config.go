// Package config loads the desk configuration from YAML or JSON, with an
// optional .env overlay for the live quote credentials.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/quantdesk/quantdesk/internal/logging"
	"github.com/quantdesk/quantdesk/market"
)

// Config represents the complete desk configuration.
type Config struct {
	Account   AccountConfig   `json:"account" yaml:"account"`
	Autopilot AutopilotConfig `json:"autopilot" yaml:"autopilot"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Live      LiveConfig      `json:"live" yaml:"live"`
	Log       logging.Config  `json:"log" yaml:"log"`
}

// AccountConfig seeds the ledger.
type AccountConfig struct {
	SimulationBalance float64 `json:"simulation_balance" yaml:"simulation_balance"`
	FeeRate           float64 `json:"fee_rate" yaml:"fee_rate"`
	Venue             string  `json:"venue" yaml:"venue"`
	Leverage          int     `json:"leverage" yaml:"leverage"`
}

// AutopilotConfig tunes the scan loop.
type AutopilotConfig struct {
	Interval         string  `json:"interval" yaml:"interval"` // e.g. "3s"
	Threshold        float64 `json:"threshold" yaml:"threshold"`
	RiskMin          float64 `json:"risk_min" yaml:"risk_min"`
	RiskMax          float64 `json:"risk_max" yaml:"risk_max"`
	BalanceFloor     float64 `json:"balance_floor" yaml:"balance_floor"`
	MaxPerInstrument int     `json:"max_per_instrument" yaml:"max_per_instrument"`
}

// ParseInterval converts the interval string to a duration.
func (a AutopilotConfig) ParseInterval() (time.Duration, error) {
	if a.Interval == "" {
		return 3 * time.Second, nil
	}
	return time.ParseDuration(a.Interval)
}

// JournalConfig selects the trade journal backend.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
	BalancesFile  string `json:"balances_file,omitempty" yaml:"balances_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// StoreConfig locates the durable desk state.
type StoreConfig struct {
	Path      string `json:"path" yaml:"path"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// LiveConfig points at the optional live quote provider. Empty BaseURL
// disables live quotes entirely; the oracle then always generates.
type LiveConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	QuoteCcy string `json:"quote_ccy,omitempty" yaml:"quote_ccy,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON based on
// content), then overlays environment values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadEnv overlays live-provider settings from the environment, reading a
// .env file when present. Missing files are fine.
func (c *Config) loadEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("QUANTDESK_LIVE_URL"); v != "" {
		c.Live.BaseURL = v
		c.Live.Enabled = true
	}
	if v := os.Getenv("QUANTDESK_LIVE_QUOTE_CCY"); v != "" {
		c.Live.QuoteCcy = v
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Account.SimulationBalance <= 0 {
		return fmt.Errorf("account.simulation_balance must be positive")
	}
	if c.Account.FeeRate < 0 || c.Account.FeeRate >= 1 {
		return fmt.Errorf("account.fee_rate must be in [0, 1)")
	}
	if _, ok := market.Venues[market.Venue(c.Account.Venue)]; !ok {
		return fmt.Errorf("unknown venue: %s", c.Account.Venue)
	}
	if c.Account.Leverage < 1 {
		return fmt.Errorf("account.leverage must be at least 1")
	}
	if _, err := c.Autopilot.ParseInterval(); err != nil {
		return fmt.Errorf("autopilot.interval: %w", err)
	}
	if c.Autopilot.Threshold < 0 || c.Autopilot.Threshold >= 100 {
		return fmt.Errorf("autopilot.threshold must be in [0, 100)")
	}
	if c.Autopilot.RiskMin <= 0 || c.Autopilot.RiskMax < c.Autopilot.RiskMin {
		return fmt.Errorf("autopilot risk bounds must satisfy 0 < risk_min <= risk_max")
	}
	switch strings.ToLower(c.Journal.Type) {
	case "csv":
		if c.Journal.PositionsFile == "" || c.Journal.BalancesFile == "" {
			return fmt.Errorf("journal positions_file and balances_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			SimulationBalance: 100000,
			FeeRate:           0.001,
			Venue:             string(market.Simulation),
			Leverage:          20,
		},
		Autopilot: AutopilotConfig{
			Interval:         "3s",
			Threshold:        75,
			RiskMin:          0.02,
			RiskMax:          0.05,
			BalanceFloor:     10,
			MaxPerInstrument: 2,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./quantdesk-journal.db",
		},
		Store: StoreConfig{
			Path: "./quantdesk-state.db",
		},
		Live: LiveConfig{
			QuoteCcy: "USDT",
		},
		Log: logging.Config{
			Level: "info",
		},
	}
}

// SaveToFile writes the configuration as YAML (or JSON for .json paths).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
