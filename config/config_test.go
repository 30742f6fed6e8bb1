package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk/market"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 100000.0, cfg.Account.SimulationBalance)
	assert.Equal(t, 0.001, cfg.Account.FeeRate)
	assert.Equal(t, string(market.Simulation), cfg.Account.Venue)
	assert.Equal(t, 20, cfg.Account.Leverage)
	assert.Equal(t, 75.0, cfg.Autopilot.Threshold)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.NoError(t, cfg.Validate())
}

func TestParseInterval(t *testing.T) {
	a := AutopilotConfig{}
	d, err := a.ParseInterval()
	assert.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	a.Interval = "500ms"
	d, err = a.ParseInterval()
	assert.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	a.Interval = "soon"
	_, err = a.ParseInterval()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero balance",
			mutate:  func(c *Config) { c.Account.SimulationBalance = 0 },
			wantErr: true,
			errMsg:  "simulation_balance",
		},
		{
			name:    "fee rate out of range",
			mutate:  func(c *Config) { c.Account.FeeRate = 1.5 },
			wantErr: true,
			errMsg:  "fee_rate",
		},
		{
			name:    "unknown venue",
			mutate:  func(c *Config) { c.Account.Venue = "nasdaq" },
			wantErr: true,
			errMsg:  "unknown venue",
		},
		{
			name:    "zero leverage",
			mutate:  func(c *Config) { c.Account.Leverage = 0 },
			wantErr: true,
			errMsg:  "leverage",
		},
		{
			name:    "bad interval",
			mutate:  func(c *Config) { c.Autopilot.Interval = "whenever" },
			wantErr: true,
			errMsg:  "autopilot.interval",
		},
		{
			name:    "threshold too high",
			mutate:  func(c *Config) { c.Autopilot.Threshold = 100 },
			wantErr: true,
			errMsg:  "threshold",
		},
		{
			name:    "inverted risk bounds",
			mutate:  func(c *Config) { c.Autopilot.RiskMin = 0.05; c.Autopilot.RiskMax = 0.02 },
			wantErr: true,
			errMsg:  "risk_min",
		},
		{
			name: "csv journal without files",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "csv"}
			},
			wantErr: true,
			errMsg:  "positions_file",
		},
		{
			name: "sqlite journal without path",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "sqlite"}
			},
			wantErr: true,
			errMsg:  "db_path",
		},
		{
			name:    "unknown journal type",
			mutate:  func(c *Config) { c.Journal.Type = "parquet" },
			wantErr: true,
			errMsg:  "journal.type",
		},
		{
			name:    "missing store path",
			mutate:  func(c *Config) { c.Store.Path = "" },
			wantErr: true,
			errMsg:  "store.path",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	content := `
account:
  simulation_balance: 5000
  fee_rate: 0.002
  venue: binance
  leverage: 50
autopilot:
  interval: 1s
  threshold: 80
journal:
  type: none
store:
  path: ./state.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5000.0, cfg.Account.SimulationBalance)
	assert.Equal(t, 0.002, cfg.Account.FeeRate)
	assert.Equal(t, "binance", cfg.Account.Venue)
	assert.Equal(t, 50, cfg.Account.Leverage)
	assert.Equal(t, "1s", cfg.Autopilot.Interval)
	assert.Equal(t, 80.0, cfg.Autopilot.Threshold)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.02, cfg.Autopilot.RiskMin)
	assert.Equal(t, "none", cfg.Journal.Type)
}

func TestLoadFromFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.json")
	content := `{
  "account": {"simulation_balance": 2500, "fee_rate": 0.001, "venue": "simulation", "leverage": 10},
  "journal": {"type": "none"},
  "store": {"path": "./state.db"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, cfg.Account.SimulationBalance)
	assert.Equal(t, 10, cfg.Account.Leverage)
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  simulation_balance: -1\njournal:\n  type: none\nstore:\n  path: x"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("QUANTDESK_LIVE_URL", "https://example.test")
	t.Setenv("QUANTDESK_LIVE_QUOTE_CCY", "BUSD")

	cfg := Default()
	cfg.loadEnv()

	assert.True(t, cfg.Live.Enabled)
	assert.Equal(t, "https://example.test", cfg.Live.BaseURL)
	assert.Equal(t, "BUSD", cfg.Live.QuoteCcy)
}

func TestSaveToFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Account.SimulationBalance = 1234

	yamlPath := filepath.Join(dir, "desk.yaml")
	require.NoError(t, cfg.SaveToFile(yamlPath))
	loaded, err := LoadFromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 1234.0, loaded.Account.SimulationBalance)

	jsonPath := filepath.Join(dir, "desk.json")
	require.NoError(t, cfg.SaveToFile(jsonPath))
	loaded, err = LoadFromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1234.0, loaded.Account.SimulationBalance)
}
