package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quantdesk",
	Short: "A multi-venue paper-trading desk with a deterministic price oracle",
	Long: `Quantdesk is the core engine behind a multi-broker trading dashboard.

It provides:
  - A deterministic, time-seeded price oracle with synthetic candle history
  - Margin and PnL accounting across crypto, forex, metals and indices
  - Per-venue balances with optional capital allocation caps
  - An autopilot loop with pluggable confidence scoring
  - Durable desk state and a position journal (sqlite/csv)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
