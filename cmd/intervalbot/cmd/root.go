package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "intervalbot",
	Short: "A scheduled interval trader with equity protection",
	Long: `Intervalbot opens a position on a fixed interval inside a daily
trading window, gates re-entries on the open position's profit in points,
and protects gains with a trailing stop on account equity.

It provides tools for:
  - Replaying tick datasets through the scheduler
  - Recording trades, equity curves and guard events to CSV or SQLite
  - Querying recorded journals`,
}

var debug bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
