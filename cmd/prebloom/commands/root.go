package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prebloom",
	Short: "prebloom - early ticker mention scout",
	Long: `prebloom CLI

Scans subreddits for stock-ticker mentions, verifies them against the
NASDAQ Trader symbol directories, and ranks tickers whose recent chatter
is rising from a quiet baseline.

Usage:
  go run ./cmd/prebloom [command]

Examples:
  go run ./cmd/prebloom scan
  go run ./cmd/prebloom scan --mode rss --csv out.csv
  go run ./cmd/prebloom symbols check AAPL YOLO SPY
  go run ./cmd/prebloom strategy check strategy.yaml
  go run ./cmd/prebloom serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default: $STRATEGY_FILE or built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
