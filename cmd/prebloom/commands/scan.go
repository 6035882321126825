package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/prebloom/internal/output"
	"github.com/wonny/prebloom/internal/scan"
	"github.com/wonny/prebloom/pkg/config"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and print the ranked candidates",
	Long: `Runs one complete scan:

1. Download and merge the NASDAQ Trader symbol directories
2. Walk every configured subreddit back to sources.days_back
3. Extract verified tickers, bucket mentions by age
4. Score, filter and rank; write CSV and any configured run stores

Ctrl+C stops the walk early; whatever was read is still ranked and written.

Example:
  go run ./cmd/prebloom scan
  go run ./cmd/prebloom scan --mode rss --top 10
  go run ./cmd/prebloom scan --csv "" --workers 4`,
	RunE: runScan,
}

var (
	scanCSV     string
	scanTop     int
	scanMode    string
	scanWorkers int
)

func init() {
	rootCmd.AddCommand(scanCmd)

	// Flags
	scanCmd.Flags().StringVar(&scanCSV, "csv", "", "CSV output path (overrides output.csv_path; \"\" with flag set disables CSV)")
	scanCmd.Flags().IntVar(&scanTop, "top", 0, "console rows (overrides output.console_top)")
	scanCmd.Flags().StringVar(&scanMode, "mode", "", "reddit source: api or rss (overrides REDDIT_MODE)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "parallel subreddit walks (overrides sources.workers)")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Flag overrides
	if cmd.Flags().Changed("csv") {
		a.strategy.Output.CSVPath = scanCSV
	}
	if scanTop > 0 {
		a.strategy.Output.ConsoleTop = scanTop
	}
	if scanWorkers > 0 {
		a.strategy.Sources.Workers = scanWorkers
	}
	if scanMode != "" {
		if scanMode != config.RedditModeAPI && scanMode != config.RedditModeRSS {
			return fmt.Errorf("--mode must be %s or %s", config.RedditModeAPI, config.RedditModeRSS)
		}
		a.cfg.Reddit.Mode = scanMode
	}

	// Ctrl+C → stop walking, still rank and write
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := a.itemSource(ctx)
	if err != nil {
		return err
	}

	// Sinks
	var sinks []scan.Sink
	if a.strategy.Output.CSVPath != "" {
		sinks = append(sinks, output.NewCSVSink(a.strategy.Output.CSVPath))
	}
	stores, err := a.runStores(ctx)
	if err != nil {
		return err
	}
	for _, s := range stores {
		sinks = append(sinks, s)
	}

	out := cmd.OutOrStdout()
	PrintRunHeader(out, RunHeader{
		Title:      "PRE-BLOOM SCAN",
		StrategyID: a.strategy.Meta.StrategyID,
		ConfigHash: a.hash,
		Source:     source.Name(),
		Groups:     a.strategy.Sources.Subreddits,
		DaysBack:   a.strategy.Sources.DaysBack,
	})

	scanner := scan.NewScanner(a.strategy, a.listingFetcher(), source, a.log, sinks...)
	result, err := scanner.Run(ctx)
	if result == nil {
		return err
	}

	fmt.Fprintln(out)
	output.WriteGroupSummary(out, result)
	output.WriteReport(out, result, a.strategy.Output.ConsoleTop)
	PrintSeparator(out)

	if result.Interrupted {
		PrintWarning(out, "Scan interrupted; ranking covers only what was read before Ctrl+C")
	}
	if failed := result.FailedGroups(); len(failed) > 0 {
		PrintWarning(out, fmt.Sprintf("%d subreddit(s) failed: %v", len(failed), failed))
	}

	if err != nil {
		PrintError(out, err.Error())
		return err
	}

	if a.strategy.Output.CSVPath != "" {
		PrintSuccess(out, fmt.Sprintf("Wrote %d rows to %s", len(result.Ranking.Rows), a.strategy.Output.CSVPath))
	}
	PrintSuccess(out, fmt.Sprintf("Run %s completed in %s", result.RunID, result.Duration().Round(time.Millisecond)))
	return nil
}
