package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/extract"
	"github.com/wonny/prebloom/internal/filter"
	"github.com/wonny/prebloom/internal/registry"
	"github.com/wonny/prebloom/internal/strategyconfig"
)

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "Load the symbol registry and print its size",
	Long: `Downloads (or reads from cache / local files) the configured listing
files and prints how many verified symbols each contributed.

Example:
  go run ./cmd/prebloom symbols
  go run ./cmd/prebloom symbols check AAPL YOLO SPY $TSLA`,
	RunE: runSymbols,
}

// symbolsCheckCmd explains extractor decisions for tokens
var symbolsCheckCmd = &cobra.Command{
	Use:   "check TOKEN...",
	Short: "Explain whether each token would be counted as a mention",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSymbolsCheck,
}

var symbolsRefresh bool

func init() {
	rootCmd.AddCommand(symbolsCmd)
	symbolsCmd.AddCommand(symbolsCheckCmd)

	// Flags
	symbolsCmd.PersistentFlags().BoolVar(&symbolsRefresh, "refresh", false, "drop cached listings and download again")
}

func loadUniverse(cmd *cobra.Command) (*app, *contracts.Universe, *registry.LoadStats, error) {
	a, err := newApp()
	if err != nil {
		return nil, nil, nil, err
	}
	fetcher := a.listingFetcher()
	if symbolsRefresh {
		for _, src := range []strategyconfig.ListingSource{a.strategy.Listings.Primary, a.strategy.Listings.Secondary} {
			if err := fetcher.Invalidate(cmd.Context(), src); err != nil {
				a.log.WithError(err).Warn("Failed to drop cached listing")
			}
		}
	}

	universe, stats, err := registry.Load(cmd.Context(), fetcher, a.strategy.Listings)
	if err != nil {
		a.Close()
		return nil, nil, nil, err
	}
	return a, universe, stats, nil
}

func runSymbols(cmd *cobra.Command, args []string) error {
	a, universe, stats, err := loadUniverse(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	widths := []int{24, 10, 10, 10}
	PrintTableHeader(out, []string{"Listing", "Records", "Skipped", "Added"}, widths)
	for _, s := range stats.Sources {
		PrintTableRow(out, []string{s.Name, strconv.Itoa(s.Records), strconv.Itoa(s.Skipped), strconv.Itoa(s.Added)}, widths)
	}
	PrintSeparator(out)
	PrintKeyValue(out, "Verified", strconv.Itoa(universe.Count()), 10)
	PrintKeyValue(out, "With meta", strconv.Itoa(stats.WithMeta), 10)
	return nil
}

func runSymbolsCheck(cmd *cobra.Command, args []string) error {
	a, universe, _, err := loadUniverse(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ex := extract.NewExtractor(
		universe,
		filter.New(a.strategy.Categories),
		a.strategy.Extraction.StopwordSet(),
		a.strategy.Extraction.ExcludeSet(),
	)

	out := cmd.OutOrStdout()
	widths := []int{10, 12, 40}
	PrintTableHeader(out, []string{"Token", "Result", "Detail"}, widths)
	for _, token := range args {
		symbol := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(token)), "$")
		result, detail := "counted", universe.Name(symbol)

		if reason := ex.Explain(token); reason != "" {
			result = "rejected"
			detail = rejectDetail(reason, universe.Name(symbol))
		}
		PrintTableRow(out, []string{token, result, detail}, widths)
	}
	return nil
}

func rejectDetail(reason, name string) string {
	switch reason {
	case extract.StageStopword:
		return "stopword"
	case extract.StageExcluded:
		return "explicitly excluded"
	case extract.StageShape:
		return "not 1-5 uppercase letters"
	case extract.StageUnverified:
		return "not in listing files"
	case filter.ReasonETF, filter.ReasonADR, filter.ReasonBiotech:
		return fmt.Sprintf("category filter: %s (%s)", reason, name)
	}
	return reason
}
