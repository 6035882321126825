package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/strategyconfig"
)

var (
	// ErrFetch wraps any failure to obtain a listing (transport, status, empty body)
	ErrFetch = errors.New("listing fetch failed")
	// ErrMissingColumn means a required header column was not found
	ErrMissingColumn = errors.New("listing missing required column")
)

const (
	nameColumn = "Security Name"
	etfColumn  = "ETF"
)

// Fetcher returns the raw text of one listing source
type Fetcher interface {
	Fetch(ctx context.Context, src strategyconfig.ListingSource) (string, error)
}

// ParsedListing is the result of parsing one listing file
type ParsedListing struct {
	Source  string
	Records []contracts.SymbolRecord
	Skipped int // short rows and non-letter symbols
}

// LoadStats summarises a registry load
type LoadStats struct {
	Sources  []SourceStats
	Verified int
	WithMeta int
}

// SourceStats is the per-file part of LoadStats
type SourceStats struct {
	Name    string
	Records int
	Skipped int
	Added   int // symbols first seen in this source
}

// Load fetches and parses both listings and builds the verified universe
// ⭐ SSOT: 종목 마스터 → Universe 생성
// Any fetch or header error on either source is fatal; no partial universe is returned.
func Load(ctx context.Context, fetcher Fetcher, listings strategyconfig.Listings) (*contracts.Universe, *LoadStats, error) {
	primary, err := fetchAndParse(ctx, fetcher, listings.Primary, listings.FooterPrefix)
	if err != nil {
		return nil, nil, err
	}

	secondary, err := fetchAndParse(ctx, fetcher, listings.Secondary, listings.FooterPrefix)
	if err != nil {
		return nil, nil, err
	}

	universe, stats := Build(primary, secondary)
	return universe, stats, nil
}

// Build merges parsed listings in order; earlier listings win metadata conflicts
func Build(listings ...*ParsedListing) (*contracts.Universe, *LoadStats) {
	universe := contracts.NewUniverse()
	stats := &LoadStats{}

	for _, l := range listings {
		before := universe.Count()
		for _, rec := range l.Records {
			universe.Add(rec)
		}
		stats.Sources = append(stats.Sources, SourceStats{
			Name:    l.Source,
			Records: len(l.Records),
			Skipped: l.Skipped,
			Added:   universe.Count() - before,
		})
	}

	stats.Verified = universe.Count()
	for _, s := range universe.Symbols() {
		if _, ok := universe.Lookup(s); ok {
			stats.WithMeta++
		}
	}

	return universe, stats
}

func fetchAndParse(ctx context.Context, fetcher Fetcher, src strategyconfig.ListingSource, footerPrefix string) (*ParsedListing, error) {
	text, err := fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, src.Name, err)
	}
	return Parse(src.Name, text, src.SymbolColumn, footerPrefix)
}

// Parse parses one pipe-delimited listing
// Blank lines and footer lines are ignored; malformed rows are counted in Skipped.
func Parse(name, text, symbolColumn, footerPrefix string) (*ParsedListing, error) {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s: empty listing", ErrFetch, name)
	}

	header := splitFields(lines[0])
	symIdx, err := columnIndex(header, symbolColumn, name)
	if err != nil {
		return nil, err
	}
	nameIdx, err := columnIndex(header, nameColumn, name)
	if err != nil {
		return nil, err
	}
	etfIdx, err := columnIndex(header, etfColumn, name)
	if err != nil {
		return nil, err
	}
	maxIdx := max(symIdx, nameIdx, etfIdx)

	parsed := &ParsedListing{
		Source:  name,
		Records: make([]contracts.SymbolRecord, 0, len(lines)-1),
	}

	for _, ln := range lines[1:] {
		// 마지막 줄: "File Creation Time: ..."
		if footerPrefix != "" && strings.HasPrefix(ln, footerPrefix) {
			continue
		}

		parts := strings.Split(ln, "|")
		if len(parts) <= maxIdx {
			parsed.Skipped++
			continue
		}

		sym := strings.ToUpper(strings.TrimSpace(parts[symIdx]))
		if !contracts.IsValidSymbol(sym) {
			// BRK.B, ZJZZT$ 등
			parsed.Skipped++
			continue
		}

		parsed.Records = append(parsed.Records, contracts.SymbolRecord{
			Symbol: sym,
			Name:   strings.TrimSpace(parts[nameIdx]),
			IsETF:  strings.EqualFold(strings.TrimSpace(parts[etfIdx]), "Y"),
		})
	}

	return parsed, nil
}

func nonBlankLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

func splitFields(line string) []string {
	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func columnIndex(header []string, column, source string) (int, error) {
	for i, h := range header {
		if h == column {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s: %q", ErrMissingColumn, source, column)
}
