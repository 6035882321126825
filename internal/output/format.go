package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/prebloom/internal/contracts"
)

// CSVHeader is the column order of the candidates table
var CSVHeader = []string{
	"ticker", "security_name",
	"mentions_0_7", "mentions_8_30", "mentions_31_90",
	"mentions_total", "mom_0_7_vs_8_30", "mom_0_7_vs_31_90", "score",
	"subreddit_breakdown", "sample_titles",
}

// SourceCount is one entry of a per-subreddit breakdown
type SourceCount struct {
	Group string
	Count int
}

// SortedSources orders a breakdown by count (descending), then name
func SortedSources(bySource map[string]int) []SourceCount {
	out := make([]SourceCount, 0, len(bySource))
	for g, n := range bySource {
		out = append(out, SourceCount{Group: g, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Group < out[j].Group
	})
	return out
}

// FormatBreakdown renders "sub:count; sub:count"
func FormatBreakdown(bySource map[string]int) string {
	parts := make([]string, 0, len(bySource))
	for _, sc := range SortedSources(bySource) {
		parts = append(parts, fmt.Sprintf("%s:%d", sc.Group, sc.Count))
	}
	return strings.Join(parts, "; ")
}

// FormatSamples renders "r/sub: snippet; r/sub: snippet"
func FormatSamples(samples []contracts.Sample) string {
	parts := make([]string, 0, len(samples))
	for _, s := range samples {
		parts = append(parts, fmt.Sprintf("r/%s: %s", s.SourceGroup, s.Snippet))
	}
	return strings.Join(parts, "; ")
}

// FormatFloat renders a ratio or score with 3 decimals
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Record flattens a row into CSV fields (CSVHeader order)
func Record(row contracts.CandidateRow) []string {
	return []string{
		row.Ticker,
		row.Name,
		strconv.Itoa(row.Recent),
		strconv.Itoa(row.Mid),
		strconv.Itoa(row.Old),
		strconv.Itoa(row.Total),
		FormatFloat(row.MomentumShort),
		FormatFloat(row.MomentumLong),
		FormatFloat(row.Score),
		FormatBreakdown(row.BySource),
		FormatSamples(row.Samples),
	}
}
