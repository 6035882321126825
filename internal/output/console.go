package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/selection"
)

// WriteReport prints the top N candidates the way an analyst reads them
func WriteReport(w io.Writer, result *contracts.ScanResult, top int) {
	sep := strings.Repeat("=", 40)
	fmt.Fprintln(w)
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "PRE-BLOOM CANDIDATES (Top %d)\n", top)
	fmt.Fprintln(w, sep)

	rows := result.Ranking.Top(top)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No candidates matched your filters. (Totally normal on first run.)")
		fmt.Fprintln(w, "Try lowering thresholds.min_momentum_ratio (e.g. 1.4) or thresholds.min_recent_mentions (e.g. 2).")
		writeRejections(w, result.Ranking)
		return
	}

	for _, row := range rows {
		fmt.Fprintf(w, "%6s  recent=%-3d old=%-3d total=%-4d momLong=%.2f score=%.2f\n",
			row.Ticker, row.Recent, row.Old, row.Total, row.MomentumLong, row.Score)
		if row.Name != "" {
			fmt.Fprintf(w, "        name=%s\n", row.Name)
		}
		fmt.Fprintf(w, "        subs=%s\n", FormatBreakdown(row.BySource))
		for _, s := range row.Samples {
			fmt.Fprintf(w, "        - r/%s: %s\n", s.SourceGroup, s.Snippet)
		}
		fmt.Fprintln(w)
	}
}

// WriteGroupSummary prints one line per scanned subreddit
func WriteGroupSummary(w io.Writer, result *contracts.ScanResult) {
	for _, g := range result.Groups {
		status := "reached cutoff"
		switch {
		case g.Error != "":
			status = "FAILED: " + g.Error
		case !g.Stats.ReachedCutoff:
			status = "did NOT reach cutoff (hit post limit)"
		}
		fmt.Fprintf(w, "r/%-22s posts=%-5d comments=%-6d mentions=%-5d %s\n",
			g.Group, g.Stats.Posts, g.Stats.Comments, g.Mentions, status)
	}
}

func writeRejections(w io.Writer, ranking *contracts.Ranking) {
	if ranking.Evaluated == 0 {
		return
	}
	fmt.Fprintf(w, "Evaluated %d tickers; rejected by:", ranking.Evaluated)
	for _, rule := range []string{selection.RuleMinRecent, selection.RuleMaxOld, selection.RuleMaxTotal, selection.RuleMinMomentum} {
		if n := ranking.Rejected[rule]; n > 0 {
			fmt.Fprintf(w, " %s=%d", rule, n)
		}
	}
	fmt.Fprintln(w)
}
