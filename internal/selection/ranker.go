package selection

import (
	"sort"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/strategyconfig"
	"github.com/wonny/prebloom/pkg/logger"
)

// NameLookup resolves a ticker to its security name ("" if unknown)
type NameLookup interface {
	Name(symbol string) string
}

// Metrics are the derived values of one aggregate
type Metrics struct {
	Recent        int
	Mid           int
	Old           int
	Total         int
	MomentumShort float64
	MomentumLong  float64
	Score         float64
}

// Compute derives momentum and score from an aggregate
// +1 smoothing on both sides keeps the ratios finite for zero counts.
func Compute(agg *contracts.TickerAggregate) Metrics {
	recent := agg.Counts[contracts.BucketRecent]
	mid := agg.Counts[contracts.BucketMid]
	old := agg.Counts[contracts.BucketOld]

	momShort := float64(recent+1) / float64(mid+1)
	momLong := float64(recent+1) / float64(old+1)

	return Metrics{
		Recent:        recent,
		Mid:           mid,
		Old:           old,
		Total:         recent + mid + old,
		MomentumShort: momShort,
		MomentumLong:  momLong,
		Score:         float64(recent)*2.0 + momLong*3.0 - float64(old)*0.25,
	}
}

// Ranker scores aggregates, applies the screener and sorts the survivors
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	screener *Screener
	logger   *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(thresholds strategyconfig.Thresholds, log *logger.Logger) *Ranker {
	return &Ranker{
		screener: NewScreener(thresholds),
		logger:   log,
	}
}

// Rank scores every aggregate and returns the qualifying candidates
// An empty result is a valid Ranking with no rows, never an error.
func (r *Ranker) Rank(aggs []*contracts.TickerAggregate, names NameLookup) *contracts.Ranking {
	ranking := &contracts.Ranking{
		Rows:      make([]contracts.CandidateRow, 0),
		Evaluated: len(aggs),
		Rejected:  make(map[string]int), // Rule name -> count
	}

	for _, agg := range aggs {
		m := Compute(agg)

		if reason := r.screener.checkConditions(m); reason != "" {
			ranking.Rejected[reason]++
			continue
		}

		name := ""
		if names != nil {
			name = names.Name(agg.Ticker)
		}

		ranking.Rows = append(ranking.Rows, contracts.CandidateRow{
			Ticker:        agg.Ticker,
			Name:          name,
			Recent:        m.Recent,
			Mid:           m.Mid,
			Old:           m.Old,
			Total:         m.Total,
			MomentumShort: m.MomentumShort,
			MomentumLong:  m.MomentumLong,
			Score:         m.Score,
			BySource:      copyCounts(agg.BySource),
			Samples:       append([]contracts.Sample(nil), agg.Samples...),
		})
	}

	// Sort by score (descending), ticker (ascending) on ties
	rows := ranking.Rows
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Ticker < rows[j].Ticker
	})

	// Assign ranks
	for i := range rows {
		rows[i].Rank = i + 1
	}

	fields := map[string]interface{}{
		"evaluated":  ranking.Evaluated,
		"candidates": len(rows),
		"rejected":   ranking.Rejected,
	}
	if len(rows) > 0 {
		fields["top_ticker"] = rows[0].Ticker
		fields["top_score"] = rows[0].Score
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return ranking
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
