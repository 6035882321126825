package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/prebloom/internal/aggregate"
	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/strategyconfig"
	"github.com/wonny/prebloom/pkg/logger"
)

func newTestRanker() *Ranker {
	return NewRanker(strategyconfig.Default().Thresholds, logger.Nop())
}

func aggOf(ticker string, recent, mid, old int) *contracts.TickerAggregate {
	agg := contracts.NewTickerAggregate(ticker)
	agg.Counts = [contracts.BucketCount]int{recent, mid, old}
	agg.BySource["stocks"] = recent + mid + old
	return agg
}

func testUniverse() *contracts.Universe {
	u := contracts.NewUniverse()
	u.Add(contracts.SymbolRecord{Symbol: "ABCD", Name: "Abcd Inc."})
	return u
}

func TestCompute(t *testing.T) {
	m := Compute(aggOf("ABCD", 5, 0, 0))

	assert.Equal(t, 5, m.Total)
	assert.InDelta(t, 6.0, m.MomentumShort, 1e-9)
	assert.InDelta(t, 6.0, m.MomentumLong, 1e-9)
	assert.InDelta(t, 28.0, m.Score, 1e-9)
}

func TestRank_IncludedScenario(t *testing.T) {
	ranking := newTestRanker().Rank([]*contracts.TickerAggregate{aggOf("ABCD", 5, 0, 0)}, testUniverse())

	require.Len(t, ranking.Rows, 1)
	row := ranking.Rows[0]
	assert.Equal(t, 1, row.Rank)
	assert.Equal(t, "ABCD", row.Ticker)
	assert.Equal(t, "Abcd Inc.", row.Name)
	assert.InDelta(t, 28.0, row.Score, 1e-9)
	assert.Equal(t, map[string]int{"stocks": 5}, row.BySource)
}

func TestRank_MomentumBelowThreshold(t *testing.T) {
	// 4 recent, 2 old: momentum_long = 5/3 = 1.667 < 1.8
	ranking := newTestRanker().Rank([]*contracts.TickerAggregate{aggOf("ABCD", 4, 0, 2)}, testUniverse())

	assert.True(t, ranking.Empty())
	assert.NotNil(t, ranking.Rows)
	assert.Equal(t, 1, ranking.Evaluated)
	assert.Equal(t, map[string]int{RuleMinMomentum: 1}, ranking.Rejected)
}

func TestRank_FirstFailingRule(t *testing.T) {
	tests := []struct {
		name string
		agg  *contracts.TickerAggregate
		want string
	}{
		{"too few recent", aggOf("AAA", 2, 0, 0), RuleMinRecent},
		{"too many old", aggOf("BBB", 100, 0, 26), RuleMaxOld},
		{"saturated", aggOf("CCC", 100, 21, 0), RuleMaxTotal},
		{"no acceleration", aggOf("DDD", 3, 0, 3), RuleMinMomentum},
		{"few recent and many old", aggOf("EEE", 1, 0, 40), RuleMinRecent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranking := newTestRanker().Rank([]*contracts.TickerAggregate{tt.agg}, nil)
			assert.Empty(t, ranking.Rows)
			assert.Equal(t, map[string]int{tt.want: 1}, ranking.Rejected)
		})
	}
}

func TestRank_BoundariesInclusive(t *testing.T) {
	th := strategyconfig.Thresholds{MinRecentMentions: 3, MaxOldMentions: 1, MaxTotalMentions: 4, MinMomentumRatio: 2.0}
	r := NewRanker(th, logger.Nop())

	// recent == min, old == max, total == max, momentum == min
	ranking := r.Rank([]*contracts.TickerAggregate{aggOf("EDGE", 3, 0, 1)}, nil)
	require.Len(t, ranking.Rows, 1)
	assert.InDelta(t, 2.0, ranking.Rows[0].MomentumLong, 1e-9)
}

func TestRank_OrderAndTies(t *testing.T) {
	aggs := []*contracts.TickerAggregate{
		aggOf("ZED", 5, 0, 0),
		aggOf("TOP", 10, 2, 0),
		aggOf("ALF", 5, 0, 0),
		aggOf("MID", 6, 1, 0),
	}

	ranking := newTestRanker().Rank(aggs, nil)
	require.Len(t, ranking.Rows, 4)

	got := make([]string, 0, len(ranking.Rows))
	for i, row := range ranking.Rows {
		got = append(got, row.Ticker)
		assert.Equal(t, i+1, row.Rank)
	}
	assert.Equal(t, []string{"TOP", "MID", "ALF", "ZED"}, got)
}

func TestRank_Empty(t *testing.T) {
	ranking := newTestRanker().Rank(nil, nil)

	assert.NotNil(t, ranking.Rows)
	assert.Empty(t, ranking.Rows)
	assert.Equal(t, 0, ranking.Evaluated)
}

func TestRank_MergeEquivalence(t *testing.T) {
	type ev struct {
		ticker string
		age    int
		group  string
	}
	groupA := []ev{{"ABCD", 1, "a"}, {"ABCD", 2, "a"}, {"WXYZ", 3, "a"}, {"WXYZ", 50, "a"}}
	groupB := []ev{{"ABCD", 4, "b"}, {"ABCD", 5, "b"}, {"WXYZ", 6, "b"}, {"WXYZ", 6, "b"}, {"WXYZ", 7, "b"}}

	seq := aggregate.New(aggregate.DefaultBucketer(), 3)
	pa := aggregate.New(aggregate.DefaultBucketer(), 3)
	pb := aggregate.New(aggregate.DefaultBucketer(), 3)
	for _, e := range groupA {
		seq.Record(e.ticker, e.age, e.group, "")
		pa.Record(e.ticker, e.age, e.group, "")
	}
	for _, e := range groupB {
		seq.Record(e.ticker, e.age, e.group, "")
		pb.Record(e.ticker, e.age, e.group, "")
	}

	r := newTestRanker()
	want := r.Rank(seq.Aggregates(), nil)
	got := r.Rank(aggregate.Merge(pb, pa).Aggregates(), nil)

	assert.Equal(t, want.Rows, got.Rows)
	assert.Len(t, want.Rows, 2)
}
