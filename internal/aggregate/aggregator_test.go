package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/strategyconfig"
)

func TestBucketer_Edges(t *testing.T) {
	b := DefaultBucketer()

	tests := []struct {
		age  int
		want contracts.Bucket
	}{
		{-3, contracts.BucketRecent},
		{0, contracts.BucketRecent},
		{7, contracts.BucketRecent},
		{8, contracts.BucketMid},
		{30, contracts.BucketMid},
		{31, contracts.BucketOld},
		{90, contracts.BucketOld},
		{400, contracts.BucketOld},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Bucket(tt.age), "age %d", tt.age)
	}
}

func TestRecord(t *testing.T) {
	a := New(DefaultBucketer(), 3)

	a.Record("ABCD", 2, "stocks", "ABCD to the moon")
	a.Record("ABCD", 12, "pennystocks", "")
	a.Record("ABCD", 45, "stocks", "older ABCD post")
	a.Record("WXYZ", 1, "stocks", "")

	require.Equal(t, 2, a.Len())

	agg, ok := a.Get("ABCD")
	require.True(t, ok)
	assert.Equal(t, [contracts.BucketCount]int{1, 1, 1}, agg.Counts)
	assert.Equal(t, 3, agg.Total())
	assert.Equal(t, map[string]int{"stocks": 2, "pennystocks": 1}, agg.BySource)

	// 빈 snippet(댓글)은 샘플 없음
	assert.Equal(t, []contracts.Sample{
		{SourceGroup: "stocks", Snippet: "ABCD to the moon"},
		{SourceGroup: "stocks", Snippet: "older ABCD post"},
	}, agg.Samples)

	_, ok = a.Get("NOPE")
	assert.False(t, ok)
}

func TestRecord_SampleCapFirstSeenWins(t *testing.T) {
	a := New(DefaultBucketer(), 3)
	for _, s := range []string{"one", "two", "three", "four", "five"} {
		a.Record("ABCD", 1, "stocks", s)
	}

	agg, _ := a.Get("ABCD")
	require.Len(t, agg.Samples, 3)
	assert.Equal(t, "one", agg.Samples[0].Snippet)
	assert.Equal(t, "three", agg.Samples[2].Snippet)
	assert.Equal(t, 5, agg.Counts[contracts.BucketRecent])
}

func TestAggregates_DiscoveryOrder(t *testing.T) {
	a := New(DefaultBucketer(), 3)
	a.RecordEvent(contracts.MentionEvent{Ticker: "ZZZ", AgeDays: 1, SourceGroup: "stocks"})
	a.RecordEvent(contracts.MentionEvent{Ticker: "AAA", AgeDays: 1, SourceGroup: "stocks"})
	a.RecordEvent(contracts.MentionEvent{Ticker: "ZZZ", AgeDays: 1, SourceGroup: "stocks"})

	aggs := a.Aggregates()
	require.Len(t, aggs, 2)
	assert.Equal(t, "ZZZ", aggs[0].Ticker)
	assert.Equal(t, "AAA", aggs[1].Ticker)
}

func TestRecordItem(t *testing.T) {
	a := NewFromConfig(strategyconfig.Default().Aggregation)
	item := contracts.TextItem{AgeDays: 9, SourceGroup: "stocks", Snippet: "title", Kind: contracts.KindPost}

	n := a.RecordItem(item, []string{"ABCD", "ABCD", "WXYZ"})
	assert.Equal(t, 3, n)

	agg, _ := a.Get("ABCD")
	assert.Equal(t, 2, agg.Counts[contracts.BucketMid])
	assert.Len(t, agg.Samples, 2)
}

type mention struct {
	ticker  string
	age     int
	group   string
	snippet string
}

func TestMerge_EquivalentToSequential(t *testing.T) {
	groupA := []mention{
		{"ABCD", 1, "stocks", "a1"},
		{"ABCD", 20, "stocks", "a2"},
		{"WXYZ", 40, "stocks", ""},
	}
	groupB := []mention{
		{"ABCD", 3, "pennystocks", "b1"},
		{"LMNO", 5, "pennystocks", "b2"},
		{"ABCD", 60, "pennystocks", "b3"},
	}

	sequential := New(DefaultBucketer(), 3)
	partA := New(DefaultBucketer(), 3)
	partB := New(DefaultBucketer(), 3)
	for _, m := range groupA {
		sequential.Record(m.ticker, m.age, m.group, m.snippet)
		partA.Record(m.ticker, m.age, m.group, m.snippet)
	}
	for _, m := range groupB {
		sequential.Record(m.ticker, m.age, m.group, m.snippet)
		partB.Record(m.ticker, m.age, m.group, m.snippet)
	}

	merged := Merge(partA, partB)
	assert.Equal(t, sequential.Aggregates(), merged.Aggregates())

	// counts are commutative
	reversed := Merge(partB, partA)
	for _, agg := range sequential.Aggregates() {
		got, ok := reversed.Get(agg.Ticker)
		require.True(t, ok)
		assert.Equal(t, agg.Counts, got.Counts, agg.Ticker)
		assert.Equal(t, agg.BySource, got.BySource, agg.Ticker)
	}

	// parts untouched
	a, _ := partA.Get("ABCD")
	assert.Equal(t, 2, a.Total())
}

func TestMerge_Associative(t *testing.T) {
	mk := func(ms ...mention) *Aggregator {
		a := New(DefaultBucketer(), 3)
		for _, m := range ms {
			a.Record(m.ticker, m.age, m.group, m.snippet)
		}
		return a
	}
	p1 := mk(mention{"ABCD", 1, "a", "x"})
	p2 := mk(mention{"ABCD", 10, "b", "y"}, mention{"WXYZ", 50, "b", ""})
	p3 := mk(mention{"ABCD", 2, "c", "z"}, mention{"ABCD", 3, "c", "w"})

	left := Merge(Merge(p1, p2), p3)
	right := Merge(p1, Merge(p2, p3))
	assert.Equal(t, left.Aggregates(), right.Aggregates())

	abcd, _ := left.Get("ABCD")
	assert.Len(t, abcd.Samples, 3) // x y z, w truncated
}

func TestMerge_Empty(t *testing.T) {
	merged := Merge()
	assert.Equal(t, 0, merged.Len())
	assert.NotNil(t, merged.Aggregates())
}
