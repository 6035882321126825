package aggregate

import (
	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/strategyconfig"
)

// Bucketer maps a mention age to its bucket
type Bucketer struct {
	RecentMaxDays int // inclusive
	MidMaxDays    int // inclusive
}

// DefaultBucketer returns the 0-7 / 8-30 / 31+ split
func DefaultBucketer() Bucketer {
	return Bucketer{RecentMaxDays: 7, MidMaxDays: 30}
}

// Bucket returns the bucket for ageDays; negative ages count as recent
func (b Bucketer) Bucket(ageDays int) contracts.Bucket {
	switch {
	case ageDays <= b.RecentMaxDays:
		return contracts.BucketRecent
	case ageDays <= b.MidMaxDays:
		return contracts.BucketMid
	default:
		return contracts.BucketOld
	}
}

// Aggregator accumulates mention counts per ticker for one run
// ⭐ SSOT: 멘션 → 기간별 집계
// Not safe for concurrent use; parallel scans give each worker its own and Merge.
type Aggregator struct {
	bucketer  Bucketer
	sampleCap int
	order     []string // discovery order
	aggs      map[string]*contracts.TickerAggregate
}

// New creates an empty Aggregator
func New(bucketer Bucketer, sampleCap int) *Aggregator {
	if sampleCap < 0 {
		sampleCap = 0
	}
	return &Aggregator{
		bucketer:  bucketer,
		sampleCap: sampleCap,
		aggs:      make(map[string]*contracts.TickerAggregate),
	}
}

// NewFromConfig creates an Aggregator from the strategy's aggregation section
func NewFromConfig(cfg strategyconfig.Aggregation) *Aggregator {
	return New(Bucketer{RecentMaxDays: cfg.RecentMaxDays, MidMaxDays: cfg.MidMaxDays}, cfg.SampleCap)
}

// Empty returns a new Aggregator with the same settings
func (a *Aggregator) Empty() *Aggregator {
	return New(a.bucketer, a.sampleCap)
}

// Record counts one mention
// Samples are first-seen-wins up to the cap; an empty snippet adds no sample.
func (a *Aggregator) Record(ticker string, ageDays int, sourceGroup, snippet string) {
	agg := a.getOrCreate(ticker)
	agg.Counts[a.bucketer.Bucket(ageDays)]++
	agg.BySource[sourceGroup]++

	if snippet != "" && len(agg.Samples) < a.sampleCap {
		agg.Samples = append(agg.Samples, contracts.Sample{SourceGroup: sourceGroup, Snippet: snippet})
	}
}

// RecordEvent counts one MentionEvent
func (a *Aggregator) RecordEvent(ev contracts.MentionEvent) {
	a.Record(ev.Ticker, ev.AgeDays, ev.SourceGroup, ev.Snippet)
}

// RecordItem counts every ticker found in item; returns the number recorded
func (a *Aggregator) RecordItem(item contracts.TextItem, tickers []string) int {
	for _, t := range tickers {
		a.RecordEvent(contracts.MentionEvent{
			Ticker:      t,
			AgeDays:     item.AgeDays,
			SourceGroup: item.SourceGroup,
			Snippet:     item.Snippet,
			Kind:        item.Kind,
		})
	}
	return len(tickers)
}

// Aggregates returns all aggregates in discovery order
func (a *Aggregator) Aggregates() []*contracts.TickerAggregate {
	out := make([]*contracts.TickerAggregate, 0, len(a.order))
	for _, t := range a.order {
		out = append(out, a.aggs[t])
	}
	return out
}

// Get returns the aggregate of a ticker
func (a *Aggregator) Get(ticker string) (*contracts.TickerAggregate, bool) {
	agg, ok := a.aggs[ticker]
	return agg, ok
}

// Len returns the number of tickers seen
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Merge combines partial aggregators into a new one; parts are not modified
// Counts are summed; samples are concatenated in part order and truncated to the cap.
// Settings come from the first part (defaults when there is none).
func Merge(parts ...*Aggregator) *Aggregator {
	if len(parts) == 0 {
		return New(DefaultBucketer(), 3)
	}
	merged := parts[0].Empty()

	for _, p := range parts {
		for _, t := range p.order {
			src := p.aggs[t]
			dst := merged.getOrCreate(t)

			for b := range src.Counts {
				dst.Counts[b] += src.Counts[b]
			}
			for group, n := range src.BySource {
				dst.BySource[group] += n
			}
			for _, s := range src.Samples {
				if len(dst.Samples) >= merged.sampleCap {
					break
				}
				dst.Samples = append(dst.Samples, s)
			}
		}
	}

	return merged
}

func (a *Aggregator) getOrCreate(ticker string) *contracts.TickerAggregate {
	agg, ok := a.aggs[ticker]
	if !ok {
		agg = contracts.NewTickerAggregate(ticker)
		a.aggs[ticker] = agg
		a.order = append(a.order, ticker)
	}
	return agg
}
