package contracts

// MentionKind tells where a mention came from
type MentionKind int

const (
	KindPost MentionKind = iota
	KindComment
)

func (k MentionKind) String() string {
	if k == KindComment {
		return "comment"
	}
	return "post"
}

// Bucket is one of three disjoint age windows
type Bucket int

const (
	BucketRecent Bucket = iota // 0-7 days
	BucketMid                  // 8-30 days
	BucketOld                  // 31+ days
	BucketCount
)

func (b Bucket) String() string {
	switch b {
	case BucketRecent:
		return "recent"
	case BucketMid:
		return "mid"
	case BucketOld:
		return "old"
	default:
		return "unknown"
	}
}

// TextItem is one unit of text handed over by a source
// ⭐ SSOT: Source → Extractor 텍스트 전달 형식
type TextItem struct {
	Text        string      // text scanned for tickers
	Snippet     string      // human-readable context kept as a sample ("" = none)
	AgeDays     int         // floor(age / 24h), >= 0
	SourceGroup string      // subreddit
	Kind        MentionKind // post or comment
}

// MentionEvent is one confirmed ticker mention
type MentionEvent struct {
	Ticker      string
	AgeDays     int
	SourceGroup string
	Snippet     string
	Kind        MentionKind
}

// Sample is an illustrative context for a ticker
type Sample struct {
	SourceGroup string `json:"source_group"`
	Snippet     string `json:"snippet"`
}

// TickerAggregate holds per-ticker mention counts for one run
// ⭐ SSOT: Aggregator → Ranker 집계 전달
type TickerAggregate struct {
	Ticker   string           `json:"ticker"`
	Counts   [BucketCount]int `json:"counts"`
	BySource map[string]int   `json:"by_source"`
	Samples  []Sample         `json:"samples"`
}

// NewTickerAggregate creates an empty aggregate
func NewTickerAggregate(ticker string) *TickerAggregate {
	return &TickerAggregate{
		Ticker:   ticker,
		BySource: make(map[string]int),
		Samples:  make([]Sample, 0),
	}
}

// Count returns the mentions in one bucket
func (a *TickerAggregate) Count(b Bucket) int {
	return a.Counts[b]
}

// Total returns mentions across all buckets
func (a *TickerAggregate) Total() int {
	total := 0
	for _, c := range a.Counts {
		total += c
	}
	return total
}
