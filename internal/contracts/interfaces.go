package contracts

import "context"

// WalkStats summarises one source group walk
type WalkStats struct {
	Posts         int  `json:"posts"`
	Comments      int  `json:"comments"`
	FailedItems   int  `json:"failed_items"`   // e.g. comment trees that could not be fetched
	ReachedCutoff bool `json:"reached_cutoff"` // walk stopped at the days-back cutoff
}

// ItemSource supplies text items for one source group (subreddit)
// ⭐ SSOT: 텍스트 소스 인터페이스
// Implementations own pagination, rate limiting and age conversion; fn is called
// once per item in source order. A non-nil error means the walk stopped early;
// items already delivered stay counted.
type ItemSource interface {
	Name() string
	Walk(ctx context.Context, group string, fn func(TextItem)) (WalkStats, error)
}
