package reddit

import (
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/wonny/prebloom/internal/strategyconfig"
)

const (
	pageSize = 100 // Reddit listing max
	day      = 24 * time.Hour

	// Reddit quotas: OAuth clients 100 QPM, unauthenticated clients about 10 QPM
	oauthRequestsPerMinute  = 100
	publicRequestsPerMinute = 10
)

// Options controls how far and how deep a subreddit is walked
type Options struct {
	DaysBack        int
	PostLimit       int
	ScanComments    bool
	CommentLimit    int           // top-level comments per post
	RequestInterval time.Duration // pause between posts
	SnippetMaxChars int
}

// OptionsFrom builds Options from the strategy
func OptionsFrom(cfg *strategyconfig.Config) Options {
	return Options{
		DaysBack:        cfg.Sources.DaysBack,
		PostLimit:       cfg.Sources.PostLimitPerSub,
		ScanComments:    cfg.Sources.ScanComments,
		CommentLimit:    cfg.Sources.TopLevelCommentLimit,
		RequestInterval: cfg.Sources.RequestInterval,
		SnippetMaxChars: cfg.Aggregation.SnippetMaxChars,
	}
}

// newPacer returns the per-post limiter (nil = no pause)
// Shared by all walks of one source, so parallel workers pace together.
func newPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// NewRequestLimiter throttles every HTTP request (pages, comments, retries)
// to Reddit's per-client quota for the given access mode.
func NewRequestLimiter(authenticated bool) *rate.Limiter {
	perMinute := publicRequestsPerMinute
	if authenticated {
		perMinute = oauthRequestsPerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// ageDays converts a creation time to whole days before now (>= 0)
func ageDays(now, created time.Time) int {
	d := int(now.Sub(created) / day)
	if d < 0 {
		return 0
	}
	return d
}

func fromUnix(sec float64) time.Time {
	return time.Unix(int64(sec), 0).UTC()
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// postText joins title and body so that no token spans the two
func postText(title, body string) string {
	if body == "" {
		return title
	}
	return title + "\n" + body
}
