package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/pkg/config"
	"github.com/wonny/prebloom/pkg/httputil"
	"github.com/wonny/prebloom/pkg/logger"
)

// APISource walks subreddits through the OAuth JSON API
// ⭐ SSOT: Reddit API 호출은 이 소스에서만
type APISource struct {
	httpClient *httputil.Client
	baseURL    string
	opts       Options
	pacer      *rate.Limiter
	logger     *logger.Logger
	now        func() time.Time
}

// NewAPISource creates an API source; httpClient must already carry auth
func NewAPISource(httpClient *httputil.Client, baseURL string, opts Options, log *logger.Logger) *APISource {
	return &APISource{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       opts,
		pacer:      newPacer(opts.RequestInterval),
		logger:     log,
		now:        time.Now,
	}
}

// OAuthHTTPClient returns an http.Client that fetches and refreshes an
// application-only token (client_credentials grant)
func OAuthHTTPClient(ctx context.Context, rc config.RedditConfig, timeout time.Duration) *http.Client {
	cc := &clientcredentials.Config{
		ClientID:     rc.ClientID,
		ClientSecret: rc.ClientSecret,
		TokenURL:     rc.AuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// 토큰 요청에도 User-Agent 필요
	base := &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{agent: rc.UserAgent, next: http.DefaultTransport},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	return cc.Client(ctx)
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(req)
}

// Name implements contracts.ItemSource
func (s *APISource) Name() string {
	return "reddit-api"
}

// Walk delivers posts (newest first) and their top-level comments until the
// days-back cutoff or the post limit
func (s *APISource) Walk(ctx context.Context, group string, fn func(contracts.TextItem)) (contracts.WalkStats, error) {
	var stats contracts.WalkStats

	now := s.now()
	cutoff := now.Add(-time.Duration(s.opts.DaysBack) * day)
	after := ""

	for stats.Posts < s.opts.PostLimit {
		limit := min(pageSize, s.opts.PostLimit-stats.Posts)
		page, err := s.fetchPage(ctx, group, limit, after)
		if err != nil {
			return stats, fmt.Errorf("r/%s listing: %w", group, err)
		}

		for _, child := range page.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			var p apiPost
			if err := json.Unmarshal(child.Data, &p); err != nil {
				stats.FailedItems++
				continue
			}

			stats.Posts++
			created := fromUnix(p.CreatedUTC)
			if created.Before(cutoff) {
				stats.ReachedCutoff = true
				return stats, nil
			}

			fn(contracts.TextItem{
				Text:        postText(p.Title, p.Selftext),
				Snippet:     truncate(p.Title, s.opts.SnippetMaxChars),
				AgeDays:     ageDays(now, created),
				SourceGroup: group,
				Kind:        contracts.KindPost,
			})

			if s.opts.ScanComments {
				n, err := s.walkComments(ctx, group, p.ID, now, fn)
				stats.Comments += n
				if err != nil {
					if ctx.Err() != nil {
						return stats, ctx.Err()
					}
					// 댓글 실패는 해당 게시글만 0건 처리
					stats.FailedItems++
					s.logger.WithError(err).WithFields(map[string]interface{}{
						"subreddit": group,
						"post_id":   p.ID,
					}).Warn("Comment fetch failed")
				}
			}

			if s.pacer != nil {
				if err := s.pacer.Wait(ctx); err != nil {
					return stats, err
				}
			}

			if stats.Posts >= s.opts.PostLimit {
				break
			}
		}

		after = page.Data.After
		if after == "" || len(page.Data.Children) == 0 {
			break
		}
	}

	return stats, nil
}

func (s *APISource) fetchPage(ctx context.Context, group string, limit int, after string) (*apiListing, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	if after != "" {
		params.Set("after", after)
	}

	fullURL := fmt.Sprintf("%s/r/%s/new?%s", s.baseURL, url.PathEscape(group), params.Encode())

	var page apiListing
	if err := s.httpClient.GetJSON(ctx, fullURL, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// walkComments delivers up to CommentLimit top-level comments ("more" stubs are not expanded)
func (s *APISource) walkComments(ctx context.Context, group, postID string, now time.Time, fn func(contracts.TextItem)) (int, error) {
	if s.opts.CommentLimit <= 0 {
		return 0, nil
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(s.opts.CommentLimit))
	params.Set("depth", "1")
	params.Set("raw_json", "1")
	fullURL := fmt.Sprintf("%s/r/%s/comments/%s?%s", s.baseURL, url.PathEscape(group), url.PathEscape(postID), params.Encode())

	// [0] = 게시글, [1] = 댓글 트리
	var listings []apiListing
	if err := s.httpClient.GetJSON(ctx, fullURL, &listings); err != nil {
		return 0, err
	}
	if len(listings) < 2 {
		return 0, nil
	}

	delivered, scanned := 0, 0
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		if scanned >= s.opts.CommentLimit {
			break
		}
		scanned++

		var c apiComment
		if err := json.Unmarshal(child.Data, &c); err != nil {
			continue
		}
		if c.CreatedUTC == 0 || c.Body == "" {
			continue
		}

		fn(contracts.TextItem{
			Text:        c.Body,
			AgeDays:     ageDays(now, fromUnix(c.CreatedUTC)),
			SourceGroup: group,
			Kind:        contracts.KindComment,
		})
		delivered++
	}

	return delivered, nil
}

// === Wire types ===

type apiListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string     `json:"after"`
		Children []apiThing `json:"children"`
	} `json:"data"`
}

type apiThing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type apiPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	CreatedUTC float64 `json:"created_utc"`
}

type apiComment struct {
	Body       string  `json:"body"`
	CreatedUTC float64 `json:"created_utc"`
}
