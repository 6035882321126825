package reddit

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/pkg/httputil"
	"github.com/wonny/prebloom/pkg/logger"
)

// RSSSource walks subreddits through the public Atom feeds
// No credentials needed; posts only (feeds carry no comment trees).
type RSSSource struct {
	httpClient *httputil.Client
	baseURL    string
	opts       Options
	pacer      *rate.Limiter
	logger     *logger.Logger
	now        func() time.Time
}

// NewRSSSource creates an RSS source
func NewRSSSource(httpClient *httputil.Client, baseURL string, opts Options, log *logger.Logger) *RSSSource {
	return &RSSSource{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       opts,
		pacer:      newPacer(opts.RequestInterval),
		logger:     log,
		now:        time.Now,
	}
}

// Name implements contracts.ItemSource
func (s *RSSSource) Name() string {
	return "reddit-rss"
}

// Walk delivers feed entries (newest first) until the cutoff or the post limit
func (s *RSSSource) Walk(ctx context.Context, group string, fn func(contracts.TextItem)) (contracts.WalkStats, error) {
	var stats contracts.WalkStats

	now := s.now()
	cutoff := now.Add(-time.Duration(s.opts.DaysBack) * day)
	parser := gofeed.NewParser()
	after := ""

	for stats.Posts < s.opts.PostLimit {
		limit := min(pageSize, s.opts.PostLimit-stats.Posts)
		feed, err := s.fetchFeed(ctx, parser, group, limit, after)
		if err != nil {
			return stats, fmt.Errorf("r/%s feed: %w", group, err)
		}
		if len(feed.Items) == 0 {
			break
		}

		after = ""
		for _, it := range feed.Items {
			var pub time.Time
			if it.PublishedParsed != nil {
				pub = *it.PublishedParsed
			} else if it.UpdatedParsed != nil {
				pub = *it.UpdatedParsed
			} else {
				stats.FailedItems++
				continue
			}

			stats.Posts++
			if pub.Before(cutoff) {
				stats.ReachedCutoff = true
				return stats, nil
			}

			fn(contracts.TextItem{
				Text:        postText(it.Title, bodyText(it.Content)),
				Snippet:     truncate(it.Title, s.opts.SnippetMaxChars),
				AgeDays:     ageDays(now, pub),
				SourceGroup: group,
				Kind:        contracts.KindPost,
			})

			after = fullname(it)

			if s.pacer != nil {
				if err := s.pacer.Wait(ctx); err != nil {
					return stats, err
				}
			}
			if stats.Posts >= s.opts.PostLimit {
				break
			}
		}

		if after == "" {
			break
		}
	}

	return stats, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, parser *gofeed.Parser, group string, limit int, after string) (*gofeed.Feed, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if after != "" {
		params.Set("after", after)
	}
	fullURL := fmt.Sprintf("%s/r/%s/new/.rss?%s", s.baseURL, url.PathEscape(group), params.Encode())

	body, err := s.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// bodyText extracts the self-text from an entry's HTML content
// Only the ".md" block is kept; the "submitted by ... [link] [comments]" trailer is dropped.
func bodyText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var parts []string
	doc.Find("div.md").Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

// fullname returns the "t3_<id>" pagination cursor of an entry
func fullname(it *gofeed.Item) string {
	if strings.HasPrefix(it.GUID, "t3_") {
		return it.GUID
	}
	return ""
}
