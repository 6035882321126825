package nasdaqtrader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wonny/prebloom/internal/strategyconfig"
	"github.com/wonny/prebloom/pkg/httputil"
	"github.com/wonny/prebloom/pkg/logger"
	"github.com/wonny/prebloom/pkg/redis"
)

// Client fetches Nasdaq Trader symbol directory files
// ⭐ SSOT: 종목 마스터 파일 다운로드는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	now        func() time.Time
}

// NewClient creates a new listing client; cache may be nil
func NewClient(httpClient *httputil.Client, cache *redis.Cache, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log,
		now:        time.Now,
	}
}

// Fetch returns the raw text of a listing
// src.URL is either an http(s) URL or a local path (optionally file://) for offline runs.
func (c *Client) Fetch(ctx context.Context, src strategyconfig.ListingSource) (string, error) {
	if !isRemote(src.URL) {
		return c.readFile(src)
	}

	key := redis.ListingKey(src.Name, c.now())
	if text, ok := c.fromCache(ctx, key); ok {
		c.logger.WithFields(map[string]interface{}{
			"source": src.Name,
			"bytes":  len(text),
		}).Debug("Listing served from cache")
		return text, nil
	}

	body, err := c.httpClient.GetBody(ctx, src.URL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", src.Name, err)
	}
	text := string(body)

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, text, redis.TTLDaily); err != nil {
			// 캐시 실패는 치명적이지 않음
			c.logger.WithError(err).WithField("source", src.Name).Warn("Failed to cache listing")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"source": src.Name,
		"bytes":  len(text),
	}).Info("Listing downloaded")

	return text, nil
}

// Invalidate drops today's cached copy of a listing so the next Fetch downloads it
func (c *Client) Invalidate(ctx context.Context, src strategyconfig.ListingSource) error {
	if c.cache == nil || !isRemote(src.URL) {
		return nil
	}
	if err := c.cache.Delete(ctx, redis.ListingKey(src.Name, c.now())); err != nil {
		return fmt.Errorf("invalidate %s: %w", src.Name, err)
	}
	return nil
}

func (c *Client) fromCache(ctx context.Context, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}

	var text string
	found, err := c.cache.Get(ctx, key, &text)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Listing cache read failed")
		return "", false
	}
	return text, found && text != ""
}

func (c *Client) readFile(src strategyconfig.ListingSource) (string, error) {
	path := strings.TrimPrefix(src.URL, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src.Name, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"source": src.Name,
		"path":   path,
	}).Debug("Listing read from file")

	return string(data), nil
}

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
