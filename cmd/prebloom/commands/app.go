package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/external/nasdaqtrader"
	"github.com/wonny/prebloom/internal/external/reddit"
	"github.com/wonny/prebloom/internal/output"
	"github.com/wonny/prebloom/internal/scan"
	"github.com/wonny/prebloom/internal/strategyconfig"
	"github.com/wonny/prebloom/pkg/config"
	"github.com/wonny/prebloom/pkg/database"
	"github.com/wonny/prebloom/pkg/httputil"
	"github.com/wonny/prebloom/pkg/logger"
	"github.com/wonny/prebloom/pkg/redis"
)

// app bundles what every command needs: env config, logger, strategy, cache
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config
	hash     string
	redis    *redis.Client
	closers  []func()
}

// newApp loads env config and the strategy file
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy (flag > env > defaults)
	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}
	strategy, _, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	a := &app{cfg: cfg, log: log, strategy: strategy, hash: hash}

	// 4. Optional listing cache
	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, listing cache disabled")
		rc = redis.Disabled()
	}
	a.redis = rc
	a.closers = append(a.closers, func() { rc.Close() })

	return a, nil
}

// Close releases everything opened by the app
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// listingFetcher builds the NASDAQ Trader client (with Redis cache when enabled)
func (a *app) listingFetcher() *nasdaqtrader.Client {
	hc := httputil.New(a.cfg, a.log).WithHeader("User-Agent", a.cfg.Reddit.UserAgent)
	return nasdaqtrader.NewClient(hc, redis.NewCache(a.redis, "prebloom"), a.log)
}

// itemSource builds the Reddit source for the configured mode
func (a *app) itemSource(ctx context.Context) (contracts.ItemSource, error) {
	if err := a.cfg.RequireRedditCredentials(); err != nil {
		return nil, err
	}

	opts := reddit.OptionsFrom(a.strategy)
	hc := httputil.New(a.cfg, a.log).WithHeader("User-Agent", a.cfg.Reddit.UserAgent)

	switch a.cfg.Reddit.Mode {
	case config.RedditModeRSS:
		hc = hc.WithRateLimit(reddit.NewRequestLimiter(false))
		return reddit.NewRSSSource(hc, a.cfg.Reddit.PublicURL, opts, a.log), nil
	default:
		hc = hc.WithRateLimit(reddit.NewRequestLimiter(true)).
			WithHTTPClient(reddit.OAuthHTTPClient(ctx, a.cfg.Reddit, a.cfg.HTTPTimeout))
		return reddit.NewAPISource(hc, a.cfg.Reddit.BaseURL, opts, a.log), nil
	}
}

// runStore is a database sink that can also list and prune its history
type runStore interface {
	scan.Sink
	ListRuns(ctx context.Context, limit int) ([]output.RunSummary, error)
	PruneRuns(ctx context.Context, before time.Time) (int64, error)
}

// runStores opens the configured database sinks (SQLite, Postgres)
func (a *app) runStores(ctx context.Context) ([]runStore, error) {
	var stores []runStore

	if a.cfg.SQLite.Enabled() {
		sqlite, err := output.OpenSQLite(ctx, a.cfg.SQLite.Path, a.log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite sink: %w", err)
		}
		a.closers = append(a.closers, func() { sqlite.Close() })
		stores = append(stores, sqlite)
	}

	db, err := database.New(a.cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
	case err != nil:
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		a.closers = append(a.closers, db.Close)
		pg := output.NewPostgresSink(db.Pool, a.log)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		stores = append(stores, pg)
	}

	return stores, nil
}
