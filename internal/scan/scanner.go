package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/prebloom/internal/aggregate"
	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/extract"
	"github.com/wonny/prebloom/internal/filter"
	"github.com/wonny/prebloom/internal/registry"
	"github.com/wonny/prebloom/internal/selection"
	"github.com/wonny/prebloom/internal/strategyconfig"
	"github.com/wonny/prebloom/pkg/logger"
)

// Sink receives every completed scan (CSV file, database, API state)
type Sink interface {
	Name() string
	Write(ctx context.Context, result *contracts.ScanResult) error
}

// Scanner coordinates one scan: registry → sources → extract → aggregate → rank → sinks
// ⭐ SSOT: 스캔 파이프라인 조율은 여기서만
type Scanner struct {
	strategy *strategyconfig.Config
	fetcher  registry.Fetcher
	source   contracts.ItemSource
	ranker   *selection.Ranker
	sinks    []Sink
	logger   *logger.Logger
	now      func() time.Time
}

// NewScanner creates a new scanner
func NewScanner(strategy *strategyconfig.Config, fetcher registry.Fetcher, source contracts.ItemSource, log *logger.Logger, sinks ...Sink) *Scanner {
	return &Scanner{
		strategy: strategy,
		fetcher:  fetcher,
		source:   source,
		ranker:   selection.NewRanker(strategy.Thresholds, log),
		sinks:    sinks,
		logger:   log,
		now:      time.Now,
	}
}

// groupResult is one worker's output for one source group
type groupResult struct {
	index int
	part  *aggregate.Aggregator
	stats contracts.GroupStats
}

// Run executes a complete scan
// Registry failures abort the run. Source failures are recorded per group and the
// scan continues; sink failures are returned together with the (valid) result.
func (s *Scanner) Run(ctx context.Context) (*contracts.ScanResult, error) {
	result := &contracts.ScanResult{
		RunID:      uuid.NewString(),
		StrategyID: s.strategy.Meta.StrategyID,
		StartedAt:  s.now(),
	}

	hash, err := strategyconfig.Hash(s.strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}
	result.ConfigHash = hash

	log := s.logger.WithRun(result.RunID)
	log.WithFields(map[string]interface{}{
		"strategy_id": result.StrategyID,
		"config_hash": hash[:12],
		"source":      s.source.Name(),
		"groups":      len(s.strategy.Sources.Subreddits),
	}).Info("Scan started")

	// 1. Registry (치명적 실패 시 중단)
	universe, loadStats, err := registry.Load(ctx, s.fetcher, s.strategy.Listings)
	if err != nil {
		return nil, fmt.Errorf("load symbol registry: %w", err)
	}
	result.UniverseSize = universe.Count()

	for _, src := range loadStats.Sources {
		log.WithFields(map[string]interface{}{
			"listing": src.Name,
			"records": src.Records,
			"skipped": src.Skipped,
			"added":   src.Added,
		}).Debug("Listing parsed")
	}
	log.WithField("verified", universe.Count()).Info("Verified tickers loaded")

	// 2. Extract + aggregate
	extractor := extract.NewExtractor(
		universe,
		filter.New(s.strategy.Categories),
		s.strategy.Extraction.StopwordSet(),
		s.strategy.Extraction.ExcludeSet(),
	)
	merged, groups := s.collect(ctx, extractor)
	result.Groups = groups
	result.Interrupted = ctx.Err() != nil

	// 3. Rank
	result.Ranking = s.ranker.Rank(merged.Aggregates(), universe)
	result.FinishedAt = s.now()

	log.WithFields(map[string]interface{}{
		"tickers":       merged.Len(),
		"mentions":      result.TotalMentions(),
		"candidates":    len(result.Ranking.Rows),
		"failed_groups": len(result.FailedGroups()),
		"interrupted":   result.Interrupted,
		"duration":      result.Duration().String(),
	}).Info("Scan completed")

	// 4. Sinks (interrupted runs are still persisted)
	return result, s.writeSinks(context.WithoutCancel(ctx), result)
}

// collect walks all groups with a worker pool
// Each group gets a private aggregator; partials are merged in configured group order.
func (s *Scanner) collect(ctx context.Context, extractor *extract.Extractor) (*aggregate.Aggregator, []contracts.GroupStats) {
	groups := s.strategy.Sources.Subreddits
	base := aggregate.NewFromConfig(s.strategy.Aggregation)

	workers := s.strategy.Sources.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(groups) {
		workers = len(groups)
	}

	jobCh := make(chan int, len(groups))
	resultCh := make(chan groupResult, len(groups))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				resultCh <- s.walkGroup(ctx, groups[idx], idx, base.Empty(), extractor)
			}
		}()
	}

	for i := range groups {
		jobCh <- i
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	parts := make([]*aggregate.Aggregator, len(groups))
	stats := make([]contracts.GroupStats, len(groups))
	for r := range resultCh {
		parts[r.index] = r.part
		stats[r.index] = r.stats
	}

	if len(parts) == 0 {
		return base, stats
	}
	return aggregate.Merge(parts...), stats
}

func (s *Scanner) walkGroup(ctx context.Context, group string, idx int, part *aggregate.Aggregator, extractor *extract.Extractor) groupResult {
	gs := contracts.GroupStats{Group: group}
	log := s.logger.WithGroup(group)

	if ctx.Err() != nil {
		gs.Error = ctx.Err().Error()
		return groupResult{index: idx, part: part, stats: gs}
	}

	log.Info("Scanning subreddit")

	walkStats, err := s.source.Walk(ctx, group, func(item contracts.TextItem) {
		gs.Mentions += part.RecordItem(item, extractor.Extract(item.Text))
	})
	gs.Stats = walkStats

	if err != nil {
		// 소스 실패: 이미 읽은 항목은 유지, 다음 그룹 계속
		gs.Error = err.Error()
		log.WithError(err).Warn("Subreddit walk stopped early")
	}

	entry := log.WithFields(map[string]interface{}{
		"posts":          walkStats.Posts,
		"comments":       walkStats.Comments,
		"failed_items":   walkStats.FailedItems,
		"mentions":       gs.Mentions,
		"reached_cutoff": walkStats.ReachedCutoff,
	})
	if walkStats.ReachedCutoff || err != nil {
		entry.Info("Subreddit scanned")
	} else {
		entry.Warn("Subreddit scanned without reaching the days-back cutoff (hit post limit)")
	}

	return groupResult{index: idx, part: part, stats: gs}
}

func (s *Scanner) writeSinks(ctx context.Context, result *contracts.ScanResult) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, result); err != nil {
			s.logger.WithError(err).WithField("sink", sink.Name()).Error("Sink write failed")
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		s.logger.WithField("sink", sink.Name()).Debug("Sink written")
	}
	if len(errs) > 0 {
		return fmt.Errorf("write sinks: %w", errors.Join(errs...))
	}
	return nil
}
