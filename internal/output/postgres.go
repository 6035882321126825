package output

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/pkg/logger"
)

const postgresSchema = `
CREATE SCHEMA IF NOT EXISTS prebloom;
CREATE TABLE IF NOT EXISTS prebloom.scan_runs (
	run_id         UUID PRIMARY KEY,
	strategy_id    TEXT NOT NULL,
	config_hash    TEXT NOT NULL,
	started_at     TIMESTAMPTZ NOT NULL,
	finished_at    TIMESTAMPTZ NOT NULL,
	universe_size  INTEGER NOT NULL,
	total_mentions INTEGER NOT NULL,
	candidates     INTEGER NOT NULL,
	interrupted    BOOLEAN NOT NULL,
	groups         JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS prebloom.scan_candidates (
	run_id         UUID NOT NULL REFERENCES prebloom.scan_runs(run_id) ON DELETE CASCADE,
	rank           INTEGER NOT NULL,
	ticker         TEXT NOT NULL,
	security_name  TEXT NOT NULL,
	mentions_0_7   INTEGER NOT NULL,
	mentions_8_30  INTEGER NOT NULL,
	mentions_31_90 INTEGER NOT NULL,
	mentions_total INTEGER NOT NULL,
	mom_short      DOUBLE PRECISION NOT NULL,
	mom_long       DOUBLE PRECISION NOT NULL,
	score          DOUBLE PRECISION NOT NULL,
	by_source      JSONB NOT NULL,
	samples        JSONB NOT NULL,
	PRIMARY KEY (run_id, ticker)
);
CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON prebloom.scan_runs(started_at DESC);
`

// PostgresSink stores every scan in PostgreSQL
// ⭐ SSOT: 스캔 결과 DB 저장은 여기서만
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgresSink creates a new Postgres sink
func NewPostgresSink(pool *pgxpool.Pool, log *logger.Logger) *PostgresSink {
	return &PostgresSink{pool: pool, logger: log}
}

// EnsureSchema creates the tables if they do not exist
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Name implements scan.Sink
func (s *PostgresSink) Name() string {
	return "postgres"
}

// Write implements scan.Sink
func (s *PostgresSink) Write(ctx context.Context, result *contracts.ScanResult) error {
	run, rows, err := flattenRun(result)
	if err != nil {
		return err
	}

	// Begin transaction
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sum := run.summary
	_, err = tx.Exec(ctx, `
		INSERT INTO prebloom.scan_runs (
			run_id, strategy_id, config_hash, started_at, finished_at,
			universe_size, total_mentions, candidates, interrupted, groups
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sum.RunID, sum.StrategyID, sum.ConfigHash, sum.StartedAt, sum.FinishedAt,
		sum.UniverseSize, sum.TotalMentions, sum.Candidates, sum.Interrupted, run.groupsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	// Batch insert candidates
	batch := &pgx.Batch{}
	for _, c := range rows {
		r := c.row
		batch.Queue(`
			INSERT INTO prebloom.scan_candidates (
				run_id, rank, ticker, security_name,
				mentions_0_7, mentions_8_30, mentions_31_90, mentions_total,
				mom_short, mom_long, score, by_source, samples
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			sum.RunID, r.Rank, r.Ticker, r.Name,
			r.Recent, r.Mid, r.Old, r.Total,
			r.MomentumShort, r.MomentumLong, r.Score, c.bySourceJSON, c.samplesJSON,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert candidates: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":     sum.RunID,
		"candidates": len(rows),
	}).Info("Run saved to postgres")

	return nil
}

// ListRuns returns the most recent runs, newest first
func (s *PostgresSink) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id::text, strategy_id, config_hash, started_at, finished_at,
		       universe_size, total_mentions, candidates, interrupted
		FROM prebloom.scan_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.StrategyID, &r.ConfigHash, &r.StartedAt, &r.FinishedAt,
			&r.UniverseSize, &r.TotalMentions, &r.Candidates, &r.Interrupted); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PruneRuns deletes runs started before the cutoff (candidates cascade)
func (s *PostgresSink) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM prebloom.scan_runs WHERE started_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
