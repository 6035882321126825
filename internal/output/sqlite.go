package output

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/pkg/logger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS scan_runs (
	run_id         TEXT PRIMARY KEY,
	strategy_id    TEXT NOT NULL,
	config_hash    TEXT NOT NULL,
	started_at     INTEGER NOT NULL,
	finished_at    INTEGER NOT NULL,
	universe_size  INTEGER NOT NULL,
	total_mentions INTEGER NOT NULL,
	candidates     INTEGER NOT NULL,
	interrupted    INTEGER NOT NULL,
	groups_json    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS scan_candidates (
	run_id         TEXT NOT NULL REFERENCES scan_runs(run_id) ON DELETE CASCADE,
	rank           INTEGER NOT NULL,
	ticker         TEXT NOT NULL,
	security_name  TEXT NOT NULL,
	mentions_0_7   INTEGER NOT NULL,
	mentions_8_30  INTEGER NOT NULL,
	mentions_31_90 INTEGER NOT NULL,
	mentions_total INTEGER NOT NULL,
	mom_short      REAL NOT NULL,
	mom_long       REAL NOT NULL,
	score          REAL NOT NULL,
	by_source      TEXT NOT NULL,
	samples        TEXT NOT NULL,
	PRIMARY KEY (run_id, ticker)
);
CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON scan_runs(started_at);
`

// SQLiteSink stores every scan in a local SQLite file
// Runs are append-only history; nothing here is read back into scoring.
type SQLiteSink struct {
	db     *sql.DB
	logger *logger.Logger
}

// OpenSQLite opens (or creates) the database and ensures the schema
func OpenSQLite(ctx context.Context, path string, log *logger.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// 단일 writer
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}

	return &SQLiteSink{db: db, logger: log}, nil
}

// sqliteDSN attaches the pragmas to the DSN so every pooled connection gets them;
// foreign_keys is per connection and PruneRuns relies on ON DELETE CASCADE.
func sqliteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Name implements scan.Sink
func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Write implements scan.Sink
func (s *SQLiteSink) Write(ctx context.Context, result *contracts.ScanResult) error {
	run, rows, err := flattenRun(result)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sum := run.summary
	_, err = tx.ExecContext(ctx, `
		INSERT INTO scan_runs (
			run_id, strategy_id, config_hash, started_at, finished_at,
			universe_size, total_mentions, candidates, interrupted, groups_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID, sum.StrategyID, sum.ConfigHash, sum.StartedAt.UnixMilli(), sum.FinishedAt.UnixMilli(),
		sum.UniverseSize, sum.TotalMentions, sum.Candidates, sum.Interrupted, string(run.groupsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scan_candidates (
			run_id, rank, ticker, security_name,
			mentions_0_7, mentions_8_30, mentions_31_90, mentions_total,
			mom_short, mom_long, score, by_source, samples
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare candidate insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rows {
		r := c.row
		if _, err := stmt.ExecContext(ctx,
			sum.RunID, r.Rank, r.Ticker, r.Name,
			r.Recent, r.Mid, r.Old, r.Total,
			r.MomentumShort, r.MomentumLong, r.Score, string(c.bySourceJSON), string(c.samplesJSON),
		); err != nil {
			return fmt.Errorf("failed to insert candidate %s: %w", r.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":     sum.RunID,
		"candidates": len(rows),
	}).Debug("Run saved to sqlite")

	return nil
}

// ListRuns returns the most recent runs, newest first
func (s *SQLiteSink) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, strategy_id, config_hash, started_at, finished_at,
		       universe_size, total_mentions, candidates, interrupted
		FROM scan_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var r RunSummary
		var started, finished int64
		if err := rows.Scan(&r.RunID, &r.StrategyID, &r.ConfigHash, &started, &finished,
			&r.UniverseSize, &r.TotalMentions, &r.Candidates, &r.Interrupted); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.FinishedAt = time.UnixMilli(finished).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PruneRuns deletes runs started before the cutoff (candidates cascade)
func (s *SQLiteSink) PruneRuns(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scan_runs WHERE started_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}
