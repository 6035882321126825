package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/pkg/logger"
)

// ScanName is the scheduler name of the scan job
const ScanName = "scan"

// Scanner runs one full scan (internal/scan.Scanner)
type Scanner interface {
	Run(ctx context.Context) (*contracts.ScanResult, error)
}

// ScanJob runs a fresh scan on every tick
// ⭐ SSOT: 정기 스캔 스케줄은 이 Job에서만
type ScanJob struct {
	scanner  Scanner
	schedule string
	logger   *logger.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(scanner Scanner, schedule string, log *logger.Logger) *ScanJob {
	return &ScanJob{
		scanner:  scanner,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return ScanName
}

// Schedule returns the cron schedule (with seconds)
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes the scan
// Sink failures are logged, not retried: the ranking itself was produced.
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled scan")

	result, err := j.scanner.Run(ctx)
	if result == nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	if err != nil {
		j.logger.WithError(err).Warn("Scan finished but some sinks failed")
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":        result.RunID,
		"candidates":    len(result.Ranking.Rows),
		"mentions":      result.TotalMentions(),
		"failed_groups": len(result.FailedGroups()),
		"interrupted":   result.Interrupted,
		"duration":      result.Duration(),
	}).Info("Scheduled scan completed")

	return nil
}
