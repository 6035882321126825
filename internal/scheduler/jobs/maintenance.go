package jobs

import (
	"context"
	"time"

	"github.com/wonny/prebloom/pkg/logger"
)

// RunPruner deletes stored runs started before a cutoff
type RunPruner interface {
	Name() string
	PruneRuns(ctx context.Context, before time.Time) (int64, error)
}

// RunPruneJob trims stored run history
type RunPruneJob struct {
	pruners   []RunPruner
	retention time.Duration
	now       func() time.Time
	logger    *logger.Logger
}

// NewRunPruneJob creates a new prune job
func NewRunPruneJob(retention time.Duration, log *logger.Logger, pruners ...RunPruner) *RunPruneJob {
	return &RunPruneJob{
		pruners:   pruners,
		retention: retention,
		now:       time.Now,
		logger:    log,
	}
}

// Name returns the job name
func (j *RunPruneJob) Name() string {
	return "run_prune"
}

// Schedule returns the cron schedule (daily at 03:30)
func (j *RunPruneJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run executes the prune on every store; the first error is returned after all stores ran
func (j *RunPruneJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	j.logger.WithField("cutoff", cutoff).Debug("Starting scheduled run prune")

	var firstErr error
	for _, p := range j.pruners {
		removed, err := p.PruneRuns(ctx, cutoff)
		if err != nil {
			j.logger.WithError(err).WithField("store", p.Name()).Error("Run prune failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if removed > 0 {
			j.logger.WithFields(map[string]interface{}{
				"store":   p.Name(),
				"removed": removed,
			}).Info("Run prune completed")
		}
	}

	return firstErr
}
