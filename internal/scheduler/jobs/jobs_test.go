package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/pkg/logger"
)

type fakeScanner struct {
	result *contracts.ScanResult
	err    error
	calls  int
}

func (f *fakeScanner) Run(context.Context) (*contracts.ScanResult, error) {
	f.calls++
	return f.result, f.err
}

func okResult() *contracts.ScanResult {
	return &contracts.ScanResult{RunID: "r", Ranking: &contracts.Ranking{Rows: []contracts.CandidateRow{}}}
}

func TestScanJob(t *testing.T) {
	tests := []struct {
		name    string
		scanner *fakeScanner
		wantErr bool
	}{
		{"success", &fakeScanner{result: okResult()}, false},
		{"sink failure is not a job failure", &fakeScanner{result: okResult(), err: errors.New("csv: disk full")}, false},
		{"registry failure", &fakeScanner{err: errors.New("load symbol registry: listing fetch failed")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewScanJob(tt.scanner, "0 0 */6 * * *", logger.Nop())
			assert.Equal(t, ScanName, job.Name())
			assert.Equal(t, "0 0 */6 * * *", job.Schedule())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, tt.scanner.calls)
		})
	}
}

type fakePruner struct {
	name    string
	removed int64
	err     error
	before  time.Time
}

func (f *fakePruner) Name() string { return f.name }

func (f *fakePruner) PruneRuns(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.removed, f.err
}

func TestRunPruneJob(t *testing.T) {
	now := time.Date(2026, 6, 1, 3, 30, 0, 0, time.UTC)
	failing := &fakePruner{name: "postgres", err: errors.New("conn refused")}
	ok := &fakePruner{name: "sqlite", removed: 4}

	job := NewRunPruneJob(90*24*time.Hour, logger.Nop(), failing, ok)
	job.now = func() time.Time { return now }

	err := job.Run(context.Background())
	require.Error(t, err)

	// Second store still ran
	assert.Equal(t, now.Add(-90*24*time.Hour), ok.before)
	assert.Equal(t, ok.before, failing.before)
}
