package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/prebloom/internal/api/handlers"
	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/output"
	"github.com/wonny/prebloom/internal/scheduler"
	"github.com/wonny/prebloom/pkg/logger"
)

type fakeRuns struct {
	runs []output.RunSummary
	err  error
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]output.RunSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func testResult() *contracts.ScanResult {
	return &contracts.ScanResult{
		RunID:      "run-1",
		StrategyID: "prebloom_v1",
		FinishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Groups:     []contracts.GroupStats{{Group: "stocks", Mentions: 9}},
		Ranking: &contracts.Ranking{
			Rows: []contracts.CandidateRow{
				{Rank: 1, Ticker: "ABCD", Recent: 5, Total: 6, Score: 28, BySource: map[string]int{"stocks": 6}, Samples: []contracts.Sample{}},
				{Rank: 2, Ticker: "QRST", Recent: 4, Total: 4, Score: 23, BySource: map[string]int{"stocks": 4}, Samples: []contracts.Sample{}},
			},
			Evaluated: 5,
			Rejected:  map[string]int{"min_recent": 3},
		},
	}
}

func newTestRouter(t *testing.T, store *handlers.ResultStore, runs handlers.RunLister, trigger func() error) http.Handler {
	t.Helper()
	h := handlers.NewCandidatesHandler(store, runs, trigger, logger.Nop())
	return NewRouter(h, logger.Nop())
}

func do(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, handlers.NewResultStore(), nil, nil), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestEndpointsBeforeFirstScan(t *testing.T) {
	router := newTestRouter(t, handlers.NewResultStore(), nil, nil)

	for _, path := range []string{"/api/candidates", "/api/candidates/ABCD", "/api/runs/latest", "/api/runs"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, path)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		})
	}
}

func TestGetCandidates(t *testing.T) {
	store := handlers.NewResultStore()
	require.NoError(t, store.Write(context.Background(), testResult()))
	router := newTestRouter(t, store, nil, nil)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantCount int
	}{
		{"all", "", http.StatusOK, 2},
		{"top 1", "?top=1", http.StatusOK, 1},
		{"top larger than rows", "?top=50", http.StatusOK, 2},
		{"top zero", "?top=0", http.StatusBadRequest, 0},
		{"top garbage", "?top=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/api/candidates"+tt.query)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var body handlers.CandidatesResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "run-1", body.RunID)
			assert.Equal(t, 5, body.Evaluated)
			assert.Equal(t, tt.wantCount, body.Count)
			assert.Len(t, body.Rows, tt.wantCount)
			assert.Equal(t, "ABCD", body.Rows[0].Ticker)
		})
	}
}

func TestGetCandidate(t *testing.T) {
	store := handlers.NewResultStore()
	require.NoError(t, store.Write(context.Background(), testResult()))
	router := newTestRouter(t, store, nil, nil)

	rec := do(t, router, http.MethodGet, "/api/candidates/qrst")
	require.Equal(t, http.StatusOK, rec.Code)

	var row contracts.CandidateRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, "QRST", row.Ticker)
	assert.Equal(t, 2, row.Rank)

	rec = do(t, router, http.MethodGet, "/api/candidates/$ABCD")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/candidates/ZZZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLatestRun(t *testing.T) {
	store := handlers.NewResultStore()
	require.NoError(t, store.Write(context.Background(), testResult()))
	router := newTestRouter(t, store, nil, nil)

	rec := do(t, router, http.MethodGet, "/api/runs/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "run-1", result.RunID)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, 9, result.Groups[0].Mentions)
}

func TestListRuns(t *testing.T) {
	runs := &fakeRuns{runs: []output.RunSummary{{RunID: "b"}, {RunID: "a"}}}
	router := newTestRouter(t, handlers.NewResultStore(), runs, nil)

	rec := do(t, router, http.MethodGet, "/api/runs?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), `"run_id":"b"`)

	rec = do(t, router, http.MethodGet, "/api/runs?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	runs.err = errors.New("db down")
	rec = do(t, router, http.MethodGet, "/api/runs")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTriggerScan(t *testing.T) {
	called := 0
	router := newTestRouter(t, handlers.NewResultStore(), nil, func() error {
		called++
		return nil
	})

	rec := do(t, router, http.MethodPost, "/api/scan")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, called)

	// GET is not routed
	rec = do(t, router, http.MethodGet, "/api/scan")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/candidates")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	router = newTestRouter(t, handlers.NewResultStore(), nil, func() error {
		return fmt.Errorf("job scan: %w", scheduler.ErrJobRunning)
	})
	rec = do(t, router, http.MethodPost, "/api/scan")
	assert.Equal(t, http.StatusConflict, rec.Code)

	router = newTestRouter(t, handlers.NewResultStore(), nil, func() error {
		return errors.New("job scan not found")
	})
	rec = do(t, router, http.MethodPost, "/api/scan")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "job scan not found"))
}

type fakeJobs struct{}

func (fakeJobs) GetJobStats() map[string]scheduler.JobStats {
	return map[string]scheduler.JobStats{"scan": {JobName: "scan", Schedule: "0 0 */6 * * *", TotalRuns: 2, SuccessCount: 2, SuccessRate: 1}}
}

func TestGetJobs(t *testing.T) {
	rec := do(t, newTestRouter(t, handlers.NewResultStore(), nil, nil), http.MethodGet, "/api/jobs")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h := handlers.NewCandidatesHandler(handlers.NewResultStore(), nil, nil, logger.Nop()).WithJobs(fakeJobs{})
	rec = do(t, NewRouter(h, logger.Nop()), http.MethodGet, "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]scheduler.JobStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats["scan"].TotalRuns)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
