package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/output"
	"github.com/wonny/prebloom/internal/scheduler"
	"github.com/wonny/prebloom/pkg/logger"
)

// RunLister reads stored run history (SQLite or Postgres sink)
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]output.RunSummary, error)
}

// JobReporter exposes scheduler statistics
type JobReporter interface {
	GetJobStats() map[string]scheduler.JobStats
}

// CandidatesHandler serves the latest ranking and run history
// ⭐ SSOT: 후보 조회 API 핸들러는 이 구조체에서만
type CandidatesHandler struct {
	store   *ResultStore
	runs    RunLister
	trigger func() error
	jobs    JobReporter
	logger  *logger.Logger
}

// NewCandidatesHandler creates a new handler
// runs and trigger may be nil; the matching endpoints then answer 503.
func NewCandidatesHandler(store *ResultStore, runs RunLister, trigger func() error, log *logger.Logger) *CandidatesHandler {
	return &CandidatesHandler{
		store:   store,
		runs:    runs,
		trigger: trigger,
		logger:  log,
	}
}

// WithJobs enables GET /api/jobs
func (h *CandidatesHandler) WithJobs(jobs JobReporter) *CandidatesHandler {
	h.jobs = jobs
	return h
}

// CandidatesResponse is the body of GET /api/candidates
type CandidatesResponse struct {
	RunID      string                   `json:"run_id"`
	StrategyID string                   `json:"strategy_id"`
	FinishedAt time.Time                `json:"finished_at"`
	Evaluated  int                      `json:"evaluated"`
	Count      int                      `json:"count"`
	Rows       []contracts.CandidateRow `json:"rows"`
}

// GetCandidates returns the ranked rows of the latest scan
// GET /api/candidates?top=25
func (h *CandidatesHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	result := h.store.Latest()
	if result == nil {
		respondError(w, http.StatusServiceUnavailable, "No scan completed yet")
		return
	}

	rows := result.Ranking.Rows
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		top, err := strconv.Atoi(topStr)
		if err != nil || top < 1 {
			respondError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		rows = result.Ranking.Top(top)
	}

	respondJSON(w, http.StatusOK, CandidatesResponse{
		RunID:      result.RunID,
		StrategyID: result.StrategyID,
		FinishedAt: result.FinishedAt,
		Evaluated:  result.Ranking.Evaluated,
		Count:      len(rows),
		Rows:       rows,
	})
}

// GetCandidate returns one ticker's row from the latest scan
// GET /api/candidates/{ticker}
func (h *CandidatesHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	result := h.store.Latest()
	if result == nil {
		respondError(w, http.StatusServiceUnavailable, "No scan completed yet")
		return
	}

	ticker := strings.ToUpper(strings.TrimPrefix(mux.Vars(r)["ticker"], "$"))
	row, ok := result.Ranking.Find(ticker)
	if !ok {
		respondError(w, http.StatusNotFound, "Ticker not in latest ranking: "+ticker)
		return
	}

	respondJSON(w, http.StatusOK, row)
}

// GetLatestRun returns the full latest scan result (groups and ranking)
// GET /api/runs/latest
func (h *CandidatesHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	result := h.store.Latest()
	if result == nil {
		respondError(w, http.StatusServiceUnavailable, "No scan completed yet")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListRuns returns stored run summaries, newest first
// GET /api/runs?limit=20
func (h *CandidatesHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "Run history not configured")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > 500 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = l
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
}

// TriggerScan starts a scan outside the schedule
// POST /api/scan
func (h *CandidatesHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		respondError(w, http.StatusServiceUnavailable, "Scan trigger not configured")
		return
	}

	if err := h.trigger(); err != nil {
		if errors.Is(err, scheduler.ErrJobRunning) {
			respondError(w, http.StatusConflict, "Scan already running")
			return
		}
		h.logger.WithError(err).Error("Failed to trigger scan")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "scan started",
	})
}

// GetJobs returns scheduler statistics per job
// GET /api/jobs
func (h *CandidatesHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not running")
		return
	}
	respondJSON(w, http.StatusOK, h.jobs.GetJobStats())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
