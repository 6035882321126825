package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/prebloom/internal/api"
	"github.com/wonny/prebloom/internal/api/handlers"
	"github.com/wonny/prebloom/internal/output"
	"github.com/wonny/prebloom/internal/scan"
	"github.com/wonny/prebloom/internal/scheduler"
	"github.com/wonny/prebloom/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled scans and serve the latest ranking over HTTP",
	Long: `Starts the cron scheduler (SCAN_SCHEDULE, seconds field first) and a
read-only REST API. Every scan starts from zero; the API shows the most
recent completed run.

Endpoints:
  GET  /health                    - Health check
  GET  /api/candidates?top=N      - Latest ranking
  GET  /api/candidates/{ticker}   - One ticker from the latest ranking
  GET  /api/runs/latest           - Latest run (groups + ranking)
  GET  /api/runs?limit=N          - Stored run history (SQLite/Postgres)
  POST /api/scan                  - Trigger a scan now
  GET  /api/jobs                  - Scheduler statistics

Example:
  go run ./cmd/prebloom serve
  go run ./cmd/prebloom serve --port 8090 --scan-on-start=false`,
	RunE: runServe,
}

var (
	servePort        string
	serveScanOnStart bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveScanOnStart, "scan-on-start", true, "run one scan immediately")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if servePort != "" {
		a.cfg.Port = servePort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port":     a.cfg.Port,
		"env":      a.cfg.Env,
		"schedule": a.cfg.ScanSchedule,
		"strategy": a.strategy.Meta.StrategyID,
	}).Info("Initializing serve mode")

	ctx := cmd.Context()

	// 1. Source + sinks
	source, err := a.itemSource(ctx)
	if err != nil {
		return err
	}
	stores, err := a.runStores(ctx)
	if err != nil {
		return err
	}

	store := handlers.NewResultStore()
	sinks := []scan.Sink{store}
	pruners := make([]jobs.RunPruner, 0, len(stores))
	var history handlers.RunLister
	for _, s := range stores {
		sinks = append(sinks, s)
		pruners = append(pruners, s)
		if history == nil {
			history = s
		}
	}
	if a.strategy.Output.CSVPath != "" {
		sinks = append(sinks, output.NewCSVSink(a.strategy.Output.CSVPath))
	}

	// 2. Scheduler
	scanner := scan.NewScanner(a.strategy, a.listingFetcher(), source, log, sinks...)
	sched := scheduler.New(log).WithRetry(1, 5*time.Minute)
	if err := sched.AddJob(jobs.NewScanJob(scanner, a.cfg.ScanSchedule, log)); err != nil {
		return err
	}
	if len(pruners) > 0 && a.cfg.RunRetention > 0 {
		if err := sched.AddJob(jobs.NewRunPruneJob(a.cfg.RunRetention, log, pruners...)); err != nil {
			return err
		}
	}

	// 3. API
	handler := handlers.NewCandidatesHandler(store, history, func() error {
		return sched.RunJob(jobs.ScanName)
	}, log).WithJobs(sched)
	server := api.New(a.cfg, log, api.NewRouter(handler, log))

	// 4. Start
	log.WithField("jobs", sched.GetAllJobs()).Info("Scheduler configured")
	sched.Start()
	if serveScanOnStart {
		if err := sched.RunJob(jobs.ScanName); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	PrintSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
		log.WithError(serveErr).Error("API server stopped")
	}

	log.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server shutdown failed")
	}
	sched.Stop()

	log.Info("Stopped")
	return serveErr
}
