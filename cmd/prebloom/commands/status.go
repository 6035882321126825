package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/prebloom/pkg/database"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check configured stores and print recent runs",
	Long: `Checks the optional collaborators (Redis cache, Postgres, SQLite) and
prints the most recent stored runs.

Example:
  go run ./cmd/prebloom status
  go run ./cmd/prebloom status --runs 20`,
	RunE: runStatus,
}

var (
	// Status flags
	statusRuns int
)

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().IntVar(&statusRuns, "runs", 10, "number of stored runs to list")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	PrintKeyValue(out, "Env", a.cfg.Env, 10)
	PrintKeyValue(out, "Reddit", a.cfg.Reddit.Mode, 10)
	PrintKeyValue(out, "Strategy", fmt.Sprintf("%s (%s)", a.strategy.Meta.StrategyID, a.hash[:12]), 10)
	PrintSeparator(out)

	// Redis
	if a.redis.Enabled() {
		if err := a.redis.Ping(ctx); err != nil {
			PrintError(out, "Redis: "+err.Error())
		} else {
			PrintSuccess(out, "Redis: listing cache enabled at "+a.redis.Addr())
		}
	} else {
		PrintKeyValue(out, "Redis", "disabled", 10)
	}

	// Postgres
	db, err := database.New(a.cfg)
	switch {
	case errors.Is(err, database.ErrNotConfigured):
		PrintKeyValue(out, "Postgres", "disabled", 10)
	case err != nil:
		PrintError(out, "Postgres: "+err.Error())
	default:
		health, herr := db.HealthCheck(ctx)
		db.Close()
		if herr != nil {
			PrintError(out, "Postgres: "+herr.Error())
		} else {
			PrintSuccess(out, fmt.Sprintf("Postgres: %s (%d conns)", health.ResponseTime.Round(time.Millisecond), health.TotalConns))
		}
	}

	if !a.cfg.SQLite.Enabled() {
		PrintKeyValue(out, "SQLite", "disabled", 10)
	}

	stores, err := a.runStores(ctx)
	if err != nil {
		PrintError(out, err.Error())
		return err
	}
	if len(stores) == 0 {
		return nil
	}

	runs, err := stores[0].ListRuns(ctx, statusRuns)
	if err != nil {
		return err
	}

	PrintSeparator(out)
	fmt.Fprintf(out, "Recent runs (%s)\n", stores[0].Name())
	widths := []int{36, 20, 10, 10, 6}
	PrintTableHeader(out, []string{"Run", "Started", "Mentions", "Candidates", "Int."}, widths)
	for _, r := range runs {
		interrupted := ""
		if r.Interrupted {
			interrupted = "yes"
		}
		PrintTableRow(out, []string{
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.TotalMentions),
			strconv.Itoa(r.Candidates),
			interrupted,
		}, widths)
	}
	return nil
}
