package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/prebloom/internal/contracts"
)

// RunSummary is one stored scan run
type RunSummary struct {
	RunID         string    `json:"run_id"`
	StrategyID    string    `json:"strategy_id"`
	ConfigHash    string    `json:"config_hash"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	UniverseSize  int       `json:"universe_size"`
	TotalMentions int       `json:"total_mentions"`
	Candidates    int       `json:"candidates"`
	Interrupted   bool      `json:"interrupted"`
}

// runRow holds the flattened run columns shared by the SQL sinks
type runRow struct {
	summary    RunSummary
	groupsJSON []byte
}

// candidateRow holds the flattened candidate columns shared by the SQL sinks
type candidateRow struct {
	row          contracts.CandidateRow
	bySourceJSON []byte
	samplesJSON  []byte
}

func flattenRun(result *contracts.ScanResult) (runRow, []candidateRow, error) {
	groupsJSON, err := json.Marshal(result.Groups)
	if err != nil {
		return runRow{}, nil, fmt.Errorf("failed to marshal groups: %w", err)
	}

	run := runRow{
		summary: RunSummary{
			RunID:         result.RunID,
			StrategyID:    result.StrategyID,
			ConfigHash:    result.ConfigHash,
			StartedAt:     result.StartedAt.UTC(),
			FinishedAt:    result.FinishedAt.UTC(),
			UniverseSize:  result.UniverseSize,
			TotalMentions: result.TotalMentions(),
			Candidates:    len(result.Ranking.Rows),
			Interrupted:   result.Interrupted,
		},
		groupsJSON: groupsJSON,
	}

	rows := make([]candidateRow, 0, len(result.Ranking.Rows))
	for _, r := range result.Ranking.Rows {
		bySource, err := json.Marshal(r.BySource)
		if err != nil {
			return runRow{}, nil, fmt.Errorf("failed to marshal breakdown: %w", err)
		}
		samples, err := json.Marshal(r.Samples)
		if err != nil {
			return runRow{}, nil, fmt.Errorf("failed to marshal samples: %w", err)
		}
		rows = append(rows, candidateRow{row: r, bySourceJSON: bySource, samplesJSON: samples})
	}

	return run, rows, nil
}
