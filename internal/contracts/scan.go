package contracts

import "time"

// GroupStats records how one source group was processed
type GroupStats struct {
	Group    string    `json:"group"`
	Stats    WalkStats `json:"stats"`
	Mentions int       `json:"mentions"`
	Error    string    `json:"error,omitempty"`
}

// ScanResult is the complete output of one scan run
// ⭐ SSOT: Scan → Sink/API 전달
type ScanResult struct {
	RunID        string       `json:"run_id"`
	StrategyID   string       `json:"strategy_id"`
	ConfigHash   string       `json:"config_hash"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
	UniverseSize int          `json:"universe_size"`
	Groups       []GroupStats `json:"groups"`
	Ranking      *Ranking     `json:"ranking"`
	Interrupted  bool         `json:"interrupted"` // cancelled mid-walk; ranking covers what was read
}

// Duration returns how long the run took
func (r *ScanResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// TotalMentions sums accepted mentions over all groups
func (r *ScanResult) TotalMentions() int {
	total := 0
	for _, g := range r.Groups {
		total += g.Mentions
	}
	return total
}

// FailedGroups returns the groups whose walk stopped with an error
func (r *ScanResult) FailedGroups() []string {
	var failed []string
	for _, g := range r.Groups {
		if g.Error != "" {
			failed = append(failed, g.Group)
		}
	}
	return failed
}
