package contracts

// CandidateRow is one scored ticker passed from the ranker to the sinks
// ⭐ SSOT: Ranker → Output 결과 전달
type CandidateRow struct {
	Rank          int            `json:"rank"` // 1-based ranking
	Ticker        string         `json:"ticker"`
	Name          string         `json:"name"`
	Recent        int            `json:"recent"` // 0-7 days
	Mid           int            `json:"mid"`    // 8-30 days
	Old           int            `json:"old"`    // 31-90 days
	Total         int            `json:"total"`
	MomentumShort float64        `json:"momentum_short"` // recent vs mid
	MomentumLong  float64        `json:"momentum_long"`  // recent vs old
	Score         float64        `json:"score"`
	BySource      map[string]int `json:"by_source"`
	Samples       []Sample       `json:"samples"`
}

// Ranking is the ranker's output
// Rows is never nil; an empty Rows is a valid "nothing qualified" result.
type Ranking struct {
	Rows      []CandidateRow `json:"rows"`
	Evaluated int            `json:"evaluated"` // tickers with any mention
	Rejected  map[string]int `json:"rejected"`  // rule name -> count
}

// Top returns the first n rows (all rows when n <= 0)
func (r *Ranking) Top(n int) []CandidateRow {
	if n <= 0 || n >= len(r.Rows) {
		return r.Rows
	}
	return r.Rows[:n]
}

// Empty reports whether no ticker qualified
func (r *Ranking) Empty() bool {
	return len(r.Rows) == 0
}

// Find returns the row of a ticker
func (r *Ranking) Find(ticker string) (CandidateRow, bool) {
	for _, row := range r.Rows {
		if row.Ticker == ticker {
			return row, true
		}
	}
	return CandidateRow{}, false
}
