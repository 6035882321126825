package selection

import (
	"github.com/wonny/prebloom/internal/strategyconfig"
)

// Rejection rule names, in evaluation order
const (
	RuleMinRecent   = "min_recent"
	RuleMaxOld      = "max_old"
	RuleMaxTotal    = "max_total"
	RuleMinMomentum = "min_momentum"
)

// Screener applies the four pre-bloom hard cuts
// ⭐ SSOT: 후보 하드컷 로직은 여기서만
type Screener struct {
	config strategyconfig.Thresholds
}

// NewScreener creates a new screener
func NewScreener(config strategyconfig.Thresholds) *Screener {
	return &Screener{config: config}
}

// checkConditions returns the first failing rule ("" = pass)
func (s *Screener) checkConditions(m Metrics) string {
	// 1. 최근 관심 충분
	if m.Recent < s.config.MinRecentMentions {
		return RuleMinRecent
	}

	// 2. 과거 baseline 낮음
	if m.Old > s.config.MaxOldMentions {
		return RuleMaxOld
	}

	// 3. 이미 포화 아님
	if m.Total > s.config.MaxTotalMentions {
		return RuleMaxTotal
	}

	// 4. 가속도
	if m.MomentumLong < s.config.MinMomentumRatio {
		return RuleMinMomentum
	}

	return ""
}
