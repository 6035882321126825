package filter

import (
	"strings"

	"github.com/wonny/prebloom/internal/contracts"
	"github.com/wonny/prebloom/internal/strategyconfig"
)

// Exclusion reasons returned by Filter.Reason
const (
	ReasonETF     = "etf"
	ReasonADR     = "adr"
	ReasonBiotech = "biotech"
)

// Filter excludes verified symbols by category (ETF / ADR / biotech)
type Filter struct {
	excludeETFs     bool
	excludeADRs     bool
	excludeBiotech  bool
	adrKeywords     []string
	biotechKeywords []string
}

// New creates a Filter; keywords are uppercased once here
func New(cfg strategyconfig.Categories) *Filter {
	return &Filter{
		excludeETFs:     cfg.ExcludeETFs,
		excludeADRs:     cfg.ExcludeADRs,
		excludeBiotech:  cfg.ExcludeBiotech,
		adrKeywords:     upperAll(cfg.ADRKeywords),
		biotechKeywords: upperAll(cfg.BiotechKeywords),
	}
}

// Passes reports whether symbol survives the category filter
func (f *Filter) Passes(symbol string, universe *contracts.Universe) bool {
	return f.Reason(symbol, universe) == ""
}

// Reason returns the exclusion reason ("" = pass)
// 제외 사유 체크 (첫 매칭에서 종료)
func (f *Filter) Reason(symbol string, universe *contracts.Universe) string {
	rec, ok := universe.Lookup(symbol)
	if !ok {
		// 메타데이터 없음: 검증된 종목이므로 통과
		return ""
	}

	// 1. ETF
	if f.excludeETFs && rec.IsETF {
		return ReasonETF
	}

	name := strings.ToUpper(rec.Name)

	// 2. ADR
	if f.excludeADRs && containsAny(name, f.adrKeywords) {
		return ReasonADR
	}

	// 3. 바이오/제약
	if f.excludeBiotech && containsAny(name, f.biotechKeywords) {
		return ReasonBiotech
	}

	return ""
}

func containsAny(name string, keywords []string) bool {
	if name == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func upperAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
