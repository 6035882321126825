package extract

import (
	"regexp"
	"strings"

	"github.com/wonny/prebloom/internal/contracts"
)

// tickerPattern matches "$ABC" or "ABC" (up to 6 letters so 6-letter words are seen and rejected)
var tickerPattern = regexp.MustCompile(`\$?[A-Z]{1,6}\b`)

// Rejection stages returned by Explain (besides filter reasons)
const (
	StageStopword   = "stopword"
	StageExcluded   = "excluded"
	StageShape      = "shape"
	StageUnverified = "unverified"
)

// CategoryFilter decides whether a verified symbol is excluded by category
type CategoryFilter interface {
	Reason(symbol string, universe *contracts.Universe) string
}

// Extractor finds verified, non-excluded tickers in free text
// ⭐ SSOT: 텍스트 → 티커 추출
type Extractor struct {
	universe  *contracts.Universe
	filter    CategoryFilter
	stopwords map[string]struct{}
	excluded  map[string]struct{}
}

// NewExtractor creates an Extractor; stopwords and excluded must already be uppercase
func NewExtractor(universe *contracts.Universe, filter CategoryFilter, stopwords, excluded map[string]struct{}) *Extractor {
	if stopwords == nil {
		stopwords = map[string]struct{}{}
	}
	if excluded == nil {
		excluded = map[string]struct{}{}
	}
	return &Extractor{
		universe:  universe,
		filter:    filter,
		stopwords: stopwords,
		excluded:  excluded,
	}
}

// Extract returns accepted tickers in order of appearance, duplicates kept
func (e *Extractor) Extract(text string) []string {
	if text == "" {
		return nil
	}

	var out []string
	for _, hit := range tickerPattern.FindAllString(strings.ToUpper(text), -1) {
		t := strings.TrimPrefix(hit, "$")
		if e.reject(t) == "" {
			out = append(out, t)
		}
	}
	return out
}

// Explain returns why token would be rejected, or "" if it would be accepted
func (e *Extractor) Explain(token string) string {
	return e.reject(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(token)), "$"))
}

func (e *Extractor) reject(t string) string {
	if _, ok := e.stopwords[t]; ok {
		return StageStopword
	}
	if _, ok := e.excluded[t]; ok {
		return StageExcluded
	}
	if !contracts.IsValidSymbol(t) {
		return StageShape
	}
	if !e.universe.Contains(t) {
		return StageUnverified
	}
	if e.filter != nil {
		return e.filter.Reason(t, e.universe)
	}
	return ""
}
