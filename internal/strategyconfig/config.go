package strategyconfig

import (
	"strings"
	"time"
)

// Config는 pre-bloom 스캔 전략의 전체 설정
type Config struct {
	Meta        Meta        `yaml:"meta" json:"meta"`
	Sources     Sources     `yaml:"sources" json:"sources"`
	Listings    Listings    `yaml:"listings" json:"listings"`
	Extraction  Extraction  `yaml:"extraction" json:"extraction"`
	Categories  Categories  `yaml:"categories" json:"categories"`
	Aggregation Aggregation `yaml:"aggregation" json:"aggregation"`
	Thresholds  Thresholds  `yaml:"thresholds" json:"thresholds"`
	Output      Output      `yaml:"output" json:"output"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Sources 텍스트 소스 (subreddit) 스캔 범위
type Sources struct {
	Subreddits           []string      `yaml:"subreddits" json:"subreddits" validate:"required,min=1,dive,required"`
	DaysBack             int           `yaml:"days_back" json:"days_back" validate:"min=1"`
	PostLimitPerSub      int           `yaml:"post_limit_per_sub" json:"post_limit_per_sub" validate:"min=1"`
	ScanComments         bool          `yaml:"scan_comments" json:"scan_comments"`
	TopLevelCommentLimit int           `yaml:"top_level_comment_limit" json:"top_level_comment_limit" validate:"min=0"`
	RequestInterval      time.Duration `yaml:"request_interval" json:"request_interval"` // 게시글 사이 대기
	Workers              int           `yaml:"workers" json:"workers" validate:"min=1,max=32"`
}

// Listings 종목 마스터 파일 (nasdaqtrader symbol directory)
type Listings struct {
	Primary      ListingSource `yaml:"primary" json:"primary"`
	Secondary    ListingSource `yaml:"secondary" json:"secondary"`
	FooterPrefix string        `yaml:"footer_prefix" json:"footer_prefix" validate:"required"`
}

// ListingSource describes one pipe-delimited listing file
type ListingSource struct {
	Name         string `yaml:"name" json:"name" validate:"required"`
	URL          string `yaml:"url" json:"url" validate:"required"` // http(s) URL or local path
	SymbolColumn string `yaml:"symbol_column" json:"symbol_column" validate:"required"`
}

// Extraction 토큰 추출 제외 목록
type Extraction struct {
	Stopwords      []string `yaml:"stopwords" json:"stopwords"`
	ExcludeTickers []string `yaml:"exclude_tickers" json:"exclude_tickers"` // mega caps, meme names
}

// Categories 카테고리 필터
type Categories struct {
	ExcludeETFs     bool     `yaml:"exclude_etfs" json:"exclude_etfs"`
	ExcludeADRs     bool     `yaml:"exclude_adrs" json:"exclude_adrs"`
	ExcludeBiotech  bool     `yaml:"exclude_biotech" json:"exclude_biotech"`
	ADRKeywords     []string `yaml:"adr_keywords" json:"adr_keywords"`
	BiotechKeywords []string `yaml:"biotech_keywords" json:"biotech_keywords"`
}

// Aggregation 기간 버킷 / 샘플
type Aggregation struct {
	RecentMaxDays   int `yaml:"recent_max_days" json:"recent_max_days" validate:"min=0"`
	MidMaxDays      int `yaml:"mid_max_days" json:"mid_max_days" validate:"min=1"`
	SampleCap       int `yaml:"sample_cap" json:"sample_cap" validate:"min=0"`
	SnippetMaxChars int `yaml:"snippet_max_chars" json:"snippet_max_chars" validate:"min=1"`
}

// Thresholds 후보 선정 기준
type Thresholds struct {
	MinRecentMentions int     `yaml:"min_recent_mentions" json:"min_recent_mentions" validate:"min=0"`
	MaxOldMentions    int     `yaml:"max_old_mentions" json:"max_old_mentions" validate:"min=0"`
	MaxTotalMentions  int     `yaml:"max_total_mentions" json:"max_total_mentions" validate:"min=1"`
	MinMomentumRatio  float64 `yaml:"min_momentum_ratio" json:"min_momentum_ratio" validate:"gte=0"`
}

// Output 결과 출력
type Output struct {
	CSVPath    string `yaml:"csv_path" json:"csv_path"` // empty = no CSV
	ConsoleTop int    `yaml:"console_top" json:"console_top" validate:"min=0"`
}

// StopwordSet returns the uppercased stopword set
func (e Extraction) StopwordSet() map[string]struct{} {
	return upperSet(e.Stopwords)
}

// ExcludeSet returns the uppercased manual exclude set
func (e Extraction) ExcludeSet() map[string]struct{} {
	return upperSet(e.ExcludeTickers)
}

func upperSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
