package strategyconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var validate = newValidator()

// newValidator reports fields by their YAML path (e.g. thresholds.max_old_mentions)
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Field rules (struct tags) ===
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fromFieldError(fieldErrs[0])
		}
		return err
	}

	// === Sources ===
	if cfg.Sources.RequestInterval < 0 {
		return ValidationError{"sources.request_interval", "must be >= 0"}
	}

	// === Aggregation ===
	// 버킷 경계: recent < mid
	if cfg.Aggregation.MidMaxDays <= cfg.Aggregation.RecentMaxDays {
		return ValidationError{"aggregation", "mid_max_days must be > recent_max_days"}
	}

	// === Thresholds ===
	if cfg.Thresholds.MinRecentMentions > cfg.Thresholds.MaxTotalMentions {
		return ValidationError{"thresholds", "min_recent_mentions must be <= max_total_mentions"}
	}

	// === Categories ===
	for i, kw := range cfg.Categories.ADRKeywords {
		if strings.TrimSpace(kw) == "" {
			return ValidationError{fmt.Sprintf("categories.adr_keywords[%d]", i), "must not be blank"}
		}
	}
	for i, kw := range cfg.Categories.BiotechKeywords {
		if strings.TrimSpace(kw) == "" {
			return ValidationError{fmt.Sprintf("categories.biotech_keywords[%d]", i), "must not be blank"}
		}
	}

	// === Listings ===
	if cfg.Listings.Primary.Name == cfg.Listings.Secondary.Name {
		return ValidationError{"listings", "primary and secondary names must differ"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 스캔 기간이 old 버킷을 못 채우면 baseline 없음
	if cfg.Sources.DaysBack <= cfg.Aggregation.MidMaxDays {
		warnings = append(warnings, Warning{
			Code:    "NO_BASELINE",
			Message: "days_back <= mid_max_days: old bucket stays empty, momentum_long is inflated",
		})
	}

	if cfg.Categories.ExcludeADRs && len(cfg.Categories.ADRKeywords) == 0 {
		warnings = append(warnings, Warning{
			Code:    "EMPTY_ADR_KEYWORDS",
			Message: "exclude_adrs is on but adr_keywords is empty",
		})
	}

	if cfg.Categories.ExcludeBiotech && len(cfg.Categories.BiotechKeywords) == 0 {
		warnings = append(warnings, Warning{
			Code:    "EMPTY_BIOTECH_KEYWORDS",
			Message: "exclude_biotech is on but biotech_keywords is empty",
		})
	}

	if cfg.Thresholds.MaxOldMentions > cfg.Thresholds.MaxTotalMentions {
		warnings = append(warnings, Warning{
			Code:    "LOOSE_MAX_OLD",
			Message: "max_old_mentions > max_total_mentions: max_old never binds",
		})
	}

	if cfg.Sources.RequestInterval == 0 && cfg.Sources.ScanComments {
		warnings = append(warnings, Warning{
			Code:    "NO_THROTTLE",
			Message: "request_interval is 0 with comment scanning: expect 429s",
		})
	}

	return warnings
}

// === Helper Functions ===

func fromFieldError(fe validator.FieldError) ValidationError {
	// Namespace: "Config.thresholds.max_total_mentions" → drop root
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	msg := fe.Tag()
	switch fe.Tag() {
	case "required":
		msg = "required"
	case "min", "gte":
		msg = fmt.Sprintf("must be >= %s", fe.Param())
	case "max", "lte":
		msg = fmt.Sprintf("must be <= %s", fe.Param())
	}
	if fe.Tag() == "min" && fe.Kind() == reflect.Slice {
		msg = fmt.Sprintf("must have at least %s item(s)", fe.Param())
	}

	return ValidationError{Field: field, Message: msg}
}
