package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-level configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
// Strategy parameters (thresholds, keyword lists) live in internal/strategyconfig.
type Config struct {
	// Server (serve mode)
	Port string
	Env  string // development, staging, production

	// Strategy YAML path (empty = built-in defaults)
	StrategyFile string

	// Text source
	Reddit RedditConfig

	// Optional sinks / cache
	Database DatabaseConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig

	// HTTP
	HTTPTimeout time.Duration

	// Serve mode schedule (cron, seconds field enabled)
	ScanSchedule string

	// Stored run history older than this is pruned daily (0 = keep forever)
	RunRetention time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// RedditConfig holds Reddit access configuration
type RedditConfig struct {
	Mode         string // api (OAuth JSON) or rss (no credentials)
	ClientID     string
	ClientSecret string
	UserAgent    string
	BaseURL      string // OAuth API host
	AuthURL      string // token endpoint
	PublicURL    string // www host used for RSS
}

// DatabaseConfig holds PostgreSQL configuration for the run sink
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether the Postgres sink is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// SQLiteConfig holds the local SQLite sink configuration
type SQLiteConfig struct {
	Path string
}

// Enabled reports whether the SQLite sink is configured
func (s SQLiteConfig) Enabled() bool {
	return s.Path != ""
}

// RedisConfig holds Redis configuration for the listing cache
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

const (
	RedditModeAPI = "api"
	RedditModeRSS = "rss"
)

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		StrategyFile: getEnv("STRATEGY_FILE", ""),

		Reddit: RedditConfig{
			Mode:         getEnv("REDDIT_MODE", RedditModeAPI),
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:    getEnv("REDDIT_USER_AGENT", "prebloom-scout:v1.1"),
			BaseURL:      getEnv("REDDIT_BASE_URL", "https://oauth.reddit.com"),
			AuthURL:      getEnv("REDDIT_AUTH_URL", "https://www.reddit.com/api/v1/access_token"),
			PublicURL:    getEnv("REDDIT_PUBLIC_URL", "https://www.reddit.com"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", ""),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", "30s"),
		ScanSchedule: getEnv("SCAN_SCHEDULE", "0 0 */6 * * *"),
		RunRetention: getEnvAsDuration("RUN_RETENTION", "2160h"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Reddit.Mode != RedditModeAPI && c.Reddit.Mode != RedditModeRSS {
		return fmt.Errorf("REDDIT_MODE must be one of: %s, %s", RedditModeAPI, RedditModeRSS)
	}

	if c.Reddit.UserAgent == "" {
		return fmt.Errorf("REDDIT_USER_AGENT is required")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if c.RunRetention < 0 {
		return fmt.Errorf("RUN_RETENTION must not be negative")
	}

	return nil
}

// RequireRedditCredentials checks that API mode has credentials
// Only the scan path calls this; symbols and RSS runs work without them.
func (c *Config) RequireRedditCredentials() error {
	if c.Reddit.Mode != RedditModeAPI {
		return nil
	}
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required in %s mode (or set REDDIT_MODE=%s)", RedditModeAPI, RedditModeRSS)
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
