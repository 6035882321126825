package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/wonny/prebloom/pkg/config"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return newWithWriter(&config.Config{Env: "development", LogLevel: level, LogFormat: "json"}, buf)
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output: %v (%q)", err, buf.String())
	}
	return entry
}

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := jsonLogger(&buf, tt.level)
			if logger.Level() != tt.want {
				t.Errorf("Expected level %v, got %v", tt.want, logger.Level())
			}
		})
	}
}

func TestLevelIsPerLogger(t *testing.T) {
	var quiet, loud bytes.Buffer
	q := jsonLogger(&quiet, "error")
	l := jsonLogger(&loud, "debug")

	q.Info("dropped")
	l.Debug("kept")

	if quiet.Len() != 0 {
		t.Errorf("Expected error-level logger to drop info, got %q", quiet.String())
	}
	if !strings.Contains(loud.String(), "kept") {
		t.Errorf("Expected debug-level logger to write debug, got %q", loud.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, "debug")

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { logger.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { logger.Info("info message") }, "info message", "info"},
		{"warn", func() { logger.Warn("warn message") }, "warn message", "warn"},
		{"error", func() { logger.Error("error message") }, "error message", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := decode(t, &buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("Expected level %q, got %q", tt.wantLevel, entry["level"])
			}
			if entry["message"] != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, entry["message"])
			}
			if entry["service"] != "prebloom" {
				t.Errorf("Expected service field, got %v", entry["service"])
			}
		})
	}
}

func TestScopedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, "info")

	logger.WithRun("run-42").WithGroup("pennystocks").WithFields(map[string]interface{}{
		"ticker":   "ABCD",
		"mentions": 4,
	}).Info("candidate ranked")

	entry := decode(t, &buf)
	if entry["run_id"] != "run-42" {
		t.Errorf("Expected run_id, got %v", entry["run_id"])
	}
	if entry["subreddit"] != "pennystocks" {
		t.Errorf("Expected subreddit, got %v", entry["subreddit"])
	}
	if entry["ticker"] != "ABCD" || entry["mentions"] != float64(4) {
		t.Errorf("Expected fields, got %v", entry)
	}
}

func TestWithFieldAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, "info")

	logger.WithField("listing", "nasdaqlisted").WithError(errors.New("listing fetch failed")).Error("operation failed")

	entry := decode(t, &buf)
	if entry["error"] != "listing fetch failed" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
	if entry["listing"] != "nasdaqlisted" {
		t.Errorf("Expected listing field, got %v", entry["listing"])
	}
}

func TestLogFormats(t *testing.T) {
	for _, format := range []string{"json", "console", "pretty"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &config.Config{Env: "development", LogLevel: "info", LogFormat: format}

			newWithWriter(cfg, &buf).Info("test message")

			output := buf.String()
			if !strings.Contains(output, "test message") {
				t.Errorf("Expected output to contain 'test message', got: %s", output)
			}
			if !strings.Contains(output, "prebloom") {
				t.Errorf("Expected output to contain service name, got: %s", output)
			}
		})
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	// Must not panic and must not write anywhere
	logger.WithRun("r").WithField("ticker", "ABCD").Info("discarded")
	logger.WithError(errors.New("boom")).Error("discarded")
}
