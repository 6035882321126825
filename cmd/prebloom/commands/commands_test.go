package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/prebloom/internal/extract"
	"github.com/wonny/prebloom/internal/filter"
	"github.com/wonny/prebloom/internal/strategyconfig"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestStrategyDefaultRoundTrips(t *testing.T) {
	out, err := execute(t, "strategy", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy_id: prebloom_v1")

	parsed, err := strategyconfig.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, strategyconfig.Default().Thresholds, parsed.Thresholds)
	assert.Equal(t, strategyconfig.Default().Sources.RequestInterval, parsed.Sources.RequestInterval)
}

func TestStrategyCheck(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("meta:\n  strategy_id: loose\nthresholds:\n  max_old_mentions: 500\n"), 0o644))

	out, err := execute(t, "strategy", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "loose")
	assert.Contains(t, out, "LOOSE_MAX_OLD")
	assert.Contains(t, out, "Valid")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("thresholds:\n  min_recent_mentionz: 3\n"), 0o644))

	_, err = execute(t, "strategy", "check", bad)
	assert.Error(t, err)
}

func TestRejectDetail(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{extract.StageStopword, "stopword"},
		{extract.StageExcluded, "explicitly excluded"},
		{extract.StageShape, "not 1-5 uppercase letters"},
		{extract.StageUnverified, "not in listing files"},
		{filter.ReasonETF, "category filter: etf (Some ETF)"},
		{"other", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.want, rejectDetail(tt.reason, "Some ETF"))
		})
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	widths := []int{6, 4}
	PrintTableHeader(&buf, []string{"Ticker", "N"}, widths)
	PrintTableRow(&buf, []string{"ABCD", "5"}, widths)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Ticker  N   ", lines[0])
	assert.Equal(t, strings.Repeat("─", 12), lines[1])
	assert.Equal(t, "ABCD    5   ", lines[2])
}

func TestPrintRunHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintRunHeader(&buf, RunHeader{
		Title:      "PRE-BLOOM SCAN",
		StrategyID: "prebloom_v1",
		ConfigHash: "0123456789abcdef",
		Source:     "reddit-rss",
		Groups:     []string{"stocks", "pennystocks"},
		DaysBack:   90,
	})

	out := buf.String()
	assert.Contains(t, out, "PRE-BLOOM SCAN")
	assert.Contains(t, out, "0123456789ab\n")
	assert.Contains(t, out, "stocks, pennystocks")
}
