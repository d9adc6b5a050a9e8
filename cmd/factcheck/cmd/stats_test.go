package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/Aman-CERP/factcheck/internal/errors"
	"github.com/Aman-CERP/factcheck/internal/telemetry"
)

func TestStatsCmd_HasFlags(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding stats command
	statsCmd, _, err := cmd.Find([]string{"stats"})
	require.NoError(t, err)

	// Then: should have expected flags
	jsonFlag := statsCmd.Flags().Lookup("json")
	require.NotNil(t, jsonFlag, "should have --json flag")
	assert.Equal(t, "false", jsonFlag.DefValue)

	daysFlag := statsCmd.Flags().Lookup("days")
	require.NotNil(t, daysFlag, "should have --days flag")
	assert.Equal(t, "7", daysFlag.DefValue)
}

func TestStats_NothingRecorded(t *testing.T) {
	// Given: no search has run yet
	isolate(t)

	// When: running stats
	_, _, err := runCmd(t, "stats")

	// Then: the user is told to search first
	require.Error(t, err)
	se, ok := ferrors.As(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.ErrCodeConfigNotFound, se.Code)
	assert.Contains(t, se.Suggestion, "Run a search first")
}

func TestStats_AfterSearches(t *testing.T) {
	// Given: two searches, one of which finds nothing
	isolate(t)
	_, url := startBackend(t)
	_, _, err := runCmd(t, "--base-url", url, "search", "climate", "--no-suggest")
	require.NoError(t, err)
	_, _, err = runCmd(t, "--base-url", url, "search", "zzyzx", "-m", "boolean", "--no-suggest")
	require.NoError(t, err)

	// When: running stats
	out, _, err := runCmd(t, "--no-color", "stats")

	// Then: both searches are counted
	require.NoError(t, err)
	assert.Contains(t, out, "Total Searches: 2")
	assert.Contains(t, out, "1. climate (1)")
	assert.Contains(t, out, `- "zzyzx"`)
	assert.Contains(t, out, "Latency Distribution:")
	assert.Contains(t, out, "Recent Queries:\n  zzyzx\n  climate\n")
}

func TestStats_JSON(t *testing.T) {
	isolate(t)
	_, url := startBackend(t)
	_, _, err := runCmd(t, "--base-url", url, "search", "climate", "--no-suggest")
	require.NoError(t, err)

	out, _, err := runCmd(t, "stats", "--json", "--days", "1")

	require.NoError(t, err)
	var report telemetry.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, report.From, report.To)
	assert.Equal(t, map[string]int64{"tfidf": 1}, report.ModeCounts)
	assert.Equal(t, []string{"climate"}, report.RecentQueries)
	assert.Empty(t, report.ZeroResultQueries)
}

func TestStats_DisabledTelemetryRecordsNothing(t *testing.T) {
	// Given: telemetry switched off
	isolate(t)
	t.Setenv("FACTCHECK_NO_TELEMETRY", "1")
	_, url := startBackend(t)

	// When: searching
	_, _, err := runCmd(t, "--base-url", url, "search", "climate", "--no-suggest")
	require.NoError(t, err)

	// Then: no database was created
	_, statErr := os.Stat(filepath.Join(os.Getenv("FACTCHECK_DATA_DIR"), "telemetry.db"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStats_ConfiguredPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom", "stats.db")
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".factcheck.yaml", []byte("telemetry:\n  path: "+path+"\n"), 0o644))
	_, url := startBackend(t)

	_, _, err := runCmd(t, "--base-url", url, "search", "vaccine", "--no-suggest")
	require.NoError(t, err)

	assert.FileExists(t, path)
	out, _, err := runCmd(t, "stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"vaccine"`)
}

func TestStats_RejectsBadFlags(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{{"stats", "--days", "0"}, {"stats", "--limit", "-1"}} {
		_, _, err := runCmd(t, args...)
		require.Error(t, err)
		assert.True(t, ferrors.IsKind(err, ferrors.KindInvalidInput), "%v", args)
	}
}
