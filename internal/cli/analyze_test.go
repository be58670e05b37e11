package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/aglab/internal/analysis"
	"github.com/emiliopalmerini/aglab/internal/domain"
)

func executeRoot(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() {
		analyzeFormat, analyzeOutput, analyzeDataDir = "text", "", ""
		analyzeType, analyzeParticipant, analyzeDB = "", "", ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	dataDir := testEnv(t)
	writeSession(t, dataDir, "P01", domain.ExperimentPilot)
	writeSession(t, dataDir, "P02", domain.ExperimentExperimental)
	out := filepath.Join(t.TempDir(), "report.json")

	executeRoot(t, "analyze", "--format", "json", "-o", out)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var report analysis.Report
	require.NoError(t, json.Unmarshal(content, &report))

	require.Len(t, report.Participants, 2)
	assert.Equal(t, dataDir, report.DataDir)
	p := report.Participants[0]
	assert.Equal(t, domain.TrainingCounts{Trials: 1, Attempts: 2, CorrectAttempts: 1}, p.Training.Counts)
	assert.InDelta(t, 700, p.Training.MeanCorrectRTMs, 1e-6)
	assert.Equal(t, int64(1), p.Test.Counts.Omitted)
	assert.InDelta(t, 0.5, report.Group.TestAccuracy.Mean, 1e-9)
	assert.InDelta(t, 0, report.Group.TestAccuracy.SD, 1e-9)
}

func TestAnalyzeCommand_TextFiltered(t *testing.T) {
	dataDir := testEnv(t)
	writeSession(t, dataDir, "P01", domain.ExperimentPilot)
	writeSession(t, dataDir, "P02", domain.ExperimentExperimental)

	out := ansi.Strip(executeRoot(t, "analyze", "--type", "experimental"))

	assert.Contains(t, out, "1 participants")
	assert.Contains(t, out, "P02")
	assert.NotContains(t, out, "P01")
}

func TestAnalyzeCommand_PersistsDatabase(t *testing.T) {
	dataDir := testEnv(t)
	writeSession(t, dataDir, "P01", domain.ExperimentPilot)
	db := filepath.Join(t.TempDir(), "analysis.db")

	executeRoot(t, "analyze", "--db", db, "--format", "json")
	// A second run over the same file replaces rows instead of failing.
	out := executeRoot(t, "analyze", "--db", db, "--format", "json")

	var report analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Participants, 1)
	assert.Equal(t, int64(2), report.Participants[0].Training.Counts.Attempts)
}

func TestAnalyzeCommand_BadFormat(t *testing.T) {
	testEnv(t)
	t.Cleanup(func() {
		analyzeFormat = "text"
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"analyze", "--format", "yaml"})
	assert.Error(t, rootCmd.Execute())
}
