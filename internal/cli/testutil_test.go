package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/aglab/internal/adapters/storage"
	"github.com/emiliopalmerini/aglab/internal/domain"
)

// testEnv points logging and data at temporary directories for one test.
func testEnv(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("AGLAB_LOG_DIR", t.TempDir())
	t.Setenv("AGLAB_DATA_DIR", dataDir)
	return dataDir
}

// writeSession stores one completed session under dataDir. The participant
// gets one training trial solved on the second attempt and two test trials,
// the first correct.
func writeSession(t *testing.T, dataDir, participantID string, expType domain.ExperimentType) *domain.Session {
	t.Helper()
	session, err := domain.NewSession(dataDir, participantID, expType, time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	store, err := storage.NewResultStore(session)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	require.NoError(t, store.WriteParticipant(domain.ParticipantInfo{
		ParticipantID:  participantID,
		SessionID:      session.ID,
		Timestamp:      session.StartedAt,
		ExperimentType: expType,
		Age:            "18-24",
		Gender:         "Female",
		NativeLanguage: "Dutch",
	}))

	trial := domain.NewTrainingTrial(participantID, 1, 1, "PVTRX")
	_, err = trial.Record("PVRTX", 900*time.Millisecond)
	require.NoError(t, err)
	_, err = trial.Record("PVTRX", 700*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, store.WriteTraining(trial))

	rt := 500 * time.Millisecond
	require.NoError(t, store.WriteTest(domain.NewTestTrial(participantID, 1, domain.NewTestItem("PVPXS", true), domain.ResponseGrammatical, "f", &rt)))
	require.NoError(t, store.WriteTest(domain.NewTestTrial(participantID, 2, domain.NewTestItem("TXXVS", false), domain.ResponseOmitted, "", nil)))
	return session
}

// writeStimuli writes training and test files and a config naming them.
func writeStimuli(t *testing.T, training, test string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "training.txt"), []byte(training), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte(test), 0644))
	cfg := "training_file: training.txt\ntest_file: test.txt\n"
	path := filepath.Join(dir, "aglab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}
