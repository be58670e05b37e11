package libsql

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/aglab/internal/analysis"
	"github.com/emiliopalmerini/aglab/internal/domain"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db)
}

func participant(id, session string, typ domain.ExperimentType, at time.Time) domain.ParticipantInfo {
	return domain.ParticipantInfo{
		ParticipantID:  id,
		SessionID:      session,
		Timestamp:      at,
		ExperimentType: typ,
		Age:            "18-24",
		Gender:         "Other",
		NativeLanguage: "English",
	}
}

func TestSaveSessionAndList(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	t0 := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.SaveSession(ctx, participant("P02", "s2", domain.ExperimentPilot, t0.Add(time.Hour))))
	require.NoError(t, repo.SaveSession(ctx, participant("P01", "s1", domain.ExperimentExperimental, t0)))

	all, err := repo.ListSessions(ctx, analysis.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "s1", all[0].SessionID)
	assert.True(t, all[0].StartedAt.Equal(t0))
	assert.Equal(t, domain.ExperimentExperimental, all[0].ExperimentType)

	pilots, err := repo.ListSessions(ctx, analysis.SessionFilter{ExperimentType: domain.ExperimentPilot})
	require.NoError(t, err)
	require.Len(t, pilots, 1)
	assert.Equal(t, "P02", pilots[0].ParticipantID)

	byID, err := repo.ListSessions(ctx, analysis.SessionFilter{ParticipantID: "P01"})
	require.NoError(t, err)
	require.Len(t, byID, 1)

	// Saving again replaces the row.
	updated := participant("P01", "s1", domain.ExperimentExperimental, t0)
	updated.NativeLanguage = "Dutch"
	require.NoError(t, repo.SaveSession(ctx, updated))
	byID, err = repo.ListSessions(ctx, analysis.SessionFilter{ParticipantID: "P01"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Dutch", byID[0].NativeLanguage)
}

func TestSaveTrainingReplacesAttempts(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveSession(ctx, participant("P01", "s1", domain.ExperimentPilot, time.Now())))

	trial := domain.TrainingTrial{Block: 1, TrialIndex: 1, Stimulus: "MXR", FinalCorrect: true, Attempts: []domain.Attempt{
		{Typed: "MRX", Correct: false, ResponseTimeMs: 1200},
		{Typed: "MXR", Correct: true, ResponseTimeMs: 900},
	}}
	require.NoError(t, repo.SaveTraining(ctx, "s1", trial))

	stats, err := repo.TrainingStats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.TrainingCounts{Trials: 1, Attempts: 2, CorrectAttempts: 1}, stats.Counts)
	assert.InDelta(t, 900, stats.MeanCorrectRTMs, 1e-9)

	trial.Attempts = trial.Attempts[1:]
	require.NoError(t, repo.SaveTraining(ctx, "s1", trial))

	stats, err = repo.TrainingStats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.TrainingCounts{Trials: 1, Attempts: 1, CorrectAttempts: 1, FirstAttemptHit: 1}, stats.Counts)

	series, err := repo.RTSeries(ctx, "s1", domain.PhaseTraining)
	require.NoError(t, err)
	assert.Equal(t, []float64{900}, series)
}

func TestSaveTrainingRequiresSession(t *testing.T) {
	repo := newRepo(t)
	err := repo.SaveTraining(context.Background(), "missing", domain.TrainingTrial{
		Block: 1, TrialIndex: 1, Stimulus: "A",
		Attempts: []domain.Attempt{{Typed: "A", Correct: true}}, FinalCorrect: true,
	})
	assert.Error(t, err)
}

func TestTestStats(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveSession(ctx, participant("P01", "s1", domain.ExperimentPilot, time.Now())))

	ms := func(v float64) *float64 { return &v }
	trials := []domain.TestTrial{
		{TrialIndex: 1, Stimulus: "a", Grammatical: true, Response: domain.ResponseGrammatical, PressedKey: "f", Correct: true, ReactionTimeMs: ms(450)},
		{TrialIndex: 2, Stimulus: "b", Grammatical: false, Response: domain.ResponseGrammatical, PressedKey: "f", ReactionTimeMs: ms(650)},
		{TrialIndex: 3, Stimulus: "c", Grammatical: false, Response: domain.ResponseUngrammatical, PressedKey: "j", Correct: true, ReactionTimeMs: ms(550)},
		{TrialIndex: 4, Stimulus: "d", Grammatical: true, Response: domain.ResponseInvalid, PressedKey: "k", ReactionTimeMs: ms(300)},
		{TrialIndex: 5, Stimulus: "e", Grammatical: true, Response: domain.ResponseOmitted},
	}
	for _, tr := range trials {
		require.NoError(t, repo.SaveTest(ctx, "s1", tr))
	}

	stats, err := repo.TestStats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.TestCounts{
		Trials: 5, Correct: 2, Invalid: 1, Omitted: 1,
		Hits: 1, FalseAlarms: 1, CorrectRejections: 1,
	}, stats.Counts)
	assert.InDelta(t, 500, stats.MeanCorrectRTMs, 1e-9)

	series, err := repo.RTSeries(ctx, "s1", domain.PhaseTest)
	require.NoError(t, err)
	assert.Equal(t, []float64{450, 650, 550, 300}, series)

	rows, err := repo.ByGrammaticality(ctx, []string{"s1"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, analysis.GrammaticalityRow{Grammatical: true, Trials: 3, Correct: 1, Accuracy: 1.0 / 3.0, MeanRTMs: 375}, rows[0])
	assert.Equal(t, analysis.GrammaticalityRow{Grammatical: false, Trials: 2, Correct: 1, Accuracy: 0.5, MeanRTMs: 600}, rows[1])
}

func TestEmptySession(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	tr, err := repo.TrainingStats(ctx, "none")
	require.NoError(t, err)
	assert.Zero(t, tr.Counts)
	assert.Zero(t, tr.MeanCorrectRTMs)

	te, err := repo.TestStats(ctx, "none")
	require.NoError(t, err)
	assert.Zero(t, te.Counts)

	rows, err := repo.ByGrammaticality(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = repo.RTSeries(ctx, "none", domain.Phase(9))
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewRepository(db).SaveSession(ctx, participant("P01", "s1", domain.ExperimentPilot, time.Now())))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()
	sessions, err := NewRepository(db).ListSessions(ctx, analysis.SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}
