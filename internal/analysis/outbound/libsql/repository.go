// Package libsql stores imported results in an embedded libSQL database.
package libsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/aglab/internal/analysis"
	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/migrate"
	"github.com/emiliopalmerini/aglab/internal/util"
)

// MemoryDSN opens a private database that disappears with the connection.
const MemoryDSN = "file::memory:"

// Open opens a local database and applies the schema. An empty path opens an
// in-memory database. A single connection keeps in-memory data visible to
// every query.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := MemoryDSN
	if path != "" {
		dsn = "file:" + path
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open analysis database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate analysis database: %w", err)
	}
	return db, nil
}

// Repository implements analysis.Repository on database/sql
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new repository over an opened database
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveSession stores or replaces a session's participant row
func (r *Repository) SaveSession(ctx context.Context, info domain.ParticipantInfo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, participant_id, started_at, experiment_type, age, gender, native_language)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			participant_id = excluded.participant_id,
			started_at = excluded.started_at,
			experiment_type = excluded.experiment_type,
			age = excluded.age,
			gender = excluded.gender,
			native_language = excluded.native_language`,
		info.SessionID,
		info.ParticipantID,
		info.Timestamp.UTC().Format(time.RFC3339),
		string(info.ExperimentType),
		info.Age,
		info.Gender,
		info.NativeLanguage,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", info.SessionID, err)
	}
	return nil
}

// SaveTraining stores one training trial and replaces its attempts
func (r *Repository) SaveTraining(ctx context.Context, sessionID string, trial domain.TrainingTrial) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO training_trials (session_id, block, trial_index, stimulus, attempt_count, final_correct)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, trial_index) DO UPDATE SET
			block = excluded.block,
			stimulus = excluded.stimulus,
			attempt_count = excluded.attempt_count,
			final_correct = excluded.final_correct`,
		sessionID,
		trial.Block,
		trial.TrialIndex,
		trial.Stimulus,
		len(trial.Attempts),
		util.BoolToInt64(trial.FinalCorrect),
	)
	if err != nil {
		return fmt.Errorf("save training trial %d: %w", trial.TrialIndex, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM training_attempts WHERE session_id = ? AND trial_index = ?`,
		sessionID, trial.TrialIndex)
	if err != nil {
		return fmt.Errorf("clear attempts of trial %d: %w", trial.TrialIndex, err)
	}

	for i, a := range trial.Attempts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO training_attempts (session_id, trial_index, attempt, typed, correct, response_time_ms)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID,
			trial.TrialIndex,
			i+1,
			a.Typed,
			util.BoolToInt64(a.Correct),
			a.ResponseTimeMs,
		)
		if err != nil {
			return fmt.Errorf("save attempt %d of trial %d: %w", i+1, trial.TrialIndex, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit training trial %d: %w", trial.TrialIndex, err)
	}
	return nil
}

// SaveTest stores or replaces one test trial
func (r *Repository) SaveTest(ctx context.Context, sessionID string, trial domain.TestTrial) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO test_trials (session_id, trial_index, stimulus, grammatical, response_key, pressed_key, correct, reaction_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, trial_index) DO UPDATE SET
			stimulus = excluded.stimulus,
			grammatical = excluded.grammatical,
			response_key = excluded.response_key,
			pressed_key = excluded.pressed_key,
			correct = excluded.correct,
			reaction_time_ms = excluded.reaction_time_ms`,
		sessionID,
		trial.TrialIndex,
		trial.Stimulus,
		util.BoolToInt64(trial.Grammatical),
		string(trial.Response),
		trial.PressedKey,
		util.BoolToInt64(trial.Correct),
		util.NullFloat64(trial.ReactionTimeMs),
	)
	if err != nil {
		return fmt.Errorf("save test trial %d: %w", trial.TrialIndex, err)
	}
	return nil
}

// ListSessions returns imported sessions ordered by start time
func (r *Repository) ListSessions(ctx context.Context, filter analysis.SessionFilter) ([]analysis.SessionInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, participant_id, started_at, experiment_type, age, gender, native_language
		FROM sessions
		WHERE (? = '' OR experiment_type = ?)
		  AND (? = '' OR participant_id = ?)
		ORDER BY started_at, participant_id, session_id`,
		string(filter.ExperimentType), string(filter.ExperimentType),
		filter.ParticipantID, filter.ParticipantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []analysis.SessionInfo
	for rows.Next() {
		var s analysis.SessionInfo
		var startedAt, expType string
		if err := rows.Scan(&s.SessionID, &s.ParticipantID, &startedAt, &expType, &s.Age, &s.Gender, &s.NativeLanguage); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.StartedAt = util.ParseTimeRFC3339(startedAt)
		s.ExperimentType = domain.ExperimentType(expType)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// TrainingStats aggregates a session's training rows. Rates are left to the
// caller.
func (r *Repository) TrainingStats(ctx context.Context, sessionID string) (analysis.TrainingStats, error) {
	var st analysis.TrainingStats
	var meanRT sql.NullFloat64

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM training_trials WHERE session_id = ?),
			COUNT(*),
			COALESCE(SUM(correct), 0),
			COALESCE(SUM(CASE WHEN attempt = 1 AND correct = 1 THEN 1 ELSE 0 END), 0),
			AVG(CASE WHEN correct = 1 THEN response_time_ms END)
		FROM training_attempts
		WHERE session_id = ?`,
		sessionID, sessionID,
	).Scan(
		&st.Counts.Trials,
		&st.Counts.Attempts,
		&st.Counts.CorrectAttempts,
		&st.Counts.FirstAttemptHit,
		&meanRT,
	)
	if err != nil {
		return st, fmt.Errorf("training stats: %w", err)
	}
	st.MeanCorrectRTMs = meanRT.Float64
	return st, nil
}

// TestStats aggregates a session's test rows. Rates and d' are left to the
// caller.
func (r *Repository) TestStats(ctx context.Context, sessionID string) (analysis.TestStats, error) {
	var st analysis.TestStats
	var meanRT sql.NullFloat64

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(correct), 0),
			COALESCE(SUM(CASE WHEN response_key = 'invalid' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN response_key = 'omitted' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN response_key = 'grammatical' AND grammatical = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN response_key = 'ungrammatical' AND grammatical = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN response_key = 'grammatical' AND grammatical = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN response_key = 'ungrammatical' AND grammatical = 0 THEN 1 ELSE 0 END), 0),
			AVG(CASE WHEN correct = 1 THEN reaction_time_ms END)
		FROM test_trials
		WHERE session_id = ?`,
		sessionID,
	).Scan(
		&st.Counts.Trials,
		&st.Counts.Correct,
		&st.Counts.Invalid,
		&st.Counts.Omitted,
		&st.Counts.Hits,
		&st.Counts.Misses,
		&st.Counts.FalseAlarms,
		&st.Counts.CorrectRejections,
		&meanRT,
	)
	if err != nil {
		return st, fmt.Errorf("test stats: %w", err)
	}
	st.MeanCorrectRTMs = meanRT.Float64
	return st, nil
}

// ByGrammaticality breaks test accuracy and RT down by label, grammatical
// first. Labels without trials are omitted.
func (r *Repository) ByGrammaticality(ctx context.Context, sessionIDs []string) ([]analysis.GrammaticalityRow, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	in, args := inClause(sessionIDs)
	rows, err := r.db.QueryContext(ctx, `
		SELECT grammatical, COUNT(*), COALESCE(SUM(correct), 0), AVG(reaction_time_ms)
		FROM test_trials
		WHERE session_id IN (`+in+`)
		GROUP BY grammatical
		ORDER BY grammatical DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("grammaticality breakdown: %w", err)
	}
	defer rows.Close()

	var out []analysis.GrammaticalityRow
	for rows.Next() {
		var row analysis.GrammaticalityRow
		var grammatical int64
		var meanRT sql.NullFloat64
		if err := rows.Scan(&grammatical, &row.Trials, &row.Correct, &meanRT); err != nil {
			return nil, fmt.Errorf("scan grammaticality row: %w", err)
		}
		row.Grammatical = grammatical == 1
		row.MeanRTMs = meanRT.Float64
		if row.Trials > 0 {
			row.Accuracy = float64(row.Correct) / float64(row.Trials)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// RTSeries returns response times in trial order. Training yields one value
// per attempt; test skips omitted trials.
func (r *Repository) RTSeries(ctx context.Context, sessionID string, phase domain.Phase) ([]float64, error) {
	var query string
	switch phase {
	case domain.PhaseTraining:
		query = `
			SELECT response_time_ms FROM training_attempts
			WHERE session_id = ?
			ORDER BY trial_index, attempt`
	case domain.PhaseTest:
		query = `
			SELECT reaction_time_ms FROM test_trials
			WHERE session_id = ? AND reaction_time_ms IS NOT NULL
			ORDER BY trial_index`
	default:
		return nil, fmt.Errorf("rt series: unknown %s", phase)
	}

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s rt series: %w", phase, err)
	}
	defer rows.Close()

	var series []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan rt: %w", err)
		}
		series = append(series, v)
	}
	return series, rows.Err()
}

// Overall averages every attempt and test trial of the given sessions
func (r *Repository) Overall(ctx context.Context, sessionIDs []string) (analysis.Overall, error) {
	var o analysis.Overall
	if len(sessionIDs) == 0 {
		return o, nil
	}
	in, args := inClause(sessionIDs)

	var trainAcc, trainRT sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `
		SELECT AVG(correct), AVG(response_time_ms)
		FROM training_attempts
		WHERE session_id IN (`+in+`)`,
		args...,
	).Scan(&trainAcc, &trainRT)
	if err != nil {
		return o, fmt.Errorf("overall training: %w", err)
	}

	var testAcc, testRT sql.NullFloat64
	err = r.db.QueryRowContext(ctx, `
		SELECT AVG(correct), AVG(reaction_time_ms)
		FROM test_trials
		WHERE session_id IN (`+in+`)`,
		args...,
	).Scan(&testAcc, &testRT)
	if err != nil {
		return o, fmt.Errorf("overall test: %w", err)
	}

	o.TrainingAccuracy = trainAcc.Float64
	o.TrainingMeanRTMs = trainRT.Float64
	o.TestAccuracy = testAcc.Float64
	o.TestMeanRTMs = testRT.Float64
	return o, nil
}

func inClause(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}
