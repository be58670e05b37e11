package analysis

import (
	"time"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// SessionInfo identifies one imported participant session.
type SessionInfo struct {
	SessionID      string                `json:"session_id"`
	ParticipantID  string                `json:"participant_id"`
	StartedAt      time.Time             `json:"started_at"`
	ExperimentType domain.ExperimentType `json:"experiment_type"`
	Age            string                `json:"age"`
	Gender         string                `json:"gender"`
	NativeLanguage string                `json:"native_language"`
}

// SessionFilter restricts which sessions enter a report. Empty fields match
// everything.
type SessionFilter struct {
	ExperimentType domain.ExperimentType
	ParticipantID  string
}

// TrainingStats aggregates the training rows of one session.
type TrainingStats struct {
	Counts domain.TrainingCounts `json:"counts"`
	Rates  domain.TrainingRates  `json:"rates"`
	// MeanCorrectRTMs averages the response times of correct attempts.
	// Zero when there were none.
	MeanCorrectRTMs float64 `json:"mean_correct_rt_ms"`
}

// TestStats aggregates the test rows of one session.
type TestStats struct {
	Counts          domain.TestCounts `json:"counts"`
	Rates           domain.TestRates  `json:"rates"`
	MeanCorrectRTMs float64           `json:"mean_correct_rt_ms"`
	DPrime          float64           `json:"d_prime"`
}

// GrammaticalityRow is accuracy and RT for one grammaticality label.
type GrammaticalityRow struct {
	Grammatical bool    `json:"grammatical"`
	Trials      int64   `json:"trials"`
	Correct     int64   `json:"correct"`
	Accuracy    float64 `json:"accuracy"`
	// MeanRTMs averages responded trials only. Omitted trials carry no RT.
	MeanRTMs float64 `json:"mean_rt_ms"`
}

// Label names the row for display.
func (r GrammaticalityRow) Label() string {
	if r.Grammatical {
		return "grammatical"
	}
	return "ungrammatical"
}

// ParticipantReport is everything computed for one session.
type ParticipantReport struct {
	Session          SessionInfo         `json:"session"`
	Training         TrainingStats       `json:"training"`
	Test             TestStats           `json:"test"`
	ByGrammaticality []GrammaticalityRow `json:"by_grammaticality"`
	TrainingRTs      []float64           `json:"training_rts_ms"`
	TestRTs          []float64           `json:"test_rts_ms"`
}

// Stat is a mean and sample standard deviation over participants.
type Stat struct {
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// Overall averages every row of a phase regardless of participant.
type Overall struct {
	TrainingAccuracy float64 `json:"training_accuracy"`
	TrainingMeanRTMs float64 `json:"training_mean_rt_ms"`
	TestAccuracy     float64 `json:"test_accuracy"`
	TestMeanRTMs     float64 `json:"test_mean_rt_ms"`
}

// GroupReport summarises participant-level values.
type GroupReport struct {
	TrainingAccuracy     Stat                `json:"training_accuracy"`
	FirstAttemptAccuracy Stat                `json:"first_attempt_accuracy"`
	AttemptsPerTrial     Stat                `json:"attempts_per_trial"`
	TestAccuracy         Stat                `json:"test_accuracy"`
	TestMeanCorrectRTMs  Stat                `json:"test_mean_correct_rt_ms"`
	DPrime               Stat                `json:"d_prime"`
	ByGrammaticality     []GrammaticalityRow `json:"by_grammaticality"`
	Overall              Overall             `json:"overall"`
}

// Report is the output of an analysis run.
type Report struct {
	GeneratedAt  time.Time           `json:"generated_at"`
	DataDir      string              `json:"data_dir"`
	Participants []ParticipantReport `json:"participants"`
	Group        GroupReport         `json:"group"`
	Skipped      []SkippedDir        `json:"skipped,omitempty"`
}

// SkippedDir is a participant directory that could not be imported.
type SkippedDir struct {
	Dir    string `json:"dir"`
	Reason string `json:"reason"`
}

// ImportStats counts what an import loaded.
type ImportStats struct {
	Sessions       int
	TrainingTrials int
	TestTrials     int
	Skipped        []SkippedDir
}
