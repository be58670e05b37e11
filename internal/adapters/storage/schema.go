package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// File name suffixes; each file is prefixed with the participant id.
const (
	ParticipantSuffix = "_participant_info.csv"
	TrainingSuffix    = "_training_phase.csv"
	TestSuffix        = "_test_phase.csv"
)

// Column schemas. Readers look columns up by name, so new columns may only
// be appended.
var (
	// Files written before the seed column existed still read.
	participantRequired = []string{
		"participant_id", "session_id", "timestamp", "experiment_type",
		"age", "gender", "native_language",
	}
	ParticipantHeader = []string{
		"participant_id", "session_id", "timestamp", "experiment_type",
		"age", "gender", "native_language", "seed",
	}
	TrainingHeader = []string{
		"participant_id", "block", "trial_index", "stimulus", "attempt_count",
		"attempts", "final_correct", "first_response_ms", "final_response_ms",
		"total_response_ms",
	}
	TestHeader = []string{
		"participant_id", "trial_index", "stimulus", "grammatical",
		"response_key", "pressed_key", "correct", "reaction_time_ms",
	}
)

// ParticipantPath returns the participant-info file for a session directory.
func ParticipantPath(dir, participantID string) string {
	return filepath.Join(dir, participantID+ParticipantSuffix)
}

// TrainingPath returns the training-phase file for a session directory.
func TrainingPath(dir, participantID string) string {
	return filepath.Join(dir, participantID+TrainingSuffix)
}

// TestPath returns the test-phase file for a session directory.
func TestPath(dir, participantID string) string {
	return filepath.Join(dir, participantID+TestSuffix)
}

// EncodeParticipant renders a participant record in ParticipantHeader order.
func EncodeParticipant(p domain.ParticipantInfo) []string {
	return []string{
		p.ParticipantID,
		p.SessionID,
		p.Timestamp.Format(time.RFC3339),
		string(p.ExperimentType),
		p.Age,
		p.Gender,
		p.NativeLanguage,
		strconv.FormatInt(p.Seed, 10),
	}
}

// EncodeTraining renders a training record in TrainingHeader order.
func EncodeTraining(t *domain.TrainingTrial) ([]string, error) {
	attempts, err := json.Marshal(t.Attempts)
	if err != nil {
		return nil, fmt.Errorf("encode attempts: %w", err)
	}
	return []string{
		t.ParticipantID,
		strconv.Itoa(t.Block),
		strconv.Itoa(t.TrialIndex),
		t.Stimulus,
		strconv.Itoa(len(t.Attempts)),
		string(attempts),
		formatBool(t.FinalCorrect),
		formatMs(t.FirstResponseMs()),
		formatMs(t.FinalResponseMs()),
		formatMs(t.TotalResponseMs()),
	}, nil
}

// EncodeTest renders a test record in TestHeader order.
func EncodeTest(t domain.TestTrial) []string {
	rt := ""
	if t.ReactionTimeMs != nil {
		rt = formatMs(*t.ReactionTimeMs)
	}
	return []string{
		t.ParticipantID,
		strconv.Itoa(t.TrialIndex),
		t.Stimulus,
		formatBool(t.Grammatical),
		string(t.Response),
		t.PressedKey,
		formatBool(t.Correct),
		rt,
	}
}

// row gives access to a CSV record by column name.
type row struct {
	cols   map[string]int
	values []string
	line   int
}

func newColumnIndex(header []string, required []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

func (r row) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

func (r row) int(name string) (int, error) {
	v, err := strconv.Atoi(r.str(name))
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, name, err)
	}
	return v, nil
}

func (r row) bool(name string) (bool, error) {
	v, err := strconv.ParseBool(r.str(name))
	if err != nil {
		return false, fmt.Errorf("line %d: column %s: %w", r.line, name, err)
	}
	return v, nil
}

func decodeParticipant(r row) (domain.ParticipantInfo, error) {
	ts, err := time.Parse(time.RFC3339, r.str("timestamp"))
	if err != nil {
		return domain.ParticipantInfo{}, fmt.Errorf("line %d: column timestamp: %w", r.line, err)
	}
	var seed int64
	if v := r.str("seed"); v != "" {
		if seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return domain.ParticipantInfo{}, fmt.Errorf("line %d: column seed: %w", r.line, err)
		}
	}
	return domain.ParticipantInfo{
		ParticipantID:  r.str("participant_id"),
		SessionID:      r.str("session_id"),
		Timestamp:      ts,
		ExperimentType: domain.ExperimentType(r.str("experiment_type")),
		Age:            r.str("age"),
		Gender:         r.str("gender"),
		NativeLanguage: r.str("native_language"),
		Seed:           seed,
	}, nil
}

func decodeTraining(r row) (domain.TrainingTrial, error) {
	block, err := r.int("block")
	if err != nil {
		return domain.TrainingTrial{}, err
	}
	index, err := r.int("trial_index")
	if err != nil {
		return domain.TrainingTrial{}, err
	}
	final, err := r.bool("final_correct")
	if err != nil {
		return domain.TrainingTrial{}, err
	}
	var attempts []domain.Attempt
	if err := json.Unmarshal([]byte(r.str("attempts")), &attempts); err != nil {
		return domain.TrainingTrial{}, fmt.Errorf("line %d: column attempts: %w", r.line, err)
	}
	return domain.TrainingTrial{
		ParticipantID: r.str("participant_id"),
		Block:         block,
		TrialIndex:    index,
		Stimulus:      r.str("stimulus"),
		Attempts:      attempts,
		FinalCorrect:  final,
	}, nil
}

func decodeTest(r row) (domain.TestTrial, error) {
	index, err := r.int("trial_index")
	if err != nil {
		return domain.TestTrial{}, err
	}
	grammatical, err := r.bool("grammatical")
	if err != nil {
		return domain.TestTrial{}, err
	}
	correct, err := r.bool("correct")
	if err != nil {
		return domain.TestTrial{}, err
	}
	response, err := domain.ParseResponseKey(r.str("response_key"))
	if err != nil {
		return domain.TestTrial{}, fmt.Errorf("line %d: %w", r.line, err)
	}
	t := domain.TestTrial{
		ParticipantID: r.str("participant_id"),
		TrialIndex:    index,
		Stimulus:      r.str("stimulus"),
		Grammatical:   grammatical,
		Response:      response,
		PressedKey:    r.str("pressed_key"),
		Correct:       correct,
	}
	if s := r.str("reaction_time_ms"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.TestTrial{}, fmt.Errorf("line %d: column reaction_time_ms: %w", r.line, err)
		}
		t.ReactionTimeMs = &v
	}
	return t, nil
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
