package domain

import (
	"fmt"
	"strings"
	"time"
)

// Attempt is one typed submission during a training trial.
type Attempt struct {
	Typed          string  `json:"typed"`
	Correct        bool    `json:"correct"`
	ResponseTimeMs float64 `json:"rt_ms"`
}

// TrainingTrial records every attempt at reproducing one training word.
// The trial is complete once an attempt matches the stimulus exactly;
// attempts before the final one are always incorrect.
type TrainingTrial struct {
	ParticipantID string
	Block         int
	TrialIndex    int
	Stimulus      string
	Attempts      []Attempt
	FinalCorrect  bool
}

// NewTrainingTrial starts a trial for the given stimulus.
func NewTrainingTrial(participantID string, block, trialIndex int, stimulus string) *TrainingTrial {
	return &TrainingTrial{
		ParticipantID: participantID,
		Block:         block,
		TrialIndex:    trialIndex,
		Stimulus:      stimulus,
	}
}

// MatchesStimulus compares typed input against a stimulus: surrounding
// whitespace is ignored, everything else must be identical.
func MatchesStimulus(stimulus, typed string) bool {
	t := strings.TrimSpace(typed)
	return t != "" && t == stimulus
}

// Record appends an attempt and reports whether it completed the trial.
func (t *TrainingTrial) Record(typed string, rt time.Duration) (bool, error) {
	if t.FinalCorrect {
		return false, fmt.Errorf("trial %d (%s) already complete", t.TrialIndex, t.Stimulus)
	}
	correct := MatchesStimulus(t.Stimulus, typed)
	t.Attempts = append(t.Attempts, Attempt{
		Typed:          strings.TrimSpace(typed),
		Correct:        correct,
		ResponseTimeMs: DurationMs(rt),
	})
	t.FinalCorrect = correct
	return correct, nil
}

// Complete reports whether the trial ended with an exact match.
func (t *TrainingTrial) Complete() bool {
	return t.FinalCorrect
}

// FirstResponseMs returns the response time of the first attempt.
func (t *TrainingTrial) FirstResponseMs() float64 {
	if len(t.Attempts) == 0 {
		return 0
	}
	return t.Attempts[0].ResponseTimeMs
}

// FinalResponseMs returns the response time of the last attempt.
func (t *TrainingTrial) FinalResponseMs() float64 {
	if len(t.Attempts) == 0 {
		return 0
	}
	return t.Attempts[len(t.Attempts)-1].ResponseTimeMs
}

// TotalResponseMs sums the response times of all attempts.
func (t *TrainingTrial) TotalResponseMs() float64 {
	var total float64
	for _, a := range t.Attempts {
		total += a.ResponseTimeMs
	}
	return total
}

// Validate checks the trial invariants: at least one attempt, only the
// last one correct, and the last one correct iff FinalCorrect.
func (t *TrainingTrial) Validate() error {
	if len(t.Attempts) == 0 {
		return fmt.Errorf("trial %d has no attempts", t.TrialIndex)
	}
	last := len(t.Attempts) - 1
	for i, a := range t.Attempts[:last] {
		if a.Correct {
			return fmt.Errorf("trial %d: attempt %d is correct but not last", t.TrialIndex, i+1)
		}
	}
	if t.Attempts[last].Correct != t.FinalCorrect {
		return fmt.Errorf("trial %d: final_correct does not match last attempt", t.TrialIndex)
	}
	if t.FinalCorrect && t.Attempts[last].Typed != t.Stimulus {
		return fmt.Errorf("trial %d: final attempt %q does not equal stimulus %q", t.TrialIndex, t.Attempts[last].Typed, t.Stimulus)
	}
	return nil
}

// ResponseKey is the classification given in a test trial.
type ResponseKey string

const (
	ResponseGrammatical   ResponseKey = "grammatical"
	ResponseUngrammatical ResponseKey = "ungrammatical"
	// ResponseInvalid marks a key outside the response set.
	ResponseInvalid ResponseKey = "invalid"
	// ResponseOmitted marks a trial whose response window elapsed.
	ResponseOmitted ResponseKey = "omitted"
)

// ParseResponseKey parses a stored response key.
func ParseResponseKey(s string) (ResponseKey, error) {
	switch k := ResponseKey(s); k {
	case ResponseGrammatical, ResponseUngrammatical, ResponseInvalid, ResponseOmitted:
		return k, nil
	}
	return "", fmt.Errorf("unknown response key %q", s)
}

// Matches reports whether the response agrees with a grammaticality label.
// Invalid and omitted responses never match.
func (k ResponseKey) Matches(grammatical bool) bool {
	switch k {
	case ResponseGrammatical:
		return grammatical
	case ResponseUngrammatical:
		return !grammatical
	}
	return false
}

// KeyMap maps physical keys to classifications.
type KeyMap struct {
	Grammatical   string
	Ungrammatical string
}

// DefaultKeyMap uses F for grammatical and J for ungrammatical.
func DefaultKeyMap() KeyMap {
	return KeyMap{Grammatical: "f", Ungrammatical: "j"}
}

// Classify maps a pressed key to a response. Comparison ignores case.
func (m KeyMap) Classify(key string) ResponseKey {
	switch {
	case key == "":
		return ResponseInvalid
	case strings.EqualFold(key, m.Grammatical):
		return ResponseGrammatical
	case strings.EqualFold(key, m.Ungrammatical):
		return ResponseUngrammatical
	}
	return ResponseInvalid
}

// Keys returns the accepted keys in display order.
func (m KeyMap) Keys() []string {
	return []string{m.Grammatical, m.Ungrammatical}
}

// TestTrial is a single grammaticality judgement.
type TestTrial struct {
	ParticipantID  string
	TrialIndex     int
	Stimulus       string
	Grammatical    bool
	Response       ResponseKey
	PressedKey     string
	Correct        bool
	ReactionTimeMs *float64
}

// NewTestTrial builds a finalised test trial; Correct is derived from the
// response and the label.
func NewTestTrial(participantID string, trialIndex int, item StimulusItem, response ResponseKey, pressed string, rt *time.Duration) TestTrial {
	t := TestTrial{
		ParticipantID: participantID,
		TrialIndex:    trialIndex,
		Stimulus:      item.Text,
		Grammatical:   item.IsGrammatical(),
		Response:      response,
		PressedKey:    pressed,
		Correct:       response.Matches(item.IsGrammatical()),
	}
	if rt != nil && response != ResponseOmitted {
		ms := DurationMs(*rt)
		t.ReactionTimeMs = &ms
	}
	return t
}

// DurationMs converts a duration to fractional milliseconds.
func DurationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
