package domain

import (
	"fmt"
	"strings"
)

// Phase identifies which part of the experiment a stimulus belongs to.
type Phase int

const (
	PhaseTraining Phase = iota + 1
	PhaseTest
)

func (p Phase) String() string {
	switch p {
	case PhaseTraining:
		return "training"
	case PhaseTest:
		return "test"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase resolves a phase name. Accepts "training" and "test".
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "training", "train":
		return PhaseTraining, nil
	case "test":
		return PhaseTest, nil
	}
	return 0, fmt.Errorf("unknown phase %q (use training or test)", s)
}

// StimulusItem is a single nonsense word. Grammatical is only set for test items.
type StimulusItem struct {
	Text        string
	Phase       Phase
	Grammatical *bool
}

// NewTrainingItem creates a training stimulus.
func NewTrainingItem(text string) StimulusItem {
	return StimulusItem{Text: text, Phase: PhaseTraining}
}

// NewTestItem creates a test stimulus with its grammaticality label.
func NewTestItem(text string, grammatical bool) StimulusItem {
	g := grammatical
	return StimulusItem{Text: text, Phase: PhaseTest, Grammatical: &g}
}

// IsGrammatical reports the label of a test item. Training items report false.
func (s StimulusItem) IsGrammatical() bool {
	return s.Grammatical != nil && *s.Grammatical
}

// ParseGrammaticality maps a label token from a test stimulus file to a boolean.
func ParseGrammaticality(token string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "1", "true", "g", "grammatical", "yes", "y":
		return true, nil
	case "0", "false", "u", "ungrammatical", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("unrecognised grammaticality label %q", token)
}
