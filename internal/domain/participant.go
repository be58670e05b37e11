package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// ExperimentType distinguishes pilot runs from the real experiment.
type ExperimentType string

const (
	ExperimentPilot        ExperimentType = "Pilot"
	ExperimentExperimental ExperimentType = "Experimental"
)

// ParseExperimentType accepts the type name in any case.
func ParseExperimentType(s string) (ExperimentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pilot":
		return ExperimentPilot, nil
	case "experimental":
		return ExperimentExperimental, nil
	}
	return "", fmt.Errorf("unknown experiment type %q (use pilot or experimental)", s)
}

// Choice lists offered when participant details are collected interactively.
var (
	ExperimentTypeOptions = []string{string(ExperimentPilot), string(ExperimentExperimental)}
	AgeOptions            = []string{"<18", "18-24", "25-34", "35-44", "45+"}
	GenderOptions         = []string{"Male", "Female", "Other", "Prefer not to say"}
	LanguageOptions       = []string{"Dutch", "French", "English", "German", "Other"}
)

// OtherOption triggers a free-text follow-up for native language.
const OtherOption = "Other"

// ParticipantInfo is written once at session start.
type ParticipantInfo struct {
	ParticipantID  string
	SessionID      string
	Timestamp      time.Time
	ExperimentType ExperimentType
	Age            string
	Gender         string
	NativeLanguage string
	// Seed drives the stimulus shuffles, so the trial order can be rebuilt.
	Seed int64
}

var participantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateParticipantID rejects identifiers that cannot be used in file names.
func ValidateParticipantID(id string) error {
	if id == "" {
		return fmt.Errorf("participant id is required")
	}
	if !participantIDPattern.MatchString(id) {
		return fmt.Errorf("participant id %q may only contain letters, digits, '-' and '_'", id)
	}
	return nil
}

// Validate checks required fields and choice-list membership.
func (p ParticipantInfo) Validate() error {
	if err := ValidateParticipantID(p.ParticipantID); err != nil {
		return err
	}
	if _, err := ParseExperimentType(string(p.ExperimentType)); err != nil {
		return err
	}
	if !slices.Contains(AgeOptions, p.Age) {
		return fmt.Errorf("age %q is not one of %s", p.Age, strings.Join(AgeOptions, ", "))
	}
	if !slices.Contains(GenderOptions, p.Gender) {
		return fmt.Errorf("gender %q is not one of %s", p.Gender, strings.Join(GenderOptions, ", "))
	}
	if strings.TrimSpace(p.NativeLanguage) == "" || p.NativeLanguage == OtherOption {
		return fmt.Errorf("native language is required")
	}
	return nil
}
