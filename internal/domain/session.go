package domain

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DirDateLayout is the date suffix of participant directories.
const DirDateLayout = "20060102"

// Session is the per-run configuration shared by the loader, the runners
// and the result writer. It is created once and never mutated.
type Session struct {
	ID             string
	ParticipantID  string
	ExperimentType ExperimentType
	StartedAt      time.Time
	OutputDir      string
}

// NewSession creates a session rooted under dataDir. The output directory is
// <dataDir>/<participantID>_<YYYYMMDD>.
func NewSession(dataDir, participantID string, expType ExperimentType, now time.Time) (*Session, error) {
	if err := ValidateParticipantID(participantID); err != nil {
		return nil, err
	}
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	return &Session{
		ID:             uuid.NewString(),
		ParticipantID:  participantID,
		ExperimentType: expType,
		StartedAt:      now,
		OutputDir:      filepath.Join(dataDir, fmt.Sprintf("%s_%s", participantID, now.Format(DirDateLayout))),
	}, nil
}
