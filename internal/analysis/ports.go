package analysis

import (
	"context"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// Repository defines the interface for analysis data access. Imported rows
// are keyed by session id.
type Repository interface {
	// SaveSession stores or replaces a session's participant row
	SaveSession(ctx context.Context, info domain.ParticipantInfo) error

	// SaveTraining stores one training trial and its attempts
	SaveTraining(ctx context.Context, sessionID string, trial domain.TrainingTrial) error

	// SaveTest stores one test trial
	SaveTest(ctx context.Context, sessionID string, trial domain.TestTrial) error

	// ListSessions returns imported sessions ordered by start time
	ListSessions(ctx context.Context, filter SessionFilter) ([]SessionInfo, error)

	// TrainingStats aggregates a session's training rows
	TrainingStats(ctx context.Context, sessionID string) (TrainingStats, error)

	// TestStats aggregates a session's test rows
	TestStats(ctx context.Context, sessionID string) (TestStats, error)

	// ByGrammaticality breaks test accuracy and RT down by label across
	// the given sessions
	ByGrammaticality(ctx context.Context, sessionIDs []string) ([]GrammaticalityRow, error)

	// RTSeries returns response times in trial order
	RTSeries(ctx context.Context, sessionID string, phase domain.Phase) ([]float64, error)

	// Overall averages every row of the given sessions
	Overall(ctx context.Context, sessionIDs []string) (Overall, error)
}
