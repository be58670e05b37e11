package ports

import (
	"context"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// MetricsExporter exports trial metrics to an external observability system.
type MetricsExporter interface {
	// RecordTraining records a completed training trial.
	RecordTraining(ctx context.Context, session *domain.Session, trial *domain.TrainingTrial)
	// RecordTest records a completed test trial.
	RecordTest(ctx context.Context, session *domain.Session, trial domain.TestTrial)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
