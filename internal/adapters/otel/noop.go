package otel

import (
	"context"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordTraining(ctx context.Context, s *domain.Session, t *domain.TrainingTrial) {
}

func (e *NoOpExporter) RecordTest(ctx context.Context, s *domain.Session, t domain.TestTrial) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
