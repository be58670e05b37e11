package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/aglab/internal/domain"
)

const (
	serviceName    = "aglab"
	serviceVersion = "1.0.0"
)

// Exporter exports trial metrics to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	trialsTotal   metric.Int64Counter
	attemptsHist  metric.Int64Histogram
	responseHist  metric.Float64Histogram
	responseTotal metric.Int64Counter
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	trialsTotal, err := meter.Int64Counter(
		"aglab_trials_total",
		metric.WithDescription("Completed trials by phase and correctness"),
		metric.WithUnit("{trial}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trials counter: %w", err)
	}

	attemptsHist, err := meter.Int64Histogram(
		"aglab_training_attempts",
		metric.WithDescription("Attempts needed per training trial"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating attempts histogram: %w", err)
	}

	responseHist, err := meter.Float64Histogram(
		"aglab_response_time_ms",
		metric.WithDescription("Response time per attempt or judgement"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating response time histogram: %w", err)
	}

	responseTotal, err := meter.Int64Counter(
		"aglab_test_responses_total",
		metric.WithDescription("Test responses by classification"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating responses counter: %w", err)
	}

	return &Exporter{
		provider:      provider,
		trialsTotal:   trialsTotal,
		attemptsHist:  attemptsHist,
		responseHist:  responseHist,
		responseTotal: responseTotal,
	}, nil
}

func sessionAttrs(s *domain.Session, phase domain.Phase) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("participant_id", s.ParticipantID),
		attribute.String("session_id", s.ID),
		attribute.String("experiment_type", string(s.ExperimentType)),
		attribute.String("phase", phase.String()),
	}
}

// RecordTraining records a completed training trial.
func (e *Exporter) RecordTraining(ctx context.Context, s *domain.Session, t *domain.TrainingTrial) {
	attrs := sessionAttrs(s, domain.PhaseTraining)
	opt := metric.WithAttributes(attrs...)

	e.trialsTotal.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.Bool("correct", t.FinalCorrect))...))
	e.attemptsHist.Record(ctx, int64(len(t.Attempts)), opt)
	for _, a := range t.Attempts {
		e.responseHist.Record(ctx, a.ResponseTimeMs, metric.WithAttributes(append(attrs, attribute.Bool("correct", a.Correct))...))
	}
}

// RecordTest records a completed test trial.
func (e *Exporter) RecordTest(ctx context.Context, s *domain.Session, t domain.TestTrial) {
	attrs := append(sessionAttrs(s, domain.PhaseTest),
		attribute.Bool("correct", t.Correct),
		attribute.Bool("grammatical", t.Grammatical),
	)

	e.trialsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	e.responseTotal.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("response", string(t.Response)))...))
	if t.ReactionTimeMs != nil {
		e.responseHist.Record(ctx, *t.ReactionTimeMs, metric.WithAttributes(attrs...))
	}
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
