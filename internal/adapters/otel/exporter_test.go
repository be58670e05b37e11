package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/emiliopalmerini/aglab/internal/domain"
	"github.com/emiliopalmerini/aglab/internal/ports"
)

var (
	_ ports.MetricsExporter = (*Exporter)(nil)
	_ ports.MetricsExporter = (*NoOpExporter)(nil)
)

func TestNewExporter_Disabled(t *testing.T) {
	_, err := NewExporter(context.Background(), Config{Enabled: false, Endpoint: "localhost:4317"})
	assert.Error(t, err)

	_, err = NewExporter(context.Background(), Config{Enabled: true})
	assert.Error(t, err)
}

func TestExporter_Records(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	exp, err := newExporter(provider)
	require.NoError(t, err)
	defer exp.Close(ctx)

	session, err := domain.NewSession(t.TempDir(), "p01", domain.ExperimentPilot, time.Now())
	require.NoError(t, err)

	trial := domain.NewTrainingTrial("p01", 1, 1, "plofel")
	_, _ = trial.Record("plofl", time.Second)
	_, _ = trial.Record("plofel", time.Second)
	exp.RecordTraining(ctx, session, trial)

	rt := 500 * time.Millisecond
	exp.RecordTest(ctx, session, domain.NewTestTrial("p01", 1, domain.NewTestItem("kijbostal", true), domain.ResponseGrammatical, "f", &rt))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = m
	}

	trials, ok := names["aglab_trials_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range trials.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	attempts, ok := names["aglab_training_attempts"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, attempts.DataPoints, 1)
	assert.Equal(t, int64(2), attempts.DataPoints[0].Sum)

	rts, ok := names["aglab_response_time_ms"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range rts.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count, "two training attempts and one judgement")
}
