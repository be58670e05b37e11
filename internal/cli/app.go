package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/aglab/internal/adapters/logger"
	"github.com/emiliopalmerini/aglab/internal/adapters/otel"
	"github.com/emiliopalmerini/aglab/internal/config"
	"github.com/emiliopalmerini/aglab/internal/ports"
	"github.com/emiliopalmerini/aglab/internal/util"
)

// AppContext holds the dependencies shared by commands.
type AppContext struct {
	Config  *config.Config
	Logger  *logger.ZapLogger
	metrics ports.MetricsExporter
}

// NewAppContext loads the configuration and opens the log file.
func NewAppContext(path string) (*AppContext, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dir := cfg.Log.Dir
	if dir == "" {
		if dir, err = util.GetXDGStateDir(); err != nil {
			return nil, err
		}
	}
	log, err := logger.NewFileLogger(dir, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return &AppContext{Config: cfg, Logger: log}, nil
}

// Metrics returns the trial metrics exporter, creating it on first use. An
// exporter that cannot be created is logged and replaced by a no-op.
func (a *AppContext) Metrics(ctx context.Context) ports.MetricsExporter {
	if a.metrics != nil {
		return a.metrics
	}

	a.metrics = otel.NewNoOpExporter()
	if !a.Config.OTEL.Enabled {
		return a.metrics
	}

	exp, err := otel.NewExporter(ctx, otel.Config{
		Enabled:  a.Config.OTEL.Enabled,
		Endpoint: a.Config.OTEL.Endpoint,
		Insecure: a.Config.OTEL.Insecure,
	})
	if err != nil {
		a.Logger.Error("Metrics exporter unavailable", "endpoint", a.Config.OTEL.Endpoint, "error", err)
		return a.metrics
	}
	a.Logger.Debug("Metrics exporter started", "endpoint", a.Config.OTEL.Endpoint)
	a.metrics = exp
	return a.metrics
}

// Close flushes metrics and the log.
func (a *AppContext) Close(ctx context.Context) error {
	var errs []error
	if a.metrics != nil {
		errs = append(errs, a.metrics.Close(ctx))
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
