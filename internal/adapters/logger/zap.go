// Package logger provides the zap-backed implementation of domain.Logger.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file created inside the log directory.
const FileName = "aglab.log"

// ZapLogger writes structured logs. The terminal belongs to the presenter
// during a session, so logs go to a file.
type ZapLogger struct {
	log *zap.SugaredLogger
}

// NewFileLogger creates a JSON logger appending to <dir>/aglab.log.
func NewFileLogger(dir, level string) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{filepath.Join(dir, FileName)}
	config.ErrorOutputPaths = []string{filepath.Join(dir, FileName)}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true

	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &ZapLogger{log: log.Sugar()}, nil
}

// New wraps an existing zap logger.
func New(log *zap.Logger) *ZapLogger {
	return &ZapLogger{log: log.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *ZapLogger {
	return New(zap.NewNop())
}

func (l *ZapLogger) Debug(message string, keysAndValues ...any) {
	l.log.Debugw(message, keysAndValues...)
}

func (l *ZapLogger) Info(message string, keysAndValues ...any) {
	l.log.Infow(message, keysAndValues...)
}

func (l *ZapLogger) Error(message string, keysAndValues ...any) {
	l.log.Errorw(message, keysAndValues...)
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}
