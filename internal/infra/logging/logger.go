// Package logging implements domain.Logger on top of zap structured
// logging, the pattern used by the poll-driven daemons in our tooling
// fleet rather than a hand-rolled per-task file logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/runoshun/pulld/internal/domain"
)

// Logger wraps a *zap.Logger to implement domain.Logger.
type Logger struct {
	z *zap.Logger
}

var _ domain.Logger = (*Logger)(nil)

// New builds a Logger. debug enables debug-level output (PULLD_DEBUG=1);
// otherwise the daemon logs at info level.
func New(debug bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

func toZapFields(fields []domain.Field) []zap.Field {
	zf := make([]zap.Field, len(fields))
	for i, f := range fields {
		zf[i] = zap.Any(f.Key, f.Value)
	}
	return zf
}

func (l *Logger) Debug(msg string, fields ...domain.Field) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *Logger) Info(msg string, fields ...domain.Field)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *Logger) Warn(msg string, fields ...domain.Field)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *Logger) Error(msg string, fields ...domain.Field) { l.z.Error(msg, toZapFields(fields)...) }
func (l *Logger) Sync() error                              { return l.z.Sync() }
