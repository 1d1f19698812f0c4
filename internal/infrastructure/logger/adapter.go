package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"parts-assistant/internal/application/port/output"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

// LoggerAdapter implements LoggerPort on a zap sugared logger. args are
// alternating key/value pairs, matching zap's *w methods.
type LoggerAdapter struct {
	sugar *zap.SugaredLogger
}

func NewLoggerAdapter(level string) (*LoggerAdapter, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &LoggerAdapter{sugar: base.Sugar()}, nil
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{sugar: l.sugar.With(key, value)}
}

func (l *LoggerAdapter) Close() error {
	// Sync can fail on stderr; nothing actionable.
	_ = l.sugar.Sync()
	return nil
}
