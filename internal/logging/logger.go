// Package logging wraps zap for the command surface.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type opKey struct{}

// WithOp returns a context carrying the name of the repo operation in
// progress, so log lines across a single command share a correlated field.
func WithOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey{}, op)
}

type Logger struct {
	*zap.Logger
}

// New builds a Logger at the given level ("debug", "info", "warn", "error").
// An empty level defaults to "info".
func New(level string) (*Logger, error) {
	if level == "" {
		level = "info"
	}

	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig = zap.NewDevelopmentEncoderConfig()

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger}, nil
}

// WithOp returns a child logger tagged with the operation name carried by ctx,
// if any.
func (l *Logger) WithOp(ctx context.Context) *zap.Logger {
	if op, ok := ctx.Value(opKey{}).(string); ok {
		return l.With(zap.String("op", op))
	}
	return l.Logger
}

// Noop returns a Logger that discards everything, for tests and callers that
// don't want log noise.
func Noop() *Logger {
	return &Logger{zap.NewNop()}
}
