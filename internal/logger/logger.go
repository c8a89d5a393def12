package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type ctxKey string

const (
	runIDKey   ctxKey = "runID"
	jobNameKey ctxKey = "jobName"
)

// GenerateRunID creates a new UUID for tracing one scheduler iteration or
// one externally-triggered operation.
func GenerateRunID() string {
	return uuid.NewString()
}

// WithRunID returns a new context containing the run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithJobName returns a new context tagged with the recurring job's name.
func WithJobName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, jobNameKey, name)
}

// RunIDFromContext extracts the run ID from the context, if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id, true
	}
	return "", false
}

// FromContext returns a logger carrying the run_id and job attributes when
// present on the context.
func FromContext(ctx context.Context) *slog.Logger {
	log := slog.Default()
	if id, ok := RunIDFromContext(ctx); ok {
		log = log.With(AttrKeyRunID, id)
	}
	if name, ok := ctx.Value(jobNameKey).(string); ok {
		log = log.With(AttrKeyJob, name)
	}
	return log
}

// InitLogger installs the configured handler as the process default logger.
func InitLogger(cfg Config) {
	InitLoggerWithWriter(cfg, os.Stdout)
}

// InitLoggerWithWriter is InitLogger with an explicit output, used by tests.
func InitLoggerWithWriter(cfg Config, w io.Writer) {
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel(),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.IsJSON() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	log := slog.New(handler.WithAttrs(cfg.BaseAttributes()))
	slog.SetDefault(log)
}

// Info logs at info level on the default logger.
func Info(msg string, args ...any) {
	slog.Default().Info(msg, args...)
}

// Error logs at error level on the default logger.
func Error(msg string, args ...any) {
	slog.Default().Error(msg, args...)
}
