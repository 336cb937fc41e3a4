package ingest

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with ingest field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler logs text
// at info level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger writing JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger writing text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithIndex adds the index id to every record.
func (l *Logger) WithIndex(id string) *Logger {
	return &Logger{Logger: l.With("index", id)}
}

// LogRecordFailure logs a record that could not be encoded.
func (l *Logger) LogRecordFailure(ctx context.Context, position int, indexID string, err error) {
	l.ErrorContext(ctx, "record encoding failed",
		"position", position,
		"index", indexID,
		"error", err,
	)
}

// LogBatch logs a batch handed to the sink.
func (l *Logger) LogBatch(ctx context.Context, indexID string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sink write failed",
			"index", indexID,
			"entries", entries,
			"error", err,
		)

		return
	}

	l.DebugContext(ctx, "batch written",
		"index", indexID,
		"entries", entries,
	)
}

// LogIngest logs the outcome of one Ingest call.
func (l *Logger) LogIngest(ctx context.Context, stats Stats, err error) {
	if err != nil {
		l.WarnContext(ctx, "ingest aborted",
			"records", stats.Records,
			"entries", stats.Entries,
			"batches", stats.Batches,
			"error", err,
		)

		return
	}

	l.InfoContext(ctx, "ingest completed",
		"records", stats.Records,
		"entries", stats.Entries,
		"batches", stats.Batches,
	)
}
