package postgressink

import (
	"github.com/google/uuid"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

// Option defines a functional option for configuring the Sink.
type Option func(*Sink) error

// WithTableName sets the table name for the Sink.
func WithTableName(tableName string) Option {
	return func(s *Sink) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithRunID sets the run id the Sink writes and reads. A random id is used by default.
// Use it to read the entries of an earlier run.
func WithRunID(runID uuid.UUID) Option {
	return func(s *Sink) error {
		if runID == uuid.Nil {
			return ErrNilRunID
		}

		s.runID = runID

		return nil
	}
}

// WithLogger sets the logger for the Sink.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Entry counts and durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Failures that cause operation failures.
func WithLogger(logger timeline.Logger) Option {
	return func(s *Sink) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which is used in addition to the plain logger.
func WithContextualLogger(logger timeline.ContextualLogger) Option {
	return func(s *Sink) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Sink.
// Context-aware collectors (timeline.ContextualMetricsCollector) receive the operation context.
func WithMetrics(collector timeline.MetricsCollector) Option {
	return func(s *Sink) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Sink.
func WithTracing(collector timeline.TracingCollector) Option {
	return func(s *Sink) error {
		s.tracingCollector = collector
		return nil
	}
}
