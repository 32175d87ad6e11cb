package pubsubmanager

import (
	"time"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

// Option defines a functional option for configuring a Manager.
type Option func(*Manager) error

// WithManagerID sets the id under which the Manager can be registered and looked up.
func WithManagerID(id string) Option {
	return func(m *Manager) error {
		if id == "" {
			return ErrEmptyManagerID
		}

		m.id = id

		return nil
	}
}

// WithLogger sets the logger for the Manager.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: every recorded entry with its message (development use)
// Warn level: subscriber errors, failed sink exports, subscriptions that could not be observed.
func WithLogger(logger timeline.Logger) Option {
	return func(m *Manager) error {
		m.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Manager.
func WithMetrics(collector timeline.MetricsCollector) Option {
	return func(m *Manager) error {
		m.metricsCollector = collector
		return nil
	}
}

// WithSink sets a sink that receives every appended entry.
// Export runs synchronously after the entry is in the history; failures are logged and dropped.
func WithSink(sink timeline.Sink) Option {
	return func(m *Manager) error {
		m.sink = sink
		return nil
	}
}

// WithSinkTimeout bounds each sink export.
func WithSinkTimeout(timeout time.Duration) Option {
	return func(m *Manager) error {
		if timeout <= 0 {
			return ErrInvalidSinkTimeout
		}

		m.sinkTimeout = timeout

		return nil
	}
}

// WithClock sets the time source of the history.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) error {
		if clock == nil {
			return ErrNilClock
		}

		m.clock = clock

		return nil
	}
}

// WithTraceCapture enables or disables call stack capture for recorded entries. Enabled by default.
func WithTraceCapture(enabled bool) Option {
	return func(m *Manager) error {
		m.captureTraces = enabled
		return nil
	}
}
