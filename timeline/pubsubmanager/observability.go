package pubsubmanager

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

const (
	logMsgEntryRecorded    = "pubsub manager: entry recorded"
	logMsgSubscriberFailed = "pubsub manager: subscriber failed to process notification"
	logMsgObserveFailed    = "pubsub manager: failed to observe entity"
	logMsgExportFailed     = "pubsub manager: failed to export entry"
	logAttrError           = "error"
	logAttrKind            = "kind"
	logAttrSubject         = "subject"
	logAttrSequence        = "sequence"
	logAttrMessage         = "message"
	logAttrSource          = "source"
	logAttrPublisherID     = "publisher_id"
	logAttrSubscriberID    = "subscriber_id"
	logAttrSubscriptionID  = "subscription_id"
	logAttrNotification    = "notification"
	logAttrDurationMS      = "duration_ms"
)

const (
	metricEntriesRecorded   = "pubsub_history_entries_total"
	metricSubscriberErrors  = "pubsub_subscriber_errors_total"
	metricHandlerDuration   = "pubsub_handler_duration_seconds"
	metricLivePublishers    = "pubsub_live_publishers"
	metricLiveSubscribers   = "pubsub_live_subscribers"
	metricSinkExportErrors  = "pubsub_sink_export_errors_total"
	metricSinkExportLatency = "pubsub_sink_export_duration_seconds"
	labelKind               = "kind"
	labelNotification       = "notification"
	labelStatus             = "status"
	statusSuccess           = "success"
	statusError             = "error"
	statusPanic             = "panic"
)

// logEntry logs every recorded entry at debug level if the logger is configured.
func (m *Manager) logEntry(entry timeline.Entry) {
	if m.logger != nil {
		m.logger.Debug(
			logMsgEntryRecorded,
			logAttrSequence, entry.Sequence,
			logAttrKind, string(entry.Kind),
			logAttrSubject, entry.Subject,
			logAttrMessage, entry.Message,
		)
	}
}

// logWarn logs non-critical issues at warn level if the logger is configured.
func (m *Manager) logWarn(message string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(message, args...)
	}
}

func (m *Manager) recordEntryMetrics(kind timeline.Kind) {
	if m.metricsCollector != nil {
		m.metricsCollector.IncrementCounter(metricEntriesRecorded, map[string]string{labelKind: string(kind)})
	}
}

func (m *Manager) recordSubscriberErrorMetrics(notification string) {
	if m.metricsCollector != nil {
		m.metricsCollector.IncrementCounter(metricSubscriberErrors, map[string]string{labelNotification: notification})
	}
}

func (m *Manager) recordHandlerDuration(notification, status string, duration time.Duration) {
	if m.metricsCollector != nil {
		m.metricsCollector.RecordDuration(
			metricHandlerDuration,
			duration,
			map[string]string{labelNotification: notification, labelStatus: status},
		)
	}
}

func (m *Manager) recordLiveEntities(metric string, count int) {
	if m.metricsCollector != nil {
		m.metricsCollector.RecordValue(metric, float64(count), map[string]string{})
	}
}

// export hands entry to the sink if one is configured. Failures are logged and dropped.
func (m *Manager) export(entry timeline.Entry) {
	if m.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.sinkTimeout)
	defer cancel()

	start := time.Now()
	err := m.sink.Export(ctx, entry)
	duration := time.Since(start)

	status := statusSuccess
	if err != nil {
		status = statusError
		m.logWarn(
			logMsgExportFailed,
			logAttrSequence, entry.Sequence,
			logAttrKind, string(entry.Kind),
			logAttrDurationMS, toMilliseconds(duration),
			logAttrError, err.Error(),
		)

		if m.metricsCollector != nil {
			m.metricsCollector.IncrementCounter(metricSinkExportErrors, map[string]string{labelKind: string(entry.Kind)})
		}
	}

	if m.metricsCollector != nil {
		m.metricsCollector.RecordDuration(metricSinkExportLatency, duration, map[string]string{labelStatus: status})
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func sortedKeys[V any](entities map[string]V) []string {
	keys := make([]string, 0, len(entities))
	for key := range entities {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}
