package oteladapters

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/log"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

const (
	attrSequence       = "timeline.sequence"
	attrKind           = "timeline.kind"
	attrSubject        = "timeline.subject"
	attrPublisherID    = "timeline.publisher_id"
	attrSubscriberID   = "timeline.subscriber_id"
	attrSubscriptionID = "timeline.subscription_id"
	attrNotification   = "timeline.notification"
	attrPayload        = "timeline.payload"
	attrError          = "timeline.error"
)

// LogRecordSink implements timeline.Sink by emitting each entry as an OpenTelemetry log record.
// Subscriber errors are emitted at error severity, everything else at info.
type LogRecordSink struct {
	logger log.Logger
}

// NewLogRecordSink creates a sink emitting to logger.
func NewLogRecordSink(logger log.Logger) *LogRecordSink {
	return &LogRecordSink{logger: logger}
}

// Export never fails, emitting is fire and forget.
func (s *LogRecordSink) Export(ctx context.Context, entry timeline.Entry) error {
	var record log.Record
	record.SetTimestamp(entry.At)
	record.SetObservedTimestamp(time.Now())
	record.SetBody(log.StringValue(entry.Message))
	record.SetSeverity(log.SeverityInfo)

	if entry.Kind == timeline.KindSubscriberError {
		record.SetSeverity(log.SeverityError)
	}

	record.AddAttributes(
		log.Int64(attrSequence, int64(entry.Sequence)),
		log.String(attrKind, string(entry.Kind)),
		log.String(attrSubject, entry.Subject),
	)

	record.AddAttributes(optionalStrings(map[string]string{
		attrPublisherID:    entry.Payload.PublisherID,
		attrSubscriberID:   entry.Payload.SubscriberID,
		attrSubscriptionID: entry.Payload.SubscriptionID,
		attrNotification:   entry.Payload.Notification,
	})...)

	if entry.Payload.Err != nil {
		record.AddAttributes(log.String(attrError, entry.Payload.Err.Error()))
	}

	if payloadJSON, err := timeline.MarshalPayload(entry); err == nil {
		record.AddAttributes(log.String(attrPayload, string(payloadJSON)))
	} else {
		record.AddAttributes(log.String(attrPayload, "unmarshalable: "+strconv.Quote(err.Error())))
	}

	s.logger.Emit(ctx, record)

	return nil
}

func optionalStrings(values map[string]string) []log.KeyValue {
	kvs := make([]log.KeyValue, 0, len(values))
	for key, value := range values {
		if value != "" {
			kvs = append(kvs, log.String(key, value))
		}
	}

	return kvs
}

var _ timeline.Sink = (*LogRecordSink)(nil)
