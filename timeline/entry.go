package timeline

import (
	"time"
)

// Kind classifies an Entry.
type Kind string

const (
	KindPublisherRecorded    Kind = "publisher_recorded"
	KindPublisherRemoved     Kind = "publisher_removed"
	KindSubscriberRecorded   Kind = "subscriber_recorded"
	KindSubscriberRemoved    Kind = "subscriber_removed"
	KindPublication          Kind = "publication"
	KindNotificationReceived Kind = "notification_received"
	KindSubscriberError      Kind = "subscriber_error"
)

// AllKinds lists every Kind in lifecycle order.
func AllKinds() []Kind {
	return []Kind{
		KindPublisherRecorded,
		KindPublisherRemoved,
		KindSubscriberRecorded,
		KindSubscriberRemoved,
		KindPublication,
		KindNotificationReceived,
		KindSubscriberError,
	}
}

const (
	FieldKind           = "kind"
	FieldSubject        = "subject"
	FieldPublisherID    = "publisher_id"
	FieldSubscriberID   = "subscriber_id"
	FieldSubscriptionID = "subscription_id"
	FieldNotification   = "notification"
)

// Payload holds the context of an Entry. Which fields are set depends on the Kind.
type Payload struct {
	PublisherID    string
	SubscriberID   string
	SubscriptionID string
	Notification   string
	Data           any
	Err            error
	Trace          *Trace
}

// Entry is one immutable record of the history.
// Subject is the id of the entity the Entry is filed under.
type Entry struct {
	Sequence SequenceNumberUint
	At       time.Time
	Kind     Kind
	Subject  string
	Message  string
	Payload  Payload
}

// Field returns the value of a filterable field, or "" for unknown keys.
func (e Entry) Field(key string) string {
	switch key {
	case FieldKind:
		return string(e.Kind)
	case FieldSubject:
		return e.Subject
	case FieldPublisherID:
		return e.Payload.PublisherID
	case FieldSubscriberID:
		return e.Payload.SubscriberID
	case FieldSubscriptionID:
		return e.Payload.SubscriptionID
	case FieldNotification:
		return e.Payload.Notification
	default:
		return ""
	}
}
