// Package timeline provides the audit trail of pub/sub activity: ordered, timestamped
// history entries filed into one global log and one dedicated log per entity.
//
// The history supports dynamic filtering of entries based on:
//   - Entry kinds
//   - Payload predicates (publisher, subscriber, subscription, notification, subject)
//   - Time ranges (occurred from/until)
//   - Sequence numbers
//
// Key types:
//   - HistoryLog: Append-only log with global and per-entity views
//   - Entry: One immutable history record
//   - Filter: Defines criteria for querying entries
//   - Sink: Best-effort export target for appended entries
//
// Common usage pattern:
//
//	filter := BuildEntryFilter().
//		Matching().
//		AnyKindOf(KindNotificationReceived, KindSubscriberError).
//		AndAnyPredicateOf(P(FieldSubscriberID, "s1")).
//		Finalize()
//
//	entries := history.Query(filter)
package timeline
