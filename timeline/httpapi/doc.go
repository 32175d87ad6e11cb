// Package httpapi serves the recorded timeline over HTTP.
//
//	GET /history             entries of the global history, filtered by query parameters
//	GET /history/{id}        entries of the dedicated history of a publisher or subscriber
//	GET /healthz             liveness
//	GET /metrics             Prometheus metrics, when a registry is configured
//
// /history understands kind (repeatable or comma separated), publisher_id, subscriber_id,
// subscription_id, notification and after (entries with a higher sequence number only).
// Responses are JSON documents of the form {"entries":[...]}.
package httpapi
