// Package oteladapters plugs OpenTelemetry into the timeline observability interfaces.
//
// It lives in its own module so that the core packages stay free of OpenTelemetry dependencies.
//
//   - MetricsCollector: timeline.ContextualMetricsCollector on a metric.Meter
//   - TracingCollector: timeline.TracingCollector on a trace.Tracer
//   - SlogBridgeLogger, OTelLogger: timeline.ContextualLogger
//   - LogRecordSink: timeline.Sink emitting every history entry as a log record
package oteladapters
