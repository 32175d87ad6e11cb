// Package promadapters exposes timeline metrics through the Prometheus client library.
//
// MetricsCollector implements timeline.MetricsCollector and creates its instruments on first use:
//   - RecordDuration -> HistogramVec (seconds)
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
//
// The label names of an instrument are fixed by its first observation. Later observations with a
// different label set are dropped.
package promadapters
