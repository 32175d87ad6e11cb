package postgressink

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

const (
	metricOperationDuration = "timeline_sink_operation_duration_seconds"
	metricOperationErrors   = "timeline_sink_errors_total"
	metricEntriesProcessed  = "timeline_sink_entries_processed"
	spanNamePrefix          = "timeline_sink."
	spanAttrOperation       = "operation"
	spanAttrKind            = "entry.kind"
	spanAttrSequence        = "entry.sequence"
	spanAttrEntryCount      = "entry.count"
	spanAttrErrorType       = "error.type"
	spanAttrDurationMS      = "duration_ms"
	spanAttrRunID           = "run_id"
	labelOperation          = "operation"
	labelStatus             = "status"
	labelErrorType          = "error_type"
	statusSuccess           = "success"
	statusError             = "error"
)

// tracingObserver wraps the span of one sink operation.
type tracingObserver struct {
	span timeline.SpanContext
}

func (s Sink) startTracing(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (*tracingObserver, context.Context) {
	if s.tracingCollector == nil {
		return &tracingObserver{}, ctx
	}

	spanAttrs := make(map[string]string, len(attrs)+2)
	for key, value := range attrs {
		spanAttrs[key] = value
	}
	spanAttrs[spanAttrOperation] = operation
	spanAttrs[spanAttrRunID] = s.runID.String()

	newCtx, span := s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)

	return &tracingObserver{span: span}, newCtx
}

func (s Sink) finishSpan(tracer *tracingObserver, status string, attrs map[string]string) {
	if tracer == nil || tracer.span == nil || s.tracingCollector == nil {
		return
	}

	tracer.span.SetStatus(status)
	for key, value := range attrs {
		tracer.span.AddAttribute(key, value)
	}

	s.tracingCollector.FinishSpan(tracer.span, status, attrs)
}

func (s Sink) observeSuccess(
	ctx context.Context,
	tracer *tracingObserver,
	operation string,
	count int,
	duration time.Duration,
) {
	s.recordDurationMetrics(ctx, operation, statusSuccess, duration)
	s.recordValueMetrics(ctx, operation, float64(count))

	s.finishSpan(tracer, statusSuccess, map[string]string{
		spanAttrEntryCount: strconv.Itoa(count),
		spanAttrDurationMS: fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6),
	})
}

func (s Sink) observeFailure(
	ctx context.Context,
	tracer *tracingObserver,
	operation string,
	errorType string,
	duration time.Duration,
) {
	s.recordDurationMetrics(ctx, operation, statusError, duration)
	s.recordErrorMetrics(ctx, operation, errorType)

	s.finishSpan(tracer, statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6),
	})
}

func (s Sink) recordDurationMetrics(ctx context.Context, operation, status string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operation, labelStatus: status}

	if contextualCollector, ok := s.metricsCollector.(timeline.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
}

func (s Sink) recordValueMetrics(ctx context.Context, operation string, value float64) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operation}

	if contextualCollector, ok := s.metricsCollector.(timeline.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricEntriesProcessed, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metricEntriesProcessed, value, labels)
}

func (s Sink) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelOperation: operation, labelStatus: statusError, labelErrorType: errorType}

	if contextualCollector, ok := s.metricsCollector.(timeline.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricOperationErrors, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricOperationErrors, labels)
}

// logSQLWithDuration logs executed statements at debug level.
func (s Sink) logSQLWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

func (s Sink) logOperation(ctx context.Context, action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

func (s Sink) logWarn(ctx context.Context, message string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(message, args...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
	}
}

func (s Sink) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatUint(value timeline.SequenceNumberUint) string {
	return strconv.FormatUint(uint64(value), 10)
}
