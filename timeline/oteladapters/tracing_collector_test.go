package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/oteladapters"
)

func givenTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	// setup
	collector, exporter := givenTracingCollector()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "timeline_sink.export", map[string]string{
		"operation":  "export",
		"entry.kind": "publication",
	})
	spanCtx.AddAttribute("entry.sequence", "7")
	collector.FinishSpan(spanCtx, "success", map[string]string{"entry.count": "1"})

	// assert
	require.NotNil(t, ctx)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "timeline_sink.export", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "operation", "export")
	assertSpanHasAttribute(t, spans[0], "entry.kind", "publication")
	assertSpanHasAttribute(t, spans[0], "entry.sequence", "7")
	assertSpanHasAttribute(t, spans[0], "entry.count", "1")
}

func Test_TracingCollector_MapsStatuses(t *testing.T) {
	testCases := []struct {
		status       string
		expectedCode codes.Code
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "panic", expectedCode: codes.Error},
		{status: "timeout", expectedCode: codes.Error},
		{status: "something_else", expectedCode: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// setup
			collector, exporter := givenTracingCollector()

			// act
			_, spanCtx := collector.StartSpan(context.Background(), "op", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)
		})
	}
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(string)            {}
func (foreignSpanContext) AddAttribute(string, string) {}

func Test_TracingCollector_IgnoresForeignSpanContext(t *testing.T) {
	// setup
	collector, exporter := givenTracingCollector()

	// act
	collector.FinishSpan(foreignSpanContext{}, "success", nil)

	// assert
	assert.Empty(t, exporter.GetSpans())
}
