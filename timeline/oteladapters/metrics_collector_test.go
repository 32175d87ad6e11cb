package oteladapters_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/oteladapters"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/pubsubmanager"
)

func givenMeter() (metric.Meter, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return provider.Meter("test"), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// setup
	meter, reader := givenMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	labels := map[string]string{"notification": "ping", "status": "success"}

	// act
	collector.RecordDuration("pubsub_handler_duration_seconds", 150*time.Millisecond, labels)

	// assert
	histogram, ok := findMetric(t, collect(t, reader), "pubsub_handler_duration_seconds").(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, uint64(1), histogram.DataPoints[0].Count)
	assert.InDelta(t, 0.15, histogram.DataPoints[0].Sum, 0.001)

	expectedAttrs := attributeSet(labels)
	assert.True(t, histogram.DataPoints[0].Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounterContext(t *testing.T) {
	// setup
	meter, reader := givenMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	labels := map[string]string{"kind": "publication"}

	// act
	collector.IncrementCounter("pubsub_history_entries_total", labels)
	collector.IncrementCounterContext(context.Background(), "pubsub_history_entries_total", labels)

	// assert
	sum, ok := findMetric(t, collect(t, reader), "pubsub_history_entries_total").(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	assert.True(t, sum.IsMonotonic)
}

func Test_MetricsCollector_RecordValueContext(t *testing.T) {
	// setup
	meter, reader := givenMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordValue("pubsub_live_publishers", 3, nil)
	collector.RecordValueContext(context.Background(), "pubsub_live_publishers", 2, nil)

	// assert
	gauge, ok := findMetric(t, collect(t, reader), "pubsub_live_publishers").(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.InDelta(t, 2.0, gauge.DataPoints[0].Value, 0.0001)
}

type failingMeter struct {
	metric.Meter
}

func (m failingMeter) Float64Histogram(string, ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	return nil, errors.New("histogram creation failed")
}

func (m failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("counter creation failed")
}

func (m failingMeter) Float64Gauge(string, ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	return nil, errors.New("gauge creation failed")
}

func Test_MetricsCollector_IgnoresInstrumentCreationErrors(t *testing.T) {
	// setup
	meter, _ := givenMeter()
	collector := oteladapters.NewMetricsCollector(failingMeter{Meter: meter})

	// act / assert
	assert.NotPanics(t, func() {
		collector.RecordDuration("d", time.Second, nil)
		collector.IncrementCounter("c", nil)
		collector.RecordValue("v", 1, nil)
	})
}

func Test_MetricsCollector_WiredIntoManager(t *testing.T) {
	// setup
	meter, reader := givenMeter()
	manager, err := pubsubmanager.NewManager(pubsubmanager.WithMetrics(oteladapters.NewMetricsCollector(meter)))
	require.NoError(t, err)

	// arrange
	publisher := manager.NewPublisher("ping")
	subscriber, err := manager.NewSubscriber("pong")
	require.NoError(t, err)

	_, err = subscriber.Subscribe(publisher, "ping", func(any) error { return nil })
	require.NoError(t, err)

	// act
	require.NoError(t, publisher.Publish("ping", 1))

	// assert
	resourceMetrics := collect(t, reader)
	_, isSum := findMetric(t, resourceMetrics, "pubsub_history_entries_total").(metricdata.Sum[int64])
	assert.True(t, isSum)
	_, isHistogram := findMetric(t, resourceMetrics, "pubsub_handler_duration_seconds").(metricdata.Histogram[float64])
	assert.True(t, isHistogram)
}
