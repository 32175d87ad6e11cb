package pubsubmanager_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/pubsubmanager"
	. "github.com/AntonStoeckl/pubsub-timeline-go/testutil/timeline/helper" //nolint:revive
)

func Test_Observability_Manager_WithLogger_LogsEveryEntry(t *testing.T) {
	// setup
	logHandler := NewLogHandlerSpy(false)
	manager := givenManager(t, pubsubmanager.WithLogger(slog.New(logHandler)))

	// act
	p1 := manager.NewPublisher("p1")
	require.NoError(t, p1.Publish("ping", nil))

	// assert
	assert.Equal(t, 2, logHandler.CountLogsWithMessage(slog.LevelDebug, "pubsub manager: entry recorded"))
	assert.True(t,
		logHandler.HasDebugLogWithMessage("pubsub manager: entry recorded").
			WithAttr("kind", "publication").
			WithAttr("subject", "p1").
			WithAttr("message", `"p1" publish "ping".`).
			Assert(),
		"should log publication with kind, subject and message",
	)
}

func Test_Observability_Manager_WithLogger_WarnsOnSubscriberError(t *testing.T) {
	// setup
	logHandler := NewLogHandlerSpy(false)
	manager := givenManager(t, pubsubmanager.WithLogger(slog.New(logHandler)))
	p1 := manager.NewPublisher("p1")
	s1 := givenSubscriber(t, manager, "s1")

	// arrange
	_, err := s1.Subscribe(p1, "ping", func(any) error { return errors.New("boom") })
	require.NoError(t, err)

	// act
	_ = p1.Publish("ping", nil)

	// assert
	assert.True(t,
		logHandler.HasWarnLogWithMessage("pubsub manager: subscriber failed to process notification").
			WithAttr("subscriber_id", "s1").
			WithAttr("publisher_id", "p1").
			WithAttr("notification", "ping").
			WithAttr("error", "boom").
			Assert(),
	)
}

func Test_Observability_Manager_WithMetrics_RecordsEntriesAndLiveEntities(t *testing.T) {
	// setup
	metrics := NewMetricsCollectorSpy(true)
	manager := givenManager(t, pubsubmanager.WithMetrics(metrics))

	// arrange
	p1 := manager.NewPublisher("p1")
	s1 := givenSubscriber(t, manager, "s1")
	_, err := s1.Subscribe(p1, "ping", func(any) error { return errors.New("boom") })
	require.NoError(t, err)

	// act
	_ = p1.Publish("ping", nil)
	require.NoError(t, p1.Destroy())

	// assert
	assert.Equal(t, 1, metrics.HasCounterRecordForMetric("pubsub_history_entries_total").WithLabel("kind", "publication").Count())
	assert.Equal(t, 1, metrics.HasCounterRecordForMetric("pubsub_history_entries_total").WithLabel("kind", "subscriber_error").Count())
	assert.Equal(t, 1, metrics.HasCounterRecordForMetric("pubsub_subscriber_errors_total").WithLabel("notification", "ping").Count())
	assert.True(t, metrics.HasDurationRecordForMetric("pubsub_handler_duration_seconds").WithStatus("error").Assert())

	livePublishers, ok := metrics.LastValueForMetric("pubsub_live_publishers")
	require.True(t, ok)
	assert.Equal(t, float64(0), livePublishers)

	liveSubscribers, ok := metrics.LastValueForMetric("pubsub_live_subscribers")
	require.True(t, ok)
	assert.Equal(t, float64(1), liveSubscribers)
}

func Test_Observability_Manager_WithSink_ExportsEveryEntryInOrder(t *testing.T) {
	// setup
	sink := NewSinkSpy()
	manager := givenManager(t, pubsubmanager.WithSink(sink), pubsubmanager.WithSinkTimeout(time.Second))

	// act
	p1 := manager.NewPublisher("p1")
	require.NoError(t, p1.Publish("ping", "hello"))
	require.NoError(t, p1.Destroy())

	// assert
	assert.Equal(t, manager.GetHistory(), sink.GetEntries())
}

func Test_Observability_Manager_WithFailingSink_KeepsHistoryAndWarns(t *testing.T) {
	// setup
	sink := NewSinkSpy()
	sink.FailWith(errors.New("database unavailable"))
	logHandler := NewLogHandlerSpy(false)
	metrics := NewMetricsCollectorSpy(true)
	manager := givenManager(t,
		pubsubmanager.WithSink(sink),
		pubsubmanager.WithLogger(slog.New(logHandler)),
		pubsubmanager.WithMetrics(metrics),
	)

	// act
	manager.NewPublisher("p1")

	// assert
	assert.Len(t, manager.GetHistory(), 1)
	assert.Empty(t, sink.GetEntries())
	assert.True(t,
		logHandler.HasWarnLogWithMessage("pubsub manager: failed to export entry").
			WithAttr("kind", string(timeline.KindPublisherRecorded)).
			WithDurationMS().
			Assert(),
	)
	assert.True(t, metrics.HasCounterRecordForMetric("pubsub_sink_export_errors_total").Assert())
	assert.True(t, metrics.HasDurationRecordForMetric("pubsub_sink_export_duration_seconds").WithStatus("error").Assert())
}
