package postgressink_test

import (
	"context"
	"strings"
	"time"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/pubsub-timeline-go/testutil/postgressink/postgreswrapper"
	. "github.com/AntonStoeckl/pubsub-timeline-go/testutil/timeline/helper" //nolint:revive
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/postgressink"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline/pubsubmanager"
)

func givenTableName(t *testing.T) string {
	t.Helper()

	return strings.ReplaceAll(GivenUniqueID(t, "timeline_entries"), "-", "_")
}

func Test_Sink_ExportsManagerTimelineIntoPostgres(t *testing.T) {
	// setup
	ctx := context.Background()
	tableName := givenTableName(t)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, tableName)
	sink := wrapper.GetSink()
	require.NoError(t, sink.CreateTable(ctx))

	manager, err := pubsubmanager.NewManager(pubsubmanager.WithSink(sink), pubsubmanager.WithClock(timeNowUTC))
	require.NoError(t, err)

	// arrange
	ping := manager.NewPublisher("ping")
	pong, err := manager.NewSubscriber("pong")
	require.NoError(t, err)

	_, err = pong.Subscribe(ping, "ping", func(payload any) error { return nil })
	require.NoError(t, err)

	// act
	require.NoError(t, ping.Publish("ping", map[string]string{"greeting": "hello"}))

	// assert
	exported, queryErr := sink.Query(ctx, timeline.BuildEntryFilter().MatchingAnyEntry())
	require.NoError(t, queryErr)

	history := manager.GetHistory()
	require.Len(t, exported, len(history))

	for i, entry := range history {
		assert.Equal(t, entry.Sequence, exported[i].Sequence)
		assert.Equal(t, entry.Kind, exported[i].Kind)
		assert.Equal(t, entry.Subject, exported[i].Subject)
		assert.Equal(t, entry.Message, exported[i].Message)
		assert.Equal(t, sink.RunID(), exported[i].RunID)
		assert.True(t, entry.At.Equal(exported[i].OccurredAt), "occurred_at must survive the round trip")
	}

	rowCount, countErr := wrapper.CountRows(ctx, tableName)
	require.NoError(t, countErr)
	assert.Equal(t, len(history), rowCount)
}

func Test_Sink_QueryFiltersByKindAndPayloadPredicate(t *testing.T) {
	// setup
	ctx := context.Background()
	tableName := givenTableName(t)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, tableName)
	sink := wrapper.GetSink()
	require.NoError(t, sink.CreateTable(ctx))

	manager, err := pubsubmanager.NewManager(pubsubmanager.WithSink(sink))
	require.NoError(t, err)

	// arrange
	ping := manager.NewPublisher("ping")
	other := manager.NewPublisher("other")
	pong, err := manager.NewSubscriber("pong")
	require.NoError(t, err)

	_, err = pong.Subscribe(ping, "ping", func(payload any) error { return nil })
	require.NoError(t, err)
	_, err = pong.Subscribe(other, "ping", func(payload any) error { return nil })
	require.NoError(t, err)

	require.NoError(t, ping.Publish("ping", 1))
	require.NoError(t, other.Publish("ping", 2))

	filter := timeline.BuildEntryFilter().
		Matching().
		AnyKindOf(timeline.KindNotificationReceived).
		AndAllPredicatesOf(timeline.P(timeline.FieldPublisherID, "ping")).
		Finalize()

	// act
	exported, queryErr := sink.Query(ctx, filter)

	// assert
	require.NoError(t, queryErr)
	expected := manager.QueryHistory(filter)
	require.Len(t, expected, 1)
	require.Len(t, exported, 1)
	assert.Equal(t, expected[0].Sequence, exported[0].Sequence)
	assert.Equal(t, "pong", exported[0].Subject)
}

func Test_Sink_QueryIsScopedToRunID(t *testing.T) {
	// setup
	ctx := context.Background()
	tableName := givenTableName(t)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, tableName)
	firstRun := wrapper.GetSink()
	require.NoError(t, firstRun.CreateTable(ctx))

	// arrange
	entry := FixtureEntry(1, timeNowUTC(), timeline.KindPublisherRecorded, "ping", timeline.Payload{PublisherID: "ping"})
	require.NoError(t, firstRun.Export(ctx, entry))

	secondRun := postgreswrapper.CreateWrapperWithTestConfig(t, tableName).GetSink()
	require.NoError(t, secondRun.Export(ctx, entry))

	// act
	firstEntries, firstErr := firstRun.Query(ctx, timeline.BuildEntryFilter().MatchingAnyEntry())
	secondEntries, secondErr := secondRun.Query(ctx, timeline.BuildEntryFilter().MatchingAnyEntry())

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	require.Len(t, firstEntries, 1)
	require.Len(t, secondEntries, 1)
	assert.NotEqual(t, firstEntries[0].RunID, secondEntries[0].RunID)
}

func Test_Sink_ExportFailsForDuplicateSequenceInSameRun(t *testing.T) {
	// setup
	ctx := context.Background()
	tableName := givenTableName(t)
	sink := postgreswrapper.CreateWrapperWithTestConfig(t, tableName).GetSink()
	require.NoError(t, sink.CreateTable(ctx))

	// arrange
	entry := FixtureEntry(7, timeNowUTC(), timeline.KindPublication, "ping", timeline.Payload{PublisherID: "ping", Notification: "ping"})
	require.NoError(t, sink.Export(ctx, entry))

	// act
	err := sink.Export(ctx, entry)

	// assert
	assert.ErrorIs(t, err, postgressink.ErrExportingEntryFailed)
}

func timeNowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
