package timeline_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

func givenFakeClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start

	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		now = now.Add(time.Second)

		return now
	}
}

func Test_HistoryLog_Append_AssignsStrictlyIncreasingSequenceNumbers(t *testing.T) {
	// setup
	history := timeline.NewHistoryLog()

	// act
	first := history.Append("p1", timeline.KindPublisherRecorded, "", timeline.Payload{PublisherID: "p1"})
	second := history.Append("s1", timeline.KindSubscriberRecorded, "", timeline.Payload{SubscriberID: "s1"})
	third := history.Append("p1", timeline.KindPublication, "", timeline.Payload{PublisherID: "p1"})

	// assert
	assert.Equal(t, uint(1), first.Sequence)
	assert.Equal(t, uint(2), second.Sequence)
	assert.Equal(t, uint(3), third.Sequence)
	assert.Equal(t, uint(3), history.MaxSequenceNumber())
	assert.Equal(t, 3, history.Len())
}

func Test_HistoryLog_Append_TimestampsWithClock(t *testing.T) {
	// setup
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	history := timeline.NewHistoryLog(timeline.WithClock(givenFakeClock(start)))

	// act
	entry := history.Append("p1", timeline.KindPublisherRecorded, "", timeline.Payload{})

	// assert
	assert.Equal(t, start.Add(time.Second), entry.At)
}

func Test_HistoryLog_For_IsSubjectFilteredGlobalLog(t *testing.T) {
	// setup
	history := timeline.NewHistoryLog()

	// arrange
	history.Append("p1", timeline.KindPublisherRecorded, "", timeline.Payload{})
	history.Append("s1", timeline.KindSubscriberRecorded, "", timeline.Payload{})
	history.Append("p1", timeline.KindPublication, "", timeline.Payload{})
	history.Append("s1", timeline.KindNotificationReceived, "", timeline.Payload{})
	history.Append("p1", timeline.KindPublisherRemoved, "", timeline.Payload{})

	// act
	global := history.All()

	// assert
	for _, subject := range []string{"p1", "s1"} {
		var expected []timeline.Entry
		for _, entry := range global {
			if entry.Subject == subject {
				expected = append(expected, entry)
			}
		}

		assert.Equal(t, expected, history.For(subject), "dedicated log of %s", subject)
	}

	assert.ElementsMatch(t, []string{"p1", "s1"}, history.Subjects())
}

func Test_HistoryLog_For_ReturnsEmptyForUnknownID(t *testing.T) {
	// setup
	history := timeline.NewHistoryLog()

	// act
	entries := history.For("unknown")

	// assert
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func Test_HistoryLog_All_ReturnsDefensiveCopy(t *testing.T) {
	// setup
	history := timeline.NewHistoryLog()
	history.Append("p1", timeline.KindPublisherRecorded, "original", timeline.Payload{})

	// arrange
	global := history.All()
	dedicated := history.For("p1")

	// act
	global[0].Message = "mutated"
	dedicated[0].Message = "mutated"

	// assert
	assert.Equal(t, "original", history.All()[0].Message)
	assert.Equal(t, "original", history.For("p1")[0].Message)
	assert.Equal(t, 1, history.Len())
}

func Test_HistoryLog_Append_IsSafeForConcurrentUse(t *testing.T) {
	// setup
	history := timeline.NewHistoryLog()
	const goroutines = 8
	const perGoroutine = 50

	// act
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				history.Append("p1", timeline.KindPublication, "", timeline.Payload{})
			}
		}()
	}
	wg.Wait()

	// assert
	global := history.All()
	require.Len(t, global, goroutines*perGoroutine)
	for i, entry := range global {
		assert.Equal(t, uint(i+1), entry.Sequence)
	}
}

func Test_HistoryLog_Query_ReturnsMatchingEntriesInOrder(t *testing.T) {
	// setup
	history := timeline.NewHistoryLog()

	// arrange
	history.Append("p1", timeline.KindPublication, "", timeline.Payload{PublisherID: "p1", Notification: "ping"})
	history.Append("s1", timeline.KindNotificationReceived, "", timeline.Payload{PublisherID: "p1", SubscriberID: "s1", Notification: "ping"})
	history.Append("s2", timeline.KindNotificationReceived, "", timeline.Payload{PublisherID: "p1", SubscriberID: "s2", Notification: "ping"})
	history.Append("s1", timeline.KindSubscriberError, "", timeline.Payload{PublisherID: "p1", SubscriberID: "s1", Notification: "ping"})

	filter := timeline.BuildEntryFilter().
		Matching().
		AnyKindOf(timeline.KindNotificationReceived, timeline.KindSubscriberError).
		AndAnyPredicateOf(timeline.P(timeline.FieldSubscriberID, "s1")).
		Finalize()

	// act
	entries := history.Query(filter)

	// assert
	require.Len(t, entries, 2)
	assert.Equal(t, uint(2), entries[0].Sequence)
	assert.Equal(t, uint(4), entries[1].Sequence)
}
