package helper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

// GivenUniqueID returns a fresh id, prefixed for readability in failure output.
func GivenUniqueID(t testing.TB, prefix string) string {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return prefix + "-" + id.String()
}

// GivenFakeClock returns a clock that advances by one second on every call, starting after start.
func GivenFakeClock(start time.Time) func() time.Time {
	now := start

	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

// Kinds extracts the Kind of each entry, in order.
func Kinds(entries []timeline.Entry) []timeline.Kind {
	kinds := make([]timeline.Kind, 0, len(entries))
	for _, entry := range entries {
		kinds = append(kinds, entry.Kind)
	}

	return kinds
}

// Sequences extracts the sequence number of each entry, in order.
func Sequences(entries []timeline.Entry) []uint {
	sequences := make([]uint, 0, len(entries))
	for _, entry := range entries {
		sequences = append(sequences, entry.Sequence)
	}

	return sequences
}

// FixtureEntry builds an entry as the HistoryLog would have produced it.
func FixtureEntry(sequence uint, at time.Time, kind timeline.Kind, subject string, payload timeline.Payload) timeline.Entry {
	return timeline.Entry{
		Sequence: sequence,
		At:       at,
		Kind:     kind,
		Subject:  subject,
		Message:  string(kind) + " " + subject,
		Payload:  payload,
	}
}
