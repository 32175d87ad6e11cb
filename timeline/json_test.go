package timeline_test

import (
	"errors"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

func Test_MarshalEntries_RendersPayloadFields(t *testing.T) {
	// setup
	entry := timeline.Entry{
		Sequence: 7,
		At:       time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		Kind:     timeline.KindSubscriberError,
		Subject:  "s1",
		Message:  `Subscriber "s1" failed to process "ping" notification published by "p1".`,
		Payload: timeline.Payload{
			PublisherID:  "p1",
			SubscriberID: "s1",
			Notification: "ping",
			Data:         map[string]string{"greeting": "hello"},
			Err:          errors.New("boom"),
		},
	}

	// act
	data, err := timeline.MarshalEntries([]timeline.Entry{entry})

	// assert
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "subscriber_error", decoded[0]["kind"])
	assert.Equal(t, "s1", decoded[0]["subject"])

	payload := decoded[0]["payload"].(map[string]any)
	assert.Equal(t, "p1", payload["publisher_id"])
	assert.Equal(t, "boom", payload["error"])
	assert.Equal(t, map[string]any{"greeting": "hello"}, payload["data"])
	assert.NotContains(t, payload, "subscription_id")
}

func Test_MarshalPayload_FallsBackForUnserializableData(t *testing.T) {
	// setup
	entry := timeline.Entry{
		Kind:    timeline.KindPublication,
		Payload: timeline.Payload{Data: make(chan int)},
	}

	// act
	data, err := timeline.MarshalPayload(entry)

	// assert
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(data, &decoded))
	assert.IsType(t, "", decoded["data"])
}

func Test_Trace_CapturesCaller(t *testing.T) {
	// act
	trace := timeline.CaptureTrace(0)

	// assert
	require.NotEmpty(t, trace.Frames())
	assert.Contains(t, trace.Frames()[0].Function, "Test_Trace_CapturesCaller")
	assert.Contains(t, trace.String(), "json_test.go")
}

func Test_Trace_NilIsEmpty(t *testing.T) {
	// setup
	var trace *timeline.Trace

	// assert
	assert.Empty(t, trace.Frames())
	assert.Empty(t, trace.Lines())
	assert.Empty(t, trace.String())
}
