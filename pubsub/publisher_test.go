package pubsub_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/pubsub-timeline-go/pubsub"
)

func Test_Publisher_Publish_DeliversToSubscriptionsInAttachOrder(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	var received []string

	// arrange
	_, err = subscriber.Subscribe(publisher, "ping", func(payload any) error {
		received = append(received, "first:"+payload.(string))
		return nil
	})
	require.NoError(t, err)

	_, err = subscriber.Subscribe(publisher, "ping", func(payload any) error {
		received = append(received, "second:"+payload.(string))
		return nil
	})
	require.NoError(t, err)

	// act
	err = publisher.Publish("ping", "hello")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"first:hello", "second:hello"}, received)
}

func Test_Publisher_Publish_IgnoresOtherNotifications(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	called := false

	// arrange
	_, err = subscriber.Subscribe(publisher, "ping", func(any) error {
		called = true
		return nil
	})
	require.NoError(t, err)

	// act
	err = publisher.Publish("pong", nil)

	// assert
	assert.NoError(t, err)
	assert.False(t, called)
}

func Test_Publisher_Publish_StopsAtFirstHandlerError(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	handlerErr := errors.New("handler failed")
	secondCalled := false

	// arrange
	_, err = subscriber.Subscribe(publisher, "ping", func(any) error { return handlerErr })
	require.NoError(t, err)

	_, err = subscriber.Subscribe(publisher, "ping", func(any) error {
		secondCalled = true
		return nil
	})
	require.NoError(t, err)

	// act
	err = publisher.Publish("ping", nil)

	// assert
	assert.Same(t, handlerErr, err)
	assert.False(t, secondCalled)
}

func Test_Publisher_Publish_AllowsReentrantPublishing(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	var received []string

	// arrange
	_, err = subscriber.Subscribe(publisher, "ping", func(any) error {
		received = append(received, "ping")
		return publisher.Publish("pong", nil)
	})
	require.NoError(t, err)

	_, err = subscriber.Subscribe(publisher, "pong", func(any) error {
		received = append(received, "pong")
		return nil
	})
	require.NoError(t, err)

	// act
	err = publisher.Publish("ping", nil)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"ping", "pong"}, received)
}

func Test_Publisher_Destroy_DetachesAllSubscriptions(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	// arrange
	subscription, err := subscriber.Subscribe(publisher, "ping", func(any) error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, publisher.SubscriptionCount())

	// act
	publisher.Destroy()
	publisher.Destroy()

	// assert
	assert.True(t, publisher.Destroyed())
	assert.Equal(t, 0, publisher.SubscriptionCount())
	assert.False(t, subscription.Active())

	_, found := subscriber.FindSubscriptionByID(subscription.ID())
	assert.False(t, found, "subscriber should forget subscriptions of a destroyed publisher")
	assert.ErrorIs(t, publisher.Publish("ping", nil), pubsub.ErrPublisherDestroyed)
}

func Test_Publisher_Attach_ShouldFail_ForDestroyedPublisher(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	// arrange
	publisher.Destroy()

	// act
	_, err = subscriber.Subscribe(publisher, "ping", func(any) error { return nil })

	// assert
	assert.ErrorIs(t, err, pubsub.ErrPublisherDestroyed)
	assert.Empty(t, subscriber.Subscriptions())
}
