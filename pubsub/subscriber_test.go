package pubsub_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/pubsub-timeline-go/pubsub"
)

type recorderSpy struct {
	base  *pubsub.Subscriber
	calls []string
	err   error
	onRec func(subscriptionID string)
}

func (r *recorderSpy) RecordSubscription(subscriptionID, notification string) error {
	r.calls = append(r.calls, notification)

	if r.err != nil {
		return r.err
	}

	if err := r.base.RecordSubscription(subscriptionID, notification); err != nil {
		return err
	}

	if r.onRec != nil {
		r.onRec(subscriptionID)
	}

	return nil
}

func givenSubscriberWithRecorder(t *testing.T, id string) (*pubsub.Subscriber, *recorderSpy) {
	t.Helper()

	spy := &recorderSpy{}
	subscriber, err := pubsub.NewSubscriber(id, pubsub.WithSubscriptionRecorder(spy))
	require.NoError(t, err)
	spy.base = subscriber

	return subscriber, spy
}

func Test_Subscriber_Subscribe_CreatesActiveSubscription(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	// act
	subscription, err := subscriber.Subscribe(publisher, "ping", func(any) error { return nil })

	// assert
	require.NoError(t, err)
	assert.NotEmpty(t, subscription.ID())
	assert.Equal(t, "p1", subscription.PublisherID())
	assert.Equal(t, "s1", subscription.SubscriberID())
	assert.Equal(t, "ping", subscription.Notification())
	assert.True(t, subscription.Active())
	assert.Len(t, subscriber.SubscriptionsFor("ping"), 1)

	found, ok := subscriber.FindSubscriptionByID(subscription.ID())
	assert.True(t, ok)
	assert.Same(t, subscription, found)
}

func Test_Subscriber_Subscribe_ShouldFail_WithNilHandler(t *testing.T) {
	// setup
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	// act
	_, err = subscriber.Subscribe(pubsub.NewPublisher("p1"), "ping", nil)

	// assert
	assert.ErrorIs(t, err, pubsub.ErrNilHandler)
}

func Test_Subscriber_Subscribe_ShouldFail_WhenDestroyed(t *testing.T) {
	// setup
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	// arrange
	subscriber.Destroy()

	// act
	_, err = subscriber.Subscribe(pubsub.NewPublisher("p1"), "ping", func(any) error { return nil })

	// assert
	assert.ErrorIs(t, err, pubsub.ErrSubscriberDestroyed)
}

func Test_NewSubscriber_ShouldFail_WithNilRecorder(t *testing.T) {
	// act
	_, err := pubsub.NewSubscriber("s1", pubsub.WithSubscriptionRecorder(nil))

	// assert
	assert.ErrorIs(t, err, pubsub.ErrNilSubscriptionRecorder)
}

func Test_Subscriber_Subscribe_RecordsBeforeAttaching(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, spy := givenSubscriberWithRecorder(t, "s1")

	var order []string

	// arrange
	spy.onRec = func(subscriptionID string) {
		subscription, ok := subscriber.FindSubscriptionByID(subscriptionID)
		require.True(t, ok)
		assert.False(t, subscription.Active(), "subscription must not be attached while it is recorded")

		decorateErr := subscription.Decorate(func(next pubsub.Handler) pubsub.Handler {
			return func(payload any) error {
				order = append(order, "decorator")
				return next(payload)
			}
		})
		require.NoError(t, decorateErr)
	}

	_, err := subscriber.Subscribe(publisher, "ping", func(any) error {
		order = append(order, "handler")
		return nil
	})
	require.NoError(t, err)

	// act
	err = publisher.Publish("ping", nil)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, []string{"ping"}, spy.calls)
	assert.Equal(t, []string{"decorator", "handler"}, order)
}

func Test_Subscriber_Subscribe_ShouldFail_WhenRecorderFails(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, spy := givenSubscriberWithRecorder(t, "s1")
	recorderErr := errors.New("recorder failed")

	// arrange
	spy.err = recorderErr

	// act
	_, err := subscriber.Subscribe(publisher, "ping", func(any) error { return nil })

	// assert
	assert.ErrorIs(t, err, recorderErr)
	assert.Empty(t, subscriber.Subscriptions())
	assert.Equal(t, 0, publisher.SubscriptionCount())
}

func Test_Subscription_Decorate_ShouldFail_WhenActive(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	// arrange
	subscription, err := subscriber.Subscribe(publisher, "ping", func(any) error { return nil })
	require.NoError(t, err)

	// act
	err = subscription.Decorate(func(next pubsub.Handler) pubsub.Handler { return next })

	// assert
	assert.ErrorIs(t, err, pubsub.ErrSubscriptionActive)
	assert.NotNil(t, subscription.Original())
}

func Test_Subscriber_RecordSubscription_ShouldFail_ForUnknownSubscription(t *testing.T) {
	// setup
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	// act
	err = subscriber.RecordSubscription("unknown", "ping")

	// assert
	assert.ErrorIs(t, err, pubsub.ErrSubscriptionNotFound)
}

func Test_Subscriber_Unsubscribe_StopsDelivery(t *testing.T) {
	// setup
	publisher := pubsub.NewPublisher("p1")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	calls := 0

	// arrange
	subscription, err := subscriber.Subscribe(publisher, "ping", func(any) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	// act
	removed := subscriber.Unsubscribe(subscription.ID())
	publishErr := publisher.Publish("ping", nil)

	// assert
	assert.True(t, removed)
	assert.False(t, subscriber.Unsubscribe(subscription.ID()))
	assert.NoError(t, publishErr)
	assert.Equal(t, 0, calls)
	assert.Empty(t, subscriber.SubscriptionsFor("ping"))
}

func Test_Subscriber_Destroy_DetachesFromAllPublishers(t *testing.T) {
	// setup
	p1 := pubsub.NewPublisher("p1")
	p2 := pubsub.NewPublisher("p2")
	subscriber, err := pubsub.NewSubscriber("s1")
	require.NoError(t, err)

	// arrange
	_, err = subscriber.Subscribe(p1, "ping", func(any) error { return nil })
	require.NoError(t, err)
	_, err = subscriber.Subscribe(p2, "pong", func(any) error { return nil })
	require.NoError(t, err)

	// act
	subscriber.Destroy()
	subscriber.Destroy()

	// assert
	assert.True(t, subscriber.Destroyed())
	assert.Equal(t, 0, p1.SubscriptionCount())
	assert.Equal(t, 0, p2.SubscriptionCount())
	assert.Empty(t, subscriber.Subscriptions())
}
