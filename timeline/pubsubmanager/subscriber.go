package pubsubmanager

import (
	"sync"

	"github.com/AntonStoeckl/pubsub-timeline-go/pubsub"
)

// Subscriber is a pubsub.Subscriber that announces every recorded Subscription and its
// destruction through a private proxy publisher, before the Subscription is attached.
type Subscriber struct {
	*pubsub.Subscriber

	proxy *pubsub.Publisher

	mu        sync.Mutex
	observers map[*Manager]struct{}

	destroyOnce sync.Once
}

func newSubscriber(id string) (*Subscriber, error) {
	s := &Subscriber{
		proxy:     pubsub.NewPublisher(id + ProxyIDSuffix),
		observers: make(map[*Manager]struct{}),
	}

	base, err := pubsub.NewSubscriber(id, pubsub.WithSubscriptionRecorder(s))
	if err != nil {
		return nil, err
	}

	s.Subscriber = base

	return s, nil
}

// NewSubscriber creates a Subscriber recorded with the default Manager.
func NewSubscriber(id string) (*Subscriber, error) {
	return Default().NewSubscriber(id)
}

// ProxyID returns the id of the private proxy publisher.
func (s *Subscriber) ProxyID() string {
	return s.proxy.ID()
}

// RecordSubscription records the Subscription and announces it on the proxy publisher.
func (s *Subscriber) RecordSubscription(subscriptionID, notification string) error {
	if err := s.Subscriber.RecordSubscription(subscriptionID, notification); err != nil {
		return err
	}

	subscription, ok := s.FindSubscriptionByID(subscriptionID)
	if !ok {
		return pubsub.ErrSubscriptionNotFound
	}

	return s.proxy.Publish(metaSubscribe, SubscribeEvent{
		Subscription: subscription,
		Notification: notification,
	})
}

// Destroy announces the destruction, releases the proxy publisher and all subscriptions.
// Only the first call has an effect.
func (s *Subscriber) Destroy() {
	s.destroyOnce.Do(func() {
		_ = s.proxy.Publish(metaDestroy, DestroyEvent{ID: s.ID(), entity: s})
		s.proxy.Destroy()
		s.Subscriber.Destroy()
	})
}

// observedBy registers m as an observer and reports whether it was not one before.
func (s *Subscriber) observedBy(m *Manager) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.observers[m]; ok {
		return false
	}

	s.observers[m] = struct{}{}

	return true
}
