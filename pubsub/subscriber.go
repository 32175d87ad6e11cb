package pubsub

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// SubscriptionRecorder records a freshly created Subscription before it is attached to its Source.
type SubscriptionRecorder interface {
	RecordSubscription(subscriptionID, notification string) error
}

// SubscriberOption defines a functional option for configuring a Subscriber.
type SubscriberOption func(*Subscriber) error

// WithSubscriptionRecorder routes the recording step of Subscribe through recorder.
// This lets a type embedding the Subscriber observe every new Subscription.
func WithSubscriptionRecorder(recorder SubscriptionRecorder) SubscriberOption {
	return func(s *Subscriber) error {
		if recorder == nil {
			return ErrNilSubscriptionRecorder
		}

		s.recorder = recorder

		return nil
	}
}

// Subscriber owns Subscriptions to notifications of one or more Sources.
type Subscriber struct {
	id       string
	recorder SubscriptionRecorder

	mu             sync.RWMutex
	subscriptions  map[string]*Subscription
	order          []string
	byNotification map[string][]string
	destroyed      bool
}

func NewSubscriber(id string, options ...SubscriberOption) (*Subscriber, error) {
	s := &Subscriber{
		id:             id,
		subscriptions:  make(map[string]*Subscription),
		byNotification: make(map[string][]string),
	}
	s.recorder = s

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Subscriber) ID() string {
	return s.id
}

// Subscribe creates a Subscription of handler to notification published by source.
// The Subscription is recorded first and attached to source afterward.
func (s *Subscriber) Subscribe(source Source, notification string, handler Handler) (*Subscription, error) {
	if source == nil {
		return nil, ErrNilSource
	}

	if handler == nil {
		return nil, ErrNilHandler
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Join(ErrGeneratingSubscriptionIDFailed, err)
	}

	subscription := newSubscription(id.String(), source, s, notification, handler)

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return nil, ErrSubscriberDestroyed
	}

	s.subscriptions[subscription.ID()] = subscription
	s.order = append(s.order, subscription.ID())
	s.mu.Unlock()

	if err = s.recorder.RecordSubscription(subscription.ID(), notification); err != nil {
		s.forget(subscription.ID())
		return nil, err
	}

	if err = source.Attach(subscription); err != nil {
		s.forget(subscription.ID())
		return nil, err
	}

	return subscription, nil
}

// RecordSubscription indexes a created Subscription by its notification.
func (s *Subscriber) RecordSubscription(subscriptionID, notification string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscription, ok := s.subscriptions[subscriptionID]
	if !ok || subscription.Notification() != notification {
		return ErrSubscriptionNotFound
	}

	s.byNotification[notification] = append(s.byNotification[notification], subscriptionID)

	return nil
}

func (s *Subscriber) FindSubscriptionByID(subscriptionID string) (*Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscription, ok := s.subscriptions[subscriptionID]

	return subscription, ok
}

// Subscriptions returns the live Subscriptions in creation order.
func (s *Subscriber) Subscriptions() []*Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscriptions := make([]*Subscription, 0, len(s.order))
	for _, id := range s.order {
		subscriptions = append(subscriptions, s.subscriptions[id])
	}

	return subscriptions
}

// SubscriptionsFor returns the live Subscriptions for notification in creation order.
func (s *Subscriber) SubscriptionsFor(notification string) []*Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byNotification[notification]
	subscriptions := make([]*Subscription, 0, len(ids))
	for _, id := range ids {
		subscriptions = append(subscriptions, s.subscriptions[id])
	}

	return subscriptions
}

// Unsubscribe detaches and forgets the Subscription with subscriptionID.
// Returns false if the Subscriber does not own such a Subscription.
func (s *Subscriber) Unsubscribe(subscriptionID string) bool {
	subscription, ok := s.FindSubscriptionByID(subscriptionID)
	if !ok {
		return false
	}

	subscription.source.Detach(subscriptionID)
	s.forget(subscriptionID)

	return true
}

// Destroy detaches all Subscriptions. Calling Destroy more than once has no effect.
func (s *Subscriber) Destroy() {
	s.mu.Lock()

	if s.destroyed {
		s.mu.Unlock()
		return
	}

	s.destroyed = true
	subscriptions := make([]*Subscription, 0, len(s.order))
	for _, id := range s.order {
		subscriptions = append(subscriptions, s.subscriptions[id])
	}

	s.subscriptions = make(map[string]*Subscription)
	s.byNotification = make(map[string][]string)
	s.order = nil

	s.mu.Unlock()

	for _, subscription := range subscriptions {
		subscription.source.Detach(subscription.ID())
	}
}

func (s *Subscriber) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.destroyed
}

func (s *Subscriber) forget(subscriptionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscription, ok := s.subscriptions[subscriptionID]
	if !ok {
		return
	}

	delete(s.subscriptions, subscriptionID)
	s.order = removeID(s.order, subscriptionID)

	notification := subscription.Notification()
	s.byNotification[notification] = removeID(s.byNotification[notification], subscriptionID)
	if len(s.byNotification[notification]) == 0 {
		delete(s.byNotification, notification)
	}
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}

	return ids
}
