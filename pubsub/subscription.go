package pubsub

import (
	"sync"
)

// Handler processes the payload of a delivered notification.
type Handler func(payload any) error

// Decorator wraps a Handler with additional behavior.
type Decorator func(next Handler) Handler

// Subscription binds one handler chain of a Subscriber to one notification of a Source.
type Subscription struct {
	id           string
	publisherID  string
	subscriberID string
	notification string
	source       Source
	owner        *Subscriber

	mu       sync.RWMutex
	original Handler
	handler  Handler
	active   bool
}

func newSubscription(
	id string,
	source Source,
	owner *Subscriber,
	notification string,
	handler Handler,
) *Subscription {

	return &Subscription{
		id:           id,
		publisherID:  source.ID(),
		subscriberID: owner.ID(),
		notification: notification,
		source:       source,
		owner:        owner,
		original:     handler,
		handler:      handler,
	}
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) PublisherID() string {
	return s.publisherID
}

func (s *Subscription) SubscriberID() string {
	return s.subscriberID
}

func (s *Subscription) Notification() string {
	return s.notification
}

// Original returns the handler the Subscription was created with, without any decorators.
func (s *Subscription) Original() Handler {
	return s.original
}

// Decorate wraps the current handler chain with d.
// Decorating is only possible before the Subscription is attached to its Source.
func (s *Subscription) Decorate(d Decorator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return ErrSubscriptionActive
	}

	s.handler = d(s.handler)

	return nil
}

// Deliver runs the handler chain with payload and returns its error unchanged.
func (s *Subscription) Deliver(payload any) error {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	return handler(payload)
}

// Active reports whether the Subscription is attached to its Source.
func (s *Subscription) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.active
}

func (s *Subscription) activate() {
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
}

func (s *Subscription) deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}
