package pubsub

import (
	"sync"
)

// Source is the publishing side a Subscriber can subscribe to.
type Source interface {
	ID() string
	Attach(subscription *Subscription) error
	Detach(subscriptionID string) bool
}

// Publisher is a synchronous Source.
// Notifications are delivered on the caller's goroutine, in attach order.
type Publisher struct {
	id string

	mu            sync.RWMutex
	subscriptions map[string][]*Subscription // notification -> subscriptions
	destroyed     bool
}

func NewPublisher(id string) *Publisher {
	return &Publisher{
		id:            id,
		subscriptions: make(map[string][]*Subscription),
	}
}

func (p *Publisher) ID() string {
	return p.id
}

// Attach activates subscription and starts delivering its notification to it.
func (p *Publisher) Attach(subscription *Subscription) error {
	if subscription.PublisherID() != p.id {
		return ErrSubscriptionForeignPublisher
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPublisherDestroyed
	}

	notification := subscription.Notification()
	p.subscriptions[notification] = append(p.subscriptions[notification], subscription)
	subscription.activate()

	return nil
}

// Detach stops delivering to the Subscription with subscriptionID.
// Returns true if the Subscription was attached.
func (p *Publisher) Detach(subscriptionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for notification, subs := range p.subscriptions {
		for i, sub := range subs {
			if sub.ID() == subscriptionID {
				p.subscriptions[notification] = append(subs[:i:i], subs[i+1:]...)
				sub.deactivate()

				return true
			}
		}
	}

	return false
}

// Publish delivers payload to every Subscription attached for notification.
// Delivery stops at the first handler error, which is returned unchanged.
func (p *Publisher) Publish(notification string, payload any) error {
	p.mu.RLock()

	if p.destroyed {
		p.mu.RUnlock()
		return ErrPublisherDestroyed
	}

	subs := make([]*Subscription, len(p.subscriptions[notification]))
	copy(subs, p.subscriptions[notification])

	p.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Deliver(payload); err != nil {
			return err
		}
	}

	return nil
}

// Destroy detaches all Subscriptions and makes their Subscribers forget them.
// Calling Destroy more than once has no effect.
func (p *Publisher) Destroy() {
	p.mu.Lock()

	if p.destroyed {
		p.mu.Unlock()
		return
	}

	p.destroyed = true
	subscriptions := p.subscriptions
	p.subscriptions = make(map[string][]*Subscription)

	p.mu.Unlock()

	for _, subs := range subscriptions {
		for _, sub := range subs {
			sub.deactivate()
			sub.owner.forget(sub.ID())
		}
	}
}

func (p *Publisher) Destroyed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.destroyed
}

// SubscriptionCount returns the number of attached Subscriptions.
func (p *Publisher) SubscriptionCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	count := 0
	for _, subs := range p.subscriptions {
		count += len(subs)
	}

	return count
}
