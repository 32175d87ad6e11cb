package pubsubmanager

import (
	"sync"

	"github.com/AntonStoeckl/pubsub-timeline-go/pubsub"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

// Publisher is a pubsub.Publisher that announces its publications and its destruction
// on a private meta channel observed by the Managers it is recorded with.
type Publisher struct {
	*pubsub.Publisher

	meta          *pubsub.Publisher
	captureTraces bool

	mu        sync.Mutex
	observers map[*Manager]struct{}

	destroyOnce sync.Once
}

func newPublisher(id string, captureTraces bool) *Publisher {
	return &Publisher{
		Publisher:     pubsub.NewPublisher(id),
		meta:          pubsub.NewPublisher(id + metaIDSuffix),
		captureTraces: captureTraces,
		observers:     make(map[*Manager]struct{}),
	}
}

// NewPublisher creates a Publisher recorded with the default Manager.
func NewPublisher(id string) *Publisher {
	return Default().NewPublisher(id)
}

// Publish announces the publication on the meta channel, then delivers it to the guest subscribers.
// The first error of a guest handler is returned unchanged.
func (p *Publisher) Publish(notification string, payload any) error {
	var trace *timeline.Trace
	if p.captureTraces {
		trace = timeline.CaptureTrace(1)
	}

	err := p.meta.Publish(metaPublish, PublishEvent{
		PublisherID:  p.ID(),
		Notification: notification,
		Payload:      payload,
		Trace:        trace,
	})
	if err != nil {
		return err
	}

	return p.Publisher.Publish(notification, payload)
}

// Destroy notifies the guest subscribers with DestroyNotification, announces the destruction
// and releases all subscriptions. Only the first call has an effect.
// A guest handler error does not stop the teardown and is returned afterward.
// A guest handler panic propagates after the teardown completed.
func (p *Publisher) Destroy() error {
	var guestErr error

	p.destroyOnce.Do(func() {
		defer func() {
			_ = p.meta.Publish(metaDestroy, DestroyEvent{ID: p.ID(), entity: p})
			p.meta.Destroy()
			p.Publisher.Destroy()
		}()

		guestErr = p.Publish(DestroyNotification, nil)
	})

	return guestErr
}

// observedBy registers m as an observer and reports whether it was not one before.
func (p *Publisher) observedBy(m *Manager) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.observers[m]; ok {
		return false
	}

	p.observers[m] = struct{}{}

	return true
}
