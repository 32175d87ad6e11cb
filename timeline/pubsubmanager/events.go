package pubsubmanager

import (
	"github.com/AntonStoeckl/pubsub-timeline-go/pubsub"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

// DestroyNotification is published to guest subscribers when an instrumented Publisher is destroyed.
// It is never recorded as a publication.
const DestroyNotification = "destroy"

// ProxyIDSuffix is appended to a subscriber id to form the id of its private proxy publisher.
const ProxyIDSuffix = "-publisher-proxy"

const metaIDSuffix = "-meta"

// notifications of the private meta channels
const (
	metaPublish   = "publish"
	metaSubscribe = "subscribe"
	metaDestroy   = "destroy"
)

// PublishEvent announces a publication before it is delivered to guest subscribers.
type PublishEvent struct {
	PublisherID  string
	Notification string
	Payload      any
	Trace        *timeline.Trace
}

// SubscribeEvent announces a recorded Subscription before it is attached to its publisher.
type SubscribeEvent struct {
	Subscription *pubsub.Subscription
	Notification string
}

// DestroyEvent announces the destruction of an instrumented entity.
type DestroyEvent struct {
	ID string

	entity any
}
