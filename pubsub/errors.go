package pubsub

import (
	"errors"
)

var ErrNilHandler = errors.New("nil handler supplied")
var ErrNilSource = errors.New("nil source supplied")
var ErrNilSubscriptionRecorder = errors.New("nil subscription recorder supplied")
var ErrPublisherDestroyed = errors.New("publisher is destroyed")
var ErrSubscriberDestroyed = errors.New("subscriber is destroyed")
var ErrSubscriptionNotFound = errors.New("subscription not found")
var ErrSubscriptionActive = errors.New("subscription is already active")
var ErrSubscriptionForeignPublisher = errors.New("subscription belongs to a different publisher")
var ErrGeneratingSubscriptionIDFailed = errors.New("generating subscription id failed")
