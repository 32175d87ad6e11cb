// Package pubsub provides a small synchronous publish/subscribe engine.
//
// A Publisher delivers named notifications to the Subscriptions attached to it,
// in attach order, on the caller's goroutine. A Subscriber owns its Subscriptions
// and records them before they are attached, which gives decorators a window in
// which the handler chain of a new Subscription can still be extended.
//
// Common usage pattern:
//
//	publisher := pubsub.NewPublisher("p1")
//	subscriber, _ := pubsub.NewSubscriber("s1")
//
//	_, err := subscriber.Subscribe(publisher, "ping", func(payload any) error {
//		fmt.Println(payload)
//		return nil
//	})
//
//	err = publisher.Publish("ping", "hello")
package pubsub
