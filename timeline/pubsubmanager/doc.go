// Package pubsubmanager records the activity of instrumented publishers and subscribers
// into a timeline.HistoryLog.
//
// Instrumented entities are created through a Manager (or through the package-level
// constructors, which use the process-wide default Manager). Every entity owns a private
// meta channel on which it announces publications, new subscriptions and its destruction.
// The Manager observes these channels synchronously, so each recorded entry is in the
// history before the call that caused it returns.
//
// Common usage pattern:
//
//	manager, err := pubsubmanager.NewManager(pubsubmanager.WithLogger(logger))
//	if err != nil {
//		// handle error
//	}
//
//	publisher := manager.NewPublisher("p1")
//	subscriber, err := manager.NewSubscriber("s1")
//	if err != nil {
//		// handle error
//	}
//
//	_, err = subscriber.Subscribe(publisher, "ping", handler)
//	err = publisher.Publish("ping", "hello")
//
//	entries := manager.GetHistoryFor("s1")
package pubsubmanager
