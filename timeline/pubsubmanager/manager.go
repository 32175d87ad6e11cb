package pubsubmanager

import (
	"sync"
	"time"

	"github.com/AntonStoeckl/pubsub-timeline-go/pubsub"
	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

const defaultManagerID = "pubsub-manager"
const defaultSinkTimeout = 2 * time.Second

// Manager keeps the live registries of instrumented publishers and subscribers
// and records their activity into its HistoryLog.
type Manager struct {
	id      string
	history *timeline.HistoryLog
	proxy   *pubsub.Subscriber

	mu          sync.RWMutex
	publishers  map[string]*Publisher
	subscribers map[string]*Subscriber

	logger           timeline.Logger
	metricsCollector timeline.MetricsCollector
	sink             timeline.Sink
	sinkTimeout      time.Duration
	clock            func() time.Time
	captureTraces    bool
}

func NewManager(options ...Option) (*Manager, error) {
	m := &Manager{
		id:            defaultManagerID,
		publishers:    make(map[string]*Publisher),
		subscribers:   make(map[string]*Subscriber),
		sinkTimeout:   defaultSinkTimeout,
		clock:         time.Now,
		captureTraces: true,
	}

	for _, option := range options {
		if err := option(m); err != nil {
			return nil, err
		}
	}

	proxy, err := pubsub.NewSubscriber(m.id)
	if err != nil {
		return nil, err
	}

	m.proxy = proxy
	m.history = timeline.NewHistoryLog(timeline.WithClock(m.clock))

	return m, nil
}

func (m *Manager) ID() string {
	return m.id
}

// NewPublisher creates an instrumented Publisher recorded with m.
func (m *Manager) NewPublisher(id string) *Publisher {
	p := newPublisher(id, m.captureTraces)
	m.RecordPublisher(p)

	return p
}

// NewSubscriber creates an instrumented Subscriber recorded with m.
func (m *Manager) NewSubscriber(id string) (*Subscriber, error) {
	s, err := newSubscriber(id)
	if err != nil {
		return nil, err
	}

	m.RecordSubscribers(s)

	return s, nil
}

// RecordPublisher puts p into the live registry, replacing any publisher with the same id,
// starts observing its publications and destruction, and appends publisher_recorded.
// Recording the same Publisher twice appends a second entry but observes it only once.
func (m *Manager) RecordPublisher(p *Publisher) {
	m.mu.Lock()
	m.publishers[p.ID()] = p
	livePublishers := len(m.publishers)
	m.mu.Unlock()

	if p.observedBy(m) {
		m.observe(p.meta, metaPublish, m.onPublish)
		m.observe(p.meta, metaDestroy, m.onPublisherDestroy)
	}

	m.append(
		p.ID(),
		timeline.KindPublisherRecorded,
		msgPublisherRecorded(p.ID()),
		timeline.Payload{PublisherID: p.ID(), Trace: m.captureTrace(1)},
	)
	m.recordLiveEntities(metricLivePublishers, livePublishers)
}

// RecordSubscribers puts s into the live registry, replacing any subscriber with the same id,
// appends subscriber_recorded, and starts observing its subscriptions and destruction.
func (m *Manager) RecordSubscribers(s *Subscriber) {
	m.mu.Lock()
	m.subscribers[s.ID()] = s
	liveSubscribers := len(m.subscribers)
	m.mu.Unlock()

	m.append(
		s.ID(),
		timeline.KindSubscriberRecorded,
		msgSubscriberRecorded(s.ID()),
		timeline.Payload{SubscriberID: s.ID(), Trace: m.captureTrace(1)},
	)
	m.recordLiveEntities(metricLiveSubscribers, liveSubscribers)

	if s.observedBy(m) {
		m.observe(s.proxy, metaSubscribe, m.onSubscribe)
		m.observe(s.proxy, metaDestroy, m.onSubscriberDestroy)
	}
}

// GetHistory returns a copy of the global history.
func (m *Manager) GetHistory() []timeline.Entry {
	return m.history.All()
}

// GetHistoryFor returns a copy of the history filed under id, empty for unknown ids.
func (m *Manager) GetHistoryFor(id string) []timeline.Entry {
	return m.history.For(id)
}

// QueryHistory returns the entries of the global history matching filter.
func (m *Manager) QueryHistory(filter timeline.Filter) []timeline.Entry {
	return m.history.Query(filter)
}

// History exposes the underlying HistoryLog for read access.
func (m *Manager) History() *timeline.HistoryLog {
	return m.history
}

func (m *Manager) Publisher(id string) (*Publisher, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.publishers[id]

	return p, ok
}

func (m *Manager) Subscriber(id string) (*Subscriber, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subscribers[id]

	return s, ok
}

func (m *Manager) LivePublisherIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedKeys(m.publishers)
}

func (m *Manager) LiveSubscriberIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return sortedKeys(m.subscribers)
}

func (m *Manager) observe(source pubsub.Source, notification string, handler pubsub.Handler) {
	if _, err := m.proxy.Subscribe(source, notification, handler); err != nil {
		m.logWarn(logMsgObserveFailed, logAttrSource, source.ID(), logAttrNotification, notification, logAttrError, err.Error())
	}
}

func (m *Manager) onPublish(payload any) error {
	if event, ok := payload.(PublishEvent); ok {
		m.beforePublish(event)
	}

	return nil
}

func (m *Manager) onSubscribe(payload any) error {
	if event, ok := payload.(SubscribeEvent); ok {
		m.decorateSubscription(event)
	}

	return nil
}

func (m *Manager) onPublisherDestroy(payload any) error {
	if event, ok := payload.(DestroyEvent); ok {
		p, _ := event.entity.(*Publisher)
		m.removePublisher(event.ID, p)
	}

	return nil
}

func (m *Manager) onSubscriberDestroy(payload any) error {
	if event, ok := payload.(DestroyEvent); ok {
		s, _ := event.entity.(*Subscriber)
		m.removeSubscriber(event.ID, s)
	}

	return nil
}

// beforePublish records a publication, except for the destroy notification.
func (m *Manager) beforePublish(event PublishEvent) {
	if event.Notification == DestroyNotification {
		return
	}

	m.append(
		event.PublisherID,
		timeline.KindPublication,
		msgPublication(event.PublisherID, event.Notification),
		timeline.Payload{
			PublisherID:  event.PublisherID,
			Notification: event.Notification,
			Data:         event.Payload,
			Trace:        event.Trace,
		},
	)
}

// decorateSubscription wraps the handler chain of a new Subscription so that every delivery
// is recorded before the handler runs and every failure after it returned.
func (m *Manager) decorateSubscription(event SubscribeEvent) {
	subscription := event.Subscription

	if err := subscription.Decorate(m.observeDelivery(subscription)); err != nil {
		m.logWarn(
			logMsgObserveFailed,
			logAttrSubscriptionID, subscription.ID(),
			logAttrNotification, event.Notification,
			logAttrError, err.Error(),
		)
	}
}

func (m *Manager) observeDelivery(subscription *pubsub.Subscription) pubsub.Decorator {
	return func(next pubsub.Handler) pubsub.Handler {
		return func(data any) (err error) {
			payload := timeline.Payload{
				PublisherID:    subscription.PublisherID(),
				SubscriberID:   subscription.SubscriberID(),
				SubscriptionID: subscription.ID(),
				Notification:   subscription.Notification(),
				Data:           data,
				Trace:          m.captureTrace(1),
			}

			m.append(
				payload.SubscriberID,
				timeline.KindNotificationReceived,
				msgNotificationReceived(payload.SubscriberID, payload.Notification, payload.PublisherID),
				payload,
			)

			start := time.Now()

			defer func() {
				if r := recover(); r != nil {
					m.recordHandlerDuration(payload.Notification, statusPanic, time.Since(start))
					m.recordSubscriberError(payload, HandlerPanicError{Value: r})
					panic(r)
				}
			}()

			err = next(data)

			if err != nil {
				m.recordHandlerDuration(payload.Notification, statusError, time.Since(start))
				m.recordSubscriberError(payload, err)

				return err
			}

			m.recordHandlerDuration(payload.Notification, statusSuccess, time.Since(start))

			return nil
		}
	}
}

func (m *Manager) recordSubscriberError(payload timeline.Payload, err error) {
	payload.Err = err

	m.append(
		payload.SubscriberID,
		timeline.KindSubscriberError,
		msgSubscriberError(payload.SubscriberID, payload.Notification, payload.PublisherID),
		payload,
	)

	m.logWarn(
		logMsgSubscriberFailed,
		logAttrSubscriberID, payload.SubscriberID,
		logAttrPublisherID, payload.PublisherID,
		logAttrNotification, payload.Notification,
		logAttrError, err.Error(),
	)
	m.recordSubscriberErrorMetrics(payload.Notification)
}

// removePublisher drops p from the live registry unless another publisher took over its id.
// The removal is recorded either way and the history is kept.
func (m *Manager) removePublisher(id string, p *Publisher) {
	m.mu.Lock()
	if m.publishers[id] == p {
		delete(m.publishers, id)
	}
	livePublishers := len(m.publishers)
	m.mu.Unlock()

	m.append(id, timeline.KindPublisherRemoved, msgPublisherRemoved(id), timeline.Payload{PublisherID: id})
	m.recordLiveEntities(metricLivePublishers, livePublishers)
}

// removeSubscriber drops s from the live registry unless another subscriber took over its id.
// The removal is recorded either way and the history is kept.
func (m *Manager) removeSubscriber(id string, s *Subscriber) {
	m.mu.Lock()
	if m.subscribers[id] == s {
		delete(m.subscribers, id)
	}
	liveSubscribers := len(m.subscribers)
	m.mu.Unlock()

	m.append(id, timeline.KindSubscriberRemoved, msgSubscriberRemoved(id), timeline.Payload{SubscriberID: id})
	m.recordLiveEntities(metricLiveSubscribers, liveSubscribers)
}

func (m *Manager) append(subject string, kind timeline.Kind, message string, payload timeline.Payload) {
	entry := m.history.Append(subject, kind, message, payload)

	m.logEntry(entry)
	m.recordEntryMetrics(kind)
	m.export(entry)
}

func (m *Manager) captureTrace(skip int) *timeline.Trace {
	if !m.captureTraces {
		return nil
	}

	return timeline.CaptureTrace(skip + 1)
}
