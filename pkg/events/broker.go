package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	queueSize      = 100
	subscriberSize = 50
)

// Notification reports one event applied to (or rejected by) the store
type Notification struct {
	ID        string
	Type      EventType
	Key       string
	Rejected  bool
	Timestamp time.Time
	Message   string
}

// Subscriber is a channel that receives notifications
type Subscriber chan *Notification

// subscription holds the event types a subscriber asked for; nil means all
type subscription map[EventType]bool

func (s subscription) wants(t EventType) bool {
	return s == nil || s[t]
}

// Broker fans store notifications out to subscribers
type Broker struct {
	mu       sync.RWMutex
	subs     map[Subscriber]subscription
	queue    chan *Notification
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewBroker creates a new notification broker
func NewBroker() *Broker {
	return &Broker{
		subs:   make(map[Subscriber]subscription),
		queue:  make(chan *Notification, queueSize),
		stopCh: make(chan struct{}),
	}
}

// Start runs the delivery loop until Stop
func (b *Broker) Start() {
	go func() {
		for {
			select {
			case n := <-b.queue:
				b.deliver(n)
			case <-b.stopCh:
				return
			}
		}
	}()
}

// Stop ends delivery. It is safe to call more than once.
func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
}

// Subscribe returns a channel receiving notifications of the given event
// types, or of every type when none are given
func (b *Broker) Subscribe(types ...EventType) Subscriber {
	var filter subscription
	if len(types) > 0 {
		filter = make(subscription, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}

	sub := make(Subscriber, subscriberSize)
	b.mu.Lock()
	b.subs[sub] = filter
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription and closes its channel
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub)
	}
}

// Publish queues a notification. It never blocks the ingestion path:
// when the queue is full the notification is dropped.
func (b *Broker) Publish(n *Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	select {
	case b.queue <- n:
	case <-b.stopCh:
	default:
	}
}

// deliver hands n to every interested subscriber with room in its buffer
func (b *Broker) deliver(n *Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub, filter := range b.subs {
		if !filter.wants(n.Type) {
			continue
		}
		select {
		case sub <- n:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
