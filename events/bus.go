package events

import (
	"log"
	"sync"
)

// Event is a payload published on a named topic.
type Event struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

// Subscription receives events for a fixed set of topics. Events published
// before Subscribe or after Unsubscribe are not delivered.
type Subscription struct {
	ch     chan Event
	topics []string
}

// Events returns the channel the subscription's events arrive on. The channel
// is closed when the subscription is cancelled or the bus shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Bus is an in-process topic-based publish/subscribe hub. Delivery is
// at-most-once and best-effort: a subscriber whose buffer is full misses the
// event. A Bus instance is handed to each coordinator at startup; there is no
// package-level default.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

const subscriptionBuffer = 64

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscribe registers interest in one or more topics.
func (b *Bus) Subscribe(topics ...string) *Subscription {
	sub := &Subscription{
		ch:     make(chan Event, subscriptionBuffer),
		topics: topics,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	for _, topic := range topics {
		set, ok := b.subs[topic]
		if !ok {
			set = make(map[*Subscription]struct{})
			b.subs[topic] = set
		}
		set[sub] = struct{}{}
	}
	return sub
}

// Unsubscribe removes the subscription from every topic and closes its
// channel. Safe to call once per subscription.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	removed := false
	for _, topic := range sub.topics {
		if set, ok := b.subs[topic]; ok {
			if _, member := set[sub]; member {
				delete(set, sub)
				removed = true
			}
			if len(set) == 0 {
				delete(b.subs, topic)
			}
		}
	}
	if removed {
		close(sub.ch)
	}
}

// Publish delivers the payload to every current subscriber of the topic.
// It never blocks: a full subscriber buffer drops the event.
func (b *Bus) Publish(topic string, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- Event{Topic: topic, Payload: payload}:
		default:
			log.Printf("events: dropped event on %s (subscriber buffer full)", topic)
		}
	}
}

// Close shuts the bus down and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	seen := make(map[*Subscription]struct{})
	for _, set := range b.subs {
		for sub := range set {
			if _, dup := seen[sub]; !dup {
				seen[sub] = struct{}{}
				close(sub.ch)
			}
		}
	}
	b.subs = nil
}
