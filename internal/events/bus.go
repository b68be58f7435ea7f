// Package events implements a minimal synchronous publish/subscribe bus
// used to fan simulation events (link formed, packet relayed, agent
// arrived) out to whatever is watching — the TUI, the websocket sink, a
// test assertion — without the engine knowing who's listening.
package events

import (
	"sort"
	"sync"
)

// Event is one simulation occurrence. Detail is small and JSON-friendly
// so sinks can forward it verbatim.
type Event struct {
	Topic  string
	Detail map[string]any
}

// Handler receives events published to a topic it subscribed to.
type Handler func(Event)

type subscription struct {
	id int
	h  Handler
}

// Bus is a synchronous topic-keyed publish/subscribe broadcaster.
// Publish calls every subscribed handler inline, in subscription order;
// it does not buffer or reorder, so handlers that need to stay cheap
// should hand off to their own queue.
type Bus struct {
	mu          sync.Mutex
	subscribers map[string][]subscription
	nextID      int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[string][]subscription)}
}

// Subscribe registers h to receive every event published to topic.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[topic] = append(b.subscribers[topic], subscription{id: id, h: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subscribers[topic]
		for i, s := range subs {
			if s.id == id {
				b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish broadcasts an event to every handler subscribed to topic, and
// to every handler subscribed to the wildcard "*" topic.
func (b *Bus) Publish(topic string, detail map[string]any) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.subscribers[topic]...)
	subs = append(subs, b.subscribers["*"]...)
	b.mu.Unlock()
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].id < subs[j].id })

	evt := Event{Topic: topic, Detail: detail}
	for _, s := range subs {
		s.h(evt)
	}
}
