// Package event provides the in-process publish/subscribe bus that
// connects the game systems to each other and to the presentation
// layer. Emission is synchronous and re-entrant: a handler may publish
// further events, and those are processed to completion before the
// outer Publish returns. The bus is owned by a session, not a global.
package event

import "slices"

// Handler receives the positional arguments the publisher passed.
type Handler func(args ...any)

type subscription struct {
	id int
	fn Handler
}

// Bus is a named-channel publish/subscribe mechanism.
// It is not safe for concurrent use; the game logic is single-threaded
// by design and all emission happens on the session's turn.
type Bus struct {
	subs   map[Topic][]subscription
	nextID int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers a handler for a topic and returns a function
// that removes it. Handlers run in subscription order.
func (b *Bus) Subscribe(topic Topic, fn Handler) func() {
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	return func() { b.remove(topic, id) }
}

// Once registers a handler that unsubscribes itself after the first
// invocation.
func (b *Bus) Once(topic Topic, fn Handler) func() {
	var cancel func()
	cancel = b.Subscribe(topic, func(args ...any) {
		cancel()
		fn(args...)
	})
	return cancel
}

// Publish invokes every handler subscribed to the topic, in order.
// The subscriber list is copied before iteration so handlers may
// subscribe or unsubscribe (including themselves) during emission.
func (b *Bus) Publish(topic Topic, args ...any) {
	list := b.subs[topic]
	if len(list) == 0 {
		return
	}
	for _, sub := range slices.Clone(list) {
		sub.fn(args...)
	}
}

// Clear drops every subscription. Used on session teardown.
func (b *Bus) Clear() {
	b.subs = make(map[Topic][]subscription)
}

func (b *Bus) remove(topic Topic, id int) {
	list := b.subs[topic]
	for i, sub := range list {
		if sub.id == id {
			b.subs[topic] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}
