// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package session

import (
	"log/slog"
	"sync"
)

type subscriber struct {
	id uint64
	fn Listener
}

// Broadcaster delivers events to listeners synchronously, in the order they
// subscribed. Events are not buffered or replayed.
type Broadcaster struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscriber
	logger *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{logger: logger}
}

// Subscribe registers fn and returns a handle that removes it.
func (b *Broadcaster) Subscribe(fn Listener) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, fn: fn})
	return &Subscription{b: b, id: b.nextID}
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len reports the number of registered listeners.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Broadcast calls every listener registered at the time of the call.
// Listeners run outside the lock, so they may subscribe or unsubscribe.
func (b *Broadcaster) Broadcast(event Event) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		b.deliver(sub, event)
	}
}

func (b *Broadcaster) deliver(sub subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("session listener panicked",
				"listener", sub.id,
				"event_kind", string(event.Kind),
				"panic", r,
			)
		}
	}()
	sub.fn(event)
}

// Subscription is returned by Subscribe.
type Subscription struct {
	b    *Broadcaster
	id   uint64
	once sync.Once
}

// Unsubscribe stops delivery to the listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.b.remove(s.id) })
}
