// Package eventbus is an in-process pub/sub implementation of
// domain.EventBus. The engine and invalidator take the bus at construction
// time, so tests can inject their own and nothing reaches for a global.
package eventbus

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"roomrate/internal/domain"
)

const subscriberBuffer = 64

type subscriber struct {
	topics    map[string]bool
	ch        chan domain.Event
	closeOnce sync.Once
}

// close is idempotent; both unsubscribe and Bus.Close route through it so
// the channel is closed exactly once regardless of ordering.
func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

func New() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Publish delivers e to every subscriber of its topic. Delivery is
// non-blocking: a subscriber that stopped draining its channel loses
// events (logged) rather than stalling publishers on the request path.
func (b *Bus) Publish(ctx context.Context, e domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if !s.topics[e.Topic] {
			continue
		}
		select {
		case s.ch <- e:
		default:
			log.Warn().Str("topic", e.Topic).Msg("event dropped, subscriber not draining")
		}
	}
}

// Subscribe registers interest in the given topics and returns the event
// channel plus an unsubscribe function. Unsubscribing closes the channel.
func (b *Bus) Subscribe(topics ...string) (<-chan domain.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &subscriber{
		topics: make(map[string]bool, len(topics)),
		ch:     make(chan domain.Event, subscriberBuffer),
	}
	for _, t := range topics {
		s.topics[t] = true
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = s

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		s.close()
	}
	return s.ch, unsubscribe
}

// Close drops all subscribers; further publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		s.close()
	}
}
