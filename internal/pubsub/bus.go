// Package pubsub is an in-process topic fan-out. Publishers never block: each
// subscriber owns a bounded buffer, and a value that does not fit is dropped
// for that subscriber only.
package pubsub

import (
	"context"
	"sync"
)

// DefaultBuffer is used when New is given a non-positive buffer size.
const DefaultBuffer = 16

type subscriber[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
	// stop detaches the ctx watcher; set under Bus.mu.
	stop func() bool
}

// send reports whether v was queued.
func (s *subscriber[T]) send(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- v:
		return true
	default:
		return false
	}
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Bus fans values out to the subscribers of a topic.
type Bus[T any] struct {
	mu     sync.RWMutex
	topics map[string][]*subscriber[T]
	buffer int
	closed bool
}

func New[T any](buffer int) *Bus[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus[T]{
		topics: make(map[string][]*subscriber[T]),
		buffer: buffer,
	}
}

// Subscribe registers interest in topic. The returned channel is closed when
// ctx is done or the bus is closed.
func (b *Bus[T]) Subscribe(ctx context.Context, topic string) <-chan T {
	sub := &subscriber[T]{ch: make(chan T, b.buffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub.ch
	}
	b.topics[topic] = append(b.topics[topic], sub)
	sub.stop = context.AfterFunc(ctx, func() { b.remove(topic, sub) })
	b.mu.Unlock()

	return sub.ch
}

func (b *Bus[T]) remove(topic string, sub *subscriber[T]) {
	b.mu.Lock()
	subs := b.topics[topic]
	for i, s := range subs {
		if s == sub {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(b.topics, topic)
	} else {
		b.topics[topic] = subs
	}
	b.mu.Unlock()

	sub.close()
}

// Publish delivers v to every current subscriber of topic. It returns how
// many accepted it and how many were subscribed, both from one snapshot.
func (b *Bus[T]) Publish(topic string, v T) (delivered, total int) {
	b.mu.RLock()
	subs := b.topics[topic]
	b.mu.RUnlock()

	for _, s := range subs {
		if s.send(v) {
			delivered++
		}
	}
	return delivered, len(subs)
}

// Subscribers returns the number of live subscribers on topic.
func (b *Bus[T]) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close terminates every subscription. Later Subscribe calls get a closed
// channel.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	topics := b.topics
	b.topics = make(map[string][]*subscriber[T])
	b.mu.Unlock()

	for _, subs := range topics {
		for _, s := range subs {
			s.stop()
			s.close()
		}
	}
}
