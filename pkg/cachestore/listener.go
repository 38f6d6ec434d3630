package cachestore

import "sync"

// Listener is notified after a mutation of the cache it subscribed to.
// The key is the changed key in the subscribed cache's own key space.
type Listener[K comparable] interface {
	Changed(key K)
}

// ListenerFunc adapts a plain function to a Listener.
type ListenerFunc[K comparable] func(key K)

// Changed calls f(key).
func (f ListenerFunc[K]) Changed(key K) {
	f(key)
}

type subscription[K comparable] struct {
	id uint64
	l  Listener[K]
}

// listeners provides subscriber management shared by every cache variant.
type listeners[K comparable] struct {
	// subs are kept in subscription order.
	subs []subscription[K]

	// mu protects the subs slice.
	mu sync.RWMutex
}

// add registers l and returns its subscription ID.
func (s *listeners[K]) add(l Listener[K]) uint64 {
	id := nextID()

	s.mu.Lock()
	s.subs = append(s.subs, subscription[K]{id: id, l: l})
	s.mu.Unlock()

	return id
}

// remove drops the subscription with the given ID.
// Returns the number of remaining subscribers.
func (s *listeners[K]) remove(id uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	return len(s.subs)
}

func (s *listeners[K]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *listeners[K]) clear() {
	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}

// notify tells every subscriber that key changed.
// Uses copy-before-notify so listeners may subscribe or unsubscribe while
// being notified.
func (s *listeners[K]) notify(key K) {
	s.mu.RLock()
	subs := make([]subscription[K], len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.l.Changed(key)
	}
}

// subscribe wires l into s and returns an idempotent unsubscribe function.
// onEmpty runs when the last subscriber leaves.
func subscribe[K comparable](s *listeners[K], l Listener[K], onEmpty func()) func() {
	if l == nil {
		return func() {}
	}
	id := s.add(l)

	var once sync.Once
	return func() {
		once.Do(func() {
			if s.remove(id) == 0 && onEmpty != nil {
				onEmpty()
			}
		})
	}
}
