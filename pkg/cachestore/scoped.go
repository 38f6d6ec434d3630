package cachestore

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ScopedCache is a view of a parent cache through a Transform. It owns no
// primary state: reads and writes of mapped keys go to the parent, and
// child-only keys declared with WithLocal live in a local map the parent
// never sees.
//
// A scope holds a plain reference to its parent and is subscribed to it only
// while the scope itself has subscribers.
type ScopedCache[P, C comparable] struct {
	id     uint64
	name   string
	logger *slog.Logger

	parent    Cache[P]
	transform Transform[P, C]

	// local holds child-only values; declared lists the keys accepted locally.
	local    map[C]Box
	declared map[C]struct{}
	localMu  sync.RWMutex

	subs listeners[C]

	// upstream removes the parent subscription; nil while detached.
	upstream   func()
	upstreamMu sync.Mutex

	disposed atomic.Bool
}

// Scope derives a child view of parent through t. Use WithLocal to inject
// child-only values such as behaviours. It panics if a local key is also
// mapped by t.
func Scope[P, C comparable](parent Cache[P], t Transform[P, C], opts ...Option) *ScopedCache[P, C] {
	return newScopedCache(parent, t, buildOptions(opts))
}

func newScopedCache[P, C comparable](parent Cache[P], t Transform[P, C], o options) *ScopedCache[P, C] {
	s := &ScopedCache[P, C]{
		id:        nextID(),
		name:      o.name,
		parent:    parent,
		transform: t,
		local:     make(map[C]Box),
		declared:  make(map[C]struct{}),
	}
	if s.name == "" {
		s.name = fmt.Sprintf("scope-%d", s.id)
	}
	s.logger = o.logger.With("store", s.name)

	if defaults, ok := o.local.(map[C]any); ok {
		for k, v := range defaults {
			if p, mapped := t.Embed(k); mapped {
				panic(fmt.Sprintf("cachestore: local key %v is mapped to parent key %v", k, p))
			}
			s.local[k] = NewBox(v)
			s.declared[k] = struct{}{}
		}
	} else if o.local != nil {
		panic(fmt.Sprintf("cachestore: WithLocal keys are %T, scope keys are %s", o.local, typeOf[C]()))
	}
	return s
}

// ID returns the unique identifier of this scope.
func (s *ScopedCache[P, C]) ID() uint64 {
	return s.id
}

// Name returns the name used in logs and metrics.
func (s *ScopedCache[P, C]) Name() string {
	return s.name
}

// Parent returns the cache this scope views.
func (s *ScopedCache[P, C]) Parent() Cache[P] {
	return s.parent
}

// Transform returns the key transform of this scope.
func (s *ScopedCache[P, C]) Transform() Transform[P, C] {
	return s.transform
}

// Get reads a mapped key from the parent, otherwise from the local map.
func (s *ScopedCache[P, C]) Get(key C) (any, bool) {
	if p, ok := s.transform.Embed(key); ok {
		return s.parent.Get(p)
	}

	s.localMu.RLock()
	b, ok := s.local[key]
	s.localMu.RUnlock()
	return b.Value(), ok
}

// Set writes a mapped key to the parent. A declared local key is stored
// locally and only this scope's subscribers are notified. Any other key is
// ignored.
func (s *ScopedCache[P, C]) Set(key C, value any) {
	s.Modify(key, func(any, bool) any { return value })
}

// Modify routes like Set and applies fn atomically.
func (s *ScopedCache[P, C]) Modify(key C, fn func(current any, ok bool) any) {
	if s.Disposed() {
		logAbsorbed(s.logger, "CS003", "key", key)
		return
	}
	if p, ok := s.transform.Embed(key); ok {
		s.parent.Modify(p, fn)
		return
	}
	if !s.modifyLocal(key, fn) {
		logAbsorbed(s.logger, "CS010", "key", key)
		return
	}
	s.subs.notify(key)
}

func (s *ScopedCache[P, C]) modifyLocal(key C, fn func(current any, ok bool) any) bool {
	s.localMu.Lock()
	defer s.localMu.Unlock()

	if _, ok := s.declared[key]; !ok {
		return false
	}
	current, ok := s.local[key]
	s.local[key] = NewBox(fn(current.Value(), ok))
	return true
}

// Remove deletes a mapped key in the parent or a local value. A removed local
// key stays declared and can be set again.
func (s *ScopedCache[P, C]) Remove(key C) {
	if s.Disposed() {
		logAbsorbed(s.logger, "CS003", "key", key)
		return
	}
	if p, ok := s.transform.Embed(key); ok {
		s.parent.Remove(p)
		return
	}

	s.localMu.Lock()
	_, ok := s.local[key]
	delete(s.local, key)
	s.localMu.Unlock()

	if ok {
		s.subs.notify(key)
	}
}

// Keys returns the parent keys visible through the transform followed by the
// local keys holding a value.
func (s *ScopedCache[P, C]) Keys() []C {
	var keys []C
	for _, p := range s.parent.Keys() {
		if c, ok := s.transform.Project(p); ok {
			keys = append(keys, c)
		}
	}

	s.localMu.RLock()
	for k := range s.local {
		keys = append(keys, k)
	}
	s.localMu.RUnlock()

	return keys
}

// Subscribe registers l. It is notified for local writes and for parent
// changes whose key projects into this scope, never for anything else.
func (s *ScopedCache[P, C]) Subscribe(l Listener[C]) func() {
	if l == nil || s.Disposed() {
		return func() {}
	}

	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()

	unsubscribe := subscribe(&s.subs, l, s.detach)
	if s.upstream == nil {
		s.upstream = s.parent.Subscribe(ListenerFunc[P](s.forward))
	}
	return unsubscribe
}

// forward re-notifies this scope's subscribers about a relevant parent change.
func (s *ScopedCache[P, C]) forward(p P) {
	if c, ok := s.transform.Project(p); ok {
		s.subs.notify(c)
	}
}

// detach drops the parent subscription once nobody listens to the scope.
func (s *ScopedCache[P, C]) detach() {
	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()

	if s.upstream != nil && s.subs.len() == 0 {
		s.upstream()
		s.upstream = nil
	}
}

// Dispose detaches the scope from its parent and drops its subscribers.
// The parent is unaffected.
func (s *ScopedCache[P, C]) Dispose() {
	if s.disposed.Swap(true) {
		return
	}
	s.subs.clear()
	s.detach()
	s.logger.Debug("cachestore: disposed")
}

// Disposed reports whether this scope or its parent has been torn down.
func (s *ScopedCache[P, C]) Disposed() bool {
	return s.disposed.Load() || s.parent.Disposed()
}
