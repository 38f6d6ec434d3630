package cachestore

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Cache is the capability surface every store variant exposes to its
// collaborators. Typed access is provided by Resolve, Lookup and Update.
type Cache[K comparable] interface {
	// Get returns the stored value without a type check.
	Get(key K) (any, bool)

	// Set replaces the value under key and notifies subscribers once.
	Set(key K, value any)

	// Modify atomically replaces the value under key with fn(current, ok)
	// and notifies subscribers once. No listener runs between the read
	// and the write. fn must not call back into the cache.
	Modify(key K, fn func(current any, ok bool) any)

	// Remove deletes the value under key. Subscribers are notified once if
	// a value was present.
	Remove(key K)

	// Keys returns the keys that currently hold a value, in no particular order.
	Keys() []K

	// Subscribe registers l for change notifications and returns a function
	// that removes it. The returned function is safe to call more than once.
	Subscribe(l Listener[K]) (unsubscribe func())

	// Disposed reports whether the cache has been torn down.
	Disposed() bool
}

// KeyedCache is the primary store: it owns a mapping from keys to boxed
// values and notifies subscribers after each mutation.
type KeyedCache[K comparable] struct {
	id     uint64
	name   string
	logger *slog.Logger

	// values is the current mapping.
	values map[K]Box

	// mu protects values.
	mu sync.RWMutex

	subs     listeners[K]
	disposed atomic.Bool
}

// New creates a cache pre-populated with initial. The map is copied.
func New[K comparable](initial map[K]any, opts ...Option) *KeyedCache[K] {
	return newKeyedCache(initial, buildOptions(opts), "cache")
}

func newKeyedCache[K comparable](initial map[K]any, o options, kind string) *KeyedCache[K] {
	c := &KeyedCache[K]{
		id:     nextID(),
		name:   o.name,
		values: make(map[K]Box, len(initial)),
	}
	if c.name == "" {
		c.name = fmt.Sprintf("%s-%d", kind, c.id)
	}
	c.logger = o.logger.With("store", c.name)
	for k, v := range initial {
		c.values[k] = NewBox(v)
	}
	return c
}

// ID returns the unique identifier of this cache.
func (c *KeyedCache[K]) ID() uint64 {
	return c.id
}

// Name returns the name used in logs and metrics.
func (c *KeyedCache[K]) Name() string {
	return c.name
}

// Get returns the stored value and whether one is present.
func (c *KeyedCache[K]) Get(key K) (any, bool) {
	c.mu.RLock()
	b, ok := c.values[key]
	c.mu.RUnlock()
	return b.Value(), ok
}

// GetBox returns the stored value with its dynamic type.
func (c *KeyedCache[K]) GetBox(key K) (Box, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.values[key]
	return b, ok
}

// Set replaces the value under key. Subscribers are notified even when the
// new value equals the old one.
func (c *KeyedCache[K]) Set(key K, value any) {
	if c.disposed.Load() {
		logAbsorbed(c.logger, "CS003", "key", key)
		return
	}

	c.mu.Lock()
	c.values[key] = NewBox(value)
	c.mu.Unlock()

	c.subs.notify(key)
}

// Modify replaces the value under key with fn(current, ok) while holding the
// write lock. If fn panics the value is left unchanged and nobody is notified.
func (c *KeyedCache[K]) Modify(key K, fn func(current any, ok bool) any) {
	if c.disposed.Load() {
		logAbsorbed(c.logger, "CS003", "key", key)
		return
	}

	c.modify(key, fn)
	c.subs.notify(key)
}

func (c *KeyedCache[K]) modify(key K, fn func(current any, ok bool) any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.values[key]
	c.values[key] = NewBox(fn(current.Value(), ok))
}

// Remove deletes the value under key.
func (c *KeyedCache[K]) Remove(key K) {
	if c.disposed.Load() {
		logAbsorbed(c.logger, "CS003", "key", key)
		return
	}

	c.mu.Lock()
	_, ok := c.values[key]
	delete(c.values, key)
	c.mu.Unlock()

	if ok {
		c.subs.notify(key)
	}
}

// Keys returns the keys that currently hold a value.
func (c *KeyedCache[K]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of stored values.
func (c *KeyedCache[K]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Subscribe registers l for change notifications.
// Subscribing to a disposed cache returns a no-op unsubscribe.
func (c *KeyedCache[K]) Subscribe(l Listener[K]) func() {
	if c.disposed.Load() {
		return func() {}
	}
	return subscribe(&c.subs, l, nil)
}

// Dispose tears the cache down. Subscribers are dropped and later writes are
// ignored. Reads keep returning the last values. Safe to call more than once.
func (c *KeyedCache[K]) Dispose() {
	if c.disposed.Swap(true) {
		return
	}
	c.subs.clear()
	c.logger.Debug("cachestore: disposed")
}

// Disposed reports whether Dispose has been called.
func (c *KeyedCache[K]) Disposed() bool {
	return c.disposed.Load()
}

// Snapshot copies the current contents of any cache.
func Snapshot[K comparable](c Cache[K]) map[K]any {
	keys := c.Keys()
	out := make(map[K]any, len(keys))
	for _, k := range keys {
		if v, ok := c.Get(k); ok {
			out[k] = v
		}
	}
	return out
}
