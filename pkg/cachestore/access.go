package cachestore

import "reflect"

// Resolve returns the value under key as a T.
//
// Resolve is meant for keys whose presence is guaranteed by construction-time
// defaults. It panics with a *KeyError wrapping ErrMissingKey when the key has
// no value, and ErrTypeMismatch when the value is not a T.
func Resolve[T any, K comparable](c Cache[K], key K) T {
	v, ok := c.Get(key)
	if !ok {
		panic(missingKey(key, typeOf[T]()))
	}
	t, ok := as[T](v)
	if !ok {
		panic(typeMismatch(key, typeOf[T](), reflect.TypeOf(v)))
	}
	return t
}

// Lookup returns the value under key as a T. ok is false when the key has no
// value or the value is not a T.
func Lookup[T any, K comparable](c Cache[K], key K) (value T, ok bool) {
	v, present := c.Get(key)
	if !present {
		return value, false
	}
	return as[T](v)
}

// Update applies fn to the value under key and writes the result back,
// notifying subscribers once. When the key has no value fn receives the zero
// T. Update panics with a *KeyError wrapping ErrTypeMismatch when the stored
// value is not a T; in that case nothing is written.
//
//	cachestore.Update(c, Count, func(n *int) { *n++ })
func Update[T any, K comparable](c Cache[K], key K, fn func(value *T)) {
	c.Modify(key, func(current any, ok bool) any {
		var v T
		if ok {
			t, matched := as[T](current)
			if !matched {
				panic(typeMismatch(key, typeOf[T](), reflect.TypeOf(current)))
			}
			v = t
		}
		fn(&v)
		return v
	})
}

// Binding is a two-way accessor for one key, built from Resolve and Set.
type Binding[T any] struct {
	get func() T
	set func(T)
}

// Bind returns a Binding of key in c. The key must always hold a T.
func Bind[T any, K comparable](c Cache[K], key K) Binding[T] {
	return Binding[T]{
		get: func() T { return Resolve[T](c, key) },
		set: func(v T) { c.Set(key, v) },
	}
}

// Get reads the bound value.
func (b Binding[T]) Get() T {
	return b.get()
}

// Set writes the bound value.
func (b Binding[T]) Set(v T) {
	b.set(v)
}
