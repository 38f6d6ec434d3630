package cachestore

import (
	"errors"
	"sync"
	"testing"
)

type testKey string

const (
	Count        testKey = "count"
	Color        testKey = "color"
	ContentArray testKey = "contentArray"
	Title        testKey = "title"
)

// recorder collects notified keys.
type recorder[K comparable] struct {
	mu   sync.Mutex
	keys []K
}

func (r *recorder[K]) Changed(key K) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *recorder[K]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func (r *recorder[K]) last() K {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero K
	if len(r.keys) == 0 {
		return zero
	}
	return r.keys[len(r.keys)-1]
}

// mustPanicWith runs fn and returns the *KeyError it panics with.
func mustPanicWith(t *testing.T, target error, fn func()) *KeyError {
	t.Helper()

	var got *KeyError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				t.Fatalf("panic value %v is not an error", r)
			}
			if !errors.As(err, &got) {
				t.Fatalf("panic value %T is not a *KeyError", r)
			}
		}()
		fn()
	}()

	if got == nil {
		t.Fatal("expected panic, got none")
	}
	if !errors.Is(got, target) {
		t.Fatalf("expected %v, got %v", target, got.Err)
	}
	return got
}
