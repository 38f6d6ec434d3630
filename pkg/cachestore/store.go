package cachestore

import (
	"context"
	"fmt"
)

// Store is a Cache that can dispatch actions of type A to a handler that
// receives a dependency of type D.
type Store[K comparable, A, D any] interface {
	Cache[K]

	// Dispatch runs the store's handler synchronously and returns its error.
	Dispatch(action A) error

	// DispatchContext is Dispatch with an explicit parent context for
	// middleware such as tracing.
	DispatchContext(ctx context.Context, action A) error

	// Dependency returns the value injected at construction.
	Dependency() D
}

// Handler applies an action to a store. s is the store the action was
// dispatched on, so a handler can read, write and dispatch again through it.
type Handler[K comparable, A, D any] interface {
	Handle(s Store[K, A, D], action A, dep D) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[K comparable, A, D any] func(s Store[K, A, D], action A, dep D) error

// Handle calls f(s, action, dep).
func (f HandlerFunc[K, A, D]) Handle(s Store[K, A, D], action A, dep D) error {
	return f(s, action, dep)
}

// ActionStore is a KeyedCache whose mutations are centralized in a single
// handler. Dispatch runs the handler to completion before returning; there
// is no queue, retry or coalescing.
type ActionStore[K comparable, A, D any] struct {
	*KeyedCache[K]

	handler  Handler[K, A, D]
	dep      D
	dispatch *dispatcher
}

// NewStore creates an action store with initial values, its handler and the
// dependency passed to every handler call. handler must not be nil.
func NewStore[K comparable, A, D any](initial map[K]any, handler Handler[K, A, D], dep D, opts ...Option) *ActionStore[K, A, D] {
	if handler == nil {
		panic("cachestore: NewStore requires a handler")
	}
	o := buildOptions(opts)
	c := newKeyedCache(initial, o, "store")
	return &ActionStore[K, A, D]{
		KeyedCache: c,
		handler:    handler,
		dep:        dep,
		dispatch:   newDispatcher(c.name, false, o.middleware),
	}
}

// Dispatch runs the handler with action as a top-level dispatch. Handlers
// dispatch through the store they receive, which continues their own call
// chain.
func (s *ActionStore[K, A, D]) Dispatch(action A) error {
	return s.DispatchContext(context.Background(), action)
}

// DispatchContext runs the handler with action under ctx. Handler errors and
// panics reach the caller unchanged. Dispatching on a disposed store is a
// no-op.
func (s *ActionStore[K, A, D]) DispatchContext(ctx context.Context, action A) error {
	if s.Disposed() {
		logAbsorbed(s.logger, "CS021", "action", fmt.Sprint(action))
		return nil
	}
	return s.dispatch.run(ctx, action, func(ctx context.Context) error {
		return s.handler.Handle(nested[K, A, D]{Store: s, ctx: ctx}, action, s.dep)
	})
}

// Dependency returns the dependency injected at construction.
func (s *ActionStore[K, A, D]) Dependency() D {
	return s.dep
}
