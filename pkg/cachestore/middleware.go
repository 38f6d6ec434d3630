package cachestore

import (
	"context"
	"fmt"
	"reflect"
)

// DispatchInfo describes one dispatch as seen by middleware.
type DispatchInfo struct {
	// Store is the name of the dispatching store.
	Store string

	// Action is the dispatched action value.
	Action any

	// Depth is 1 for a top-level dispatch and grows with re-entrant
	// dispatches made from inside a handler.
	Depth int

	// Scoped is true when the dispatching store is a scope.
	Scoped bool

	ctx context.Context
}

// Context returns the context of this dispatch. Re-entrant dispatches and
// actions forwarded to a parent inherit it.
func (i *DispatchInfo) Context() context.Context {
	if i.ctx == nil {
		return context.Background()
	}
	return i.ctx
}

// SetContext replaces the dispatch context, e.g. with one carrying a span.
func (i *DispatchInfo) SetContext(ctx context.Context) {
	i.ctx = ctx
}

// ActionName returns a low-cardinality name for the action: its String()
// when it implements fmt.Stringer, otherwise its type.
func (i *DispatchInfo) ActionName() string {
	if s, ok := i.Action.(fmt.Stringer); ok {
		return s.String()
	}
	if i.Action == nil {
		return "nil"
	}
	return reflect.TypeOf(i.Action).String()
}

// Middleware wraps every handler invocation of a store.
type Middleware interface {
	// Handle runs around the dispatch described by info. It must call next
	// to continue and return its error unless it means to replace it.
	Handle(info *DispatchInfo, next func() error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(info *DispatchInfo, next func() error) error

// Handle calls f(info, next).
func (f MiddlewareFunc) Handle(info *DispatchInfo, next func() error) error {
	return f(info, next)
}

// dispatcher runs actions through the middleware chain. It keeps no
// per-call state: the depth of a dispatch travels in its context, keyed by
// the dispatcher, so concurrent call chains never see each other.
type dispatcher struct {
	name       string
	scoped     bool
	middleware []Middleware
}

func newDispatcher(name string, scoped bool, mw []Middleware) *dispatcher {
	return &dispatcher{
		name:       name,
		scoped:     scoped,
		middleware: mw,
	}
}

// depth returns how many dispatches of d are running in the call chain of ctx.
func (d *dispatcher) depth(ctx context.Context) int {
	n, _ := ctx.Value(d).(int)
	return n
}

// run executes core inside the middleware chain. core receives the context
// left by the middleware; dispatches made with it are nested in this one.
// Errors and panics from core propagate unchanged.
func (d *dispatcher) run(ctx context.Context, action any, core func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	depth := d.depth(ctx) + 1

	info := &DispatchInfo{
		Store:  d.name,
		Action: action,
		Depth:  depth,
		Scoped: d.scoped,
		ctx:    context.WithValue(ctx, d, depth),
	}

	next := func() error {
		return core(info.Context())
	}
	for i := len(d.middleware) - 1; i >= 0; i-- {
		mw, inner := d.middleware[i], next
		next = func() error { return mw.Handle(info, inner) }
	}
	return next()
}

// nested is the store a handler receives. Its Dispatch continues the call
// chain of the running dispatch instead of starting a new one.
type nested[K comparable, A, D any] struct {
	Store[K, A, D]
	ctx context.Context
}

func (n nested[K, A, D]) Dispatch(action A) error {
	return n.Store.DispatchContext(n.ctx, action)
}
