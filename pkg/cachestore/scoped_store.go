package cachestore

import (
	"context"
	"errors"
	"fmt"
)

// ScopedActionStore is the action-aware analogue of ScopedCache. State access
// follows the scope's transform; dispatch is a two-stage lookup:
//
//  1. the local handler, when there is one, runs against the scope;
//  2. otherwise (or when it returns ErrNotHandled) the action is mapped by the
//     forward function and dispatched on the parent.
//
// An action that reaches stage 2 and has no mapping is dropped silently.
type ScopedActionStore[P, C comparable, PA, CA, D any] struct {
	*ScopedCache[P, C]

	parent   Store[P, PA, D]
	handler  Handler[C, CA, D]
	forward  func(CA) (PA, bool)
	dispatch *dispatcher
}

// ScopeStore derives a child action store from parent. handler and forward
// may each be nil: a nil handler sends every action to forward, a nil
// forward drops whatever the handler leaves.
func ScopeStore[P, C comparable, PA, CA, D any](
	parent Store[P, PA, D],
	t Transform[P, C],
	handler Handler[C, CA, D],
	forward func(CA) (PA, bool),
	opts ...Option,
) *ScopedActionStore[P, C, PA, CA, D] {
	o := buildOptions(opts)
	sc := newScopedCache(parent, t, o)
	return &ScopedActionStore[P, C, PA, CA, D]{
		ScopedCache: sc,
		parent:      parent,
		handler:     handler,
		forward:     forward,
		dispatch:    newDispatcher(sc.name, true, o.middleware),
	}
}

// ActionlessScope derives a plain cache view of a store, for components that
// read and write state but never dispatch.
func ActionlessScope[P, C comparable, A, D any](parent Store[P, A, D], t Transform[P, C], opts ...Option) *ScopedCache[P, C] {
	return Scope[P, C](parent, t, opts...)
}

// Dispatch handles or forwards action.
func (s *ScopedActionStore[P, C, PA, CA, D]) Dispatch(action CA) error {
	return s.DispatchContext(context.Background(), action)
}

// DispatchContext handles or forwards action under ctx. Forwarded actions
// are dispatched on the parent with the same context.
func (s *ScopedActionStore[P, C, PA, CA, D]) DispatchContext(ctx context.Context, action CA) error {
	if s.Disposed() {
		logAbsorbed(s.logger, "CS021", "action", fmt.Sprint(action))
		return nil
	}
	return s.dispatch.run(ctx, action, func(ctx context.Context) error {
		if s.handler != nil {
			view := nested[C, CA, D]{Store: s, ctx: ctx}
			err := s.handler.Handle(view, action, s.parent.Dependency())
			if !errors.Is(err, ErrNotHandled) {
				return err
			}
		}
		return s.forwardToParent(ctx, action)
	})
}

func (s *ScopedActionStore[P, C, PA, CA, D]) forwardToParent(ctx context.Context, action CA) error {
	if s.forward == nil {
		logAbsorbed(s.logger, "CS020", "action", fmt.Sprint(action))
		return nil
	}
	pa, ok := s.forward(action)
	if !ok {
		logAbsorbed(s.logger, "CS020", "action", fmt.Sprint(action))
		return nil
	}
	return s.parent.DispatchContext(ctx, pa)
}

// Dependency returns the parent's dependency.
func (s *ScopedActionStore[P, C, PA, CA, D]) Dependency() D {
	return s.parent.Dependency()
}
