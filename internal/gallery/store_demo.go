package gallery

import (
	"context"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// CounterAction is the action type of the store demo.
type CounterAction int

const (
	Increment CounterAction = iota
	Decrement
)

func (a CounterAction) String() string {
	if a == Decrement {
		return "decrement"
	}
	return "increment"
}

// CounterHandler applies counter actions to CountKey. It works with any
// dependency type so it can be reused by scopes of larger stores.
func CounterHandler[D any]() cachestore.HandlerFunc[CounterKey, CounterAction, D] {
	return func(s cachestore.Store[CounterKey, CounterAction, D], action CounterAction, _ D) error {
		switch action {
		case Increment:
			cachestore.Update(s, CountKey, func(n *int) { *n++ })
		case Decrement:
			cachestore.Update(s, CountKey, func(n *int) { *n-- })
		}
		return nil
	}
}

// StoreDemo is the counter rebuilt on an action store.
type StoreDemo struct{}

func (StoreDemo) ID() string    { return "storeDemo" }
func (StoreDemo) Title() string { return "StoreDemo" }

// Run dispatches the same taps as the counter experiment.
func (d StoreDemo) Run(ctx context.Context, env *Env) (*Report, error) {
	store := cachestore.NewStore(map[CounterKey]any{CountKey: 0},
		CounterHandler[struct{}](), struct{}{}, env.options("storeDemo")...)
	track(env, "storeDemo", store)

	screen := NewStoreDemoScreen[struct{}](store)
	report := newReport(d.ID())
	record(report, "appear", store)

	taps := []CounterAction{Increment, Increment, Decrement, Decrement, Decrement}
	for _, a := range taps {
		name := "tap " + a.String()
		if a == Decrement && !screen.CanDecrement() {
			name += " (disabled)"
		}
		if err := screen.Tap(ctx, a); err != nil {
			return nil, err
		}
		record(report, name, store)
	}
	return report, nil
}

// StoreDemoScreen dispatches counter actions to any store with the counter
// key and action spaces.
type StoreDemoScreen[D any] struct {
	store cachestore.Store[CounterKey, CounterAction, D]
}

// NewStoreDemoScreen binds the screen to store.
func NewStoreDemoScreen[D any](store cachestore.Store[CounterKey, CounterAction, D]) *StoreDemoScreen[D] {
	return &StoreDemoScreen[D]{store: store}
}

// Count is the displayed number.
func (s *StoreDemoScreen[D]) Count() int {
	return cachestore.Resolve[int](s.store, CountKey)
}

// CanDecrement reports whether the minus button is enabled.
func (s *StoreDemoScreen[D]) CanDecrement() bool {
	return s.Count() > 0
}

// Tap dispatches a; a disabled minus button dispatches nothing.
func (s *StoreDemoScreen[D]) Tap(ctx context.Context, a CounterAction) error {
	if a == Decrement && !s.CanDecrement() {
		return nil
	}
	return s.store.DispatchContext(ctx, a)
}
