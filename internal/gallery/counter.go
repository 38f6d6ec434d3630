package gallery

import (
	"context"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// CounterKey is the key space of the counter screen.
type CounterKey string

// CountKey holds an int.
const CountKey CounterKey = "count"

// Counter is a single number with increment and decrement buttons.
type Counter struct{}

func (Counter) ID() string    { return "counter" }
func (Counter) Title() string { return "Counter" }

// Run taps plus twice and minus three times; the last tap is disabled.
func (c Counter) Run(ctx context.Context, env *Env) (*Report, error) {
	store := cachestore.New(map[CounterKey]any{CountKey: 0}, env.options("counter")...)
	track(env, "counter", store)

	screen := NewCounterScreen(store)
	report := newReport(c.ID())
	record(report, "appear", store)

	screen.Increment()
	record(report, "tap plus", store)
	screen.Increment()
	record(report, "tap plus", store)
	screen.Decrement()
	record(report, "tap minus", store)
	screen.Decrement()
	record(report, "tap minus", store)
	screen.Decrement()
	record(report, "tap minus (disabled)", store)

	return report, nil
}

// CounterScreen reads and writes a count through any cache holding CountKey,
// so it can be embedded in other screens through a scope.
type CounterScreen struct {
	store cachestore.Cache[CounterKey]
}

// NewCounterScreen binds the screen to store.
func NewCounterScreen(store cachestore.Cache[CounterKey]) *CounterScreen {
	return &CounterScreen{store: store}
}

// Count is the displayed number.
func (s *CounterScreen) Count() int {
	return cachestore.Resolve[int](s.store, CountKey)
}

// CanDecrement reports whether the minus button is enabled.
func (s *CounterScreen) CanDecrement() bool {
	return s.Count() > 0
}

// Increment is the plus button.
func (s *CounterScreen) Increment() {
	s.store.Set(CountKey, s.Count()+1)
}

// Decrement is the minus button. It does nothing while disabled.
func (s *CounterScreen) Decrement() {
	if !s.CanDecrement() {
		return
	}
	s.store.Set(CountKey, s.Count()-1)
}
