package gallery

import (
	"context"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// BasicModel is the model of the MVVM experiment.
type BasicModel struct {
	Title string
	Count int
}

// BasicKey is the key space of the view model's cache.
type BasicKey string

// StateKey holds a BasicModel.
const StateKey BasicKey = "state"

// BasicViewModel keeps its model in a private cache.
type BasicViewModel struct {
	store *cachestore.KeyedCache[BasicKey]
}

// NewBasicViewModel creates a view model titled "Init" with count zero.
func NewBasicViewModel(opts ...cachestore.Option) *BasicViewModel {
	return &BasicViewModel{
		store: cachestore.New(map[BasicKey]any{
			StateKey: BasicModel{Title: "Init", Count: 0},
		}, opts...),
	}
}

// State returns the current model.
func (vm *BasicViewModel) State() BasicModel {
	return cachestore.Resolve[BasicModel](vm.store, StateKey)
}

func (vm *BasicViewModel) Title() string { return vm.State().Title }
func (vm *BasicViewModel) Count() int    { return vm.State().Count }

// IsDecrementDisabled reports whether the minus button is disabled.
func (vm *BasicViewModel) IsDecrementDisabled() bool {
	return vm.Count() <= 0
}

// Increment adds one to the model's count.
func (vm *BasicViewModel) Increment() {
	cachestore.Update(vm.store, StateKey, func(m *BasicModel) { m.Count++ })
}

// Decrement subtracts one from the model's count.
func (vm *BasicViewModel) Decrement() {
	cachestore.Update(vm.store, StateKey, func(m *BasicModel) { m.Count-- })
}

// Subscribe notifies fn whenever the model changes.
func (vm *BasicViewModel) Subscribe(fn func()) (unsubscribe func()) {
	return vm.store.Subscribe(cachestore.ListenerFunc[BasicKey](func(BasicKey) { fn() }))
}

// BasicMVVM drives a view model instead of the store directly.
type BasicMVVM struct{}

func (BasicMVVM) ID() string    { return "basicMVVM" }
func (BasicMVVM) Title() string { return "Basic MVVM" }

// Run taps plus twice and minus once.
func (b BasicMVVM) Run(ctx context.Context, env *Env) (*Report, error) {
	vm := NewBasicViewModel(env.options("basicMVVM")...)
	track(env, "basicMVVM", vm.store)

	report := newReport(b.ID())
	record(report, "appear", vm.store)

	vm.Increment()
	record(report, "tap plus", vm.store)
	vm.Increment()
	record(report, "tap plus", vm.store)
	if !vm.IsDecrementDisabled() {
		vm.Decrement()
	}
	record(report, "tap minus", vm.store)

	return report, nil
}
