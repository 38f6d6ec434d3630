package gallery

import (
	"context"
	"reflect"
	"testing"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

func TestCounterScreen(t *testing.T) {
	store := cachestore.New(map[CounterKey]any{CountKey: 0})
	screen := NewCounterScreen(store)

	if screen.CanDecrement() {
		t.Error("CanDecrement() = true at zero")
	}
	screen.Decrement()
	if got := screen.Count(); got != 0 {
		t.Errorf("Count() after disabled decrement = %d, want 0", got)
	}

	screen.Increment()
	screen.Increment()
	screen.Decrement()
	if got := screen.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestCounterExperiment(t *testing.T) {
	report := run(t, Counter{}, testEnv(t))

	counts := make([]any, len(report.Steps))
	for i, s := range report.Steps {
		counts[i] = s.State["count"]
	}
	want := []any{0, 1, 2, 1, 0, 0}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestStoreDemoExperiment(t *testing.T) {
	report := run(t, StoreDemo{}, testEnv(t))

	wantNames := []string{
		"appear",
		"tap increment",
		"tap increment",
		"tap decrement",
		"tap decrement",
		"tap decrement (disabled)",
	}
	if got := stepNames(report); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("steps = %v, want %v", got, wantNames)
	}
	assertState(t, report.Final(), "count", 0)
}

func TestCounterHandler(t *testing.T) {
	store := cachestore.NewStore(map[CounterKey]any{CountKey: 5}, CounterHandler[int](), 0)
	screen := NewStoreDemoScreen[int](store)

	for _, a := range []CounterAction{Decrement, Decrement, Increment} {
		if err := screen.Tap(context.Background(), a); err != nil {
			t.Fatalf("Tap(%v) error: %v", a, err)
		}
	}
	if got := screen.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}

func TestBasicViewModel(t *testing.T) {
	vm := NewBasicViewModel()

	var notified int
	unsubscribe := vm.Subscribe(func() { notified++ })
	defer unsubscribe()

	if vm.Title() != "Init" {
		t.Errorf("Title() = %q, want Init", vm.Title())
	}
	if !vm.IsDecrementDisabled() {
		t.Error("decrement should start disabled")
	}

	vm.Increment()
	vm.Increment()
	vm.Decrement()

	if got := vm.State(); got != (BasicModel{Title: "Init", Count: 1}) {
		t.Errorf("State() = %+v", got)
	}
	if notified != 3 {
		t.Errorf("notified %d times, want 3", notified)
	}
}

func TestBasicMVVMExperiment(t *testing.T) {
	report := run(t, BasicMVVM{}, testEnv(t))
	assertState(t, report.Final(), "state", BasicModel{Title: "Init", Count: 1})
}
