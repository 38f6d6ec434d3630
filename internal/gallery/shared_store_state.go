package gallery

import (
	"context"
	"fmt"
	"sync"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// Journal is the shared store's dependency. It records counter taps that
// reach the root store.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

// Add appends an entry.
func (j *Journal) Add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

// Entries returns a copy of the recorded entries.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// SharedActionKind enumerates root store actions.
type SharedActionKind int

const (
	UpdateContentArray SharedActionKind = iota
	CounterTapped
)

// SharedAction is the root store's action type.
type SharedAction struct {
	Kind    SharedActionKind
	Counter CounterAction
}

func (a SharedAction) String() string {
	if a.Kind == CounterTapped {
		return "counterTapped(" + a.Counter.String() + ")"
	}
	return "updateContentArray"
}

// EditActionKind enumerates edit tab actions.
type EditActionKind int

const (
	PickColor EditActionKind = iota
	EditCounter
)

// EditAction is the edit tab's action type.
type EditAction struct {
	Kind    EditActionKind
	Color   Color
	Counter CounterAction
}

func (a EditAction) String() string {
	if a.Kind == EditCounter {
		return "counter(" + a.Counter.String() + ")"
	}
	return "pickColor(" + a.Color.String() + ")"
}

type (
	sharedStore = cachestore.ActionStore[SharedKey, SharedAction, *Journal]
	editStore   = cachestore.ScopedActionStore[SharedKey, EditKey, SharedAction, EditAction, *Journal]
	counterView = cachestore.ScopedActionStore[EditKey, CounterKey, EditAction, CounterAction, *Journal]
)

func handleShared(s cachestore.Store[SharedKey, SharedAction, *Journal], action SharedAction, journal *Journal) error {
	switch action.Kind {
	case UpdateContentArray:
		showList(s)
	case CounterTapped:
		journal.Add(fmt.Sprintf("%s at count %d", action.Counter, cachestore.Resolve[int](s, SharedCount)))
	}
	return nil
}

// handleEdit applies color picks. Counter actions change the count and are
// then reported to the root store.
func handleEdit(s cachestore.Store[EditKey, EditAction, *Journal], action EditAction, _ *Journal) error {
	switch action.Kind {
	case PickColor:
		s.Set(EditColor, action.Color)
		return nil
	case EditCounter:
		delta := 1
		if action.Counter == Decrement {
			delta = -1
		}
		cachestore.Update(s, EditCount, func(n *int) { *n += delta })
	}
	return cachestore.ErrNotHandled
}

func forwardEdit(a EditAction) (SharedAction, bool) {
	if a.Kind != EditCounter {
		return SharedAction{}, false
	}
	return SharedAction{Kind: CounterTapped, Counter: a.Counter}, true
}

func forwardCounter(a CounterAction) (EditAction, bool) {
	return EditAction{Kind: EditCounter, Counter: a}, true
}

// newSharedStores builds the root store and its three views.
func newSharedStores(env *Env, journal *Journal) (*sharedStore, *cachestore.ScopedCache[SharedKey, ListKey], *editStore, *counterView) {
	root := cachestore.NewStore(sharedDefaults(),
		cachestore.HandlerFunc[SharedKey, SharedAction, *Journal](handleShared),
		journal, env.options("sharedStoreState")...)

	list := cachestore.ActionlessScope(root, listTransform, env.options("sharedStoreState.list")...)

	edit := cachestore.ScopeStore(root, editTransform,
		cachestore.HandlerFunc[EditKey, EditAction, *Journal](handleEdit),
		forwardEdit, env.options("sharedStoreState.edit")...)

	counter := cachestore.ScopeStore[EditKey, CounterKey, EditAction, CounterAction, *Journal](
		edit, editCounterTransform, nil, forwardCounter,
		env.options("sharedStoreState.edit.counter")...)

	return root, list, edit, counter
}

// SharedStoreState is SharedState rebuilt on an action store: the edit tab
// and its embedded counter dispatch instead of writing.
type SharedStoreState struct{}

func (SharedStoreState) ID() string    { return "sharedStoreState" }
func (SharedStoreState) Title() string { return "SharedStoreState" }

// Run taps the embedded counter, picks a color and shows the list.
func (e SharedStoreState) Run(ctx context.Context, env *Env) (*Report, error) {
	journal := &Journal{}
	root, list, edit, counter := newSharedStores(env, journal)
	defer list.Dispose()
	defer edit.Dispose()
	defer counter.Dispose()
	track(env, "sharedStoreState", root)

	screen := NewStoreDemoScreen[*Journal](counter)
	report := newReport(e.ID())
	record(report, "appear", root)

	for _, a := range []CounterAction{Increment, Increment, Increment, Decrement} {
		if err := screen.Tap(ctx, a); err != nil {
			return nil, err
		}
		record(report, "tap "+a.String(), root)
	}

	if err := edit.DispatchContext(ctx, EditAction{Kind: PickColor, Color: Green}); err != nil {
		return nil, err
	}
	record(report, "pick green", root)

	if err := root.DispatchContext(ctx, SharedAction{Kind: UpdateContentArray}); err != nil {
		return nil, err
	}
	record(report, "show list", root)

	report.Steps[len(report.Steps)-1].State["journal"] = journal.Entries()
	return report, nil
}
