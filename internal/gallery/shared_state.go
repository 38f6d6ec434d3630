package gallery

import (
	"context"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// Color is a swatch choice.
type Color int

const (
	Red Color = iota
	Green
	Blue
)

func (c Color) String() string {
	switch c {
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "red"
	}
}

// SharedKey is the key space of the shared state screen.
type SharedKey string

const (
	SharedCount        SharedKey = "count"
	SharedColor        SharedKey = "color"
	SharedContentArray SharedKey = "contentArray"
)

// ListKey is the key space of the list tab.
type ListKey string

// ListContent holds a []Color.
const ListContent ListKey = "contentArray"

// EditKey is the key space of the edit tab.
type EditKey string

const (
	EditCount EditKey = "count"
	EditColor EditKey = "color"
)

func sharedDefaults() map[SharedKey]any {
	return map[SharedKey]any{
		SharedCount:        0,
		SharedColor:        Red,
		SharedContentArray: []Color{},
	}
}

var (
	listTransform = cachestore.Pairs(map[SharedKey]ListKey{
		SharedContentArray: ListContent,
	})
	editTransform = cachestore.Pairs(map[SharedKey]EditKey{
		SharedCount: EditCount,
		SharedColor: EditColor,
	})
	editCounterTransform = cachestore.Pairs(map[EditKey]CounterKey{
		EditCount: CountKey,
	})
)

// ListScreen shows count copies of the chosen color.
type ListScreen struct {
	store cachestore.Cache[ListKey]
}

// NewListScreen binds the list tab to store.
func NewListScreen(store cachestore.Cache[ListKey]) *ListScreen {
	return &ListScreen{store: store}
}

// Content is the rendered list.
func (s *ListScreen) Content() []Color {
	return cachestore.Resolve[[]Color](s.store, ListContent)
}

// EditScreen picks a color and embeds a counter.
type EditScreen struct {
	color   cachestore.Binding[Color]
	counter *cachestore.ScopedCache[EditKey, CounterKey]
	Counter *CounterScreen
}

// NewEditScreen binds the edit tab to store. The embedded counter sees only
// the count.
func NewEditScreen(store cachestore.Cache[EditKey], opts ...cachestore.Option) *EditScreen {
	counter := cachestore.Scope(store, editCounterTransform, opts...)
	return &EditScreen{
		color:   cachestore.Bind[Color](store, EditColor),
		counter: counter,
		Counter: NewCounterScreen(counter),
	}
}

// Close detaches the embedded counter.
func (s *EditScreen) Close() { s.counter.Dispose() }

// Color is the picker's selection.
func (s *EditScreen) Color() Color { return s.color.Get() }

// Pick selects a color.
func (s *EditScreen) Pick(c Color) { s.color.Set(c) }

// SharedState has a list tab and an edit tab over one store.
type SharedState struct{}

func (SharedState) ID() string    { return "sharedState" }
func (SharedState) Title() string { return "SharedState" }

// Run edits in one tab and then shows the list tab.
func (e SharedState) Run(ctx context.Context, env *Env) (*Report, error) {
	store := cachestore.New(sharedDefaults(), env.options("sharedState")...)
	track(env, "sharedState", store)

	listView := cachestore.Scope(store, listTransform, env.options("sharedState.list")...)
	editView := cachestore.Scope(store, editTransform, env.options("sharedState.edit")...)
	defer listView.Dispose()
	defer editView.Dispose()

	list := NewListScreen(listView)
	edit := NewEditScreen(editView, env.options("sharedState.edit.counter")...)
	defer edit.Close()

	report := newReport(e.ID())
	record(report, "appear", store)

	edit.Counter.Increment()
	edit.Counter.Increment()
	edit.Counter.Increment()
	record(report, "count to 3", store)

	edit.Pick(Blue)
	record(report, "pick blue", store)

	showList(store)
	record(report, "show list", store)

	if got := list.Content(); len(got) != 3 {
		env.logger().Warn("unexpected list length", "experiment", e.ID(), "len", len(got))
	}
	return report, nil
}

// showList is the list tab's appear handler: it fills the content with the
// chosen color repeated count times.
func showList(store cachestore.Cache[SharedKey]) {
	count := cachestore.Resolve[int](store, SharedCount)
	color := cachestore.Resolve[Color](store, SharedColor)
	content := make([]Color, 0, max(count, 0))
	for i := 0; i < count; i++ {
		content = append(content, color)
	}
	store.Set(SharedContentArray, content)
}
