package gallery

import (
	"context"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// ScreenDataKey is the key space of the screen data form.
type ScreenDataKey string

const (
	BaseID                ScreenDataKey = "baseID"
	ScreenTitle           ScreenDataKey = "title"
	Subtitle              ScreenDataKey = "subtitle"
	BodyText              ScreenDataKey = "bodyText"
	IsScreenDataPresented ScreenDataKey = "isScreenDataPresented"
)

// ScreenView is one element of a described screen.
type ScreenView struct {
	Kind     string
	Title    string
	Subtitle string
}

// ScreenDescription is the screen built from the form.
type ScreenDescription struct {
	ID    string
	Title string
	Views []ScreenView
}

// ScreenDataForm edits the fields of a screen description.
type ScreenDataForm struct {
	store *cachestore.KeyedCache[ScreenDataKey]

	BaseID   cachestore.Binding[string]
	Title    cachestore.Binding[string]
	Subtitle cachestore.Binding[string]
	Body     cachestore.Binding[string]
}

// NewScreenDataForm creates an empty form.
func NewScreenDataForm(opts ...cachestore.Option) *ScreenDataForm {
	store := cachestore.New(map[ScreenDataKey]any{
		BaseID:                "",
		ScreenTitle:           "",
		Subtitle:              "",
		BodyText:              "",
		IsScreenDataPresented: false,
	}, opts...)
	return &ScreenDataForm{
		store:    store,
		BaseID:   cachestore.Bind[string](store, BaseID),
		Title:    cachestore.Bind[string](store, ScreenTitle),
		Subtitle: cachestore.Bind[string](store, Subtitle),
		Body:     cachestore.Bind[string](store, BodyText),
	}
}

// Show presents the described screen.
func (f *ScreenDataForm) Show() {
	f.store.Set(IsScreenDataPresented, true)
}

// Dismiss hides the described screen.
func (f *ScreenDataForm) Dismiss() {
	f.store.Set(IsScreenDataPresented, false)
}

// Presented returns the described screen, or false when it is hidden.
func (f *ScreenDataForm) Presented() (ScreenDescription, bool) {
	if !cachestore.Resolve[bool](f.store, IsScreenDataPresented) {
		return ScreenDescription{}, false
	}
	id := f.BaseID.Get()
	return ScreenDescription{
		ID:    id,
		Title: id,
		Views: []ScreenView{
			{Kind: "label", Title: f.Title.Get(), Subtitle: f.Subtitle.Get()},
			{Kind: "text", Title: f.Body.Get()},
		},
	}, true
}

// ScreenData fills a form and presents the screen it describes.
type ScreenData struct{}

func (ScreenData) ID() string    { return "screenData" }
func (ScreenData) Title() string { return "ScreenData" }

// Run types into each field and presents the screen.
func (e ScreenData) Run(ctx context.Context, env *Env) (*Report, error) {
	form := NewScreenDataForm(env.options("screenData")...)
	track(env, "screenData", form.store)

	report := newReport(e.ID())
	record(report, "appear", form.store)

	form.BaseID.Set("home")
	form.Title.Set("Welcome")
	form.Subtitle.Set("cachestore")
	form.Body.Set("Shared state for thin screens.")
	record(report, "fill form", form.store)

	form.Show()
	if screen, ok := form.Presented(); ok {
		env.logger().Debug("screen presented", "experiment", e.ID(), "id", screen.ID, "views", len(screen.Views))
	}
	record(report, "show screen data", form.store)

	form.Dismiss()
	record(report, "dismiss", form.store)
	return report, nil
}
