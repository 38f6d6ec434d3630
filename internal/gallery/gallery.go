package gallery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/cachestore/internal/errors"
	"github.com/vango-dev/cachestore/pkg/cachestore"
	"github.com/vango-dev/cachestore/pkg/devtools"
	"github.com/vango-dev/cachestore/pkg/instrument"
)

// Experiment is one example screen.
type Experiment interface {
	// ID is the stable identifier used on the command line.
	ID() string

	// Title is the human readable name.
	Title() string

	// Run plays a scripted session and reports the resulting state.
	Run(ctx context.Context, env *Env) (*Report, error)
}

// Env carries the collaborators experiments may use. The zero Env is usable.
type Env struct {
	// Logger is passed to every store. Default: slog.Default().
	Logger *slog.Logger

	// Client performs gallery fetches. Default: http.DefaultClient.
	Client *http.Client

	// PostsURL serves the favorite posts experiment.
	PostsURL string

	// ImagesURL is the base URL of the image gallery experiment.
	ImagesURL string

	// Options are applied to every store an experiment creates, e.g.
	// dispatch middleware.
	Options []cachestore.Option

	// Inspector, when set, receives every store an experiment creates.
	Inspector *devtools.Inspector

	// Metrics, when set, counts mutations of every store an experiment
	// creates.
	Metrics *instrument.Metrics

	mu       sync.Mutex
	cleanups []func()
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Env) client() *http.Client {
	if e.Client == nil {
		return http.DefaultClient
	}
	return e.Client
}

// options returns the construction options for a store named name.
func (e *Env) options(name string, extra ...cachestore.Option) []cachestore.Option {
	opts := []cachestore.Option{cachestore.WithName(name), cachestore.WithLogger(e.logger())}
	opts = append(opts, e.Options...)
	return append(opts, extra...)
}

// Close releases inspector registrations and watchers added by experiments.
func (e *Env) Close() {
	e.mu.Lock()
	cleanups := e.cleanups
	e.cleanups = nil
	e.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// track exposes c to the inspector and metrics configured on e.
func track[K comparable](e *Env, name string, c cachestore.Cache[K]) {
	var cleanups []func()
	if e.Inspector != nil {
		id := e.Inspector.Register(devtools.Inspect(name, c))
		cleanups = append(cleanups, func() { e.Inspector.Unregister(id) })
	}
	if e.Metrics != nil {
		cleanups = append(cleanups, instrument.WatchCache(e.Metrics, name, c))
	}

	e.mu.Lock()
	e.cleanups = append(e.cleanups, cleanups...)
	e.mu.Unlock()
}

// Step is the state of an experiment after one user interaction.
type Step struct {
	Name  string
	State map[string]any
}

// Report is the outcome of a Run.
type Report struct {
	Experiment string
	Steps      []Step
}

func newReport(id string) *Report {
	return &Report{Experiment: id}
}

// record appends the current state of c. Injected behaviours are omitted.
func record[K comparable](r *Report, name string, c cachestore.Cache[K]) {
	r.Steps = append(r.Steps, Step{Name: name, State: stateOf(c)})
}

// Final returns the state after the last step.
func (r *Report) Final() map[string]any {
	if len(r.Steps) == 0 {
		return nil
	}
	return r.Steps[len(r.Steps)-1].State
}

// Write prints the report, one line per step.
func (r *Report) Write(w io.Writer) {
	fmt.Fprintf(w, "%s\n", r.Experiment)
	for _, s := range r.Steps {
		keys := make([]string, 0, len(s.State))
		for k := range s.State {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, s.State[k]))
		}
		fmt.Fprintf(w, "  %-28s %s\n", s.Name, strings.Join(parts, " "))
	}
}

func stateOf[K comparable](c cachestore.Cache[K]) map[string]any {
	snap := cachestore.Snapshot(c)
	out := make(map[string]any, len(snap))
	for k, v := range snap {
		if v != nil && reflect.TypeOf(v).Kind() == reflect.Func {
			continue
		}
		out[fmt.Sprint(k)] = v
	}
	return out
}

// All returns every experiment in menu order.
func All() []Experiment {
	return []Experiment{
		Counter{},
		SharedState{},
		FavoritePosts{},
		BasicMVVM{},
		ImageGallery{},
		ScreenData{},
		StoreDemo{},
		SharedStoreState{},
	}
}

// Lookup finds an experiment by ID.
func Lookup(id string) (Experiment, error) {
	ids := make([]string, 0, len(All()))
	for _, e := range All() {
		if e.ID() == id {
			return e, nil
		}
		ids = append(ids, e.ID())
	}
	return nil, errors.New("CS120").
		WithDetail(fmt.Sprintf("No experiment %q. Available: %s.", id, strings.Join(ids, ", ")))
}
