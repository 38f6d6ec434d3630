package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	cserrors "github.com/vango-dev/cachestore/internal/errors"
)

// Inspector keeps the registered stores and serves them over HTTP.
type Inspector struct {
	stores map[string]*entry
	mu     sync.RWMutex
	logger *slog.Logger
}

type entry struct {
	id         string
	store      Inspectable
	hub        *hub
	seq        atomic.Uint64
	registered time.Time
	stop       func()
}

// NewInspector creates an empty inspector. If logger is nil, slog.Default()
// is used.
func NewInspector(logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{
		stores: make(map[string]*entry),
		logger: logger.With("component", "devtools"),
	}
}

// Register starts observing s and returns its inspector ID.
func (i *Inspector) Register(s Inspectable) string {
	e := &entry{
		id:         uuid.Must(uuid.NewV7()).String(),
		store:      s,
		hub:        newHub(i.logger),
		registered: time.Now(),
	}
	e.stop = s.Subscribe(func(key string) {
		value, _ := s.Value(key)
		e.hub.broadcast(Message{
			Type:    MessageChange,
			StoreID: e.id,
			Store:   s.Name(),
			Seq:     e.seq.Add(1),
			Key:     key,
			Value:   encodeValue(value),
			Time:    time.Now(),
		})
	})

	i.mu.Lock()
	i.stores[e.id] = e
	i.mu.Unlock()

	i.logger.Debug("devtools: registered", "store", s.Name(), "id", e.id)
	return e.id
}

// Unregister stops observing the store and disconnects its stream clients.
func (i *Inspector) Unregister(id string) {
	i.mu.Lock()
	e, ok := i.stores[id]
	delete(i.stores, id)
	i.mu.Unlock()
	if !ok {
		return
	}

	e.stop()
	e.hub.broadcast(Message{
		Type:    MessageRemoved,
		StoreID: e.id,
		Store:   e.store.Name(),
		Seq:     e.seq.Add(1),
		Time:    time.Now(),
	})
	e.hub.close()
}

// Stores lists the registered stores ordered by registration.
func (i *Inspector) Stores() []StoreInfo {
	i.mu.RLock()
	entries := make([]*entry, 0, len(i.stores))
	for _, e := range i.stores {
		entries = append(entries, e)
	}
	i.mu.RUnlock()

	sort.Slice(entries, func(a, b int) bool {
		if !entries[a].registered.Equal(entries[b].registered) {
			return entries[a].registered.Before(entries[b].registered)
		}
		return entries[a].id < entries[b].id
	})

	infos := make([]StoreInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.info(e.store.Snapshot()))
	}
	return infos
}

// Close unregisters every store.
func (i *Inspector) Close() {
	i.mu.RLock()
	ids := make([]string, 0, len(i.stores))
	for id := range i.stores {
		ids = append(ids, id)
	}
	i.mu.RUnlock()

	for _, id := range ids {
		i.Unregister(id)
	}
}

func (i *Inspector) lookup(id string) (*entry, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	e, ok := i.stores[id]
	return e, ok
}

func (e *entry) info(values map[string]any) StoreInfo {
	return StoreInfo{
		ID:         e.id,
		Name:       e.store.Name(),
		Keys:       sortedKeys(values),
		Clients:    e.hub.clientCount(),
		Changes:    e.seq.Load(),
		Registered: e.registered,
	}
}

// Handler returns the inspector's HTTP routes.
func (i *Inspector) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/stores", i.handleList)
	r.Get("/stores/{id}", i.handleStore)
	r.Get("/stores/{id}/ws", i.handleStream)
	return r
}

func (i *Inspector) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, i.Stores())
}

func (i *Inspector) handleStore(w http.ResponseWriter, r *http.Request) {
	e, ok := i.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, cserrors.New("CS130").WithDetail("No store is registered as "+chi.URLParam(r, "id")+"."))
		return
	}
	values := e.store.Snapshot()
	writeJSON(w, http.StatusOK, StoreState{
		StoreInfo: e.info(values),
		Values:    encodeValues(values),
	})
}

func (i *Inspector) handleStream(w http.ResponseWriter, r *http.Request) {
	e, ok := i.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, cserrors.New("CS130"))
		return
	}
	e.hub.serve(w, r, Message{
		Type:    MessageSnapshot,
		StoreID: e.id,
		Store:   e.store.Name(),
		Seq:     e.seq.Load(),
		Values:  encodeValues(e.store.Snapshot()),
		Time:    time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *cserrors.StoreError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(err.FormatJSON()))
}
