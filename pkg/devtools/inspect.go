package devtools

import (
	"fmt"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// Inspectable is the view of a store the inspector needs. Keys are rendered
// as strings.
type Inspectable interface {
	Name() string
	Snapshot() map[string]any
	Value(key string) (any, bool)
	Subscribe(fn func(key string)) (unsubscribe func())
}

// Inspect adapts any cache to Inspectable.
func Inspect[K comparable](name string, c cachestore.Cache[K]) Inspectable {
	return &cacheView[K]{name: name, cache: c}
}

type cacheView[K comparable] struct {
	name  string
	cache cachestore.Cache[K]
}

func (v *cacheView[K]) Name() string {
	return v.name
}

func (v *cacheView[K]) Snapshot() map[string]any {
	snap := cachestore.Snapshot(v.cache)
	out := make(map[string]any, len(snap))
	for k, val := range snap {
		out[fmt.Sprint(k)] = val
	}
	return out
}

func (v *cacheView[K]) Value(key string) (any, bool) {
	for _, k := range v.cache.Keys() {
		if fmt.Sprint(k) == key {
			return v.cache.Get(k)
		}
	}
	return nil, false
}

func (v *cacheView[K]) Subscribe(fn func(key string)) func() {
	return v.cache.Subscribe(cachestore.ListenerFunc[K](func(k K) {
		fn(fmt.Sprint(k))
	}))
}
