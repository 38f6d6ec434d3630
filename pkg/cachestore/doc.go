// Package cachestore provides an observable, dynamically typed key/value
// container for UI components, with scoped views and action dispatch.
//
// A store holds values of any type under a closed set of keys. The caller
// names the expected type when reading, and every mutation notifies the
// store's subscribers exactly once.
//
// # Core Types
//
// KeyedCache[K] is the plain container:
//
//	type Key int
//	const (
//	    Count Key = iota
//	    Color
//	)
//
//	c := cachestore.New(map[Key]any{Count: 0, Color: "red"})
//	n := cachestore.Resolve[int](c, Count)          // panics if absent or not an int
//	cachestore.Update(c, Count, func(n *int) { *n++ })
//	c.Set(Color, "blue")
//
// ScopedCache[P, C] is a view of a parent exposing a remapped subset of its
// keys. Child-only keys can be injected with WithLocal:
//
//	list := cachestore.Scope(c, cachestore.Pairs(map[Key]ListKey{Count: Items}),
//	    cachestore.WithLocal(map[ListKey]any{Refresh: func() {}}))
//
// Subscribers of a scope only hear about parent keys that project into the
// scope.
//
// ActionStore[K, A, D] centralizes mutation in one handler:
//
//	s := cachestore.NewStore(map[Key]any{Count: 0},
//	    cachestore.HandlerFunc[Key, Action, Deps](func(s cachestore.Store[Key, Action, Deps], a Action, d Deps) error {
//	        cachestore.Update(s, Count, func(n *int) { *n++ })
//	        return nil
//	    }),
//	    deps,
//	)
//	err := s.Dispatch(Increment)
//
// ScopeStore derives a child action store. A child action is handled by the
// child's own handler when it has one, otherwise it is mapped to a parent
// action and dispatched on the parent; unmapped actions are dropped.
//
// # Errors
//
// Resolve and Update panic with a *KeyError when a key is missing or holds a
// value of another type. These are wiring mistakes, not runtime conditions.
// Writes to unmapped scope keys, dropped actions and writes to disposed
// stores are ignored and logged at debug level.
//
// # Thread Safety
//
// Each KeyedCache guards its map with a mutex and notifies listeners without
// holding it. Update mutators run under the lock and must not call back into
// the same cache. Dispatch is synchronous and re-entrant. A handler receives
// a view of the store whose Dispatch continues the running call chain, so
// nested dispatches share its context and depth; a Dispatch made elsewhere,
// from any goroutine, starts a new chain.
package cachestore
