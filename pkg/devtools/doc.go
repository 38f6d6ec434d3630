// Package devtools serves a live inspector for running stores.
//
// Stores are registered with an Inspector and exposed over HTTP:
//
//	GET /stores             list registered stores
//	GET /stores/{id}        current snapshot of one store
//	GET /stores/{id}/ws     WebSocket: snapshot, then one message per change
//
// Example:
//
//	insp := devtools.NewInspector(logger)
//	id := insp.Register(devtools.Inspect(store.Name(), store))
//	defer insp.Unregister(id)
//	http.ListenAndServe("localhost:7331", insp.Handler())
//
// Values are encoded as JSON. Values that cannot be encoded, such as
// injected behaviours, are reported by type name.
package devtools
