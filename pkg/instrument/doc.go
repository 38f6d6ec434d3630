// Package instrument provides dispatch middleware and cache watchers that
// report store activity to Prometheus, OpenTelemetry and slog.
//
// Middleware is attached per store with cachestore.WithMiddleware:
//
//	m := instrument.NewMetrics(instrument.WithNamespace("myapp"))
//	store := cachestore.NewStore(defaults, handler, deps,
//	    cachestore.WithName("posts"),
//	    cachestore.WithMiddleware(
//	        instrument.OpenTelemetry(),
//	        m.Middleware(),
//	        instrument.Logging(logger),
//	    ),
//	)
//
//	// Count mutations, including writes that bypass Dispatch
//	stop := instrument.WatchCache(m, store.Name(), store)
//	defer stop()
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
package instrument
