package cachestore

import "log/slog"

// Option configures a store or scope at construction.
type Option func(*options)

type options struct {
	name       string
	logger     *slog.Logger
	middleware []Middleware

	// local holds a map[C]any for scopes; any avoids generics in Option.
	local any
}

// WithName sets the name used in logs, metrics and traces.
// Defaults to "cache-<id>", "store-<id>" or "scope-<id>".
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMiddleware appends dispatch middleware. The first middleware is the
// outermost. Ignored by stores that cannot dispatch.
func WithMiddleware(mw ...Middleware) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithLocal declares child-only keys of a scope and their initial values.
// Only declared local keys accept writes; other unmapped keys are ignored.
// Ignored by non-scoped stores.
func WithLocal[C comparable](defaults map[C]any) Option {
	return func(o *options) {
		o.local = defaults
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
