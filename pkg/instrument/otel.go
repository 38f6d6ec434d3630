package instrument

import (
	"fmt"
	"time"

	"github.com/vango-dev/cachestore/pkg/cachestore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for store dispatches.
const defaultTracerName = "cachestore"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "cachestore").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider from otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// Filter determines which dispatches to trace.
	// Return true to trace the dispatch, false to skip.
	// If nil, all dispatches are traced.
	Filter func(info *cachestore.DispatchInfo) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(info *cachestore.DispatchInfo) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithDispatchFilter sets a filter function for dispatches.
func WithDispatchFilter(filter func(info *cachestore.DispatchInfo) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(info *cachestore.DispatchInfo) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every dispatch.
//
// Each dispatch gets a span carrying the store, action, re-entrancy depth
// and whether the store is a scope. The span context replaces the dispatch
// context, so re-entrant dispatches and actions forwarded by a scope become
// child spans.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main():
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) cachestore.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return cachestore.MiddlewareFunc(func(info *cachestore.DispatchInfo, next func() error) error {
		if config.Filter != nil && !config.Filter(info) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("cachestore.store", info.Store),
			attribute.String("cachestore.action", info.ActionName()),
			attribute.Int("cachestore.depth", info.Depth),
			attribute.Bool("cachestore.scoped", info.Scoped),
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(info)...)
		}

		ctx, span := tracer.Start(
			info.Context(),
			spanName(info),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
			trace.WithTimestamp(time.Now()),
		)
		defer span.End()

		info.SetContext(ctx)

		err := next()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}

func spanName(info *cachestore.DispatchInfo) string {
	return fmt.Sprintf("%s %s", info.Store, info.ActionName())
}
