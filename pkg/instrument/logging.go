package instrument

import (
	"log/slog"
	"time"

	"github.com/vango-dev/cachestore/pkg/cachestore"
)

// Logging creates middleware that logs each dispatch at debug level and
// failed dispatches at warn level. If logger is nil, slog.Default() is used.
func Logging(logger *slog.Logger) cachestore.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return cachestore.MiddlewareFunc(func(info *cachestore.DispatchInfo, next func() error) error {
		start := time.Now()
		err := next()

		attrs := []any{
			"store", info.Store,
			"action", info.ActionName(),
			"depth", info.Depth,
			"duration", time.Since(start),
		}
		if err != nil {
			logger.WarnContext(info.Context(), "dispatch failed", append(attrs, "error", err)...)
			return err
		}
		logger.DebugContext(info.Context(), "dispatch", attrs...)
		return nil
	})
}
