package obs

import (
	"context"
	"rental-quote-service/internal/logx"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// WithRequestID stores id where RequestID (and chi's middleware) find it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, middleware.RequestIDKey, id)
}

// RequestID returns the request id carried by ctx, or "-".
func RequestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

// Time logs the duration of an operation at debug level, or at warn level
// when the deferred error is non-nil.
//
//	defer obs.Time(ctx, logger, "ors.matrix")(&err)
func Time(ctx context.Context, logger logx.Logger, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		fields := []logx.Field{
			logx.String("req_id", reqID),
			logx.String("op", name),
			logx.Int64("dur_ms", time.Since(start).Milliseconds()),
		}
		if errp != nil && *errp != nil {
			logger.Warn("operation failed", append(fields, logx.Err(*errp))...)
			return
		}
		logger.Debug("operation done", fields...)
	}
}
