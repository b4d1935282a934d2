package tracing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type traceID struct{}

// InjectTraceID attaches a fresh trace id to ctx and to the zerolog logger
// returned by log.Ctx.
func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	ctx = context.WithValue(ctx, traceID{}, id)
	logger := log.With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}

// TraceID returns the id injected by InjectTraceID, or "" if there is none.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceID{}).(string)
	return id
}

// Middleware gives every request its own trace id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := InjectTraceID(r.Context())
		w.Header().Set("X-Trace-Id", TraceID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
