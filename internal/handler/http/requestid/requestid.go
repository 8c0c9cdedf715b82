// Package requestid assigns every HTTP request an id for log correlation.
// Ids arriving in the X-Request-ID header are propagated so a caller can
// trace its request through the logs; requests without one get a UUID.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is unexported so no other package can collide with our key.
type contextKey string

const (
	// RequestIDKey stores the request id in the context.
	RequestIDKey contextKey = "request_id"
	// RequestIDHeader is the header carrying the id, both ways.
	RequestIDHeader = "X-Request-ID"
)

// FromContext returns the request id, or "" when the context has none.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores the request id in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Middleware adopts the caller's X-Request-ID or generates a UUID, exposes
// it to handlers through the context, and echoes it in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
