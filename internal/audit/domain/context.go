package domain

import (
	"context"
)

// requestIDKey is a context key type for carrying the request correlation id.
type requestIDKey struct{}

// WithRequestID stores the request correlation id in the context. The HTTP
// layer calls this once per request so every audit entry recorded downstream
// carries the same id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFrom retrieves the request correlation id from the context.
// Returns an empty string when no id was set (background jobs, CLI commands).
func RequestIDFrom(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}
