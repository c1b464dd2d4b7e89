package transport

import "context"

type requestIDContextKey struct{}

// WithRequestID pins the correlation id for the request issued under ctx,
// overriding the generated one. Useful when a caller already has a trace
// id to propagate.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// RequestIDFromContext returns the pinned correlation id, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok && id != ""
}
