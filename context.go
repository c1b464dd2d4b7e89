package mallclient

import (
	"context"

	"github.com/lingbai/mallclient/transport"
)

// WithRequestID attaches an explicit correlation id to ctx. Requests
// issued under ctx carry it in the X-Request-ID header instead of a
// generated one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return transport.WithRequestID(ctx, id)
}

// RequestIDFromContext returns the correlation id pinned on ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return transport.RequestIDFromContext(ctx)
}
