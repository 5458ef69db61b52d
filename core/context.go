package core

import "context"

// Context keys for execution options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
)

// withSuppressHeader marks the context so run headers are not printed.
func withSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// WithSuppressHeader returns a context that silences run headers. Machine
// readable callers such as the MCP server use it to keep stdout clean.
func WithSuppressHeader(ctx context.Context) context.Context {
	return withSuppressHeader(ctx)
}
