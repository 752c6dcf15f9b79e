package core

import "context"

// Client identifies who made a request, for the audit trail.
type Client struct {
	IPAddress string
	UserAgent string
}

type clientKey struct{}

// ContextWithClient attaches request origin details to ctx.
func ContextWithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFromContext returns the Client set by ContextWithClient, or the zero
// value.
func ClientFromContext(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}
