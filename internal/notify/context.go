package notify

import "context"

type hubKey struct{}

// WithHub returns a copy of ctx that carries hub.
func WithHub(ctx context.Context, hub *Hub) context.Context {
	return context.WithValue(ctx, hubKey{}, hub)
}

// FromContext returns the hub carried by ctx, or nil.
func FromContext(ctx context.Context) *Hub {
	if ctx == nil {
		return nil
	}
	hub, _ := ctx.Value(hubKey{}).(*Hub)
	return hub
}
