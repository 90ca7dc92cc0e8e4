package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "origin_ip"
	ctxKeyUserAgent contextKey = "origin_ua"
)

// ContextWithIPAddress records the client IP for the run's origin.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithUserAgent records the client User-Agent for the run's origin.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// OriginFromContext returns whatever origin metadata ctx carries.
func OriginFromContext(ctx context.Context) Origin {
	var o Origin
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		o.IPAddress = v
	}
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		o.UserAgent = v
	}
	return o
}
