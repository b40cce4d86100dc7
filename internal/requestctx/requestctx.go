// Package requestctx carries per-request values through context.
package requestctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	principalKey ctxKey = "principal"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Actor names the caller for audit and logs, or "anonymous".
func Actor(ctx context.Context) string {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return "anonymous"
	}
	if p.Email != "" {
		return p.Email
	}
	return p.Name
}
