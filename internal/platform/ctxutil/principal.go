package ctxutil

import "context"

type principalKey struct{}

// Principal is the authenticated caller attached by the auth middleware.
type Principal struct {
	Subject string
	Scopes  []string
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func GetPrincipal(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return p
	}
	return nil
}

// Actor returns the subject recorded against writes, or "anonymous".
func Actor(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil && p.Subject != "" {
		return p.Subject
	}
	return "anonymous"
}
