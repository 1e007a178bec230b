package ctxutil

import "context"

type principalKey struct{}

// Principal is the authenticated caller attached by the auth middleware.
type Principal struct {
	Subject string
	Groups  []string
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

// SubjectOr returns the principal subject, or def when the context is anonymous.
func SubjectOr(ctx context.Context, def string) string {
	if p := GetPrincipal(ctx); p != nil && p.Subject != "" {
		return p.Subject
	}
	return def
}
