package middleware

import "context"

type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity injects the authenticated email into the context.
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, identityContextKey, email)
}

// IdentityFromContext returns the authenticated email, or "" for an
// anonymous request.
func IdentityFromContext(ctx context.Context) string {
	v := ctx.Value(identityContextKey)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
