package authgate

import (
	"context"
)

var authCtxKey = &contextKey{"auth"}

type contextKey struct {
	name string
}

// WithAuthContext sets the AuthContext of the request in ctx
func WithAuthContext(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, authCtxKey, auth)
}

// AuthFromContext returns the AuthContext stored in ctx. A context
// without one is anonymous.
func AuthFromContext(ctx context.Context) AuthContext {
	if ctx == nil {
		return Anonymous()
	}
	auth, ok := ctx.Value(authCtxKey).(AuthContext)
	if !ok {
		return Anonymous()
	}
	return auth
}
