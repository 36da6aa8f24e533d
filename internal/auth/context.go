package auth

import (
	"context"

	"github.com/saucier/saucier/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const authContextKey contextKey = "auth_context"

// ContextWithAuth adds AuthContext to the context.
func ContextWithAuth(ctx context.Context, a *model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, a)
}

// AuthFromContext retrieves AuthContext from the context.
// Returns nil if not present.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	a, ok := ctx.Value(authContextKey).(*model.AuthContext)
	if !ok {
		return nil
	}
	return a
}

// OwnerFromContext returns the authenticated user's id. The second
// return is false if the request is unauthenticated.
func OwnerFromContext(ctx context.Context) (string, bool) {
	a := AuthFromContext(ctx)
	if a == nil {
		return "", false
	}
	return a.UserID, true
}
