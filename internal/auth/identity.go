package auth

import (
	"context"

	"eventify/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller, carried in the request context
// instead of any global session state.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   models.Role
}

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// FromContext returns the request identity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok
}
