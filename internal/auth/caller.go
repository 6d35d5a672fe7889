package auth

import (
	"context"

	"github.com/lrivas/postly-be/internal/models"
)

// CallerKey is the context key under which the resolved caller is stored.
// The router fills it after mapping token claims to a live user row, so a
// deactivated account's outstanding tokens stop working immediately.
const CallerKey = contextKey("caller")

// WithCaller stores the resolved caller on the context.
func WithCaller(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, CallerKey, user)
}

// CallerFromContext returns the caller stored by the router middleware.
func CallerFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(CallerKey).(models.User)
	return user, ok
}
