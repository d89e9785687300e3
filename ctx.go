package session

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}

// userContextKey is the Locals key the guard middleware stores the current
// user under.
const userContextKey = "session_user"

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// UserFromRouter extracts the current user placed in the router context by
// the guard middleware.
func UserFromRouter(ctx router.Context) (*User, bool) {
	raw := ctx.Locals(userContextKey)
	if raw == nil {
		return nil, false
	}
	user, ok := raw.(*User)
	return user, ok
}

// HasRole reports whether the context's user holds at least the given role.
func HasRole(ctx context.Context, role Role) bool {
	user, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return RoleIsAtLeast(user.Role, role)
}
