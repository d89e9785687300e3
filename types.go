package session

import (
	"context"
	"strings"
	"time"
)

// Logger is the minimal logging surface used across the package.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SessionData is the unit the Store persists: the token pair plus the cached
// user snapshot. Access and refresh tokens are always written and cleared
// together; a SessionData with only one of the two present is a bug upstream,
// never a valid store state.
type SessionData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// IsZero reports whether the session carries no tokens.
func (s SessionData) IsZero() bool {
	return strings.TrimSpace(s.AccessToken) == "" && strings.TrimSpace(s.RefreshToken) == ""
}

// Store is the dumb persistence layer for the session. It performs no
// validation; Get returns the zero SessionData when nothing is stored.
type Store interface {
	Get(ctx context.Context) (SessionData, error)
	Set(ctx context.Context, data SessionData) error
	Clear(ctx context.Context) error
}

// Publisher mirrors session presence into the layer the edge gate can
// observe. Publish and Clear are the explicit "publish session" steps
// invoked at state transitions, never incidental side effects.
type Publisher interface {
	Publish(token string)
	Clear()
}

// API is the surface of the upstream session endpoints that the state
// machine and refresh monitor depend on. *Client satisfies it.
type API interface {
	Login(ctx context.Context, req LoginRequest) (SessionData, error)
	GetProfile(ctx context.Context) (*User, error)
	Refresh(ctx context.Context) (SessionData, error)
}

// StateSource exposes the current auth state to render-time consumers such
// as the route guard. *Manager satisfies it.
type StateSource interface {
	Current() State
}

// Clock lets tests pin time-dependent checks.
type Clock func() time.Time

type noopPublisher struct{}

func (noopPublisher) Publish(string) {}
func (noopPublisher) Clear()         {}

func normalizePublisher(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
