package session

import (
	"sync"
	"time"

	"github.com/goliatone/go-router"
)

// DefaultCookieName is the cookie the edge gate reads the mirrored token
// from.
const DefaultCookieName = "auth-token"

// CookieMirror closes the gap between the token store (one execution
// context) and the edge gate (another): the state machine publishes the
// current token here, and the mirror writes it onto every outgoing response
// so the gate can observe it on the next navigation.
//
// Publish/Clear are the only mutation points; they are called exclusively at
// the state transitions that mandate mirroring.
type CookieMirror struct {
	mu       sync.RWMutex
	name     string
	secure   bool
	duration time.Duration
	token    string
	dirty    bool
}

// CookieMirrorOption customizes the mirror.
type CookieMirrorOption func(*CookieMirror)

// WithCookieName overrides the mirrored cookie name.
func WithCookieName(name string) CookieMirrorOption {
	return func(m *CookieMirror) {
		if name != "" {
			m.name = name
		}
	}
}

// WithSecureCookies marks the mirrored cookie Secure; enable on HTTPS.
func WithSecureCookies(secure bool) CookieMirrorOption {
	return func(m *CookieMirror) {
		m.secure = secure
	}
}

// WithCookieDuration overrides the mirrored cookie lifetime.
func WithCookieDuration(d time.Duration) CookieMirrorOption {
	return func(m *CookieMirror) {
		if d > 0 {
			m.duration = d
		}
	}
}

// NewCookieMirror returns a mirror with the default cookie contract:
// name "auth-token", path "/", SameSite strict.
func NewCookieMirror(opts ...CookieMirrorOption) *CookieMirror {
	m := &CookieMirror{
		name:     DefaultCookieName,
		duration: 24 * time.Hour,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Publish records the token to mirror on subsequent responses.
func (m *CookieMirror) Publish(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.dirty = true
}

// Clear schedules removal of the mirrored cookie.
func (m *CookieMirror) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.dirty = true
}

// Token returns the currently published token, empty after Clear.
func (m *CookieMirror) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Apply writes the pending cookie change onto the response. A published
// token becomes a SameSite=Strict cookie; a cleared one becomes an
// immediately-expired Set-Cookie so the gate and the store cannot disagree
// after logout.
func (m *CookieMirror) Apply(ctx router.Context) {
	m.mu.Lock()
	if !m.dirty {
		m.mu.Unlock()
		return
	}
	token := m.token
	m.dirty = false
	m.mu.Unlock()

	if token != "" {
		ctx.Cookie(&router.Cookie{
			Name:     m.name,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(m.duration),
			Secure:   m.secure,
			SameSite: "Strict",
		})
		return
	}

	ctx.Cookie(&router.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		Secure:   m.secure,
		SameSite: "Strict",
	})
}

// Middleware applies pending mirror changes on every request so a login or
// logout lands on the very next response.
func (m *CookieMirror) Middleware() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			m.Apply(ctx)
			return next(ctx)
		}
	}
}
