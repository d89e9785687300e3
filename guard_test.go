package session_test

import (
	"net/http"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/herdline/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedState(role session.Role) session.State {
	return session.State{
		Status: session.StatusAuthenticated,
		User:   &session.User{ID: 7, Email: "pepe.rone@example.com", Role: role},
	}
}

func TestGuardWaitsWhileLoading(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: session.State{Status: session.StatusLoading}})

	decision := g.Evaluate("/overview", true)
	assert.Equal(t, session.GuardWait, decision.Outcome)
}

func TestGuardRedirectsUnauthenticatedToLogin(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: session.State{Status: session.StatusUnauthenticated}})

	decision := g.Evaluate("/manage-users", true)
	assert.Equal(t, session.GuardRedirect, decision.Outcome)
	assert.Equal(t, "/login?redirect=%2Fmanage-users", decision.RedirectTo)
}

func TestGuardAllowsAuthenticated(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: authedState(session.RoleFarm)})

	decision := g.Evaluate("/overview", true)
	assert.Equal(t, session.GuardAllow, decision.Outcome)
}

func TestGuardRoleMismatchGoesToUnauthorized(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: authedState(session.RoleFarmUser)})

	decision := g.Evaluate("/manage-users", true, session.RoleAdmin)
	assert.Equal(t, session.GuardRedirect, decision.Outcome)
	assert.Equal(t, session.DefaultUnauthorizedPath, decision.RedirectTo)
}

func TestGuardRoleMatchAllows(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: authedState(session.RoleAdmin)})

	decision := g.Evaluate("/manage-users", true, session.RoleAdmin)
	assert.Equal(t, session.GuardAllow, decision.Outcome)
}

func TestGuardEmptyRoleSetAllowsAnyRole(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: authedState(session.RoleViewer)})

	decision := g.Evaluate("/overview", true)
	assert.Equal(t, session.GuardAllow, decision.Outcome)
}

func TestGuardAuthOnlyRedirectsAuthenticated(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: authedState(session.RoleFarm)})

	decision := g.Evaluate("/login", false)
	assert.Equal(t, session.GuardRedirect, decision.Outcome)
	assert.Equal(t, session.DefaultLandingPath, decision.RedirectTo)
}

func TestGuardAuthOnlyAllowsUnauthenticated(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: session.State{Status: session.StatusUnauthenticated}})

	decision := g.Evaluate("/login", false)
	assert.Equal(t, session.GuardAllow, decision.Outcome)
}

func TestGuardMiddlewareRedirects(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: session.State{Status: session.StatusUnauthenticated}})

	ctx := newFakeContext("/settings")
	handlerCalled := false

	handler := func(c router.Context) error {
		handlerCalled = true
		return nil
	}

	err := g.Middleware(true)(handler)(ctx)
	require.NoError(t, err)
	assert.False(t, handlerCalled)
	assert.Equal(t, "/login?redirect=%2Fsettings", ctx.redirectedTo)
	assert.Equal(t, http.StatusFound, ctx.redirectStatus)
}

func TestGuardMiddlewareInjectsUser(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: authedState(session.RoleAdmin)})

	ctx := newFakeContext("/manage-users")

	var seen *session.User
	handler := func(c router.Context) error {
		seen, _ = session.UserFromRouter(c)
		return nil
	}

	err := g.Middleware(true, session.RoleAdmin)(handler)(ctx)
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, session.RoleAdmin, seen.Role)
}

func TestGuardMiddlewareWaitAnswers503(t *testing.T) {
	g := session.NewGuard(stubStateSource{state: session.State{Status: session.StatusLoading}})

	ctx := newFakeContext("/overview")
	handler := func(c router.Context) error { return nil }

	err := g.Middleware(true)(handler)(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, ctx.jsonStatus)
	assert.Equal(t, "1", ctx.setHeaders["Retry-After"])
}
