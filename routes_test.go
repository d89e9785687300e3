package session_test

import (
	"testing"

	"github.com/herdline/go-session"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDefaultSets(t *testing.T) {
	c := session.NewRouteClassifier()

	protected := []string{
		"/overview", "/profile", "/settings", "/manage-ads",
		"/manage-users", "/users-subscription", "/notifications", "/support",
	}
	for _, p := range protected {
		assert.Equal(t, session.RouteProtected, c.Classify(p), p)
	}

	authOnly := []string{
		"/login", "/signup", "/forgot-password", "/reset-password",
		"/reset-success", "/verify-otp", "/success",
	}
	for _, p := range authOnly {
		assert.Equal(t, session.RouteAuthOnly, c.Classify(p), p)
	}

	public := []string{
		"/about", "/contact", "/terms", "/privacy", "/help", "/faq", "/unauthorized",
	}
	for _, p := range public {
		assert.Equal(t, session.RoutePublic, c.Classify(p), p)
	}
}

func TestClassifyUnknownDefaultsToProtected(t *testing.T) {
	c := session.NewRouteClassifier()

	assert.Equal(t, session.RouteProtected, c.Classify("/some/new/page"))
	assert.Equal(t, session.RouteProtected, c.Classify("/admin"))
}

func TestClassifyPrefixMatching(t *testing.T) {
	c := session.NewRouteClassifier()

	assert.Equal(t, session.RouteProtected, c.Classify("/manage-users/42"))
	assert.Equal(t, session.RouteAuthOnly, c.Classify("/reset-password/confirm"))
	// a shared prefix is not a path prefix
	assert.Equal(t, session.RouteProtected, c.Classify("/loginish"))
}

func TestShouldSkip(t *testing.T) {
	c := session.NewRouteClassifier()

	assert.True(t, c.ShouldSkip("/api/auth/login/"))
	assert.True(t, c.ShouldSkip("/static/app.css"))
	assert.True(t, c.ShouldSkip("/assets/logo.svg"))
	assert.True(t, c.ShouldSkip("/favicon.ico"))
	assert.True(t, c.ShouldSkip("/robots.txt"))

	assert.False(t, c.ShouldSkip("/overview"))
	assert.False(t, c.ShouldSkip("/"))
}

func TestIsRoot(t *testing.T) {
	c := session.NewRouteClassifier()

	assert.True(t, c.IsRoot("/"))
	assert.True(t, c.IsRoot(""))
	assert.False(t, c.IsRoot("/overview"))
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, "/", session.CleanPath(""))
	assert.Equal(t, "/", session.CleanPath("/"))
	assert.Equal(t, "/overview", session.CleanPath("/overview/"))
	assert.Equal(t, "/overview", session.CleanPath("/overview?tab=herd"))
	assert.Equal(t, "/a/b", session.CleanPath("/a//b"))
	assert.Equal(t, "/overview", session.CleanPath("overview"))
}

func TestClassifierOverrides(t *testing.T) {
	c := session.NewRouteClassifier(
		session.WithProtectedRoutes("/dash"),
		session.WithAuthRoutes("/enter"),
		session.WithPublicRoutes("/open"),
	)

	assert.Equal(t, session.RouteProtected, c.Classify("/dash"))
	assert.Equal(t, session.RouteAuthOnly, c.Classify("/enter"))
	assert.Equal(t, session.RoutePublic, c.Classify("/open"))
	// former defaults fall back to the unknown bucket
	assert.Equal(t, session.RouteProtected, c.Classify("/login"))
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t,
		"/login?redirect=%2Fmanage-users",
		session.LoginRedirect("/login", "/manage-users"))
	assert.Equal(t,
		"/login?redirect=%2Fmanage-users%2F42",
		session.LoginRedirect("/login", "/manage-users/42"))
	assert.Equal(t, "/login", session.LoginRedirect("/login", "/"))
	assert.Equal(t, "/login", session.LoginRedirect("/login", "/login"))
}
