package session

import (
	"path"
	"strings"
)

// RouteClass partitions paths for gating. The partition is total: every path
// maps to exactly one class, and anything not named in a set is treated as
// protected.
type RouteClass string

const (
	RouteProtected RouteClass = "protected"
	RouteAuthOnly  RouteClass = "auth_only"
	RoutePublic    RouteClass = "public"
)

// Well-known paths used by the gate and guard.
const (
	RootPath                = "/"
	DefaultLoginPath        = "/login"
	DefaultLandingPath      = "/overview"
	DefaultUnauthorizedPath = "/unauthorized"
)

// DefaultProtectedRoutes require an authenticated session.
var DefaultProtectedRoutes = []string{
	"/overview",
	"/profile",
	"/settings",
	"/manage-ads",
	"/manage-users",
	"/users-subscription",
	"/notifications",
	"/support",
}

// DefaultAuthRoutes are only for unauthenticated visitors; a logged-in user
// is redirected away from them.
var DefaultAuthRoutes = []string{
	"/login",
	"/signup",
	"/forgot-password",
	"/reset-password",
	"/reset-success",
	"/verify-otp",
	"/success",
}

// DefaultPublicRoutes carry no requirement.
var DefaultPublicRoutes = []string{
	"/about",
	"/contact",
	"/terms",
	"/privacy",
	"/help",
	"/faq",
	"/unauthorized",
}

// DefaultSkipPrefixes name paths the gate never inspects: static assets and
// the API surface itself.
var DefaultSkipPrefixes = []string{
	"/api",
	"/static",
	"/assets",
	"/_build",
}

// RouteClassifier decides the class of a request path by longest-prefix
// matching against three named sets.
type RouteClassifier struct {
	protected    []string
	authOnly     []string
	public       []string
	skipPrefixes []string
}

// ClassifierOption customizes the route sets.
type ClassifierOption func(*RouteClassifier)

// WithProtectedRoutes replaces the protected set.
func WithProtectedRoutes(routes ...string) ClassifierOption {
	return func(c *RouteClassifier) {
		c.protected = normalizeRoutes(routes)
	}
}

// WithAuthRoutes replaces the auth-only set.
func WithAuthRoutes(routes ...string) ClassifierOption {
	return func(c *RouteClassifier) {
		c.authOnly = normalizeRoutes(routes)
	}
}

// WithPublicRoutes replaces the public set.
func WithPublicRoutes(routes ...string) ClassifierOption {
	return func(c *RouteClassifier) {
		c.public = normalizeRoutes(routes)
	}
}

// WithSkipPrefixes replaces the never-gated prefixes.
func WithSkipPrefixes(prefixes ...string) ClassifierOption {
	return func(c *RouteClassifier) {
		c.skipPrefixes = normalizeRoutes(prefixes)
	}
}

// NewRouteClassifier builds a classifier with the default dashboard route
// sets unless overridden.
func NewRouteClassifier(opts ...ClassifierOption) *RouteClassifier {
	c := &RouteClassifier{
		protected:    DefaultProtectedRoutes,
		authOnly:     DefaultAuthRoutes,
		public:       DefaultPublicRoutes,
		skipPrefixes: DefaultSkipPrefixes,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Classify maps a path to its class. Unknown paths are protected.
func (c *RouteClassifier) Classify(requestPath string) RouteClass {
	p := CleanPath(requestPath)

	switch {
	case matchesAny(p, c.authOnly):
		return RouteAuthOnly
	case matchesAny(p, c.public):
		return RoutePublic
	case matchesAny(p, c.protected):
		return RouteProtected
	default:
		return RouteProtected
	}
}

// ShouldSkip reports whether the gate should pass the path through without
// inspection: asset and API paths, plus anything that looks like a file.
func (c *RouteClassifier) ShouldSkip(requestPath string) bool {
	p := CleanPath(requestPath)

	for _, prefix := range c.skipPrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	return path.Ext(p) != ""
}

// IsRoot reports whether the path is the site root, which gets its own row
// in the gate's decision matrix.
func (c *RouteClassifier) IsRoot(requestPath string) bool {
	return CleanPath(requestPath) == RootPath
}

// CleanPath normalizes a request path for matching: strips query fragments,
// collapses duplicate slashes, drops the trailing slash.
func CleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return RootPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	return p
}

func matchesAny(p string, routes []string) bool {
	for _, route := range routes {
		if p == route || strings.HasPrefix(p, route+"/") {
			return true
		}
	}
	return false
}

func normalizeRoutes(routes []string) []string {
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		r = CleanPath(r)
		if r != RootPath {
			out = append(out, r)
		}
	}
	return out
}
