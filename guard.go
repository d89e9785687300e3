package session

import (
	"net/http"
	"net/url"

	"github.com/goliatone/go-router"
)

// GuardOutcome is what the route guard decided for a request.
type GuardOutcome string

const (
	// GuardAllow renders the protected content.
	GuardAllow GuardOutcome = "allow"
	// GuardWait holds rendering while the boot check is still resolving.
	GuardWait GuardOutcome = "wait"
	// GuardRedirect sends the visitor elsewhere.
	GuardRedirect GuardOutcome = "redirect"
)

// GuardDecision carries the outcome plus the destination for redirects.
type GuardDecision struct {
	Outcome    GuardOutcome
	RedirectTo string
}

// GuardOption customizes the guard.
type GuardOption func(*Guard)

// WithGuardLoginPath overrides where unauthenticated visitors are sent.
func WithGuardLoginPath(p string) GuardOption {
	return func(g *Guard) {
		if p != "" {
			g.loginPath = p
		}
	}
}

// WithGuardUnauthorizedPath overrides where wrong-role visitors are sent.
func WithGuardUnauthorizedPath(p string) GuardOption {
	return func(g *Guard) {
		if p != "" {
			g.unauthorizedPath = p
		}
	}
}

// WithGuardLandingPath overrides where authenticated visitors of auth-only
// pages are sent.
func WithGuardLandingPath(p string) GuardOption {
	return func(g *Guard) {
		if p != "" {
			g.landingPath = p
		}
	}
}

// WithGuardLogger sets the logger.
func WithGuardLogger(l Logger) GuardOption {
	return func(g *Guard) {
		g.logger = normalizeLogger(l)
	}
}

// Guard is the render-time backstop behind the edge gate. Unlike the gate it
// sees the decoded user, so role checks are enforced here: wrong role goes
// to the unauthorized page, not to login.
type Guard struct {
	source           StateSource
	loginPath        string
	unauthorizedPath string
	landingPath      string
	logger           Logger
}

// NewGuard builds a guard over the given state source.
func NewGuard(source StateSource, opts ...GuardOption) *Guard {
	g := &Guard{
		source:           source,
		loginPath:        DefaultLoginPath,
		unauthorizedPath: DefaultUnauthorizedPath,
		landingPath:      DefaultLandingPath,
		logger:           defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Evaluate decides what to do with a request for requestPath. requireAuth
// demands an authenticated session; a non-empty allowedRoles additionally
// demands one of those roles. With requireAuth false the path is auth-only
// style: authenticated visitors are redirected to the landing page.
func (g *Guard) Evaluate(requestPath string, requireAuth bool, allowedRoles ...Role) GuardDecision {
	state := g.source.Current()

	if state.Status == StatusLoading {
		return GuardDecision{Outcome: GuardWait}
	}

	if !requireAuth {
		if state.Authenticated() {
			return GuardDecision{Outcome: GuardRedirect, RedirectTo: g.landingPath}
		}
		return GuardDecision{Outcome: GuardAllow}
	}

	if !state.Authenticated() {
		return GuardDecision{
			Outcome:    GuardRedirect,
			RedirectTo: LoginRedirect(g.loginPath, requestPath),
		}
	}

	if !RoleIn(state.User.Role, allowedRoles) {
		g.logger.Info(
			"role check failed: path=%s role=%s",
			requestPath, state.User.Role,
		)
		return GuardDecision{Outcome: GuardRedirect, RedirectTo: g.unauthorizedPath}
	}

	return GuardDecision{Outcome: GuardAllow}
}

// Middleware adapts Evaluate into router middleware. A wait decision answers
// 503 with Retry-After so clients poll instead of seeing a half-resolved
// page.
func (g *Guard) Middleware(requireAuth bool, allowedRoles ...Role) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := g.Evaluate(c.Path(), requireAuth, allowedRoles...)

			switch decision.Outcome {
			case GuardWait:
				c.SetHeader("Retry-After", "1")
				return c.Status(http.StatusServiceUnavailable).JSON(http.StatusServiceUnavailable, map[string]any{
					"success": false,
					"message": "session state is still resolving",
				})
			case GuardRedirect:
				return c.Redirect(decision.RedirectTo, redirectStatus(c))
			default:
				if state := g.source.Current(); state.User != nil {
					c.Locals(userContextKey, state.User)
				}
				return hf(c)
			}
		}
	}
}

// LoginRedirect builds the login destination carrying the originally
// requested path so the flow can return there after success.
func LoginRedirect(loginPath, requestPath string) string {
	p := CleanPath(requestPath)
	if p == RootPath || p == CleanPath(loginPath) {
		return loginPath
	}
	return loginPath + "?redirect=" + url.QueryEscape(p)
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
