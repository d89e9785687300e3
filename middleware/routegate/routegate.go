package routegate

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/herdline/go-session"
)

var defaultTokenLookup = "header:" + router.HeaderAuthorization + ",header:X-Auth-Token,cookie:" + session.DefaultCookieName

// Config drives the per-navigation gate. The gate only checks structural
// token validity and the unverified expiry claim: it is a UX layer, and real
// authorization stays with the backend API.
type Config struct {
	// Filter skips the gate entirely for matching requests.
	Filter func(router.Context) bool
	// Classifier partitions request paths. Defaults to the dashboard sets.
	Classifier *session.RouteClassifier
	// TokenLookup lists candidate token sources in priority order, e.g.
	// "header:Authorization,header:X-Auth-Token,cookie:auth-token".
	TokenLookup string
	// AuthScheme strips the scheme prefix off the Authorization header.
	AuthScheme string
	// LoginPath receives unauthenticated visitors of protected paths.
	LoginPath string
	// LandingPath receives authenticated visitors of auth-only paths and
	// the root.
	LandingPath string
	// AllowedOrigins is the CORS allow-list for the API surface.
	AllowedOrigins []string
	// HSTS adds Strict-Transport-Security; enable behind TLS only.
	HSTS bool
	// Clock overrides time.Now for expiry checks.
	Clock func() time.Time
	Logger session.Logger
}

// New builds the gate middleware. Every response, redirect or pass-through,
// leaves with the security headers attached. The gate never fails a request
// on its own error: an unexpected panic during classification lets the
// request through untouched, with the render-time guard as the backstop.
func New(config ...Config) router.MiddlewareFunc {
	cfg := getDefaultConfig(config...)
	extractors := getExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) (err error) {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			path := session.CleanPath(ctx.Path())

			if cfg.Classifier.ShouldSkip(path) {
				return ctx.Next()
			}

			applySecurityHeaders(ctx, cfg)

			defer func() {
				if r := recover(); r != nil {
					cfg.Logger.Error("gate recovered, allowing request: %s", print.MaybePrettyJSON(map[string]any{
						"path":  path,
						"panic": r,
					}))
					err = ctx.Next()
				}
			}()

			authenticated := hasLiveToken(ctx, extractors, cfg.Clock)

			if path == session.RootPath {
				if authenticated {
					return redirect(ctx, cfg.LandingPath)
				}
				return ctx.Next()
			}

			switch cfg.Classifier.Classify(path) {
			case session.RouteAuthOnly:
				if authenticated {
					return redirect(ctx, cfg.LandingPath)
				}
			case session.RoutePublic:
			default:
				if !authenticated {
					cfg.Logger.Debug("gating unauthenticated request: path=%s", path)
					return redirect(ctx, session.LoginRedirect(cfg.LoginPath, path))
				}
			}

			return ctx.Next()
		}
	}
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Classifier == nil {
		cfg.Classifier = session.NewRouteClassifier()
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.LoginPath == "" {
		cfg.LoginPath = session.DefaultLoginPath
	}

	if cfg.LandingPath == "" {
		cfg.LandingPath = session.DefaultLandingPath
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	return cfg
}

// hasLiveToken reports whether the request carries a structurally valid,
// unexpired token. Malformed or expired tokens classify as unauthenticated;
// they never surface as errors.
func hasLiveToken(ctx router.Context, extractors []tokenExtractor, clock func() time.Time) bool {
	var raw string
	for _, extractor := range extractors {
		if raw = extractor(ctx); raw != "" {
			break
		}
	}

	if raw == "" {
		return false
	}

	if !session.IsWellFormed(raw) {
		return false
	}

	return !session.Expired(raw, clock())
}

func redirect(ctx router.Context, dest string) error {
	status := http.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		status = http.StatusFound
	}
	return ctx.Redirect(dest, status)
}

func applySecurityHeaders(ctx router.Context, cfg Config) {
	ctx.SetHeader("X-Frame-Options", "DENY")
	ctx.SetHeader("X-Content-Type-Options", "nosniff")
	ctx.SetHeader("X-XSS-Protection", "1; mode=block")
	ctx.SetHeader("Referrer-Policy", "strict-origin-when-cross-origin")

	if cfg.HSTS {
		ctx.SetHeader("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	if origin := ctx.Header("Origin"); origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
		ctx.SetHeader("Access-Control-Allow-Origin", origin)
		ctx.SetHeader("Access-Control-Allow-Credentials", "true")
		ctx.SetHeader("Access-Control-Allow-Headers", "Authorization, X-Auth-Token, Content-Type")
		ctx.SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(origin, a) {
			return true
		}
	}
	return false
}

type tokenExtractor func(c router.Context) string

// getExtractors parses a lookup string into candidate sources. First
// non-empty match wins.
func getExtractors(tokenLookup, authScheme string) []tokenExtractor {
	extractors := make([]tokenExtractor, 0)

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			if strings.EqualFold(parts[1], router.HeaderAuthorization) {
				extractors = append(extractors, tokenFromSchemeHeader(parts[1], authScheme))
			} else {
				extractors = append(extractors, tokenFromHeader(parts[1]))
			}
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		}
	}

	return extractors
}

// tokenFromSchemeHeader strips the auth scheme off a header value.
func tokenFromSchemeHeader(header, authScheme string) tokenExtractor {
	return func(c router.Context) string {
		a := c.Header(header)
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:])
		}
		return ""
	}
}

func tokenFromHeader(header string) tokenExtractor {
	return func(c router.Context) string {
		return strings.TrimSpace(c.Header(header))
	}
}

func tokenFromCookie(name string) tokenExtractor {
	return func(c router.Context) string {
		return c.Cookies(name)
	}
}

func tokenFromQuery(param string) tokenExtractor {
	return func(c router.Context) string {
		return c.Query(param, "")
	}
}
