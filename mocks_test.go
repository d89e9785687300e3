package session_test

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/herdline/go-session"
	"github.com/stretchr/testify/mock"
)

var testSigningKey = []byte("test-signing-key")

// signedToken mints a structurally valid HS256 token for expiry checks.
func signedToken(expiresAt time.Time) string {
	claims := jwt.MapClaims{
		"uid":  "user-1",
		"role": "admin",
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// MockAPI implements session.API.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Login(ctx context.Context, req session.LoginRequest) (session.SessionData, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(session.SessionData), args.Error(1)
}

func (m *MockAPI) GetProfile(ctx context.Context) (*session.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*session.User)
	return user, args.Error(1)
}

func (m *MockAPI) Refresh(ctx context.Context) (session.SessionData, error) {
	args := m.Called(ctx)
	return args.Get(0).(session.SessionData), args.Error(1)
}

// recordingPublisher captures mirror calls in order.
type recordingPublisher struct {
	published []string
	cleared   int
}

func (p *recordingPublisher) Publish(token string) { p.published = append(p.published, token) }
func (p *recordingPublisher) Clear()               { p.cleared++ }

// recordingSink captures activity events.
type recordingSink struct {
	events []session.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event session.ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}

// stubStateSource feeds a fixed state to the guard.
type stubStateSource struct {
	state session.State
}

func (s stubStateSource) Current() session.State { return s.state }

// fakeContext is a hand-rolled router.Context for middleware tests.
type fakeContext struct {
	path        string
	method      string
	originalURL string
	referer     string
	body        []byte
	headers     map[string]string
	cookies     map[string]string
	query       map[string]string
	locals      map[any]any
	ctx         context.Context

	setHeaders     map[string]string
	setCookies     []*router.Cookie
	status         int
	redirectedTo   string
	redirectStatus int
	jsonStatus     int
	jsonBody       any
	sent           string
	nextCalled     bool
}

func newFakeContext(path string) *fakeContext {
	return &fakeContext{
		path:       path,
		method:     "GET",
		headers:    map[string]string{},
		cookies:    map[string]string{},
		query:      map[string]string{},
		locals:     map[any]any{},
		setHeaders: map[string]string{},
		ctx:        context.Background(),
	}
}

func (m *fakeContext) Next() error {
	m.nextCalled = true
	return nil
}

func (m *fakeContext) Context() context.Context        { return m.ctx }
func (m *fakeContext) SetContext(ctx context.Context)  { m.ctx = ctx }
func (m *fakeContext) Path() string                    { return m.path }
func (m *fakeContext) Method() string                  { return m.method }
func (m *fakeContext) Body() []byte                    { return m.body }
func (m *fakeContext) Status(code int) router.Context  { m.status = code; return m }
func (m *fakeContext) SendString(s string) error       { m.sent = s; return nil }
func (m *fakeContext) Send(b []byte) error             { m.sent = string(b); return nil }
func (m *fakeContext) NoContent(code int) error        { m.status = code; return nil }
func (m *fakeContext) OnNext(callback func() error)    {}
func (m *fakeContext) OriginalURL() string             { return m.originalURL }
func (m *fakeContext) Referer() string                 { return m.referer }
func (m *fakeContext) Set(key string, val any)         { m.locals[key] = val }
func (m *fakeContext) Cookie(cookie *router.Cookie)    { m.setCookies = append(m.setCookies, cookie) }
func (m *fakeContext) CookieParser(i any) error        { return nil }
func (m *fakeContext) BindJSON(i any) error            { return json.Unmarshal(m.body, i) }
func (m *fakeContext) BindXML(i any) error             { return nil }
func (m *fakeContext) BindQuery(i any) error           { return nil }
func (m *fakeContext) Bind(i any) error                { return json.Unmarshal(m.body, i) }
func (m *fakeContext) Queries() map[string]string      { return m.query }

func (m *fakeContext) JSON(code int, val any) error {
	m.jsonStatus = code
	m.jsonBody = val
	return nil
}

func (m *fakeContext) Render(name string, bind any, layout ...string) error { return nil }

func (m *fakeContext) Redirect(path string, status ...int) error {
	m.redirectedTo = path
	if len(status) > 0 {
		m.redirectStatus = status[0]
	}
	return nil
}

func (m *fakeContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	return nil
}

func (m *fakeContext) RedirectBack(fallback string, status ...int) error { return nil }

func (m *fakeContext) SetHeader(key, val string) router.Context {
	m.setHeaders[key] = val
	return m
}

func (m *fakeContext) Header(key string) string { return m.headers[key] }

func (m *fakeContext) Get(key string, defaultValue any) any {
	if v, ok := m.locals[key]; ok {
		return v
	}
	return defaultValue
}

func (m *fakeContext) GetBool(key string, defaultValue bool) bool { return defaultValue }
func (m *fakeContext) GetInt(key string, def int) int             { return def }

func (m *fakeContext) GetString(key string, defaultValue string) string {
	if v, ok := m.headers[key]; ok {
		return v
	}
	return defaultValue
}

func (m *fakeContext) Cookies(key string, defaultValue ...string) string {
	if v, ok := m.cookies[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *fakeContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *fakeContext) ParamsInt(key string, defaultValue int) int { return defaultValue }

func (m *fakeContext) Query(key string, defaultValue ...string) string {
	if v, ok := m.query[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *fakeContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *fakeContext) FormFile(key string) (*multipart.FileHeader, error) {
	return nil, http.ErrMissingFile
}

func (m *fakeContext) SendStatus(status int) error {
	m.status = status
	return nil
}

func (m *fakeContext) QueryInt(key string, defaultValue int) int { return defaultValue }

func (m *fakeContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.locals[key] = value[0]
		return value[0]
	}
	return m.locals[key]
}
