package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// Upstream endpoint paths. The API surface is consumed as a black box; these
// mirror the dashboard backend's routing.
const (
	EndpointLogin                = "/api/auth/login/"
	EndpointRegister             = "/api/auth/register/"
	EndpointProfile              = "/api/auth/profile/"
	EndpointAllUsers             = "/api/auth/all-users/"
	EndpointRefresh              = "/api/auth/refresh/"
	EndpointOTPCreate            = "/api/auth/otp/create/"
	EndpointOTPVerify            = "/api/auth/otp/verify/"
	EndpointPasswordResetRequest = "/api/auth/password-reset/request/"
	EndpointPasswordResetConfirm = "/api/auth/password-reset/confirm/"
	EndpointPasswordChange       = "/api/auth/password-change/"
)

// DefaultRequestTimeout bounds every upstream call.
const DefaultRequestTimeout = 30 * time.Second

// envelope is the upstream JSON wrapper: {data?, error?, message?, success}.
type envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Success bool            `json:"success"`
}

// loginResponse is the normalized session payload returned by login and
// refresh.
type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// Client talks to the upstream session endpoints and keeps the Store
// consistent: success writes the full token pair plus user snapshot, failure
// writes nothing.
type Client struct {
	baseURL string
	http    *http.Client
	store   Store
	logger  Logger
	region  string
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client, e.g. for tests or
// custom transports.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithPhoneRegion sets the default region for phone normalization on
// profile updates.
func WithPhoneRegion(region string) ClientOption {
	return func(c *Client) {
		if region != "" {
			c.region = region
		}
	}
}

// NewClient builds a session client rooted at baseURL, persisting into
// store.
func NewClient(baseURL string, store Store, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultRequestTimeout},
		store:   store,
		logger:  defLogger{},
		region:  "US",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Login exchanges credentials for a session. On success the full session is
// written to the store in a single Set; on any failure the store is left
// byte-identical to its prior state.
func (c *Client) Login(ctx context.Context, req LoginRequest) (SessionData, error) {
	if err := req.Validate(); err != nil {
		return SessionData{}, wrapValidation(err)
	}

	out := loginResponse{}
	if err := c.do(ctx, http.MethodPost, EndpointLogin, req, &out, callOptions{login: true}); err != nil {
		return SessionData{}, err
	}

	if out.AccessToken == "" || out.RefreshToken == "" {
		c.logger.Error("login response missing token pair")
		return SessionData{}, errors.New("login response missing token pair", errors.CategoryInternal).
			WithTextCode(TextCodeServer)
	}

	user := out.User
	if user != nil && user.Email == "" {
		user.Email = req.Email
	}

	data := SessionData{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		User:         user,
	}

	if err := c.store.Set(ctx, data); err != nil {
		return SessionData{}, err
	}

	return data, nil
}

// Register creates an account. It never authenticates; verification happens
// through the OTP flow.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}
	return c.do(ctx, http.MethodPost, EndpointRegister, req, nil, callOptions{})
}

// GetProfile fetches the current user with the stored access token. A 401
// here means the stored session is stale and surfaces as a session-invalid
// error.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	user := &User{}
	if err := c.do(ctx, http.MethodGet, EndpointProfile, nil, user, callOptions{authed: true}); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial profile update and returns the refreshed
// user snapshot. Phone numbers are normalized to E.164 before the request
// goes out.
func (c *Client) UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, wrapValidation(err)
	}
	if err := req.NormalizePhone(c.region); err != nil {
		return nil, err
	}

	user := &User{}
	if err := c.do(ctx, http.MethodPost, EndpointProfile, req, user, callOptions{authed: true}); err != nil {
		return nil, err
	}
	return user, nil
}

// GetAllUsers lists every account; admin screens use this.
func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := c.do(ctx, http.MethodGet, EndpointAllUsers, nil, &users, callOptions{authed: true}); err != nil {
		return nil, err
	}
	return users, nil
}

// ChangePassword rotates the password of the logged-in user.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}
	return c.do(ctx, http.MethodPost, EndpointPasswordChange, req, nil, callOptions{authed: true})
}

// CreateOTP asks the upstream to mail a one-time code.
func (c *Client) CreateOTP(ctx context.Context, req OTPRequest) error {
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}
	return c.do(ctx, http.MethodPost, EndpointOTPCreate, req, nil, callOptions{})
}

// VerifyOTP confirms a one-time code.
func (c *Client) VerifyOTP(ctx context.Context, req OTPVerifyRequest) error {
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}
	return c.do(ctx, http.MethodPost, EndpointOTPVerify, req, nil, callOptions{})
}

// RequestPasswordReset starts the forgot-password flow.
func (c *Client) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}
	return c.do(ctx, http.MethodPost, EndpointPasswordResetRequest, req, nil, callOptions{})
}

// ConfirmPasswordReset completes the forgot-password flow.
func (c *Client) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirmRequest) error {
	if err := req.Validate(); err != nil {
		return wrapValidation(err)
	}
	return c.do(ctx, http.MethodPost, EndpointPasswordResetConfirm, req, nil, callOptions{})
}

// Refresh exchanges the stored refresh token for a new token pair. Both
// tokens are replaced atomically; the cached user survives unless the
// response carries a fresh snapshot.
func (c *Client) Refresh(ctx context.Context) (SessionData, error) {
	current, err := c.store.Get(ctx)
	if err != nil {
		return SessionData{}, err
	}
	if current.RefreshToken == "" {
		return SessionData{}, ErrNoRefreshToken
	}

	out := loginResponse{}
	req := refreshRequest{RefreshToken: current.RefreshToken}
	if err := c.do(ctx, http.MethodPost, EndpointRefresh, req, &out, callOptions{authed: true}); err != nil {
		return SessionData{}, err
	}

	if out.AccessToken == "" || out.RefreshToken == "" {
		return SessionData{}, errors.New("refresh response missing token pair", errors.CategoryInternal).
			WithTextCode(TextCodeServer)
	}

	data := SessionData{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		User:         current.User,
	}
	if out.User != nil {
		data.User = out.User
	}

	if err := c.store.Set(ctx, data); err != nil {
		return SessionData{}, err
	}

	return data, nil
}

// Get performs an authenticated GET against the upstream, decoding the
// envelope's data into out. Resource clients build on these.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, callOptions{authed: true})
}

// Post performs an authenticated POST.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out, callOptions{authed: true})
}

// Put performs an authenticated PUT.
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPut, path, in, out, callOptions{authed: true})
}

// Delete performs an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, callOptions{authed: true})
}

// Store exposes the underlying token store.
func (c *Client) Store() Store {
	return c.store
}

type callOptions struct {
	authed bool
	login  bool
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, opts callOptions) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "failed to encode request body")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if opts.authed {
		current, err := c.store.Get(ctx)
		if err != nil {
			return err
		}
		if current.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+current.AccessToken)
			req.Header.Set("X-Auth-Token", current.AccessToken)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed: %s %s: %v", method, path, err)
		return errors.Wrap(err, errors.CategoryOperation, "request could not be completed").
			WithTextCode(TextCodeNetwork)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to read response").
			WithTextCode(TextCodeNetwork)
	}

	env := envelope{}
	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")
	if isJSON && len(raw) > 0 {
		// A broken envelope on an OK status is a server fault, not a caller
		// error; on a failure status we fall through to status classification.
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return errors.Wrap(err, errors.CategoryInternal, "failed to parse response").
				WithTextCode(TextCodeServer)
		}
	}

	if resp.StatusCode >= 400 {
		return c.classify(resp.StatusCode, env, opts)
	}

	if out == nil {
		return nil
	}

	payload := []byte(env.Data)
	if len(payload) == 0 {
		payload = raw
	}
	if len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to decode response payload").
			WithTextCode(TextCodeServer)
	}
	return nil
}

// classify maps transport status codes onto the session error taxonomy:
// status code first, then the envelope's human message, then the HTTP
// status text.
func (c *Client) classify(status int, env envelope, opts callOptions) error {
	message := env.Error
	if message == "" {
		message = env.Message
	}
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized && opts.login:
		return errors.New(message, errors.CategoryAuth).
			WithTextCode(TextCodeInvalidCreds).
			WithCode(errors.CodeUnauthorized)
	case status == http.StatusUnauthorized && opts.authed:
		return errors.New(message, errors.CategoryAuth).
			WithTextCode(TextCodeSessionInvalid).
			WithCode(errors.CodeUnauthorized)
	case status == http.StatusUnauthorized:
		return errors.New(message, errors.CategoryAuth).
			WithTextCode(TextCodeInvalidCreds).
			WithCode(errors.CodeUnauthorized)
	case status >= 500:
		return errors.New(message, errors.CategoryInternal).
			WithTextCode(TextCodeServer).
			WithCode(errors.CodeInternal)
	default:
		return errors.New(message, errors.CategoryValidation).
			WithTextCode(TextCodeValidation).
			WithCode(errors.CodeBadRequest).
			WithMetadata(map[string]any{"status": status})
	}
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}
	return errors.Wrap(err, errors.CategoryValidation, "invalid request payload").
		WithTextCode(TextCodeValidation).
		WithCode(errors.CodeBadRequest)
}
