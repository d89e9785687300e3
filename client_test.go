package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/herdline/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUpstream struct {
	mux          *http.ServeMux
	passwordHash []byte
	accessToken  string
	refreshToken string
	user         session.User
}

func newFakeUpstream(t *testing.T) (*fakeUpstream, *httptest.Server) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fakeUpstream{
		mux:          http.NewServeMux(),
		passwordHash: hash,
		accessToken:  "upstream-access",
		refreshToken: "upstream-refresh",
		user: session.User{
			ID:    7,
			Name:  "Pepe Rone",
			Email: "pepe.rone@example.com",
			Role:  session.RoleFarm,
		},
	}

	f.mux.HandleFunc(session.EndpointLogin, f.handleLogin)
	f.mux.HandleFunc(session.EndpointProfile, f.handleProfile)
	f.mux.HandleFunc(session.EndpointRefresh, f.handleRefresh)
	f.mux.HandleFunc(session.EndpointOTPCreate, f.handleAccepted)
	f.mux.HandleFunc(session.EndpointPasswordResetRequest, f.handleAccepted)

	srv := httptest.NewServer(f.mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeUpstream) handleLogin(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, "invalid payload")
		return
	}

	if bcrypt.CompareHashAndPassword(f.passwordHash, []byte(payload.Password)) != nil {
		writeEnvelope(w, http.StatusUnauthorized, nil, "invalid email or password")
		return
	}

	writeEnvelope(w, http.StatusOK, map[string]any{
		"access_token":  f.accessToken,
		"refresh_token": f.refreshToken,
		"user":          f.user,
	}, "")
}

func (f *fakeUpstream) handleProfile(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if auth != "Bearer "+f.accessToken {
		writeEnvelope(w, http.StatusUnauthorized, nil, "token expired")
		return
	}
	writeEnvelope(w, http.StatusOK, f.user, "")
}

func (f *fakeUpstream) handleRefresh(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		RefreshToken string `json:"refresh_token"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.RefreshToken != f.refreshToken {
		writeEnvelope(w, http.StatusUnauthorized, nil, "refresh declined")
		return
	}
	writeEnvelope(w, http.StatusOK, map[string]any{
		"access_token":  "rotated-access",
		"refresh_token": "rotated-refresh",
	}, "")
}

func (f *fakeUpstream) handleAccepted(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, nil, "")
}

func writeEnvelope(w http.ResponseWriter, status int, data any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]any{"success": errMsg == ""}
	if data != nil {
		body["data"] = data
	}
	if errMsg != "" {
		body["error"] = errMsg
	}
	json.NewEncoder(w).Encode(body)
}

func TestClientLoginSuccess(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeUpstream(t)
	store := session.NewMemoryStore()
	client := session.NewClient(srv.URL, store)

	data, err := client.Login(ctx, session.LoginRequest{
		Email:    "pepe.rone@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "upstream-access", data.AccessToken)
	assert.Equal(t, "upstream-refresh", data.RefreshToken)
	require.NotNil(t, data.User)
	assert.Equal(t, session.RoleFarm, data.User.Role)

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, data.AccessToken, stored.AccessToken)
	assert.Equal(t, data.RefreshToken, stored.RefreshToken)
}

func TestClientLoginFailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeUpstream(t)
	store := session.NewMemoryStore()
	client := session.NewClient(srv.URL, store)

	_, err := client.Login(ctx, session.LoginRequest{
		Email:    "pepe.rone@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.True(t, session.IsAuthenticationError(err))
	assert.Contains(t, err.Error(), "invalid email or password")

	stored, getErr := store.Get(ctx)
	require.NoError(t, getErr)
	assert.True(t, stored.IsZero())
}

func TestClientLoginValidation(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeUpstream(t)
	client := session.NewClient(srv.URL, session.NewMemoryStore())

	_, err := client.Login(ctx, session.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	assert.True(t, session.IsValidationError(err))
}

func TestClientGetProfileSessionInvalid(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeUpstream(t)
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, session.SessionData{
		AccessToken:  "stale-token",
		RefreshToken: "stale-refresh",
	}))

	client := session.NewClient(srv.URL, store)

	_, err := client.GetProfile(ctx)
	require.Error(t, err)
	assert.True(t, session.IsSessionInvalidError(err))
	assert.Contains(t, err.Error(), "token expired")
}

func TestClientRefreshRotatesPairKeepsUser(t *testing.T) {
	ctx := context.Background()
	f, srv := newFakeUpstream(t)
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, session.SessionData{
		AccessToken:  f.accessToken,
		RefreshToken: f.refreshToken,
		User:         &f.user,
	}))

	client := session.NewClient(srv.URL, store)

	data, err := client.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated-access", data.AccessToken)
	assert.Equal(t, "rotated-refresh", data.RefreshToken)
	require.NotNil(t, data.User)
	assert.Equal(t, "pepe.rone@example.com", data.User.Email)

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated-access", stored.AccessToken)
	assert.Equal(t, "rotated-refresh", stored.RefreshToken)
}

func TestClientRefreshWithoutToken(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeUpstream(t)
	client := session.NewClient(srv.URL, session.NewMemoryStore())

	_, err := client.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrNoRefreshToken)
}

func TestClientNetworkError(t *testing.T) {
	ctx := context.Background()
	client := session.NewClient("http://127.0.0.1:1", session.NewMemoryStore())

	_, err := client.Login(ctx, session.LoginRequest{
		Email:    "pepe.rone@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.True(t, session.IsNetworkError(err))
}

func TestClientServerError(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, nil, "boom")
	}))
	defer srv.Close()

	client := session.NewClient(srv.URL, session.NewMemoryStore())

	err := client.CreateOTP(ctx, session.OTPRequest{Email: "pepe.rone@example.com"})
	require.Error(t, err)
	assert.False(t, session.IsNetworkError(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestClientFallsBackToStatusText(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := session.NewClient(srv.URL, session.NewMemoryStore())

	err := client.CreateOTP(ctx, session.OTPRequest{Email: "pepe.rone@example.com"})
	require.Error(t, err)
	assert.True(t, session.IsValidationError(err))
	assert.True(t, strings.Contains(err.Error(), http.StatusText(http.StatusBadRequest)))
}
