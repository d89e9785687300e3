package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/herdline/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return session.State{Status: session.StatusUnauthenticated}
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func monitorStore(t *testing.T, expiresIn time.Duration) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), session.SessionData{
		AccessToken:  signedToken(time.Now().Add(expiresIn)),
		RefreshToken: "refresh-token",
	}))
	return store
}

func TestMonitorSkipsHealthyToken(t *testing.T) {
	ctx := context.Background()
	store := monitorStore(t, time.Hour)
	api := &MockAPI{}
	inv := &fakeInvalidator{}

	m := session.NewRefreshMonitor(store, api, inv)

	assert.False(t, m.CheckNow(ctx))
	api.AssertNotCalled(t, "Refresh", mock.Anything)
	assert.Zero(t, inv.count())
}

func TestMonitorSkipsEmptyStore(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	m := session.NewRefreshMonitor(session.NewMemoryStore(), api, &fakeInvalidator{})

	assert.False(t, m.CheckNow(ctx))
	api.AssertNotCalled(t, "Refresh", mock.Anything)
}

func TestMonitorRefreshesExpiringToken(t *testing.T) {
	ctx := context.Background()
	store := monitorStore(t, 2*time.Minute)

	api := &MockAPI{}
	api.On("Refresh", mock.Anything).Return(session.SessionData{
		AccessToken:  "rotated-access",
		RefreshToken: "rotated-refresh",
	}, nil)

	pub := &recordingPublisher{}
	inv := &fakeInvalidator{}
	m := session.NewRefreshMonitor(store, api, inv, session.WithMonitorPublisher(pub))

	assert.True(t, m.CheckNow(ctx))
	api.AssertNumberOfCalls(t, "Refresh", 1)
	assert.Equal(t, []string{"rotated-access"}, pub.published)
	assert.Zero(t, inv.count())
}

func TestMonitorDeclinedRefreshInvalidates(t *testing.T) {
	ctx := context.Background()
	store := monitorStore(t, 2*time.Minute)

	api := &MockAPI{}
	api.On("Refresh", mock.Anything).Return(session.SessionData{}, sessionInvalidErr())

	inv := &fakeInvalidator{}
	m := session.NewRefreshMonitor(store, api, inv)

	assert.False(t, m.CheckNow(ctx))
	assert.Equal(t, 1, inv.count())
}

func TestMonitorNetworkBlipKeepsSession(t *testing.T) {
	ctx := context.Background()
	store := monitorStore(t, 2*time.Minute)

	api := &MockAPI{}
	api.On("Refresh", mock.Anything).Return(session.SessionData{}, networkErr())

	inv := &fakeInvalidator{}
	m := session.NewRefreshMonitor(store, api, inv, session.WithMonitorRetries(1))

	assert.False(t, m.CheckNow(ctx))
	// initial call plus one retry, then give up without logging out
	api.AssertNumberOfCalls(t, "Refresh", 2)
	assert.Zero(t, inv.count())
}

func TestMonitorSingleFlight(t *testing.T) {
	ctx := context.Background()
	store := monitorStore(t, 2*time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})

	api := &MockAPI{}
	api.On("Refresh", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(session.SessionData{
		AccessToken:  "rotated-access",
		RefreshToken: "rotated-refresh",
	}, nil)

	m := session.NewRefreshMonitor(store, api, &fakeInvalidator{})

	done := make(chan bool, 1)
	go func() {
		done <- m.CheckNow(ctx)
	}()

	<-started
	// concurrent tick while a refresh is in flight collapses into a no-op
	assert.False(t, m.CheckNow(ctx))
	close(release)

	assert.True(t, <-done)
	api.AssertNumberOfCalls(t, "Refresh", 1)
}

func TestMonitorStartStop(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	m := session.NewRefreshMonitor(session.NewMemoryStore(), api, &fakeInvalidator{},
		session.WithRefreshInterval(10*time.Millisecond))

	m.Start(ctx)
	m.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	m.Stop()
	m.Stop()
}
