package session

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultRefreshInterval is how often the monitor inspects the stored token.
	DefaultRefreshInterval = 4 * time.Minute
	// DefaultRefreshThreshold is the remaining lifetime below which a refresh
	// is triggered.
	DefaultRefreshThreshold = 5 * time.Minute
)

// Invalidator is the logout path the monitor routes hard failures through.
// *Manager satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context) State
}

// MonitorOption customizes the refresh monitor.
type MonitorOption func(*RefreshMonitor)

// WithRefreshInterval overrides the check interval.
func WithRefreshInterval(d time.Duration) MonitorOption {
	return func(m *RefreshMonitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithRefreshThreshold overrides the remaining-lifetime threshold.
func WithRefreshThreshold(d time.Duration) MonitorOption {
	return func(m *RefreshMonitor) {
		if d > 0 {
			m.threshold = d
		}
	}
}

// WithMonitorLogger sets the logger.
func WithMonitorLogger(l Logger) MonitorOption {
	return func(m *RefreshMonitor) {
		m.logger = normalizeLogger(l)
	}
}

// WithMonitorPublisher sets the publisher re-mirroring refreshed tokens.
func WithMonitorPublisher(p Publisher) MonitorOption {
	return func(m *RefreshMonitor) {
		m.publisher = normalizePublisher(p)
	}
}

// WithMonitorClock injects a custom clock (useful for tests).
func WithMonitorClock(clock Clock) MonitorOption {
	return func(m *RefreshMonitor) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithMonitorRetries sets how many extra attempts a refresh makes after a
// transport failure.
func WithMonitorRetries(n int) MonitorOption {
	return func(m *RefreshMonitor) {
		if n >= 0 {
			m.retries = n
		}
	}
}

// RefreshMonitor periodically inspects the stored access token and refreshes
// it before expiry. It is fire-and-forget background work: a transport blip
// leaves the session alone, while a refusal from the upstream routes through
// the invalidator's logout path. At most one refresh is in flight at a time.
type RefreshMonitor struct {
	store       Store
	api         API
	invalidator Invalidator
	publisher   Publisher
	logger      Logger
	now         Clock
	interval    time.Duration
	threshold   time.Duration
	retries     int

	mu       sync.Mutex
	inFlight bool
	stop     chan struct{}
	done     chan struct{}
}

// NewRefreshMonitor builds a monitor over the given store and API client.
// It does not start ticking until Start is called.
func NewRefreshMonitor(store Store, api API, invalidator Invalidator, opts ...MonitorOption) *RefreshMonitor {
	m := &RefreshMonitor{
		store:       store,
		api:         api,
		invalidator: invalidator,
		publisher:   noopPublisher{},
		logger:      defLogger{},
		now:         time.Now,
		interval:    DefaultRefreshInterval,
		threshold:   DefaultRefreshThreshold,
		retries:     1,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Start launches the ticker loop. Calling Start on a running monitor is a
// no-op.
func (m *RefreshMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.stop != nil {
		m.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	m.stop = stop
	m.done = done
	m.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				m.CheckNow(ctx)
			}
		}
	}()
}

// Stop halts the ticker loop and waits for it to exit. Idempotent.
func (m *RefreshMonitor) Stop() {
	m.mu.Lock()
	stop := m.stop
	done := m.done
	m.stop = nil
	m.done = nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// CheckNow runs a single inspection pass. It returns true when a refresh was
// performed. Concurrent calls collapse into one: if a refresh is already in
// flight the call returns immediately.
func (m *RefreshMonitor) CheckNow(ctx context.Context) bool {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return false
	}
	m.inFlight = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	return m.check(ctx)
}

func (m *RefreshMonitor) check(ctx context.Context) bool {
	data, err := m.store.Get(ctx)
	if err != nil {
		m.logger.Error("refresh check store read failed: %v", err)
		return false
	}
	if data.IsZero() {
		return false
	}

	remaining, err := TimeToExpiry(data.AccessToken, m.now())
	if err == nil && remaining >= m.threshold {
		return false
	}
	if err != nil {
		m.logger.Debug("stored token undecodable, attempting refresh: %v", err)
	}

	refreshed, err := m.refresh(ctx)
	if err != nil {
		if IsNetworkError(err) {
			m.logger.Warn("token refresh unreachable, keeping current session: %v", err)
			return false
		}
		m.logger.Info("token refresh declined, ending session: %v", err)
		m.invalidator.Invalidate(ctx)
		return false
	}

	m.publisher.Publish(refreshed.AccessToken)
	m.logger.Debug("access token refreshed")
	return true
}

func (m *RefreshMonitor) refresh(ctx context.Context) (SessionData, error) {
	data, err := m.api.Refresh(ctx)
	if err == nil {
		return data, nil
	}

	for attempt := 0; attempt < m.retries && IsNetworkError(err); attempt++ {
		data, err = m.api.Refresh(ctx)
		if err == nil {
			return data, nil
		}
	}

	return SessionData{}, err
}
