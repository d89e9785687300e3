package session

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Status is the derived auth state of the session.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Event names a requested state change.
type Event string

const (
	EventBootSucceeded  Event = "boot.succeeded"
	EventBootFailed     Event = "boot.failed"
	EventLoginSucceeded Event = "login.succeeded"
	EventLoginFailed    Event = "login.failed"
	EventLogout         Event = "logout"
	EventInvalidated    Event = "session.invalidated"
	EventUserUpdated    Event = "user.updated"
)

// State is the snapshot consumers observe: a status plus the cached user.
type State struct {
	Status Status
	User   *User
}

// Authenticated reports whether the state carries a live session.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// Subscriber receives state snapshots after each transition.
type Subscriber func(State)

// ManagerOption customizes the state manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger.
func WithManagerLogger(l Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = normalizeLogger(l)
	}
}

// WithManagerPublisher sets the publisher that mirrors tokens for the edge
// gate.
func WithManagerPublisher(p Publisher) ManagerOption {
	return func(m *Manager) {
		m.publisher = normalizePublisher(p)
	}
}

// WithManagerActivitySink sets the ActivitySink used to publish lifecycle
// events.
func WithManagerActivitySink(sink ActivitySink) ManagerOption {
	return func(m *Manager) {
		m.activitySink = normalizeActivitySink(sink)
	}
}

// WithManagerClock injects a custom clock (useful for tests).
func WithManagerClock(clock Clock) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithBootRetries sets how many extra attempts the boot profile check makes
// after a transport failure.
func WithBootRetries(n int) ManagerOption {
	return func(m *Manager) {
		if n >= 0 {
			m.bootRetries = n
		}
	}
}

// Manager owns the derived auth state. It starts in the loading status and
// moves through its transition table only; every other requested change is
// rejected with ErrInvalidTransition. Login while already authenticated is
// in the table as a state replacement to support switching accounts.
type Manager struct {
	store        Store
	api          API
	publisher    Publisher
	activitySink ActivitySink
	logger       Logger
	now          Clock
	bootRetries  int

	mu    sync.RWMutex
	state State
	seq   uint64

	subMu   sync.Mutex
	subs    map[int]Subscriber
	nextSub int

	transitions map[Status]map[Event]Status
}

// NewManager builds a Manager over the given store and API client. The
// manager is inert until Boot runs.
func NewManager(store Store, api API, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:        store,
		api:          api,
		publisher:    noopPublisher{},
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		now:          time.Now,
		bootRetries:  1,
		state:        State{Status: StatusLoading},
		subs:         map[int]Subscriber{},
		transitions: map[Status]map[Event]Status{
			StatusLoading: {
				EventBootSucceeded: StatusAuthenticated,
				EventBootFailed:    StatusUnauthenticated,
				EventLogout:        StatusUnauthenticated,
			},
			StatusUnauthenticated: {
				EventLoginSucceeded: StatusAuthenticated,
				EventLoginFailed:    StatusUnauthenticated,
				EventLogout:         StatusUnauthenticated,
			},
			StatusAuthenticated: {
				EventLoginSucceeded: StatusAuthenticated,
				EventLogout:         StatusUnauthenticated,
				EventInvalidated:    StatusUnauthenticated,
				EventUserUpdated:    StatusAuthenticated,
			},
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Current returns the latest state snapshot.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribe registers fn to receive every state change. The returned
// function removes the subscription.
func (m *Manager) Subscribe(fn Subscriber) func() {
	if fn == nil {
		return func() {}
	}

	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// Boot derives the initial state from the store. An empty store resolves to
// unauthenticated. A stored session is validated with a profile fetch: a
// stale session clears everything, while a transport failure keeps the
// stored snapshot instead of forcing a logout on a network blip.
func (m *Manager) Boot(ctx context.Context) (State, error) {
	seq := m.begin()

	data, err := m.store.Get(ctx)
	if err != nil {
		m.logger.Error("boot store read failed: %v", err)
		if m.apply(ctx, seq, EventBootFailed, nil, ActorRef{Type: "system"}) {
			m.publisher.Clear()
		}
		return m.Current(), err
	}

	if data.IsZero() {
		if m.apply(ctx, seq, EventBootFailed, nil, ActorRef{Type: "system"}) {
			m.publisher.Clear()
		}
		return m.Current(), nil
	}

	user, err := m.fetchProfile(ctx)
	if err != nil {
		if IsSessionInvalidError(err) {
			if m.apply(ctx, seq, EventBootFailed, nil, ActorRef{Type: "system"}) {
				m.clearSession(ctx)
			}
			return m.Current(), nil
		}
		if IsNetworkError(err) && data.User != nil {
			m.logger.Warn("boot profile check unreachable, keeping stored session: %v", err)
			if m.apply(ctx, seq, EventBootSucceeded, data.User, ActorRef{Type: "system"}) {
				m.publisher.Publish(data.AccessToken)
			}
			return m.Current(), nil
		}
		if m.apply(ctx, seq, EventBootFailed, nil, ActorRef{Type: "system"}) {
			m.publisher.Clear()
		}
		return m.Current(), err
	}

	data.User = user
	if err := m.store.Set(ctx, data); err != nil {
		m.logger.Warn("boot store write failed: %v", err)
	}

	if m.apply(ctx, seq, EventBootSucceeded, user, ActorRef{Type: "system"}) {
		m.publisher.Publish(data.AccessToken)
	}
	return m.Current(), nil
}

// Login runs the credential exchange and, on success, replaces the current
// session. A failed login leaves state and store untouched; the error is
// surfaced to the caller.
func (m *Manager) Login(ctx context.Context, req LoginRequest) (State, error) {
	seq := m.begin()
	actor := loginActor(req.Email)

	data, err := m.api.Login(ctx, req)
	if err != nil {
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLoginFailure,
			Actor:     actor,
			Metadata:  map[string]any{"email": req.Email},
		})
		m.apply(ctx, seq, EventLoginFailed, nil, actor)
		return m.Current(), err
	}

	if m.apply(ctx, seq, EventLoginSucceeded, data.User, actor) {
		m.publisher.Publish(data.AccessToken)
	}

	m.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Actor:     actor,
		UserID:    userID(data.User),
	})

	return m.Current(), nil
}

// Logout clears the session everywhere: store, mirrored token, state. It is
// idempotent; logging out twice is the same as logging out once.
func (m *Manager) Logout(ctx context.Context) State {
	seq := m.begin()

	from := m.Current()
	m.clearSession(ctx)
	m.apply(ctx, seq, EventLogout, nil, ActorRef{Type: "user"})

	if from.Authenticated() {
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventLogout,
			Actor:     ActorRef{Type: "user", ID: userID(from.User)},
			UserID:    userID(from.User),
		})
	}

	return m.Current()
}

// RefreshUser re-fetches the profile for the active session. A stale
// session triggers the full logout path; transport failures leave the
// current state in place.
func (m *Manager) RefreshUser(ctx context.Context) (State, error) {
	seq := m.begin()

	user, err := m.fetchProfile(ctx)
	if err != nil {
		if IsSessionInvalidError(err) {
			m.Invalidate(ctx)
			return m.Current(), err
		}
		return m.Current(), err
	}

	accessToken := ""
	data, err := m.store.Get(ctx)
	if err == nil && !data.IsZero() {
		data.User = user
		if err := m.store.Set(ctx, data); err != nil {
			m.logger.Warn("profile refresh store write failed: %v", err)
		}
		accessToken = data.AccessToken
	}

	if m.apply(ctx, seq, EventUserUpdated, user, ActorRef{Type: "user", ID: userID(user)}) && accessToken != "" {
		m.publisher.Publish(accessToken)
	}
	return m.Current(), nil
}

// UpdateUser merges a partial update into the cached user and persists the
// merged snapshot. Fields the patch does not mention survive unchanged.
func (m *Manager) UpdateUser(ctx context.Context, patch UserPatch) (State, error) {
	seq := m.begin()

	current := m.Current()
	if !current.Authenticated() {
		return current, ErrInvalidTransition.WithMetadata(map[string]any{
			"from":  current.Status,
			"event": EventUserUpdated,
		})
	}

	merged := current.User.Merge(patch)

	data, err := m.store.Get(ctx)
	if err != nil {
		return current, err
	}
	if !data.IsZero() {
		data.User = &merged
		if err := m.store.Set(ctx, data); err != nil {
			return current, err
		}
	}

	m.apply(ctx, seq, EventUserUpdated, &merged, ActorRef{Type: "user", ID: userID(&merged)})
	return m.Current(), nil
}

// Invalidate is the mandated reaction to a stale session discovered on any
// authenticated call: full local logout.
func (m *Manager) Invalidate(ctx context.Context) State {
	seq := m.begin()

	from := m.Current()
	m.clearSession(ctx)
	m.apply(ctx, seq, EventInvalidated, nil, ActorRef{Type: "system"})

	if from.Authenticated() {
		m.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventInvalidated,
			Actor:     ActorRef{Type: "system"},
			UserID:    userID(from.User),
		})
	}

	return m.Current()
}

// CanTransition reports whether event is legal from the current status.
func (m *Manager) CanTransition(event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.transitions[m.state.Status][event]
	return ok
}

// begin marks the start of a state-mutating operation; a later apply with a
// stale sequence is dropped so an abandoned in-flight call cannot clobber a
// newer one.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

// apply commits a transition and reports whether it took effect. Mirror side
// effects must be gated on the return value so a dropped stale update cannot
// leave the cookie and the state machine disagreeing.
func (m *Manager) apply(ctx context.Context, seq uint64, event Event, user *User, actor ActorRef) bool {
	m.mu.Lock()

	if seq != m.seq {
		m.mu.Unlock()
		m.logger.Debug("dropping stale state update: event=%s", event)
		return false
	}

	next, ok := m.transitions[m.state.Status][event]
	if !ok {
		from := m.state.Status
		m.mu.Unlock()
		m.logger.Warn("rejected state transition: from=%s event=%s", from, event)
		return false
	}

	from := m.state.Status
	if next != StatusAuthenticated {
		user = nil
	}
	m.state = State{Status: next, User: user}
	snapshot := m.state
	m.mu.Unlock()

	if from != next {
		m.recordActivity(ctx, ActivityEvent{
			EventType:  ActivityEventStateChanged,
			Actor:      actor,
			UserID:     userID(user),
			FromStatus: from,
			ToStatus:   next,
		})
	}

	m.notify(snapshot)
	return true
}

func (m *Manager) notify(state State) {
	m.subMu.Lock()
	subs := make([]Subscriber, 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (m *Manager) fetchProfile(ctx context.Context) (*User, error) {
	user, err := m.api.GetProfile(ctx)
	if err == nil {
		return user, nil
	}

	for attempt := 0; attempt < m.bootRetries && IsNetworkError(err); attempt++ {
		user, err = m.api.GetProfile(ctx)
		if err == nil {
			return user, nil
		}
	}

	return nil, err
}

func (m *Manager) clearSession(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("store clear failed: %v", err)
	}
	m.publisher.Clear()
}

func (m *Manager) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now()
	}

	if err := m.activitySink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink error: %v", err)
	}
}

func loginActor(email string) ActorRef {
	actor := ActorRef{Type: "user"}
	if id, err := hashid.NewUUID(email); err == nil {
		actor.ID = id.String()
	}
	return actor
}

func userID(u *User) string {
	if u == nil {
		return ""
	}
	if id, err := hashid.NewUUID(u.Email); err == nil {
		return id.String()
	}
	return u.Email
}
