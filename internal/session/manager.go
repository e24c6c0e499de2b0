// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 authclient Contributors

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
	"k8s.io/utils/clock"

	"github.com/tokentemplate/authclient/internal/kvstore"
	"github.com/tokentemplate/authclient/internal/observability"
	"github.com/tokentemplate/authclient/pkg/errutil"
)

// State is a point-in-time copy of the session.
type State struct {
	Token         string
	UserID        string
	Authenticated bool
	ExpiresAt     time.Time
}

// Remaining returns the time left before expiry at now, or zero when logged out.
func (s State) Remaining(now time.Time) time.Duration {
	if !s.Authenticated {
		return 0
	}
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for expiry. Defaults to the real clock.
func WithClock(c clock.WithDelayedExecution) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics records transitions on metrics. Nil disables recording.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// Manager owns the authentication session of one application run.
type Manager struct {
	store   kvstore.Store
	clock   clock.WithDelayedExecution
	logger  *slog.Logger
	metrics *observability.Metrics
	events  *Broadcaster

	mu         sync.Mutex
	state      State
	timer      clock.Timer
	generation uint64
}

// NewManager creates a logged-out Manager backed by store.
func NewManager(store kvstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		clock: clock.RealClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.events = NewBroadcaster(m.logger)
	return m
}

// Login starts a session that lapses after expiresIn and persists it.
// A failed store write is logged; the in-memory session stays valid.
func (m *Manager) Login(ctx context.Context, token string, expiresIn time.Duration, userID string) error {
	if token == "" {
		return oops.Code("SESSION_INVALID_TOKEN").Errorf("token is required")
	}
	if expiresIn <= 0 {
		return oops.Code("SESSION_INVALID_EXPIRY").
			With("expires_in", expiresIn.String()).
			Errorf("expiry must be positive")
	}

	expiresAt := m.clock.Now().Add(expiresIn)
	m.start(State{
		Token:         token,
		UserID:        userID,
		Authenticated: true,
		ExpiresAt:     expiresAt,
	}, expiresIn)
	if err := SavePersisted(ctx, m.store, Persisted{Token: token, ExpiresAt: expiresAt, UserID: userID}); err != nil {
		errutil.LogError(m.logger, "failed to persist session", err)
	}

	m.logger.InfoContext(ctx, "session started", "user_id", userID, "expires_at", expiresAt)
	m.publish(Event{Kind: KindLogin, Authenticated: true})
	return nil
}

// Restore resumes a persisted session if one exists and has not lapsed.
// It reports whether a session was restored. Stale records are left in place.
func (m *Manager) Restore(ctx context.Context) bool {
	rec, ok, err := LoadPersisted(ctx, m.store)
	if err != nil {
		errutil.LogError(m.logger, "failed to read persisted session", err)
		return false
	}
	if !ok {
		m.logger.DebugContext(ctx, "no persisted session")
		return false
	}

	remaining := rec.ExpiresAt.Sub(m.clock.Now())
	if remaining <= 0 {
		m.logger.DebugContext(ctx, "persisted session is stale", "expired_at", rec.ExpiresAt)
		return false
	}
	m.start(State{
		Token:         rec.Token,
		UserID:        rec.UserID,
		Authenticated: true,
		ExpiresAt:     rec.ExpiresAt,
	}, remaining)

	m.logger.InfoContext(ctx, "session restored", "user_id", rec.UserID, "remaining", remaining)
	m.publish(Event{Kind: KindRestored, Authenticated: true})
	return true
}

// Logout clears the session and the persisted record. It always publishes,
// even when no session was active.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	old := m.detachLocked()
	m.state = State{}
	m.mu.Unlock()

	stopTimer(old)
	m.erase(ctx)
	m.logger.InfoContext(ctx, "session ended")
	m.publish(Event{Kind: KindLogout, Authenticated: false})
}

// PublishAuthFailure announces a failed authentication attempt without
// changing the session.
func (m *Manager) PublishAuthFailure() {
	m.publish(Event{Kind: KindAuthFailed, Authenticated: false})
}

// Close cancels the pending expiry timer. State and store are untouched.
func (m *Manager) Close() {
	m.mu.Lock()
	old := m.detachLocked()
	m.mu.Unlock()
	stopTimer(old)
}

// start replaces the session and arms a timer for d. The clock is only
// called with m.mu released, since fake clocks call expire under their own lock.
func (m *Manager) start(s State, d time.Duration) {
	m.mu.Lock()
	old := m.detachLocked()
	gen := m.generation
	m.state = s
	m.mu.Unlock()

	stopTimer(old)
	t := m.clock.AfterFunc(d, func() { m.expire(gen) })

	m.mu.Lock()
	if gen == m.generation {
		m.timer = t
		t = nil
	}
	m.mu.Unlock()
	stopTimer(t)
}

// detachLocked takes the active timer and invalidates any callback already
// running. The caller stops the returned timer after unlocking.
func (m *Manager) detachLocked() clock.Timer {
	old := m.timer
	m.timer = nil
	m.generation++
	return old
}

func stopTimer(t clock.Timer) {
	if t != nil {
		t.Stop()
	}
}

func (m *Manager) erase(ctx context.Context) {
	if err := ErasePersisted(ctx, m.store); err != nil {
		errutil.LogError(m.logger, "failed to erase persisted session", err)
	}
}

// expire runs on the timer. It must not touch the clock: fake clocks invoke
// it while holding their own lock.
func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	userID := m.state.UserID
	m.detachLocked()
	m.state = State{}
	m.mu.Unlock()

	m.erase(context.Background())
	m.logger.Info("session expired", "user_id", userID)
	m.publish(Event{Kind: KindExpired, Authenticated: false})
}

func (m *Manager) publish(ev Event) {
	m.metrics.RecordSessionEvent(string(ev.Kind), m.IsAuthenticated())
	m.logger.Debug("publishing session event", "event_kind", string(ev.Kind), "listeners", m.events.Len())
	m.events.Broadcast(ev)
}

// Subscribe registers a listener for status events.
func (m *Manager) Subscribe(fn Listener) *Subscription {
	return m.events.Subscribe(fn)
}

// Token returns the current token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Token
}

// UserID returns the current user id, or "" when logged out.
func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UserID
}

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Authenticated
}

// ExpiresAt returns the absolute expiry, or the zero time when logged out.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ExpiresAt
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Now returns the manager's clock time.
func (m *Manager) Now() time.Time {
	return m.clock.Now()
}
