// Package session owns "who is logged in" for the whole application lifetime.
// Every protected view and the route guard consume its state; nothing else in
// the client is allowed to decide identity.
package session

import (
	"context"
	"sync"

	"github.com/agrilink/agrilink-go/accounts"
	"github.com/agrilink/agrilink-go/token"
	"github.com/agrilink/agrilink-go/transport"
	"github.com/agrilink/agrilink-go/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// State is a snapshot of the session, safe to hand to listeners and guards.
// Loading is true only until the startup bootstrap completes.
type State struct {
	User    *users.User
	Loading bool
}

// LoggedIn reports whether a user is present.
func (s State) LoggedIn() bool {
	return s.User != nil
}

// Manager is the single source of truth for the current user. It is an
// explicitly constructed, dependency-injected value; create one per
// application and pass it to whatever consumes session state.
type Manager struct {
	accounts *accounts.Service
	store    token.Store
	logger   zerolog.Logger

	lock      sync.RWMutex
	user      *users.User
	loading   bool
	listeners []func(State)

	bootstrapOnce sync.Once
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager. The invalidation signal comes from
// the transport's refresh stage: a terminal refresh failure anywhere in the
// request pipeline clears the session here too.
func NewManager(accountsSvc *accounts.Service, store token.Store, signal *transport.InvalidationSignal, options ...Option) (*Manager, error) {
	if accountsSvc == nil {
		return nil, errors.New("[NewManager] accounts service is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] token store is required")
	}

	m := &Manager{
		accounts: accountsSvc,
		store:    store,
		loading:  true,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}

	if signal != nil {
		signal.Subscribe(func() {
			m.setUser(nil)
		})
	}
	return m, nil
}

// State returns the current session snapshot.
func (m *Manager) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return State{User: m.user, Loading: m.loading}
}

// CurrentUser returns the logged-in user, or nil.
func (m *Manager) CurrentUser() *users.User {
	return m.State().User
}

// Loading reports whether the startup bootstrap is still running.
func (m *Manager) Loading() bool {
	return m.State().Loading
}

// Subscribe registers a listener invoked with the new state after every
// session mutation.
func (m *Manager) Subscribe(fn func(State)) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Bootstrap validates any persisted credentials and populates the current
// user. It runs its body at most once: loading goes from true to false
// exactly once per Manager lifetime, whether or not a token was present and
// whether or not the profile fetch succeeds. Subsequent calls are no-ops.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.bootstrapOnce.Do(func() {
		defer m.finishLoading()

		pair, err := m.store.Pair()
		if err != nil || pair.Access == "" {
			return
		}

		user, err := m.accounts.Profile(ctx)
		if err != nil {
			m.logger.Info().Err(err).Msg("bootstrap profile fetch failed, clearing credentials")
			if cerr := m.store.Clear(); cerr != nil {
				m.logger.Error().Err(cerr).Msg("clearing credentials")
			}
			return
		}
		m.setUser(user)
	})
}

// Login exchanges credentials for a session. On success both tokens are
// persisted and the user is set from the response; on failure the error is
// propagated untouched and prior session state is unchanged.
func (m *Manager) Login(ctx context.Context, creds accounts.Credentials) (*users.User, error) {
	res, err := m.accounts.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return m.establish(res)
}

// Register creates an account and establishes a session with the same
// success and failure contract as Login.
func (m *Manager) Register(ctx context.Context, reg accounts.Registration) (*users.User, error) {
	res, err := m.accounts.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return m.establish(res)
}

// Logout tears the session down. The backend notification is best effort: an
// unreachable backend never blocks local cleanup, and Logout never reports
// an error to its caller.
func (m *Manager) Logout(ctx context.Context) {
	pair, err := m.store.Pair()
	if err == nil && pair.Refresh != "" {
		if err := m.accounts.Logout(ctx, pair.Refresh); err != nil {
			m.logger.Info().Err(err).Msg("backend logout failed, continuing local teardown")
		}
	}

	if err := m.store.Clear(); err != nil {
		m.logger.Error().Err(err).Msg("clearing credentials")
	}
	m.setUser(nil)
}

// establish persists the token pair and sets the user as one session
// mutation. The user is set only after both tokens are stored, so a storage
// failure never leaves a user without credentials.
func (m *Manager) establish(res *accounts.AuthResponse) (*users.User, error) {
	if err := m.store.SetPair(token.Pair{Access: res.Access, Refresh: res.Refresh}); err != nil {
		return nil, errors.Wrap(err, "[establish] persisting credentials")
	}
	user := res.User
	m.setUser(&user)
	m.logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("session established")
	return &user, nil
}

func (m *Manager) setUser(user *users.User) {
	m.lock.Lock()
	m.user = user
	state := State{User: m.user, Loading: m.loading}
	listeners := append([]func(State){}, m.listeners...)
	m.lock.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func (m *Manager) finishLoading() {
	m.lock.Lock()
	m.loading = false
	state := State{User: m.user, Loading: false}
	listeners := append([]func(State){}, m.listeners...)
	m.lock.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
