package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/agrilink/agrilink-go/accounts"
	"github.com/agrilink/agrilink-go/session"
	"github.com/agrilink/agrilink-go/token"
	"github.com/agrilink/agrilink-go/token/storefake"
	"github.com/agrilink/agrilink-go/transport"
	"github.com/agrilink/agrilink-go/users"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	store       *storefake.FakeTokenStore
	signal      *transport.InvalidationSignal
	manager     *session.Manager
	profileHits atomic.Int64
	logoutHits  atomic.Int64
	serverURL   string
}

// newSessionFixture stands up a fake backend with working login, profile,
// and logout endpoints, and builds the full client stack on top of it.
func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		store:  storefake.NewFakeTokenStore(),
		signal: transport.NewInvalidationSignal(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /accounts/login/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access":"acc-1","refresh":"ref-1","user":{"id":"u-1","username":"alice","role":"consumer"}}`))
	})
	mux.HandleFunc("GET /accounts/profile/", func(w http.ResponseWriter, r *http.Request) {
		f.profileHits.Add(1)
		if r.Header.Get("Authorization") != "Bearer acc-1" {
			http.Error(w, `{"detail":"token expired"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u-1","username":"alice","role":"consumer"}`))
	})
	mux.HandleFunc("POST /accounts/logout/", func(w http.ResponseWriter, r *http.Request) {
		f.logoutHits.Add(1)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	f.serverURL = server.URL

	client, err := transport.New(server.URL,
		transport.WithRequestStages(transport.NewBearerStage(f.store)),
	)
	require.NoError(t, err)
	client.AddResponseStages(transport.NewRefreshStage(client, f.store, f.signal))

	manager, err := session.NewManager(accounts.NewService(client), f.store, f.signal)
	require.NoError(t, err)
	f.manager = manager
	return f
}

func TestManager_Bootstrap(t *testing.T) {
	t.Run("no persisted token completes immediately", func(t *testing.T) {
		f := newSessionFixture(t)
		require.True(t, f.manager.Loading())

		f.manager.Bootstrap(context.Background())

		require.False(t, f.manager.Loading())
		require.Nil(t, f.manager.CurrentUser())
		require.EqualValues(t, 0, f.profileHits.Load())
	})

	t.Run("valid persisted token restores the user", func(t *testing.T) {
		f := newSessionFixture(t)
		require.NoError(t, f.store.SetPair(token.Pair{Access: "acc-1", Refresh: "ref-1"}))

		f.manager.Bootstrap(context.Background())

		require.False(t, f.manager.Loading())
		require.NotNil(t, f.manager.CurrentUser())
		require.Equal(t, "alice", f.manager.CurrentUser().Username)
	})

	t.Run("failed profile fetch clears credentials", func(t *testing.T) {
		f := newSessionFixture(t)
		require.NoError(t, f.store.SetPair(token.Pair{Access: "bad-access"}))

		f.manager.Bootstrap(context.Background())

		require.False(t, f.manager.Loading())
		require.Nil(t, f.manager.CurrentUser())
		pair, err := f.store.Pair()
		require.NoError(t, err)
		require.True(t, pair.Empty())
	})

	t.Run("loading transitions exactly once", func(t *testing.T) {
		f := newSessionFixture(t)

		var transitions atomic.Int64
		f.manager.Subscribe(func(s session.State) {
			if !s.Loading {
				transitions.Add(1)
			}
		})

		f.manager.Bootstrap(context.Background())
		f.manager.Bootstrap(context.Background())
		f.manager.Bootstrap(context.Background())

		require.EqualValues(t, 1, transitions.Load())
	})
}

func TestManager_Login(t *testing.T) {
	t.Run("success sets user and persists both tokens", func(t *testing.T) {
		f := newSessionFixture(t)

		user, err := f.manager.Login(context.Background(), accounts.Credentials{Username: "alice", Password: "secret123"})
		require.NoError(t, err)
		require.Equal(t, users.RoleConsumer, user.Role)
		require.Equal(t, users.RoleConsumer, f.manager.CurrentUser().Role)

		pair, err := f.store.Pair()
		require.NoError(t, err)
		require.Equal(t, "acc-1", pair.Access)
		require.Equal(t, "ref-1", pair.Refresh)
	})

	t.Run("subsequent requests attach the returned access token", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.manager.Login(context.Background(), accounts.Credentials{Username: "alice", Password: "secret123"})
		require.NoError(t, err)

		// Profile accepts only acc-1, so success proves attachment.
		f.manager.Bootstrap(context.Background())
		require.NotNil(t, f.manager.CurrentUser())
	})

	t.Run("failure leaves prior state unchanged", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.manager.Login(context.Background(), accounts.Credentials{Username: "alice"})
		require.Error(t, err)
		require.Nil(t, f.manager.CurrentUser())

		pair, perr := f.store.Pair()
		require.NoError(t, perr)
		require.True(t, pair.Empty())
	})
}

func TestManager_Logout(t *testing.T) {
	t.Run("clears user and tokens together", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.manager.Login(context.Background(), accounts.Credentials{Username: "alice", Password: "secret123"})
		require.NoError(t, err)

		f.manager.Logout(context.Background())

		require.Nil(t, f.manager.CurrentUser())
		pair, perr := f.store.Pair()
		require.NoError(t, perr)
		require.True(t, pair.Empty())
		require.EqualValues(t, 1, f.logoutHits.Load())
	})

	t.Run("unreachable backend does not block local teardown", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.manager.Login(context.Background(), accounts.Credentials{Username: "alice", Password: "secret123"})
		require.NoError(t, err)

		// Point the manager's backend at a dead address.
		deadClient, err := transport.New("http://127.0.0.1:1")
		require.NoError(t, err)
		dead, err := session.NewManager(accounts.NewService(deadClient), f.store, f.signal)
		require.NoError(t, err)

		dead.Logout(context.Background())

		pair, perr := f.store.Pair()
		require.NoError(t, perr)
		require.True(t, pair.Empty())
		require.Nil(t, dead.CurrentUser())
	})
}

func TestManager_InvalidationSignalClearsUser(t *testing.T) {
	f := newSessionFixture(t)
	_, err := f.manager.Login(context.Background(), accounts.Credentials{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, f.manager.CurrentUser())

	f.signal.Emit()

	require.Nil(t, f.manager.CurrentUser())
}
