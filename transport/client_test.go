package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	interrors "github.com/agrilink/agrilink-go/internal/errors"
	"github.com/agrilink/agrilink-go/token"
	"github.com/agrilink/agrilink-go/token/storefake"
	"github.com/agrilink/agrilink-go/transport"
	"github.com/stretchr/testify/require"
)

// clientFixture wires a Client with the bearer, request-id, and refresh
// stages the way the application shell does.
type clientFixture struct {
	store       *storefake.FakeTokenStore
	signal      *transport.InvalidationSignal
	client      *transport.Client
	invalidated int
}

func newClientFixture(t *testing.T, serverURL string, options ...transport.RefreshOption) *clientFixture {
	t.Helper()

	f := &clientFixture{
		store:  storefake.NewFakeTokenStore(),
		signal: transport.NewInvalidationSignal(),
	}
	f.signal.Subscribe(func() { f.invalidated++ })

	client, err := transport.New(serverURL,
		transport.WithRequestStages(
			transport.NewBearerStage(f.store),
			transport.RequestIDStage(),
		),
	)
	require.NoError(t, err)
	client.AddResponseStages(transport.NewRefreshStage(client, f.store, f.signal, options...))

	f.client = client
	return f
}

func TestClient_TokenAttachment(t *testing.T) {
	var gotAuth string
	var gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	f := newClientFixture(t, server.URL)

	t.Run("no token set means no authorization header", func(t *testing.T) {
		require.NoError(t, f.client.Get(context.Background(), "accounts/profile/", nil))
		require.Empty(t, gotAuth)
	})

	t.Run("set token is attached verbatim", func(t *testing.T) {
		require.NoError(t, f.store.SetPair(token.Pair{Access: "an-access-token", Refresh: "r"}))
		require.NoError(t, f.client.Get(context.Background(), "accounts/profile/", nil))
		require.Equal(t, "Bearer an-access-token", gotAuth)
	})

	t.Run("every request carries a request id", func(t *testing.T) {
		require.NotEmpty(t, gotRequestID)
	})
}

func TestClient_DecodesJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"u-1","username":"alice"}`))
	}))
	defer server.Close()

	f := newClientFixture(t, server.URL)

	var out struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, f.client.Get(context.Background(), "accounts/profile/", &out))
	require.Equal(t, "u-1", out.ID)
	require.Equal(t, "alice", out.Username)
}

func TestClient_APIErrors(t *testing.T) {
	t.Run("error envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
		}))
		defer server.Close()

		f := newClientFixture(t, server.URL)
		err := f.client.Post(context.Background(), "accounts/login/", map[string]string{"username": "x"}, nil)

		var apiErr *transport.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, "invalid credentials", apiErr.Message)
	})

	t.Run("detail envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail":"account disabled"}`))
		}))
		defer server.Close()

		f := newClientFixture(t, server.URL)
		err := f.client.Get(context.Background(), "accounts/profile/", nil)

		var apiErr *transport.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "account disabled", apiErr.Message)
	})

	t.Run("per-field error map", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"username":["already taken"],"phone":["required"]}`))
		}))
		defer server.Close()

		f := newClientFixture(t, server.URL)
		err := f.client.Post(context.Background(), "accounts/register/", map[string]string{}, nil)

		var apiErr *transport.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, []string{"already taken"}, apiErr.Fields["username"])
		require.Equal(t, []string{"required"}, apiErr.Fields["phone"])
	})

	t.Run("generic 5xx is returned unmodified with no refresh attempt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		f := newClientFixture(t, server.URL)
		require.NoError(t, f.store.SetPair(token.Pair{Access: "a", Refresh: "r"}))

		err := f.client.Get(context.Background(), "orders/", nil)
		var apiErr *transport.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		require.Zero(t, f.invalidated)
		require.False(t, interrors.Is(err, interrors.ErrSessionInvalidated))
	})
}
