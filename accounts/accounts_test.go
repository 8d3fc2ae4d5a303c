package accounts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrilink/agrilink-go/accounts"
	"github.com/agrilink/agrilink-go/transport"
	"github.com/agrilink/agrilink-go/users"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, handler http.Handler) *accounts.Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := transport.New(server.URL)
	require.NoError(t, err)
	return accounts.NewService(client)
}

func TestService_Login(t *testing.T) {
	t.Run("success returns tokens and profile", func(t *testing.T) {
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/accounts/login/", r.URL.Path)

			var creds accounts.Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			require.Equal(t, "alice", creds.Username)
			require.Equal(t, "secret123", creds.Password)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access":"acc","refresh":"ref","user":{"id":"u-1","username":"alice","role":"consumer"}}`))
		}))

		res, err := svc.Login(context.Background(), accounts.Credentials{Username: "alice", Password: "secret123"})
		require.NoError(t, err)
		require.Equal(t, "acc", res.Access)
		require.Equal(t, "ref", res.Refresh)
		require.Equal(t, users.RoleConsumer, res.User.Role)
	})

	t.Run("backend rejection propagates unmodified", func(t *testing.T) {
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
		}))

		_, err := svc.Login(context.Background(), accounts.Credentials{Username: "alice", Password: "wrong"})
		var apiErr *transport.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "invalid credentials", apiErr.Message)
	})

	t.Run("missing credentials fail locally", func(t *testing.T) {
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		}))

		_, err := svc.Login(context.Background(), accounts.Credentials{Username: "alice"})
		require.Error(t, err)
	})
}

func TestService_Register(t *testing.T) {
	t.Run("field errors propagate", func(t *testing.T) {
		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/accounts/register/", r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"username":["already taken"]}`))
		}))

		_, err := svc.Register(context.Background(), accounts.Registration{Username: "alice", Password: "pw", Role: users.RoleFarmer})
		var apiErr *transport.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, []string{"already taken"}, apiErr.Fields["username"])
	})
}

func TestService_Logout(t *testing.T) {
	var gotRefresh string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/logout/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotRefresh = body["refresh"]
	}))

	require.NoError(t, svc.Logout(context.Background(), "ref-1"))
	require.Equal(t, "ref-1", gotRefresh)
}
