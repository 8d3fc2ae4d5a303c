package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrilink/agrilink-go/catalog"
	"github.com/agrilink/agrilink-go/internal/utils"
	"github.com/agrilink/agrilink-go/transport"
	"github.com/stretchr/testify/require"
)

func TestService_List(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p-1","name":"Tomatoes","category":"produce","price":2.5}]`))
	}))
	defer server.Close()

	client, err := transport.New(server.URL)
	require.NoError(t, err)
	svc := catalog.NewService(client)

	products, err := svc.List(context.Background(), catalog.ListOptions{Category: utils.Ptr("produce")})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "Tomatoes", products[0].Name)
	require.Equal(t, "category=produce", gotQuery)
}

func TestService_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/p-7/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"p-7","name":"Seed Drill","category":"equipment","price":120}`))
	}))
	defer server.Close()

	client, err := transport.New(server.URL)
	require.NoError(t, err)

	product, err := catalog.NewService(client).Get(context.Background(), "p-7")
	require.NoError(t, err)
	require.Equal(t, "Seed Drill", product.Name)
}
