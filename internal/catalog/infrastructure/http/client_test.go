package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/storefront/internal/catalog/application"
	"github.com/dmehra2102/storefront/pkg/logging"
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(application.SeedProducts())
	})
	mux.HandleFunc("/products/2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(application.SeedProducts()[1])
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchProducts(t *testing.T) {
	c := NewClient(logging.Discard(), catalogServer(t).URL, time.Second)
	products, err := c.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 6)
	assert.Equal(t, "199.99", products[0].Price.StringFixed(2))
}

func TestFetchProductByID(t *testing.T) {
	c := NewClient(logging.Discard(), catalogServer(t).URL, time.Second)

	p, err := c.FetchProductByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Running Shoes", p.Name)
	assert.Equal(t, 25, p.Stock)

	_, err = c.FetchProductByID(context.Background(), 9)
	assert.ErrorIs(t, err, application.ErrProductNotFound)
}
