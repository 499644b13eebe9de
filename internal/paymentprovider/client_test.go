package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateOrder(t *testing.T) {
	var gotBody OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"order_1","entity":"order","amount":99900,"currency":"INR","receipt":"rcpt_1","status":"created"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1/", "rzp_test_key", "secret", time.Second)
	order, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 99900, Currency: "INR", Receipt: "rcpt_1"})
	require.NoError(t, err)

	assert.Equal(t, OrderRequest{Amount: 99900, Currency: "INR", Receipt: "rcpt_1"}, gotBody)
	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, int64(99900), order.Amount)
	assert.Equal(t, "created", order.Status)

	out, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"entity":"order"`)
}

func TestClient_CreateOrder_GatewayError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret", time.Second)
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "BAD_REQUEST_ERROR")
	assert.Equal(t, 1, calls, "no retries")
}

func TestClient_CreateOrder_NotConfigured(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer srv.Close()

	for _, c := range []*Client{
		NewClient(srv.URL, "", "secret", 0),
		NewClient(srv.URL, "key", "", 0),
	} {
		_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
		require.ErrorIs(t, err, ErrNotConfigured)
	}
	assert.Zero(t, calls)
}

func TestClient_CreateOrder_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "key", "secret", time.Second)
	_, err := c.CreateOrder(ctx, OrderRequest{Amount: 100, Currency: "INR"})
	require.ErrorIs(t, err, context.Canceled)
}
