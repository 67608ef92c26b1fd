package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignPayload(t *testing.T) {
	sig := SignPayload("order_123", "pay_456", "secret")

	assert.Len(t, sig, 64, "hex encoded sha256 digest")
	assert.Equal(t, sig, SignPayload("order_123", "pay_456", "secret"), "deterministic")
	assert.NotEqual(t, sig, SignPayload("order_123", "pay_456", "other-secret"))
	assert.NotEqual(t, sig, SignPayload("order_999", "pay_456", "secret"))
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("key", "secret", "http://unused")

	valid := SignPayload("order_123", "pay_456", "secret")

	assert.True(t, client.VerifySignature("order_123", "pay_456", valid))
	assert.False(t, client.VerifySignature("order_123", "pay_456", "deadbeef"))
	assert.False(t, client.VerifySignature("order_123", "pay_999", valid))
	assert.False(t, client.VerifySignature("order_123", "pay_456", ""))
}

func TestCreateOrder(t *testing.T) {
	var received OrderRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_id", username)
		assert.Equal(t, "key_secret", password)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Order{
			ID:       "order_abc",
			Amount:   received.Amount,
			Currency: received.Currency,
			Receipt:  received.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	client := NewClient("key_id", "key_secret", server.URL)

	order, err := client.CreateOrder(context.Background(), OrderRequest{
		Amount:   50000,
		Currency: "INR",
		Receipt:  "receipt_1",
		Notes:    map[string]string{"userId": "u1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(50000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, int64(50000), received.Amount)
	assert.Equal(t, "u1", received.Notes["userId"])
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"amount too small"}}`))
	}))
	defer server.Close()

	client := NewClient("key_id", "key_secret", server.URL)

	_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
}
