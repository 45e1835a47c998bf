package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() CreateSessionParams {
	return CreateSessionParams{
		Amount:        2500,
		Currency:      "usd",
		Quantity:      2,
		SuccessURL:    "https://example.org/success",
		CancelURL:     "https://example.org/cancel",
		EventTitle:    "Oak Grove Tour",
		EventVenue:    "North Preserve",
		CustomerEmail: "steward@example.org",
		OrderID:       42,
	}
}

func TestClient_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Equal(t, "2500", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
			assert.Equal(t, "Oak Grove Tour", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
			assert.Equal(t, "2", r.PostForm.Get("line_items[0][quantity]"))
			assert.Equal(t, "42", r.PostForm.Get("metadata[order_id]"))
			assert.Equal(t, "42", r.PostForm.Get("payment_intent_data[metadata][order_id]"))
			assert.Equal(t, "steward@example.org", r.PostForm.Get("customer_email"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"cs_test_abc","url":"https://pay.example.org/cs_test_abc"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "sk_test_123", "whsec_x", 5*time.Second)

		session, err := client.CreateSession(ctx, validParams())

		require.NoError(t, err)
		assert.Equal(t, "cs_test_abc", session.ID)
		assert.Equal(t, "https://pay.example.org/cs_test_abc", session.URL)
	})

	t.Run("Failed - provider error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, "sk_test_123", "whsec_x", 5*time.Second)

		_, err := client.CreateSession(ctx, validParams())

		assert.Error(t, err)
	})

	t.Run("Failed - empty session id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"","url":""}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "sk_test_123", "whsec_x", 5*time.Second)

		_, err := client.CreateSession(ctx, validParams())

		assert.Error(t, err)
	})

	t.Run("Failed - missing amount", func(t *testing.T) {
		client := NewClient("http://localhost:1", "sk_test_123", "whsec_x", time.Second)

		params := validParams()
		params.Amount = 0

		_, err := client.CreateSession(ctx, params)

		assert.Error(t, err)
	})

	t.Run("Failed - not configured", func(t *testing.T) {
		client := NewClient("http://localhost:1", "", "whsec_x", time.Second)

		_, err := client.CreateSession(ctx, validParams())

		assert.Error(t, err)
	})
}
