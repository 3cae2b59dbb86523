package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/flightpay/config"
	"github.com/stretchr/testify/assert"
)

func TestStripeAdapter_Verify_Paid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"cs_test_123","payment_status":"paid","amount_total":2000,"currency":"usd"}`))
	}))
	defer server.Close()

	adapter := NewStripeAdapter(config.StripeConfig{SecretKey: "sk_test_key", BaseURL: server.URL})

	result, err := adapter.Verify(context.Background(), Reference{SessionID: "cs_test_123"})

	assert.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "20", result.Amount.String())
	assert.Equal(t, "USD", result.Currency)
	assert.Equal(t, "paid", result.ProviderStatus)
}

func TestStripeAdapter_Verify_Unpaid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"cs_test_123","payment_status":"unpaid","amount_total":0,"currency":"usd"}`))
	}))
	defer server.Close()

	adapter := NewStripeAdapter(config.StripeConfig{SecretKey: "sk_test_key", BaseURL: server.URL})

	result, err := adapter.Verify(context.Background(), Reference{SessionID: "cs_test_123"})

	// Not paid is a negative outcome, not an error.
	assert.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "unpaid", result.ProviderStatus)
}

func TestStripeAdapter_Verify_TransientFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewStripeAdapter(config.StripeConfig{SecretKey: "sk_test_key", BaseURL: server.URL})

	_, err := adapter.Verify(context.Background(), Reference{SessionID: "cs_test_123"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransient))
	assert.Equal(t, verifyAttempts, calls)
}

func TestStripeAdapter_Verify_MissingCredentials(t *testing.T) {
	adapter := NewStripeAdapter(config.StripeConfig{})

	_, err := adapter.Verify(context.Background(), Reference{SessionID: "cs_test_123"})

	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestStripeAdapter_Verify_MissingSessionID(t *testing.T) {
	adapter := NewStripeAdapter(config.StripeConfig{SecretKey: "sk_test_key"})

	_, err := adapter.Verify(context.Background(), Reference{TransactionID: "tx_1"})

	assert.True(t, errors.Is(err, ErrMissingReference))
}
