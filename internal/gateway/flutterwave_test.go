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

func TestFlutterwaveAdapter_Verify_ByTransactionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/transactions/12345/verify", r.URL.Path)
		assert.Equal(t, "Bearer flw_test_key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":"success","data":{"status":"successful","amount":150.5,"currency":"ngn","tx_ref":"order-1"}}`))
	}))
	defer server.Close()

	adapter := NewFlutterwaveAdapter(config.FlutterwaveConfig{SecretKey: "flw_test_key", BaseURL: server.URL})

	result, err := adapter.Verify(context.Background(), Reference{TransactionID: "12345"})

	assert.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "150.5", result.Amount.String())
	assert.Equal(t, "NGN", result.Currency)
}

func TestFlutterwaveAdapter_Verify_ByTxRef(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/transactions/verify_by_reference", r.URL.Path)
		assert.Equal(t, "order-1", r.URL.Query().Get("tx_ref"))
		w.Write([]byte(`{"status":"success","data":{"status":"successful","amount":99,"currency":"USD","tx_ref":"order-1"}}`))
	}))
	defer server.Close()

	adapter := NewFlutterwaveAdapter(config.FlutterwaveConfig{SecretKey: "flw_test_key", BaseURL: server.URL})

	result, err := adapter.Verify(context.Background(), Reference{TxRef: "order-1"})

	assert.NoError(t, err)
	assert.True(t, result.Verified)
}

func TestFlutterwaveAdapter_Verify_Failed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"status":"failed","amount":99,"currency":"USD","tx_ref":"order-1"}}`))
	}))
	defer server.Close()

	adapter := NewFlutterwaveAdapter(config.FlutterwaveConfig{SecretKey: "flw_test_key", BaseURL: server.URL})

	result, err := adapter.Verify(context.Background(), Reference{TransactionID: "12345"})

	assert.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "failed", result.ProviderStatus)
}

func TestFlutterwaveAdapter_Verify_MissingReference(t *testing.T) {
	adapter := NewFlutterwaveAdapter(config.FlutterwaveConfig{SecretKey: "flw_test_key"})

	_, err := adapter.Verify(context.Background(), Reference{SessionID: "cs_1"})

	assert.True(t, errors.Is(err, ErrMissingReference))
}

func TestFlutterwaveAdapter_Verify_MissingCredentials(t *testing.T) {
	adapter := NewFlutterwaveAdapter(config.FlutterwaveConfig{})

	_, err := adapter.Verify(context.Background(), Reference{TransactionID: "12345"})

	assert.True(t, errors.Is(err, ErrNotConfigured))
}
