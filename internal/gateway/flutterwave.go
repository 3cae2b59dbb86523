package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Domenick1991/flightpay/config"
	"github.com/shopspring/decimal"
)

const flutterwaveDefaultBaseURL = "https://api.flutterwave.com"

// FlutterwaveAdapter verifies a transaction by id, or by the merchant
// tx_ref when only the webhook reference is at hand.
type FlutterwaveAdapter struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewFlutterwaveAdapter(cfg config.FlutterwaveConfig) *FlutterwaveAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = flutterwaveDefaultBaseURL
	}
	return &FlutterwaveAdapter{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    newHTTPClient(),
	}
}

type flutterwaveResponse struct {
	Status string `json:"status"`
	Data   struct {
		Status   string          `json:"status"`
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
		TxRef    string          `json:"tx_ref"`
	} `json:"data"`
}

func (a *FlutterwaveAdapter) Verify(ctx context.Context, ref Reference) (VerificationResult, error) {
	if a.secretKey == "" {
		return VerificationResult{}, fmt.Errorf("flutterwave: %w", ErrNotConfigured)
	}

	var endpoint string
	switch {
	case ref.TransactionID != "":
		endpoint = fmt.Sprintf("%s/v3/transactions/%s/verify", a.baseURL, ref.TransactionID)
	case ref.TxRef != "":
		endpoint = fmt.Sprintf("%s/v3/transactions/verify_by_reference?tx_ref=%s", a.baseURL, url.QueryEscape(ref.TxRef))
	default:
		return VerificationResult{}, fmt.Errorf("flutterwave: %w", ErrMissingReference)
	}

	body, err := getJSON(ctx, a.client, endpoint, "Bearer "+a.secretKey)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("flutterwave: %w", err)
	}

	var resp flutterwaveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return VerificationResult{}, fmt.Errorf("flutterwave: decode response: %w", err)
	}

	result := VerificationResult{
		ProviderStatus: resp.Data.Status,
		Currency:       strings.ToUpper(resp.Data.Currency),
		Amount:         resp.Data.Amount,
	}
	if resp.Status != "success" || resp.Data.Status != "successful" {
		result.Verified = false
		return result, nil
	}

	result.Verified = true
	return result, nil
}

var _ Adapter = (*FlutterwaveAdapter)(nil)
