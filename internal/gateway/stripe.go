package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Domenick1991/flightpay/config"
	"github.com/shopspring/decimal"
)

const stripeDefaultBaseURL = "https://api.stripe.com"

// StripeAdapter verifies payment by fetching the checkout session the
// customer was redirected through. A session with payment_status "paid"
// is settled; anything else is a negative outcome, not an error.
type StripeAdapter struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripeAdapter(cfg config.StripeConfig) *StripeAdapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeDefaultBaseURL
	}
	return &StripeAdapter{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    newHTTPClient(),
	}
}

type stripeSession struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

func (a *StripeAdapter) Verify(ctx context.Context, ref Reference) (VerificationResult, error) {
	if a.secretKey == "" {
		return VerificationResult{}, fmt.Errorf("stripe: %w", ErrNotConfigured)
	}
	if ref.SessionID == "" {
		return VerificationResult{}, fmt.Errorf("stripe: %w", ErrMissingReference)
	}

	url := fmt.Sprintf("%s/v1/checkout/sessions/%s", a.baseURL, ref.SessionID)
	body, err := getJSON(ctx, a.client, url, "Bearer "+a.secretKey)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("stripe: %w", err)
	}

	var session stripeSession
	if err := json.Unmarshal(body, &session); err != nil {
		return VerificationResult{}, fmt.Errorf("stripe: decode session: %w", err)
	}

	result := VerificationResult{
		ProviderStatus: session.PaymentStatus,
		Currency:       strings.ToUpper(session.Currency),
	}
	if session.PaymentStatus != "paid" {
		return result, nil
	}

	result.Verified = true
	// amount_total is in minor units.
	result.Amount = decimal.NewFromInt(session.AmountTotal).Div(decimal.NewFromInt(100))
	return result, nil
}

var _ Adapter = (*StripeAdapter)(nil)
