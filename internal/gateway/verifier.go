package gateway

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightpay/internal/domain"
)

// Verifier selects the adapter for a provider tag and returns its
// normalized result.
type Verifier struct {
	adapters map[domain.PaymentProvider]Adapter
}

func NewVerifier(stripe, flutterwave Adapter) *Verifier {
	return &Verifier{
		adapters: map[domain.PaymentProvider]Adapter{
			domain.ProviderStripe:      stripe,
			domain.ProviderFlutterwave: flutterwave,
		},
	}
}

func (v *Verifier) Verify(ctx context.Context, provider domain.PaymentProvider, ref Reference) (VerificationResult, error) {
	adapter, ok := v.adapters[provider]
	if !ok {
		return VerificationResult{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	if ref.SessionID == "" && ref.TransactionID == "" && ref.TxRef == "" {
		return VerificationResult{}, ErrMissingReference
	}
	return adapter.Verify(ctx, ref)
}
