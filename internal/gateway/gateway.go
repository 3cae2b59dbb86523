package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured means the adapter is missing credentials. Fatal for
	// the provider, never retried.
	ErrNotConfigured = errors.New("gateway not configured")
	// ErrTransient marks network failures and non-2xx responses. Callers
	// may retry with bounded backoff.
	ErrTransient = errors.New("transient gateway error")
	// ErrUnsupportedProvider is returned for an unknown provider tag.
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
	// ErrMissingReference means no usable provider identifier was supplied.
	ErrMissingReference = errors.New("missing verification reference")
)

// Reference carries the provider identifiers a confirmation call or
// webhook may arrive with. Which field is populated depends on the
// provider and on whether the redirect or the webhook path got here first.
type Reference struct {
	SessionID     string
	TransactionID string
	TxRef         string
}

// VerificationResult is the normalized outcome of a verify call. A
// provider reporting anything other than its success sentinel yields
// Verified=false with no error: "not paid yet" is a legitimate answer.
type VerificationResult struct {
	Verified       bool
	Amount         decimal.Decimal
	Currency       string
	ProviderStatus string
}

// Adapter is a pure query against one provider's verify endpoint.
type Adapter interface {
	Verify(ctx context.Context, ref Reference) (VerificationResult, error)
}

const (
	verifyAttempts = 3
	verifyBaseWait = 200 * time.Millisecond
	requestTimeout = 10 * time.Second
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// getJSON performs an authenticated GET, retrying transient failures with
// exponential backoff. A non-2xx status is transient; exhausted retries
// surface the last error wrapped in ErrTransient.
func getJSON(ctx context.Context, client *http.Client, url, authHeader string) ([]byte, error) {
	var lastErr error
	wait := verifyBaseWait

	for attempt := 0; attempt < verifyAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			wait *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", authHeader)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, body)
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrTransient, lastErr)
}
