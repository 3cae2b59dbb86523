package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Domenick1991/flightpay/config"
)

// Sender pushes a short text message to the admin chat. The channel is
// best-effort throughout; a disabled or failing sender never blocks an
// order.
type Sender interface {
	Enabled() bool
	Send(ctx context.Context, to, text string) error
}

// WhatsAppSender calls a CallMeBot-style HTTP relay. Missing
// configuration simply disables the channel.
type WhatsAppSender struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewWhatsAppSender(cfg config.ChatConfig) *WhatsAppSender {
	return &WhatsAppSender{
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WhatsAppSender) Enabled() bool {
	return s.apiURL != "" && s.apiKey != ""
}

func (s *WhatsAppSender) Send(ctx context.Context, to, text string) error {
	if !s.Enabled() {
		return nil
	}

	q := url.Values{}
	q.Set("phone", to)
	q.Set("apikey", s.apiKey)
	q.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chat send failed, status %d: %s", resp.StatusCode, body)
	}
	return nil
}

var _ Sender = (*WhatsAppSender)(nil)
