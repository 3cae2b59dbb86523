package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/Domenick1991/flightpay/config"
)

var (
	ErrNotConfigured    = errors.New("email sender not configured")
	ErrInvalidRecipient = errors.New("invalid recipient address")
	ErrTransient        = errors.New("transient email error")
)

// Attachment references a previously uploaded document by URL. The
// content is fetched and inlined at send time; a fetch failure degrades
// to sending the message without it.
type Attachment struct {
	Filename string
	URL      string
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Result struct {
	MessageID string
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

const resendDefaultBaseURL = "https://api.resend.com"

// ResendSender delivers mail through the Resend REST API.
type ResendSender struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
	log     *slog.Logger
}

func NewResendSender(cfg config.EmailConfig, log *slog.Logger) *ResendSender {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = resendDefaultBaseURL
	}
	return &ResendSender{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		from:    cfg.From,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	if s.apiKey == "" {
		return Result{}, ErrNotConfigured
	}
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidRecipient, msg.To)
	}

	payload := resendRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	for _, att := range msg.Attachments {
		content, err := s.fetchAttachment(ctx, att.URL)
		if err != nil {
			// Degrade: the email still goes out, just without the file.
			s.log.Warn("attachment fetch failed, sending without it",
				"filename", att.Filename, "err", err)
			continue
		}
		payload.Attachments = append(payload.Attachments, resendAttachment{
			Filename: att.Filename,
			Content:  base64.StdEncoding.EncodeToString(content),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}

	var lastErr error
	wait := 300 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return Result{}, ctx.Err()
			}
			wait *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
		if err != nil {
			return Result{}, err
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// The provider rejected the message; retrying cannot help.
			return Result{}, fmt.Errorf("email rejected, status %d: %s", resp.StatusCode, respBody)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
			continue
		}

		var parsed resendResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return Result{}, fmt.Errorf("decode send response: %w", err)
		}
		return Result{MessageID: parsed.ID}, nil
	}

	return Result{}, fmt.Errorf("%w: %v", ErrTransient, lastErr)
}

func (s *ResendSender) fetchAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch attachment: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var _ Sender = (*ResendSender)(nil)
