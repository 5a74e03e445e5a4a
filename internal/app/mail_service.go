package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMailNotConfigured indicates the outbound mail API key is absent. Only
// the mail endpoint degrades; the rest of the service is unaffected.
var ErrMailNotConfigured = errors.New("mail api key not configured")

const resendEndpoint = "https://api.resend.com/emails"

// MailService delivers contact-form messages through the Resend HTTP API.
type MailService struct {
	apiKey   string
	from     string
	to       string
	client   *http.Client
	endpoint string
}

// NewMailService creates a mail service. An empty apiKey is allowed; sends
// will fail with ErrMailNotConfigured.
func NewMailService(apiKey, from, to string) *MailService {
	return &MailService{
		apiKey:   apiKey,
		from:     from,
		to:       to,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: resendEndpoint,
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send forwards a contact-form message to the configured recipient.
func (s *MailService) Send(ctx context.Context, senderAddr, firstName, lastName, message string) error {
	if s.apiKey == "" {
		return ErrMailNotConfigured
	}

	body, err := json.Marshal(resendEmail{
		From:    s.from,
		To:      []string{s.to},
		Subject: fmt.Sprintf("Mail from: %s %s<%s>", firstName, lastName, senderAddr),
		Text:    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
