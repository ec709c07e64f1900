package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry-go"
)

// mailerSendEndpoint is the MailerSend transactional email API.
const mailerSendEndpoint = "https://api.mailersend.com/v1/email"

// MailerSendProvider sends emails via the MailerSend API.
type MailerSendProvider struct {
	apiKey    string
	fromEmail string
	fromName  string
	endpoint  string
	client    *http.Client
	logger    *slog.Logger
}

// NewMailerSendProvider creates a new MailerSend email provider.
func NewMailerSendProvider(apiKey, fromEmail, fromName string, logger *slog.Logger) *MailerSendProvider {
	return &MailerSendProvider{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		endpoint:  mailerSendEndpoint,
		client:    &http.Client{Timeout: 30 * time.Second},
		logger:    logger,
	}
}

// mailerSendRequest represents the MailerSend send email request.
type mailerSendRequest struct {
	From    mailerSendContact   `json:"from"`
	To      []mailerSendContact `json:"to"`
	Subject string              `json:"subject"`
	HTML    string              `json:"html"`
}

type mailerSendContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Send sends an email via the MailerSend API.
func (m *MailerSendProvider) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	recipients := make([]mailerSendContact, 0, len(to))
	for _, addr := range to {
		recipients = append(recipients, mailerSendContact{Email: addr})
	}

	reqBody := mailerSendRequest{
		From: mailerSendContact{
			Email: m.fromEmail,
			Name:  m.fromName,
		},
		To:      recipients,
		Subject: subject,
		HTML:    htmlBody,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	return retry.Do(
		func() error {
			m.logger.Info("MailerSend API request starting",
				"method", "POST",
				"endpoint", "v1/email",
				"recipients", len(to),
				"subject", subject)

			startTime := time.Now()
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(jsonData))
			if err != nil {
				return fmt.Errorf("create request: %w", err)
			}

			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+m.apiKey)

			resp, err := m.client.Do(req)
			duration := time.Since(startTime)

			if err != nil {
				m.logger.Warn("MailerSend API request failed, will retry",
					"duration_ms", duration.Milliseconds(),
					"error", err)
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					m.logger.Warn("Failed to close response body", "error", closeErr)
				}
			}()

			if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
				// MailerSend returns diagnostic details in the body
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				m.logger.Warn("MailerSend API returned non-success status, will retry",
					"status_code", resp.StatusCode,
					"body", string(body))
				return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
			}

			m.logger.Info("MailerSend API request completed",
				"endpoint", "v1/email",
				"message_id", resp.Header.Get("X-Message-Id"),
				"duration_ms", duration.Milliseconds(),
				"status", "success")

			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			m.logger.Info("Retrying MailerSend email send after error", "attempt", n, "error", err)
		}),
	)
}
