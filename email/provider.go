// Package email renders the new-event digest and dispatches it through a
// pluggable delivery provider.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TheusHen/HCNoticer/pkg/catalog"
)

// Provider defines the interface for email sending implementations.
type Provider interface {
	// Send delivers an email to the given recipients.
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// Sender builds the digest and hands it to the configured provider.
type Sender struct {
	provider Provider
	logger   *slog.Logger
	to       []string
	now      func() time.Time
}

// NewSender creates a digest sender. A nil provider means delivery is not
// configured; Notify then skips instead of failing.
func NewSender(provider Provider, to []string, logger *slog.Logger) *Sender {
	return &Sender{
		provider: provider,
		to:       to,
		logger:   logger,
		now:      time.Now,
	}
}

// Notify renders and delivers the digest for the given results. The first
// return value reports whether an email was actually sent: (false, nil)
// means delivery was deliberately skipped, either because there is nothing
// to announce or because delivery is not configured. A transport failure is
// returned as an error; by the time Notify runs, state has already been
// persisted, so callers treat that error as non-fatal.
func (s *Sender) Notify(ctx context.Context, results []catalog.Result) (bool, error) {
	if catalog.TotalNew(results) == 0 {
		return false, nil
	}
	if s.provider == nil {
		s.logger.Warn("Email delivery not configured, skipping notification")
		return false, nil
	}
	if len(s.to) == 0 {
		s.logger.Warn("No email recipients configured, skipping notification")
		return false, nil
	}

	subject := BuildSubject(results)
	body := BuildHTML(results, s.now())

	s.logger.Info("Sending digest email",
		"recipients", len(s.to),
		"new_events", catalog.TotalNew(results),
		"subject", subject)

	if err := s.provider.Send(ctx, s.to, subject, body); err != nil {
		return false, fmt.Errorf("send digest: %w", err)
	}

	s.logger.Info("Digest email sent", "recipients", len(s.to))
	return true, nil
}
