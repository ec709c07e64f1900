package email

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TheusHen/HCNoticer/pkg/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type capturingProvider struct {
	to      []string
	subject string
	html    string
	err     error
	calls   int
}

func (p *capturingProvider) Send(_ context.Context, to []string, subject, html string) error {
	p.calls++
	p.to = to
	p.subject = subject
	p.html = html
	return p.err
}

func newResults() []catalog.Result {
	return []catalog.Result{{
		Category:  "Limited Time",
		NewEvents: []catalog.Event{{Name: "Alpha", Status: catalog.StatusActive}},
	}}
}

func TestNotifySends(t *testing.T) {
	provider := &capturingProvider{}
	sender := NewSender(provider, []string{"team@example.com"}, testLogger())

	sent, err := sender.Notify(context.Background(), newResults())
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !sent {
		t.Fatal("Notify() sent = false, want true")
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want exactly 1", provider.calls)
	}
	if len(provider.to) != 1 || provider.to[0] != "team@example.com" {
		t.Errorf("provider to = %v", provider.to)
	}
	if !strings.Contains(provider.subject, "Alpha") {
		t.Errorf("subject = %q, want event name", provider.subject)
	}
	if !strings.Contains(provider.html, "Alpha") {
		t.Error("html body missing event name")
	}
}

// Missing configuration is a deliberate skip, reported as a no-op rather
// than an error.
func TestNotifySkips(t *testing.T) {
	tests := []struct {
		name    string
		sender  *Sender
		results []catalog.Result
	}{
		{
			name:    "no new events",
			sender:  NewSender(&capturingProvider{}, []string{"a@example.com"}, testLogger()),
			results: nil,
		},
		{
			name:    "no provider",
			sender:  NewSender(nil, []string{"a@example.com"}, testLogger()),
			results: newResults(),
		},
		{
			name:    "no recipients",
			sender:  NewSender(&capturingProvider{}, nil, testLogger()),
			results: newResults(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sent, err := tt.sender.Notify(context.Background(), tt.results)
			if err != nil {
				t.Errorf("Notify() error = %v, want nil for a skip", err)
			}
			if sent {
				t.Error("Notify() sent = true, want false for a skip")
			}
		})
	}
}

func TestNotifyTransportFailure(t *testing.T) {
	provider := &capturingProvider{err: errors.New("api down")}
	sender := NewSender(provider, []string{"a@example.com"}, testLogger())

	sent, err := sender.Notify(context.Background(), newResults())
	if err == nil {
		t.Fatal("Notify() error = nil, want transport failure")
	}
	if sent {
		t.Error("Notify() sent = true on failure")
	}
}

func TestMailerSendProviderSend(t *testing.T) {
	var gotAuth string
	var gotBody mailerSendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("X-Message-Id", "msg-123")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	provider := NewMailerSendProvider("secret-key", "noticer@example.com", "HCNoticer", testLogger())
	provider.endpoint = srv.URL

	err := provider.Send(context.Background(), []string{"a@example.com", "b@example.com"}, "2 new events", "<html></html>")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.From.Email != "noticer@example.com" || gotBody.From.Name != "HCNoticer" {
		t.Errorf("from = %+v", gotBody.From)
	}
	if len(gotBody.To) != 2 || gotBody.To[0].Email != "a@example.com" {
		t.Errorf("to = %+v", gotBody.To)
	}
	if gotBody.Subject != "2 new events" {
		t.Errorf("subject = %q", gotBody.Subject)
	}
	if gotBody.HTML != "<html></html>" {
		t.Errorf("html = %q", gotBody.HTML)
	}
}

func TestMailerSendProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"from.email must be verified"}`))
	}))
	defer srv.Close()

	provider := NewMailerSendProvider("secret-key", "noticer@example.com", "HCNoticer", testLogger())
	provider.endpoint = srv.URL

	err := provider.Send(context.Background(), []string{"a@example.com"}, "subject", "body")
	if err == nil {
		t.Fatal("Send() error = nil, want failure for non-success status")
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("Send() error = %v, want status code in diagnostics", err)
	}
}
