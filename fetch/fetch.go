// Package fetch retrieves the YSWS event catalog from the remote API.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry-go"

	"github.com/TheusHen/HCNoticer/pkg/catalog"
)

// maxRedirects limits redirect following to a single hop. The catalog URL
// points at raw GitHub content, which redirects at most once; anything past
// that is treated as a failure.
const maxRedirects = 1

// Fetcher retrieves and decodes the catalog document.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
	url    string
}

// New creates a fetcher for the given API URL.
func New(apiURL string, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirect", maxRedirects)
				}
				return nil
			},
		},
		logger: logger,
		url:    apiURL,
	}
}

// Fetch downloads and parses the catalog. Any failure here aborts the run:
// the diff engine never sees partial or garbled data.
func (f *Fetcher) Fetch(ctx context.Context) (*catalog.Catalog, error) {
	var data *catalog.Catalog

	err := retry.Do(
		func() error {
			f.logger.Info("HTTP request starting",
				"method", "GET",
				"url", f.url,
				"purpose", "fetch_catalog")

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, http.NoBody)
			if err != nil {
				return fmt.Errorf("create request: %w", err)
			}
			req.Header.Set("Accept", "application/json")

			startTime := time.Now()
			resp, err := f.client.Do(req)
			duration := time.Since(startTime)

			if err != nil {
				f.logger.Warn("HTTP request failed, will retry",
					"url", f.url,
					"duration_ms", duration.Milliseconds(),
					"error", err)
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					f.logger.Warn("Failed to close response body", "error", closeErr)
				}
			}()

			f.logger.Info("HTTP request completed",
				"url", f.url,
				"status_code", resp.StatusCode,
				"duration_ms", duration.Milliseconds(),
				"content_length", resp.ContentLength)

			if resp.StatusCode != http.StatusOK {
				f.logger.Warn("HTTP request returned non-OK status, will retry", "status_code", resp.StatusCode)
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			}

			var c catalog.Catalog
			if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
				f.logger.Warn("Failed to parse catalog JSON, will retry", "error", err)
				return fmt.Errorf("decode catalog: %w", err)
			}
			data = &c

			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Info("Retrying catalog fetch after error", "attempt", n, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}

	return data, nil
}
