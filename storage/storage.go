// Package storage persists the known-event state between runs, either on
// the local filesystem or in a Cloud Storage bucket.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry-go"

	"github.com/TheusHen/HCNoticer/pkg/catalog"
)

// stateObject is the object name used for the bucket backend.
const stateObject = "state.json"

// Store handles state persistence. Exactly one backend is active: a local
// file path, or a bucket when a storage client is configured.
type Store struct {
	client *storage.Client // nil when using the local backend
	logger *slog.Logger
	bucket string
	path   string // local state file path
}

// New creates a store backed by a local JSON file.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// NewGCS creates a store backed by a Cloud Storage bucket.
func NewGCS(client *storage.Client, bucket string, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Load reads the persisted state. It never fails: missing state means a
// first run, and unreadable or corrupt state is treated the same way, so
// downstream logic cannot tell the two apart.
func (s *Store) Load(ctx context.Context) *catalog.State {
	data, err := s.read(ctx)
	if err != nil {
		if !isNotExist(err) {
			s.logger.Warn("Failed to read state, starting fresh", "error", err)
		}
		return emptyState()
	}

	var state catalog.State
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn("Corrupt state, starting fresh", "error", err)
		return emptyState()
	}
	if state.KnownEvents == nil {
		state.KnownEvents = []string{}
	}

	return &state
}

// Save persists the state, overwriting any previous content. Unlike Load,
// failures propagate: a run that cannot persist state would re-announce
// every event on the next run.
func (s *Store) Save(ctx context.Context, state *catalog.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	// Local filesystem storage
	if s.client == nil {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
		if err := os.WriteFile(s.path, data, 0o600); err != nil {
			return fmt.Errorf("write state file: %w", err)
		}
		s.logger.Info("State saved", "path", s.path, "known_events", len(state.KnownEvents))
		return nil
	}

	// Cloud Storage with retry logic for reliability
	err = retry.Do(
		func() error {
			w := s.client.Bucket(s.bucket).Object(stateObject).NewWriter(ctx)
			if _, writeErr := w.Write(data); writeErr != nil {
				if closeErr := w.Close(); closeErr != nil {
					s.logger.Warn("Failed to close writer after error", "error", closeErr)
				}
				return fmt.Errorf("write to storage: %w", writeErr)
			}
			if closeErr := w.Close(); closeErr != nil {
				return fmt.Errorf("close storage writer: %w", closeErr)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, retryErr error) {
			s.logger.Info("Retrying state save after error", "attempt", n, "error", retryErr)
		}),
	)
	if err != nil {
		return fmt.Errorf("save after retries: %w", err)
	}

	s.logger.Info("State saved", "bucket", s.bucket, "known_events", len(state.KnownEvents))
	return nil
}

// Exists reports whether persisted state is present. Used only to flag
// first-run behavior in user messaging, never for diff logic.
func (s *Store) Exists(ctx context.Context) bool {
	if s.client == nil {
		_, err := os.Stat(s.path)
		return err == nil
	}

	_, err := s.client.Bucket(s.bucket).Object(stateObject).Attrs(ctx)
	return err == nil
}

func (s *Store) read(ctx context.Context) ([]byte, error) {
	// Local filesystem storage
	if s.client == nil {
		return os.ReadFile(s.path)
	}

	// Cloud Storage with retry logic for reliability
	var data []byte
	err := retry.Do(
		func() error {
			r, openErr := s.client.Bucket(s.bucket).Object(stateObject).NewReader(ctx)
			if openErr != nil {
				// Don't retry on "not found" errors
				if errors.Is(openErr, storage.ErrObjectNotExist) {
					return retry.Unrecoverable(fmt.Errorf("open storage reader: %w", openErr))
				}
				return fmt.Errorf("open storage reader: %w", openErr)
			}
			defer func() {
				if closeErr := r.Close(); closeErr != nil {
					s.logger.Warn("Failed to close storage reader", "error", closeErr)
				}
			}()

			var readErr error
			data, readErr = io.ReadAll(r)
			if readErr != nil {
				return fmt.Errorf("read from storage: %w", readErr)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, retryErr error) {
			s.logger.Info("Retrying state load after error", "attempt", n, "error", retryErr)
		}),
	)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, storage.ErrObjectNotExist)
}

func emptyState() *catalog.State {
	return &catalog.State{KnownEvents: []string{}}
}
