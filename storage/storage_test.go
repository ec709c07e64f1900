package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/TheusHen/HCNoticer/pkg/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadMissingState(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state.json"), testLogger())
	ctx := context.Background()

	if store.Exists(ctx) {
		t.Error("Exists() = true for missing state")
	}

	state := store.Load(ctx)
	if state == nil {
		t.Fatal("Load() returned nil for missing state")
	}
	if len(state.KnownEvents) != 0 {
		t.Errorf("Load() KnownEvents = %v, want empty", state.KnownEvents)
	}
	if state.LastCheck != "" {
		t.Errorf("Load() LastCheck = %q, want empty", state.LastCheck)
	}
}

// Corrupt state must come back as the empty state, never as an error:
// downstream logic cannot tell corruption apart from a first run.
func TestLoadCorruptState(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `{"knownEvents": ["A",`},
		{"not json", "definitely not json"},
		{"wrong shape", `{"knownEvents": 42}`},
		{"wrong top-level type", `["A", "B"]`},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			store := New(path, testLogger())
			state := store.Load(context.Background())

			if len(state.KnownEvents) != 0 {
				t.Errorf("Load() KnownEvents = %v, want empty for corrupt input", state.KnownEvents)
			}
		})
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	// Nested path verifies that Save creates missing parent directories
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	store := New(path, testLogger())
	ctx := context.Background()

	saved := &catalog.State{
		KnownEvents: []string{"Alpha", "Beta"},
		LastCheck:   "2026-08-31T12:00:00Z",
	}
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if !store.Exists(ctx) {
		t.Error("Exists() = false after Save")
	}

	loaded := store.Load(ctx)
	if len(loaded.KnownEvents) != 2 || loaded.KnownEvents[0] != "Alpha" || loaded.KnownEvents[1] != "Beta" {
		t.Errorf("Load() KnownEvents = %v, want [Alpha Beta]", loaded.KnownEvents)
	}
	if loaded.LastCheck != saved.LastCheck {
		t.Errorf("Load() LastCheck = %q, want %q", loaded.LastCheck, saved.LastCheck)
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := New(path, testLogger())
	ctx := context.Background()

	if err := store.Save(ctx, &catalog.State{KnownEvents: []string{"Old"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, &catalog.State{KnownEvents: []string{"New"}}); err != nil {
		t.Fatal(err)
	}

	loaded := store.Load(ctx)
	if len(loaded.KnownEvents) != 1 || loaded.KnownEvents[0] != "New" {
		t.Errorf("Load() after overwrite = %v, want [New]", loaded.KnownEvents)
	}
}

func TestSaveFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	// A directory at the file path makes the write fail
	path := filepath.Join(dir, "state.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	store := New(path, testLogger())
	if err := store.Save(context.Background(), &catalog.State{}); err == nil {
		t.Error("Save() should fail when the path is not writable")
	}
}
