// Package testsupport provides shared helpers for tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"photomise/internal/config"
	"photomise/internal/store"
)

// NewConfig creates a validated configuration rooted in a temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config validation failed: %v", err)
	}
	return &cfg
}

// MustOpenShared opens a shared store backed by the config's temp data
// directory and closes it when the test finishes.
func MustOpenShared(t *testing.T, cfg *config.Config) *store.SharedStore {
	t.Helper()

	s, err := store.OpenShared(cfg)
	if err != nil {
		t.Fatalf("open shared store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close shared store: %v", err)
		}
	})
	return s
}

// MustOpenProject opens a project store rooted in a fresh temp directory
// and closes it when the test finishes.
func MustOpenProject(t *testing.T, name string) *store.ProjectStore {
	t.Helper()

	s, err := store.OpenProject(name, t.TempDir())
	if err != nil {
		t.Fatalf("open project store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close project store: %v", err)
		}
	})
	return s
}
