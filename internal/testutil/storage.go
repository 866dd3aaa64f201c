package testutil

import (
	"path/filepath"
	"testing"

	"filippo.io/age"

	"dd-go/internal/dd"
	"dd-go/internal/storage"
)

// NewTestStorage creates a SQLite-backed local storage in a temp dir, with
// the schema applied. It is closed when the test completes.
func NewTestStorage(t *testing.T) dd.LocalStorage {
	t.Helper()

	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "local.db"), FixedClock())
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// NewTestSealer creates an age sealer with a fresh in-memory identity.
func NewTestSealer(t *testing.T) dd.Sealer {
	t.Helper()

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("failed to generate identity: %v", err)
	}
	return storage.NewAgeSealer(identity)
}
