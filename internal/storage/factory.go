package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"dd-go/internal/config"
	"dd-go/internal/dd"
)

// NewStorageFromConfig creates the LocalStorage described by the storage and
// encryption config sections.
func NewStorageFromConfig(cfg config.StorageConfig, enc config.EncryptionConfig) (dd.LocalStorage, error) {
	var base dd.LocalStorage
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite storage")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		s, err := NewSQLiteStorage(filepath.Join(cfg.DataDir, "local.db"), nil)
		if err != nil {
			return nil, err
		}
		base = s
	case "memory", "":
		base = NewMemoryStorage()
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}

	switch enc.Type {
	case "none", "":
		return base, nil
	case "age":
		if enc.IdentityPath == "" {
			base.Close()
			return nil, fmt.Errorf("identity_path required for age encryption")
		}
		sealer, err := LoadOrCreateAgeSealer(enc.IdentityPath)
		if err != nil {
			base.Close()
			return nil, fmt.Errorf("loading age identity: %w", err)
		}
		return NewSealedStorage(base, sealer), nil
	default:
		base.Close()
		return nil, fmt.Errorf("unknown encryption type: %q", enc.Type)
	}
}
