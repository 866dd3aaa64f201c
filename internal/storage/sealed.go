package storage

import (
	"fmt"

	"dd-go/internal/dd"
)

// SealedStorage encrypts values before handing them to the wrapped storage.
type SealedStorage struct {
	inner  dd.LocalStorage
	sealer dd.Sealer
}

var _ dd.LocalStorage = (*SealedStorage)(nil)

func NewSealedStorage(inner dd.LocalStorage, sealer dd.Sealer) *SealedStorage {
	return &SealedStorage{inner: inner, sealer: sealer}
}

func (s *SealedStorage) Get(key string) ([]byte, bool, error) {
	sealed, ok, err := s.inner.Get(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	value, err := s.sealer.Open(sealed)
	if err != nil {
		return nil, false, fmt.Errorf("opening %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SealedStorage) Set(key string, value []byte) error {
	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("sealing %s: %w", key, err)
	}
	return s.inner.Set(key, sealed)
}

func (s *SealedStorage) Remove(key string) error {
	return s.inner.Remove(key)
}

func (s *SealedStorage) Close() error {
	return s.inner.Close()
}
