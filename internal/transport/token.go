package transport

import (
	"fmt"

	"dd-go/internal/dd"
)

// TokenStore keeps the bearer token in local storage under a fixed key.
type TokenStore struct {
	storage dd.LocalStorage
}

func NewTokenStore(storage dd.LocalStorage) *TokenStore {
	return &TokenStore{storage: storage}
}

// GetToken returns the stored token, or "" when none is stored.
func (t *TokenStore) GetToken() (string, error) {
	v, ok, err := t.storage.Get(dd.TokenStorageKey)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return string(v), nil
}

func (t *TokenStore) SetToken(token string) error {
	if err := t.storage.Set(dd.TokenStorageKey, []byte(token)); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

func (t *TokenStore) RemoveToken() error {
	if err := t.storage.Remove(dd.TokenStorageKey); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}
