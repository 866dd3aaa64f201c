package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"dd-go/internal/dd"
	"dd-go/internal/model"
	"dd-go/internal/transport"
)

// AuthState is a snapshot of the session.
type AuthState struct {
	User            *model.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// persistedAuth is the slice of auth state kept across runs. Loading and
// error state are never persisted.
type persistedAuth struct {
	State struct {
		User            *model.User `json:"user"`
		IsAuthenticated bool        `json:"isAuthenticated"`
	} `json:"state"`
	Version int `json:"version"`
}

// AuthStore tracks the current user and whether a session token is held.
type AuthStore struct {
	auth    AuthService
	tokens  TokenReader
	probe   SessionProbe
	storage dd.LocalStorage
	logger  dd.Logger
	ops     *opTracker

	mu            sync.RWMutex
	user          *model.User
	authenticated bool
}

// NewAuthStore restores the persisted slice from storage. probe may be nil,
// in which case ValidateSession is a no-op.
func NewAuthStore(auth AuthService, tokens TokenReader, probe SessionProbe, storage dd.LocalStorage, logger dd.Logger) (*AuthStore, error) {
	if logger == nil {
		logger = dd.NewNopLogger()
	}
	s := &AuthStore{
		auth:    auth,
		tokens:  tokens,
		probe:   probe,
		storage: storage,
		logger:  logger,
		ops:     newOpTracker(),
	}

	raw, ok, err := storage.Get(dd.AuthStorageKey)
	if err != nil {
		return nil, fmt.Errorf("reading persisted session: %w", err)
	}
	if ok {
		var p persistedAuth
		if err := json.Unmarshal(raw, &p); err != nil {
			logger.Warn("discarding unreadable persisted session", "error", err)
		} else {
			s.user = p.State.User
			s.authenticated = p.State.IsAuthenticated
		}
	}
	return s, nil
}

func (s *AuthStore) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AuthState{
		User:            s.user,
		IsAuthenticated: s.authenticated,
		IsLoading:       s.ops.loading(),
		Error:           s.ops.errorMessage(),
	}
}

func (s *AuthStore) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *AuthStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *AuthStore) ClearError() { s.ops.clearError() }

// Login signs in. On failure the session is cleared and the error returned.
func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	done := s.ops.begin("Login")
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Warn("login failed", "email", email, "error", err)
		s.setSession(nil, false)
		done(err, "Login failed")
		return err
	}
	s.logger.Info("logged in", "user_id", resp.User.ID)
	s.setSession(&resp.User, true)
	done(nil, "")
	return nil
}

// Register creates an account and signs in with it. Input checks belong to
// the caller; the store forwards whatever it is given.
func (s *AuthStore) Register(ctx context.Context, email, username, password string, fullName *string) error {
	done := s.ops.begin("Register")
	req := model.RegisterRequest{Email: email, Username: username, Password: password, FullName: fullName}
	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		s.logger.Warn("registration failed", "email", email, "error", err)
		s.setSession(nil, false)
		done(err, "Registration failed")
		return err
	}
	s.logger.Info("registered", "user_id", resp.User.ID)
	s.setSession(&resp.User, true)
	done(nil, "")
	return nil
}

// Logout forgets the token and the user. The server is not contacted.
func (s *AuthStore) Logout() error {
	if err := s.auth.Logout(); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	s.ops.clearError()
	s.setSession(nil, false)
	return nil
}

// InitializeAuth trusts a stored token without checking it with the server.
// The persisted user is kept; a stale token is discovered on the next call.
func (s *AuthStore) InitializeAuth() error {
	token, err := s.tokens.GetToken()
	if err != nil {
		return fmt.Errorf("initializing session: %w", err)
	}
	if token == "" {
		s.setSession(nil, false)
		return nil
	}
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	s.setSession(user, true)
	return nil
}

// ValidateSession checks the stored token against the API. A 401 ends the
// session and reports false. Other failures leave the session untouched.
func (s *AuthStore) ValidateSession(ctx context.Context) (bool, error) {
	if !s.IsAuthenticated() {
		return false, nil
	}
	if s.probe == nil {
		return true, nil
	}
	done := s.ops.begin("ValidateSession")
	_, err := s.probe.List(ctx, model.Page{Limit: 1})
	switch {
	case err == nil:
		done(nil, "")
		return true, nil
	case transport.IsUnauthorized(err):
		s.logger.Info("stored session rejected by server")
		s.setSession(nil, false)
		done(err, "Session expired")
		return false, nil
	default:
		done(err, defaultMessage)
		return true, err
	}
}

func (s *AuthStore) setSession(user *model.User, authenticated bool) {
	s.mu.Lock()
	s.user = user
	s.authenticated = authenticated
	var p persistedAuth
	p.State.User = user
	p.State.IsAuthenticated = authenticated
	s.mu.Unlock()

	raw, err := json.Marshal(p)
	if err == nil {
		err = s.storage.Set(dd.AuthStorageKey, raw)
	}
	if err != nil {
		s.logger.Error("persisting session failed", "error", err)
	}
}
