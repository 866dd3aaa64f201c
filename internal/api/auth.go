package api

import (
	"context"
	"fmt"
	"net/http"

	"dd-go/internal/model"
)

// TokenWriter persists or forgets the bearer token.
type TokenWriter interface {
	SetToken(token string) error
	RemoveToken() error
}

type AuthAPI struct {
	client Doer
	tokens TokenWriter
}

// Login exchanges credentials for a token, which is stored before returning.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	req := model.LoginRequest{Email: email, Password: password}
	if err := a.client.Do(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	if err := a.tokens.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return &resp, nil
}

// Register creates an account and stores the token it is issued.
func (a *AuthAPI) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := a.client.Do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	if err := a.tokens.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return &resp, nil
}

// Logout is local only: the token is forgotten, the server is not told.
func (a *AuthAPI) Logout() error {
	return a.tokens.RemoveToken()
}
