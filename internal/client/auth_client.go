package client

import (
	"context"
	"fmt"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/httpclient"
)

// AuthClient is a client for the backend auth endpoint
type AuthClient struct {
	client *httpclient.Client
}

// NewAuthClient creates a new auth client
func NewAuthClient(c *httpclient.Client) *AuthClient {
	return &AuthClient{client: c}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for an access token
func (c *AuthClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if email == "" {
		return nil, errors.InvalidInput("email", "email is required")
	}
	if password == "" {
		return nil, errors.InvalidInput("password", "password is required")
	}

	var resp LoginResponse
	if err := c.client.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "backend returned no access token")
	}
	return &resp, nil
}
