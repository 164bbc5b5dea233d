// ABOUTME: Public authentication endpoints
// ABOUTME: Login and signup never trigger the session-expiry policy

package client

import (
	"context"
	"errors"
	"net/http"
)

// ErrNoToken is returned when the server accepted credentials but sent no token
var ErrNoToken = errors.New("server response did not include a token")

// Login calls POST /api/v1/auth/login
func (c *Client) Login(ctx context.Context, in LoginRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/v1/auth/login", in)
}

// Signup calls POST /api/v1/auth/signup
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/v1/auth/signup", in)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var auth AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: path, body: body}, &auth); err != nil {
		return nil, err
	}
	if auth.Token == "" {
		return nil, ErrNoToken
	}
	return &auth, nil
}
