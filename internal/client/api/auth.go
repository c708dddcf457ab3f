package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/client/storage"
)

// Login signs in with email and password and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.startSession(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and stores the session.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*AuthResponse, error) {
	return c.startSession(ctx, "/api/auth/register", in)
}

// GoogleLogin exchanges a Google ID token for a session.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (*AuthResponse, error) {
	return c.startSession(ctx, "/api/auth/google", map[string]string{"idToken": idToken})
}

// FacebookLogin exchanges a Facebook access token for a session.
func (c *Client) FacebookLogin(ctx context.Context, accessToken string) (*AuthResponse, error) {
	return c.startSession(ctx, "/api/auth/facebook", map[string]string{"accessToken": accessToken})
}

// ForgotPassword asks the server to send a reset code to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp MessageResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, &resp)
	return resp.Message, err
}

// VerifyResetCode checks a reset code without consuming it.
func (c *Client) VerifyResetCode(ctx context.Context, email, code string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/verify-reset-code", map[string]string{
		"email":     email,
		"resetCode": code,
	}, nil)
}

// ResetPassword sets a new password using a reset code.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email":       email,
		"resetCode":   code,
		"newPassword": newPassword,
	}, nil)
}

// Logout revokes the token on the server and clears the local session.
// The local session is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	var callErr error
	if _, ok := c.conn.Token(); ok {
		callErr = c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
		if callErr != nil {
			c.log.Warn("logout request failed", zap.Error(callErr))
		}
	}
	return errors.Join(c.clearSession(), ignoreAuth(callErr))
}

func (c *Client) startSession(ctx context.Context, path string, in any) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, path, in, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("server returned no token")
	}

	store := c.conn.Store()
	if err := c.conn.SetToken(resp.Token); err != nil {
		return nil, err
	}
	if resp.User != nil {
		b, err := json.Marshal(resp.User)
		if err != nil {
			return nil, err
		}
		if err := store.Set(storage.KeyUser, string(b)); err != nil {
			return nil, err
		}
	}
	if err := storage.SetFlag(store, storage.KeyAppUnlocked, true); err != nil {
		return nil, err
	}
	c.log.Info("session started", zap.String("path", path))
	return &resp, nil
}

func (c *Client) clearSession() error {
	return c.conn.Store().Delete(storage.KeyToken, storage.KeyUser, storage.KeyAppUnlocked)
}
