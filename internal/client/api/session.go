package api

import (
	"context"
	"crypto/cipher"
	"encoding/json"
	"fmt"

	"github.com/atinyakov/FinWise/internal/client/connectivity"
	"github.com/atinyakov/FinWise/internal/client/storage"
	"github.com/atinyakov/FinWise/internal/models"
)

// BiometricGate asks the device OS to verify the user.
type BiometricGate interface {
	Authenticate(ctx context.Context, reason string) error
}

// BiometricGateFunc adapts a function to BiometricGate.
type BiometricGateFunc func(ctx context.Context, reason string) error

func (f BiometricGateFunc) Authenticate(ctx context.Context, reason string) error {
	return f(ctx, reason)
}

// CachedUser returns the profile stored at login, if any.
func (c *Client) CachedUser() (*models.User, bool) {
	raw, ok := c.conn.Store().Get(storage.KeyUser)
	if !ok || raw == "" {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, false
	}
	return &u, true
}

// PostLoginRedirect returns and forgets the last protected path that was
// attempted without a valid session.
func (c *Client) PostLoginRedirect() (string, bool) {
	store := c.conn.Store()
	path, ok := store.Get(storage.KeyLastRequestURL)
	if !ok || path == "" {
		return "", false
	}
	_ = store.Delete(storage.KeyLastRequestURL)
	return path, true
}

// EnableBiometrics caches credentials for QuickLogin.
func (c *Client) EnableBiometrics(aead cipher.AEAD, email, password string) error {
	return storage.SaveSecuredCredentials(c.conn.Store(), aead, email, password)
}

// DisableBiometrics forgets the cached credentials.
func (c *Client) DisableBiometrics() error {
	return storage.DisableBiometrics(c.conn.Store())
}

// QuickLogin signs in with cached credentials once gate has verified the
// user. Biometric unlock must be enabled.
func (c *Client) QuickLogin(ctx context.Context, gate BiometricGate, aead cipher.AEAD) (*AuthResponse, error) {
	store := c.conn.Store()
	if !storage.Flag(store, storage.KeyFaceIDEnabled) {
		return nil, storage.ErrBiometricsDisabled
	}
	if err := gate.Authenticate(ctx, "Unlock FinWise"); err != nil {
		return nil, fmt.Errorf("biometric check: %w", err)
	}
	email, password, err := storage.SecuredCredentials(store, aead)
	if err != nil {
		return nil, err
	}
	return c.Login(ctx, email, password)
}

// ignoreAuth drops authentication errors, which only mean the session was
// already gone.
func ignoreAuth(err error) error {
	if connectivity.Classify(err) == connectivity.KindAuthentication {
		return nil
	}
	return err
}
