package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/FinWise/internal/client/storage"
	"github.com/atinyakov/FinWise/internal/models"
)

// Profile fetches the signed-in user and refreshes the cached copy.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/profile", nil, &u); err != nil {
		return nil, err
	}
	c.cacheUser(&u)
	return &u, nil
}

// UpdateProfile changes the user's name or currency.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodPut, "/api/user/profile", in, &u); err != nil {
		return nil, err
	}
	c.cacheUser(&u)
	return &u, nil
}

// DeleteAccount removes the account and wipes every local credential.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/api/user/profile", nil, nil); err != nil {
		return err
	}
	return errors.Join(c.clearSession(), c.DisableBiometrics())
}

func (c *Client) cacheUser(u *models.User) {
	if b, err := json.Marshal(u); err == nil {
		_ = c.conn.Store().Set(storage.KeyUser, string(b))
	}
}
