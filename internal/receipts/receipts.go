// Package receipts stores receipt images attached to transactions.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no receipt is stored under a key.
var ErrNotFound = errors.New("receipt not found")

// ErrInvalidKey is returned for keys that escape the user's namespace.
var ErrInvalidKey = errors.New("invalid receipt key")

// Store saves and loads receipt blobs.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// NewKey returns a fresh key in the namespace of userID.
func NewKey(userID string) string {
	return userID + "/" + uuid.NewString()
}

// OwnedBy reports whether key belongs to userID.
func OwnedBy(key, userID string) bool {
	return userID != "" && strings.HasPrefix(key, userID+"/")
}

func checkKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
