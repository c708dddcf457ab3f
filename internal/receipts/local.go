package receipts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const contentTypeSuffix = ".content-type"

// Local keeps receipts on the local filesystem under a root directory.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create receipts dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

// Put implements Store.
func (l *Local) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	if err := checkKey(key); err != nil {
		return err
	}
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("create receipt dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("create receipt: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write receipt: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close receipt: %w", err)
	}
	return os.WriteFile(p+contentTypeSuffix, []byte(contentType), 0o640)
}

// Get implements Store.
func (l *Local) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if err := checkKey(key); err != nil {
		return nil, "", err
	}
	p := l.path(key)
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open receipt: %w", err)
	}
	ct := "application/octet-stream"
	if b, err := os.ReadFile(p + contentTypeSuffix); err == nil && len(b) > 0 {
		ct = strings.TrimSpace(string(b))
	}
	return f, ct, nil
}
