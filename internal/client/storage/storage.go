// Package storage persists the client's local state: the active API base
// URL, the session token, the cached user profile and the biometric
// credential cache.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a Store backed by a JSON file. Every write is flushed to
// disk before returning.
type FileStore struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*FileStore, error) {
	fs := &FileStore{path: path, values: make(map[string]string)}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open storage: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&fs.values); err != nil {
		return fmt.Errorf("decode storage: %w", err)
	}
	if fs.values == nil {
		fs.values = make(map[string]string)
	}
	return nil
}

// save writes the values to a temp file and renames it over the store so a
// crash never leaves a truncated file. Callers hold fs.mu.
func (fs *FileStore) save() error {
	if dir := filepath.Dir(fs.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	tmp := fs.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if err := json.NewEncoder(f).Encode(fs.values); err != nil {
		f.Close()
		return fmt.Errorf("encode storage: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return os.Rename(tmp, fs.path)
}

// Get implements Store.
func (fs *FileStore) Get(key string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	v, ok := fs.values[key]
	return v, ok
}

// Set implements Store. The in-memory value is left unchanged when the
// file cannot be written.
func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, had := fs.values[key]
	fs.values[key] = value
	if err := fs.save(); err != nil {
		if had {
			fs.values[key] = prev
		} else {
			delete(fs.values, key)
		}
		return err
	}
	return nil
}

// Delete implements Store.
func (fs *FileStore) Delete(keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	removed := make(map[string]string)
	for _, k := range keys {
		if v, ok := fs.values[k]; ok {
			removed[k] = v
			delete(fs.values, k)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	if err := fs.save(); err != nil {
		for k, v := range removed {
			fs.values[k] = v
		}
		return err
	}
	return nil
}

// MemoryStore is an in-process Store. It is used for ephemeral sessions
// and in tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	v, ok := ms.values[key]
	return v, ok
}

// Set implements Store.
func (ms *MemoryStore) Set(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.values[key] = value
	return nil
}

// Delete implements Store.
func (ms *MemoryStore) Delete(keys ...string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, k := range keys {
		delete(ms.values, k)
	}
	return nil
}

// Flag reads a boolean stored as "true"/"false".
func Flag(s Store, key string) bool {
	v, ok := s.Get(key)
	return ok && v == "true"
}

// SetFlag stores a boolean as "true"/"false".
func SetFlag(s Store, key string, on bool) error {
	if on {
		return s.Set(key, "true")
	}
	return s.Set(key, "false")
}
