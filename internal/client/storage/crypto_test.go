package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewAEAD_SameKeyRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	aead1, err := NewAEAD(key)
	if err != nil {
		t.Fatalf("derive AEAD failed: %v", err)
	}
	aead2, err := NewAEAD(key)
	if err != nil {
		t.Fatalf("derive AEAD second time: %v", err)
	}

	enc, err := seal(aead1, "hunter2")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	plain, err := open(aead2, enc)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if plain != "hunter2" {
		t.Errorf("unexpected plaintext: got %q, want %q", plain, "hunter2")
	}
}

func TestOpen_WrongKey(t *testing.T) {
	a, _ := NewAEAD([]byte("key-a"))
	b, _ := NewAEAD([]byte("key-b"))

	enc, err := seal(a, "secret")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := open(b, enc); err == nil {
		t.Error("expected error decrypting with a different key")
	}
	if _, err := open(a, "!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := open(a, "AAAA"); err == nil {
		t.Error("expected error for short ciphertext")
	}
}

func TestLoadOrCreateDeviceKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "device.key")

	first, err := LoadOrCreateDeviceKey(path)
	if err != nil {
		t.Fatalf("create key: %v", err)
	}
	if len(first) != deviceKeySize {
		t.Fatalf("key size = %d, want %d", len(first), deviceKeySize)
	}

	second, err := LoadOrCreateDeviceKey(path)
	if err != nil {
		t.Fatalf("load key: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected the same key on second load")
	}
}

func TestLoadOrCreateDeviceKey_BadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.key")
	if err := os.WriteFile(path, []byte("short"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrCreateDeviceKey(path); err == nil {
		t.Error("expected error for truncated key")
	}
}
