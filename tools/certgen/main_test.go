package main

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

func readCert(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("%s: expected CERTIFICATE PEM block", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return cert
}

func TestRun_GeneratesChain(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	if err := run([]string{"-dir", dir, "-hosts", "api.local,10.0.2.2"}, &out); err != nil {
		t.Fatalf("run error: %v", err)
	}

	ca := readCert(t, filepath.Join(dir, "ca.crt"))
	server := readCert(t, filepath.Join(dir, "server.crt"))
	if err := server.CheckSignatureFrom(ca); err != nil {
		t.Errorf("server certificate not signed by CA: %v", err)
	}
	for _, h := range []string{"api.local", "10.0.2.2"} {
		if err := server.VerifyHostname(h); err != nil {
			t.Errorf("server certificate does not cover %s: %v", h, err)
		}
	}

	info, err := os.Stat(filepath.Join(dir, "server.key"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("server.key mode = %v; want 0600", info.Mode().Perm())
	}
}

func TestRun_ReuseCA(t *testing.T) {
	dir := t.TempDir()
	if err := run([]string{"-dir", dir}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	first := readCert(t, filepath.Join(dir, "ca.crt"))

	if err := run([]string{"-dir", dir, "-reuse-ca", "-hosts", "localhost"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run with -reuse-ca: %v", err)
	}
	if !bytes.Equal(readCert(t, filepath.Join(dir, "ca.crt")).Raw, first.Raw) {
		t.Error("CA was replaced despite -reuse-ca")
	}
	if err := readCert(t, filepath.Join(dir, "server.crt")).CheckSignatureFrom(first); err != nil {
		t.Errorf("new server certificate not signed by the reused CA: %v", err)
	}
}

func TestRun_ReuseCAMissing(t *testing.T) {
	if err := run([]string{"-dir", t.TempDir(), "-reuse-ca"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error when no CA exists")
	}
}
