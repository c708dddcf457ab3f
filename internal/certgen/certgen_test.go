package certgen

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGenerateCA(t *testing.T) {
	certPEM, keyPEM, cert, key, err := GenerateCA("FinWise Dev CA")
	if err != nil {
		t.Fatalf("GenerateCA error: %v", err)
	}
	if !cert.IsCA || !cert.BasicConstraintsValid {
		t.Error("CA certificate should have IsCA and BasicConstraintsValid set")
	}
	if cert.NotAfter.Sub(cert.NotBefore) < 9*365*24*time.Hour {
		t.Errorf("CA validity too short: %v", cert.NotAfter.Sub(cert.NotBefore))
	}

	loadedCert, loadedKey, err := LoadCACredentials(writeTemp(t, "ca.crt", certPEM), writeTemp(t, "ca.key", keyPEM))
	if err != nil {
		t.Fatalf("LoadCACredentials error: %v", err)
	}
	if loadedCert.Subject.CommonName != "FinWise Dev CA" {
		t.Errorf("CommonName = %q", loadedCert.Subject.CommonName)
	}
	parsedKey, ok := loadedKey.(*ecdsa.PrivateKey)
	if !ok {
		t.Fatalf("key type = %T; want *ecdsa.PrivateKey", loadedKey)
	}
	if !parsedKey.PublicKey.Equal(&key.PublicKey) {
		t.Error("public key mismatch")
	}
}

func TestLoadCACredentials_Errors(t *testing.T) {
	certPEM, keyPEM, _, _, err := GenerateCA("Test CA")
	if err != nil {
		t.Fatal(err)
	}
	goodCert := writeTemp(t, "ca.crt", certPEM)
	goodKey := writeTemp(t, "ca.key", keyPEM)
	junk := writeTemp(t, "junk.pem", []byte("not a pem"))
	otherType := writeTemp(t, "other.pem", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1}}))

	tests := []struct {
		name       string
		cert, key  string
		wantSubstr string
	}{
		{"missing cert", "/no/such/file.pem", goodKey, "read ca cert"},
		{"missing key", goodCert, "/no/such/key.pem", "read ca key"},
		{"bad cert PEM", junk, goodKey, "invalid CA cert PEM"},
		{"bad key PEM", goodCert, junk, "invalid CA key PEM"},
		{"unsupported key", goodCert, otherType, "unsupported key type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := LoadCACredentials(tc.cert, tc.key)
			if err == nil || !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("got %v; want error containing %q", err, tc.wantSubstr)
			}
		})
	}
}

func TestGenerateServerCertificate(t *testing.T) {
	_, _, caCert, caKey, err := GenerateCA("Test CA")
	if err != nil {
		t.Fatal(err)
	}

	certPEM, keyPEM, err := GenerateServerCertificate(DefaultHosts, caCert, caKey)
	if err != nil {
		t.Fatalf("GenerateServerCertificate error: %v", err)
	}
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("cert PEM invalid")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse server cert: %v", err)
	}
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CommonName = %q; want localhost", cert.Subject.CommonName)
	}
	if err := cert.CheckSignatureFrom(caCert); err != nil {
		t.Errorf("signature check failed: %v", err)
	}

	for _, h := range DefaultHosts {
		if err := cert.VerifyHostname(h); err != nil {
			t.Errorf("certificate does not cover %s: %v", h, err)
		}
	}
	if len(cert.IPAddresses) != 3 || !cert.IPAddresses[1].Equal(net.ParseIP("10.0.2.2")) {
		t.Errorf("IPAddresses = %v", cert.IPAddresses)
	}

	pool := x509.NewCertPool()
	pool.AddCert(caCert)
	if _, err := cert.Verify(x509.VerifyOptions{DNSName: "10.0.2.2", Roots: pool}); err != nil {
		t.Errorf("chain verification failed: %v", err)
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil || keyBlock.Type != "EC PRIVATE KEY" {
		t.Fatalf("key PEM invalid")
	}
	if _, err := x509.ParseECPrivateKey(keyBlock.Bytes); err != nil {
		t.Errorf("parse private key failed: %v", err)
	}
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	_, _, caCert, caKey, _ := GenerateCA("Test CA")
	if _, _, err := GenerateServerCertificate([]string{" ", ""}, caCert, caKey); err == nil {
		t.Error("expected error for empty host list")
	}
}
