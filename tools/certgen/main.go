// Package main generates a development Certificate Authority and a server
// certificate for the FinWise API, writing them under a certs directory.
//
// Point the server at server.crt/server.key (-tls-cert, -tls-key) and the
// client at ca.crt (ca_file in its config).
package main

import (
	"crypto/x509"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/FinWise/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("dir", "certs", "output directory")
	hosts := fs.String("hosts", strings.Join(certgen.DefaultHosts, ","), "comma-separated host names and IPs for the server certificate")
	reuseCA := fs.Bool("reuse-ca", false, "sign with the existing ca.crt/ca.key in -dir instead of creating a new CA")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *dir, err)
	}
	caCertPath := filepath.Join(*dir, "ca.crt")
	caKeyPath := filepath.Join(*dir, "ca.key")

	var (
		caCert *x509.Certificate
		caKey  any
	)
	if *reuseCA {
		c, k, err := certgen.LoadCACredentials(caCertPath, caKeyPath)
		if err != nil {
			return err
		}
		caCert, caKey = c, k
	} else {
		certPEM, keyPEM, c, k, err := certgen.GenerateCA("FinWise Dev CA")
		if err != nil {
			return err
		}
		if err := writePair(caCertPath, caKeyPath, certPEM, keyPEM); err != nil {
			return err
		}
		caCert, caKey = c, k
	}

	serverCert, serverKey, err := certgen.GenerateServerCertificate(strings.Split(*hosts, ","), caCert, caKey)
	if err != nil {
		return err
	}
	if err := writePair(filepath.Join(*dir, "server.crt"), filepath.Join(*dir, "server.key"), serverCert, serverKey); err != nil {
		return err
	}

	fmt.Fprintf(out, "Certificates generated into %s\n", *dir)
	return nil
}

// writePair writes a certificate and its key; the key is readable by the
// owner only.
func writePair(certPath, keyPath string, certPEM, keyPEM []byte) error {
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", certPath, err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", keyPath, err)
	}
	return nil
}
