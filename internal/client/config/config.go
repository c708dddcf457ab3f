// Package config loads the FinWise client configuration: where the backend
// is expected to live on each platform and how long to wait for it.
package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atinyakov/FinWise/internal/client/connectivity"
)

// Platforms with built-in endpoint defaults.
const (
	PlatformIOSSimulator    = "ios-simulator"
	PlatformAndroidEmulator = "android-emulator"
	PlatformDevice          = "device"
)

// Endpoints is the primary base URL of a platform and the fallbacks tried,
// in order, when it does not answer.
type Endpoints struct {
	Default   string   `yaml:"default"`
	Fallbacks []string `yaml:"fallbacks"`
}

// Config is the client configuration.
type Config struct {
	// Platform selects an entry of Platforms.
	Platform string `yaml:"platform"`
	// APIURL replaces the platform default when set.
	APIURL    string               `yaml:"api_url"`
	Platforms map[string]Endpoints `yaml:"platforms"`

	ProbeTimeout   time.Duration `yaml:"probe_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	WatchInterval  time.Duration `yaml:"watch_interval"`

	StoragePath   string `yaml:"storage_path"`
	DeviceKeyPath string `yaml:"device_key_path"`
	// CAFile replaces the system roots with a PEM bundle, typically the
	// dev CA written by tools/certgen.
	CAFile string `yaml:"ca_file"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		Platform: PlatformAndroidEmulator,
		Platforms: map[string]Endpoints{
			PlatformIOSSimulator: {
				Default:   "http://localhost:3002",
				Fallbacks: []string{"http://127.0.0.1:3002", "http://192.168.1.4:3002"},
			},
			PlatformAndroidEmulator: {
				Default:   "http://10.0.2.2:3002",
				Fallbacks: []string{"http://192.168.1.4:3002", "http://localhost:3002"},
			},
			PlatformDevice: {
				Default:   "http://192.168.1.4:3002",
				Fallbacks: []string{"http://192.168.0.4:3002", "http://10.0.0.4:3002"},
			},
		},
		ProbeTimeout:   10 * time.Second,
		RequestTimeout: 30 * time.Second,
		WatchInterval:  time.Minute,
		StoragePath:    filepath.Join(dir, "state.json"),
		DeviceKeyPath:  filepath.Join(dir, "device.key"),
		LogLevel:       "warn",
	}
}

// DefaultDir is the per-user directory for client files.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "finwise")
	}
	return ".finwise"
}

// Load reads the YAML file at path over the defaults and applies the
// FINWISE_PLATFORM, FINWISE_API_URL and FINWISE_STORAGE overrides. A
// missing file is not an error.
func Load(path string, getenv func(string) string) (*Config, error) {
	dir := filepath.Dir(path)
	if path == "" {
		dir = DefaultDir()
	}
	cfg := Default(dir)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("FINWISE_PLATFORM"); v != "" {
		cfg.Platform = v
	}
	if v := getenv("FINWISE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := getenv("FINWISE_STORAGE"); v != "" {
		cfg.StoragePath = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected platform has a usable default URL and
// normalizes APIURL.
func (c *Config) Validate() error {
	if c.APIURL != "" {
		norm, err := connectivity.NormalizeURL(c.APIURL)
		if err != nil {
			return fmt.Errorf("api url: %w", err)
		}
		c.APIURL = norm
		return nil
	}
	ep, ok := c.Platforms[c.Platform]
	if !ok {
		return fmt.Errorf("unknown platform %q", c.Platform)
	}
	if ep.Default == "" {
		return fmt.Errorf("platform %q has no default url", c.Platform)
	}
	if _, err := connectivity.NormalizeURL(ep.Default); err != nil {
		return fmt.Errorf("platform %q default url: %w", c.Platform, err)
	}
	return nil
}

// Endpoints returns the default URL and fallbacks for the selected
// platform. APIURL, when set, replaces the default and keeps the
// platform's fallbacks.
func (c *Config) Endpoints() (string, []string) {
	ep := c.Platforms[c.Platform]
	def := ep.Default
	if c.APIURL != "" {
		def = c.APIURL
	}
	return def, ep.Fallbacks
}

// Transport returns the transport for talking to the backend. With CAFile
// set only that CA is trusted.
func (c *Config) Transport() (http.RoundTripper, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if c.CAFile == "" {
		return base, nil
	}
	caCert, err := os.ReadFile(c.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}
	base.TLSClientConfig = &tls.Config{RootCAs: caPool, MinVersion: tls.VersionTLS12}
	return base, nil
}
