// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// JWTSecret signs session tokens (HS256).
	JWTSecret string `json:"jwt_secret"`
	// TokenTTL is how long a session token stays valid.
	TokenTTL Duration `json:"token_ttl"`

	// RedisAddr enables the Redis token denylist when set; otherwise an
	// in-memory denylist is used.
	RedisAddr string `json:"redis_address"`

	// ReceiptsBucket selects Google Cloud Storage for receipts. When empty,
	// receipts are written under ReceiptsDir.
	ReceiptsBucket string `json:"receipts_bucket"`
	ReceiptsDir    string `json:"receipts_dir"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	LogLevel string `json:"log_level"`

	// GoogleClientIDs are the accepted audiences of Google ID tokens.
	GoogleClientIDs []string `json:"google_client_ids"`

	// AuthRateLimit is the sustained per-IP request rate on /api/auth
	// routes, in requests per second, with AuthBurst as the burst size.
	AuthRateLimit float64 `json:"auth_rate_limit"`
	AuthBurst     int     `json:"auth_burst"`
}

// Duration is a time.Duration that reads "90s"-style strings from JSON.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		d.Duration = time.Duration(val)
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Parse parses os.Args and the environment. It exits on invalid input.
func Parse() *Options {
	opts, err := ParseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return opts
}

// ParseArgs builds Options from args and getenv. Flags are applied first,
// then the config file, then environment variables.
func ParseArgs(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	var googleIDs string

	fs := flag.NewFlagSet("finwise-server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:3002", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.JWTSecret, "jwt-secret", "", "HS256 signing secret")
	fs.DurationVar(&options.TokenTTL.Duration, "token-ttl", 24*time.Hour, "session token lifetime")
	fs.StringVar(&options.RedisAddr, "redis", "", "redis address for the token denylist")
	fs.StringVar(&options.ReceiptsBucket, "receipts-bucket", "", "GCS bucket for receipts")
	fs.StringVar(&options.ReceiptsDir, "receipts-dir", "receipts", "local directory for receipts")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&options.TLSKey, "tls-key", "", "TLS key file")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&googleIDs, "google-client-ids", "", "comma-separated Google OAuth client IDs")
	fs.Float64Var(&options.AuthRateLimit, "auth-rate", 5, "auth requests per second per IP")
	fs.IntVar(&options.AuthBurst, "auth-burst", 10, "auth request burst per IP")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	options.GoogleClientIDs = splitList(googleIDs)

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if secret := getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}
	if addr := getenv("REDIS_ADDR"); addr != "" {
		options.RedisAddr = addr
	}
	if bucket := getenv("RECEIPTS_BUCKET"); bucket != "" {
		options.ReceiptsBucket = bucket
	}
	if ids := getenv("GOOGLE_CLIENT_IDS"); ids != "" {
		options.GoogleClientIDs = splitList(ids)
	}

	if options.JWTSecret == "" {
		return nil, errors.New("jwt secret is required (-jwt-secret or JWT_SECRET)")
	}
	if options.TokenTTL.Duration <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	options.LogLevel = strings.ToLower(strings.TrimSpace(options.LogLevel))
	if _, err := zapcore.ParseLevel(options.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return options, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
