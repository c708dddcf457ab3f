package connectivity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HealthPath is appended to a candidate base URL when probing it.
const HealthPath = "/api/health"

// DefaultProbeTimeout bounds a single health check.
const DefaultProbeTimeout = 10 * time.Second

// ProbeResult is the outcome of one health check.
type ProbeResult int

const (
	Unreachable ProbeResult = iota
	Reachable
	// AuthRequiredButReachable means the server answered 401: it is up but
	// the health route sits behind auth.
	AuthRequiredButReachable
)

func (r ProbeResult) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case AuthRequiredButReachable:
		return "auth-required-but-reachable"
	default:
		return "unreachable"
	}
}

// OK reports whether the server answered, with or without auth.
func (r ProbeResult) OK() bool {
	return r == Reachable || r == AuthRequiredButReachable
}

// Prober checks whether a candidate base URL hosts a live backend.
// Implementations never fail; every problem maps to Unreachable.
type Prober interface {
	Probe(ctx context.Context, candidate string) ProbeResult
}

// ProbeFunc adapts a function to Prober.
type ProbeFunc func(ctx context.Context, candidate string) ProbeResult

func (f ProbeFunc) Probe(ctx context.Context, candidate string) ProbeResult {
	return f(ctx, candidate)
}

// HTTPProber probes candidates with an unauthenticated GET of HealthPath.
type HTTPProber struct {
	Client  *http.Client
	Timeout time.Duration
	Log     *zap.Logger
}

// NewHTTPProber returns an HTTPProber over transport. A nil transport uses
// http.DefaultTransport; a zero timeout uses DefaultProbeTimeout.
func NewHTTPProber(transport http.RoundTripper, timeout time.Duration, log *zap.Logger) *HTTPProber {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPProber{
		Client:  &http.Client{Transport: transport},
		Timeout: timeout,
		Log:     log,
	}
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, candidate string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	target := strings.TrimSuffix(candidate, "/") + HealthPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		p.Log.Warn("probe: bad candidate", zap.String("url", candidate), zap.Error(err))
		return Unreachable
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		p.Log.Info("probe: no response", zap.String("url", candidate), zap.Error(err))
		return Unreachable
	}
	resp.Body.Close()

	var result ProbeResult
	switch resp.StatusCode {
	case http.StatusOK:
		result = Reachable
	case http.StatusUnauthorized:
		result = AuthRequiredButReachable
	default:
		result = Unreachable
	}
	p.Log.Info("probe",
		zap.String("url", candidate),
		zap.Int("status", resp.StatusCode),
		zap.Stringer("result", result),
	)
	return result
}

// NormalizeURL validates an absolute http(s) base URL and strips any
// trailing slash.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
