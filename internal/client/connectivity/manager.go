// Package connectivity resolves a reachable FinWise backend and sends
// authenticated requests to it.
package connectivity

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/client/storage"
)

// DefaultRequestTimeout bounds API calls made through a Manager.
const DefaultRequestTimeout = 30 * time.Second

// Config configures a Manager.
type Config struct {
	DefaultURL     string
	Fallbacks      []string
	ProbeTimeout   time.Duration
	RequestTimeout time.Duration
	// Transport carries both probes and API calls. Nil means
	// http.DefaultTransport.
	Transport http.RoundTripper
	// NetInfo gates requests on device connectivity. Nil means always
	// online.
	NetInfo NetInfo
	// Prober overrides the HTTP health-check prober.
	Prober Prober
}

// Manager owns the session's base URL and token. It is created once at
// startup and handed to every caller that talks to the backend.
type Manager struct {
	resolver *Resolver
	store    storage.Store
	client   *http.Client
	log      *zap.Logger
}

// NewManager wires a Resolver and the authenticated transport over store.
func NewManager(cfg Config, store storage.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	prober := cfg.Prober
	if prober == nil {
		prober = NewHTTPProber(cfg.Transport, cfg.ProbeTimeout, log)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Manager{
		resolver: NewResolver(store, prober, cfg.DefaultURL, cfg.Fallbacks, log),
		store:    store,
		client: &http.Client{
			Transport: newAuthTransport(cfg.Transport, store, cfg.NetInfo, log),
			Timeout:   timeout,
		},
		log: log,
	}
}

// Start loads the initial URL and establishes a connection. A failure is
// a ConnectivityError; the manager stays usable on the last URL.
func (m *Manager) Start(ctx context.Context) error {
	m.Load()
	return m.Reconnect(ctx)
}

// Load selects the initial base URL without probing it.
func (m *Manager) Load() string {
	return m.resolver.ResolveInitialURL()
}

// Reconnect re-runs endpoint resolution from the current URL.
func (m *Manager) Reconnect(ctx context.Context) error {
	if !m.resolver.EstablishConnection(ctx) {
		return &ConnectivityError{Op: "resolve", URL: m.resolver.BaseURL(), Err: ErrNoReachableEndpoint}
	}
	return nil
}

// UpdateURL switches to u when it answers a health check.
func (m *Manager) UpdateURL(ctx context.Context, u string) bool {
	return m.resolver.UpdateURL(ctx, u)
}

// ClearStoredURL removes the persisted base URL override.
func (m *Manager) ClearStoredURL() error {
	return m.resolver.ClearStoredURL()
}

// BaseURL returns the active base URL.
func (m *Manager) BaseURL() string { return m.resolver.BaseURL() }

// State returns the resolver state.
func (m *Manager) State() State { return m.resolver.State() }

// Store returns the persisted client state.
func (m *Manager) Store() storage.Store { return m.store }

// Client returns the HTTP client that attaches credentials.
func (m *Manager) Client() *http.Client { return m.client }

// Token returns the stored bearer token.
func (m *Manager) Token() (string, bool) {
	tok, ok := m.store.Get(storage.KeyToken)
	return tok, ok && tok != ""
}

// SetToken stores the bearer token used by later requests.
func (m *Manager) SetToken(token string) error {
	return m.store.Set(storage.KeyToken, token)
}

// NewRequest builds a request for path against the active base URL.
func (m *Manager) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return http.NewRequestWithContext(ctx, method, m.BaseURL()+path, body)
}

// Do sends req. Connectivity failures come back as *ConnectivityError,
// a 401 as *AuthenticationError and other non-2xx statuses as
// *ApplicationError. On success the caller closes the body.
func (m *Manager) Do(req *http.Request) (*http.Response, error) {
	resp, err := m.client.Do(req)
	if err != nil {
		var connErr *ConnectivityError
		if errors.As(err, &connErr) {
			return nil, connErr
		}
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Client timeouts surface here rather than from the transport.
		return nil, &ConnectivityError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	defer resp.Body.Close()
	msg := errorMessage(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthenticationError{Path: req.URL.Path, Message: msg}
	}
	return nil, &ApplicationError{Status: resp.StatusCode, Path: req.URL.Path, Message: msg}
}

// errorMessage pulls "message" or "error" out of a JSON error body, or
// returns the trimmed text.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	if gjson.ValidBytes(data) {
		res := gjson.GetManyBytes(data, "message", "error")
		for _, v := range res {
			if v.Exists() && v.String() != "" {
				return v.String()
			}
		}
	}
	return strings.TrimSpace(string(data))
}

