package connectivity

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/client/storage"
)

// authTransport attaches the stored bearer token to outgoing requests and
// drops it when a protected call comes back 401. It never retries.
type authTransport struct {
	base  http.RoundTripper
	store storage.Store
	net   NetInfo
	log   *zap.Logger
}

func newAuthTransport(base http.RoundTripper, store storage.Store, ni NetInfo, log *zap.Logger) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if ni == nil {
		ni = AlwaysOnline
	}
	return &authTransport{base: base, store: store, net: ni, log: log}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.net.Online(req.Context()) {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, &ConnectivityError{Op: req.Method, URL: req.URL.String(), Err: ErrOffline}
	}

	path := req.URL.Path
	out := req.Clone(req.Context())
	out.Header.Del("Authorization")
	if token, ok := t.store.Get(storage.KeyToken); ok && token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else if !IsPublic(path) {
		t.recordLastRequest(req)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ConnectivityError{Op: req.Method, URL: req.URL.String(), Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && !isAuthFlow(path) {
		if err := t.store.Delete(storage.KeyToken); err != nil {
			t.log.Error("clear token", zap.Error(err))
		}
		t.recordLastRequest(req)
		t.log.Info("session rejected, token cleared", zap.String("path", path))
	}
	return resp, nil
}

func (t *authTransport) recordLastRequest(req *http.Request) {
	if err := t.store.Set(storage.KeyLastRequestURL, req.URL.RequestURI()); err != nil {
		t.log.Error("record last request", zap.Error(err))
	}
}
