package connectivity

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/client/storage"
)

// State is the lifecycle of the resolver's base URL.
type State int

const (
	StateNoURL State = iota
	StateConfigured
	StateProbing
	// StateDegraded means every candidate failed. The last configured URL
	// stays in use until a later probe or UpdateURL succeeds.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateConfigured:
		return "configured"
	case StateProbing:
		return "probing"
	case StateDegraded:
		return "degraded"
	default:
		return "no-url"
	}
}

// Resolver picks the base URL for the session from the persisted override,
// the configured default and an ordered list of fallbacks.
type Resolver struct {
	store      storage.Store
	prober     Prober
	defaultURL string
	fallbacks  []string
	log        *zap.Logger

	// resolveMu serializes EstablishConnection and UpdateURL so concurrent
	// callers never interleave probe sequences.
	resolveMu sync.Mutex

	mu      sync.RWMutex
	current string
	state   State
}

// NewResolver builds a Resolver. Candidates are tried in the order given.
// The default and every fallback are normalized; invalid fallbacks are
// dropped.
func NewResolver(store storage.Store, prober Prober, defaultURL string, fallbacks []string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if norm, err := NormalizeURL(defaultURL); err == nil {
		defaultURL = norm
	} else {
		log.Error("invalid default api url", zap.String("url", defaultURL), zap.Error(err))
	}
	candidates := make([]string, 0, len(fallbacks))
	for _, f := range fallbacks {
		norm, err := NormalizeURL(f)
		if err != nil {
			log.Warn("dropping invalid fallback url", zap.String("url", f), zap.Error(err))
			continue
		}
		candidates = append(candidates, norm)
	}
	return &Resolver{
		store:      store,
		prober:     prober,
		defaultURL: defaultURL,
		fallbacks:  candidates,
		log:        log,
	}
}

// ResolveInitialURL returns the persisted override when there is a valid one
// and the configured default otherwise. The result becomes the current URL
// without probing it.
func (r *Resolver) ResolveInitialURL() string {
	u := r.defaultURL
	if stored, ok := r.store.Get(storage.KeyAPIURL); ok {
		if norm, err := NormalizeURL(stored); err == nil {
			u = norm
		} else {
			r.log.Warn("ignoring invalid stored api url", zap.String("url", stored), zap.Error(err))
		}
	}

	r.mu.Lock()
	r.current = u
	r.state = StateConfigured
	r.mu.Unlock()

	r.log.Info("initial api url", zap.String("url", u))
	return u
}

// EstablishConnection probes the current URL and, when it is unreachable,
// each fallback in order. The first candidate that answers is adopted and
// later candidates are not probed. Adopting a fallback persists it. When
// every candidate fails the current URL is left as is and false is returned.
func (r *Resolver) EstablishConnection(ctx context.Context) bool {
	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	if r.State() == StateNoURL {
		r.ResolveInitialURL()
	}
	current := r.BaseURL()

	if res := r.prober.Probe(ctx, current); res.OK() {
		r.setState(StateConfigured)
		return true
	}

	r.setState(StateProbing)
	for _, candidate := range r.fallbacks {
		if ctx.Err() != nil {
			break
		}
		if res := r.prober.Probe(ctx, candidate); res.OK() {
			r.adopt(candidate)
			return true
		}
	}

	r.setState(StateDegraded)
	r.log.Warn("no reachable api endpoint", zap.String("url", current), zap.Int("fallbacks", len(r.fallbacks)))
	return false
}

// UpdateURL probes raw and switches to it only when the probe succeeds.
func (r *Resolver) UpdateURL(ctx context.Context, raw string) bool {
	u, err := NormalizeURL(raw)
	if err != nil {
		r.log.Warn("rejecting api url", zap.String("url", raw), zap.Error(err))
		return false
	}

	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	if res := r.prober.Probe(ctx, u); !res.OK() {
		r.log.Info("api url not reachable, keeping current", zap.String("url", u), zap.String("current", r.BaseURL()))
		return false
	}
	r.adopt(u)
	return true
}

// ClearStoredURL removes the persisted override. The current URL is kept
// until the next ResolveInitialURL.
func (r *Resolver) ClearStoredURL() error {
	return r.store.Delete(storage.KeyAPIURL)
}

// BaseURL returns the current base URL.
func (r *Resolver) BaseURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// State returns the resolver state.
func (r *Resolver) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Resolver) adopt(u string) {
	r.mu.Lock()
	prev := r.current
	r.current = u
	r.state = StateConfigured
	r.mu.Unlock()

	if err := r.store.Set(storage.KeyAPIURL, u); err != nil {
		r.log.Error("persist api url", zap.String("url", u), zap.Error(err))
	}
	r.log.Info("switched api url", zap.String("from", prev), zap.String("to", u))
}

func (r *Resolver) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}
