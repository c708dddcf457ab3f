package connectivity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/FinWise/internal/client/storage"
)

const (
	defaultURL = "http://localhost:3002"
	emulator   = "http://10.0.2.2:3002"
	lan        = "http://192.168.1.4:3002"
	other      = "http://192.168.1.9:3002"
)

// fakeProber answers from a fixed table and records every probe.
type fakeProber struct {
	mu      sync.Mutex
	results map[string]ProbeResult
	calls   []string
}

func newFakeProber(results map[string]ProbeResult) *fakeProber {
	return &fakeProber{results: results}
}

func (f *fakeProber) Probe(_ context.Context, candidate string) ProbeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, candidate)
	return f.results[candidate]
}

func (f *fakeProber) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestResolveInitialURL(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewResolver(store, newFakeProber(nil), defaultURL, nil, nil)
	assert.Equal(t, StateNoURL, r.State())

	assert.Equal(t, defaultURL, r.ResolveInitialURL())
	assert.Equal(t, StateConfigured, r.State())

	require.NoError(t, store.Set(storage.KeyAPIURL, lan+"/"))
	assert.Equal(t, lan, r.ResolveInitialURL())
	assert.Equal(t, lan, r.BaseURL())

	require.NoError(t, store.Set(storage.KeyAPIURL, "not a url"))
	assert.Equal(t, defaultURL, r.ResolveInitialURL())
}

func TestEstablishConnection_FirstSuccessShortCircuits(t *testing.T) {
	tests := []struct {
		name      string
		results   map[string]ProbeResult
		fallbacks []string
		wantURL   string
		wantCalls []string
	}{
		{
			name:      "primary reachable",
			results:   map[string]ProbeResult{defaultURL: Reachable, emulator: Reachable},
			fallbacks: []string{emulator, lan},
			wantURL:   defaultURL,
			wantCalls: []string{defaultURL},
		},
		{
			name:      "primary behind auth",
			results:   map[string]ProbeResult{defaultURL: AuthRequiredButReachable},
			fallbacks: []string{emulator},
			wantURL:   defaultURL,
			wantCalls: []string{defaultURL},
		},
		{
			name:      "second fallback wins",
			results:   map[string]ProbeResult{lan: Reachable, other: Reachable},
			fallbacks: []string{emulator, lan, other},
			wantURL:   lan,
			wantCalls: []string{defaultURL, emulator, lan},
		},
		{
			name:      "fallback behind auth",
			results:   map[string]ProbeResult{emulator: AuthRequiredButReachable},
			fallbacks: []string{emulator, lan},
			wantURL:   emulator,
			wantCalls: []string{defaultURL, emulator},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := newFakeProber(tt.results)
			r := NewResolver(storage.NewMemoryStore(), prober, defaultURL, tt.fallbacks, nil)
			r.ResolveInitialURL()

			assert.True(t, r.EstablishConnection(context.Background()))
			assert.Equal(t, tt.wantURL, r.BaseURL())
			assert.Equal(t, tt.wantCalls, prober.Calls())
			assert.Equal(t, StateConfigured, r.State())
		})
	}
}

func TestEstablishConnection_PrimarySuccessNotPersisted(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewResolver(store, newFakeProber(map[string]ProbeResult{defaultURL: Reachable}), defaultURL, nil, nil)

	assert.True(t, r.EstablishConnection(context.Background()))
	_, ok := store.Get(storage.KeyAPIURL)
	assert.False(t, ok)
}

func TestEstablishConnection_ScenarioA(t *testing.T) {
	store := storage.NewMemoryStore()
	prober := newFakeProber(map[string]ProbeResult{emulator: Unreachable, lan: Reachable})
	r := NewResolver(store, prober, emulator, []string{lan}, nil)
	r.ResolveInitialURL()

	require.True(t, r.EstablishConnection(context.Background()))
	assert.Equal(t, lan, r.BaseURL())

	stored, ok := store.Get(storage.KeyAPIURL)
	require.True(t, ok)
	assert.Equal(t, lan, stored)

	// A fresh resolver picks up the persisted choice.
	next := NewResolver(store, prober, emulator, []string{lan}, nil)
	assert.Equal(t, lan, next.ResolveInitialURL())
}

func TestEstablishConnection_ScenarioC(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyAPIURL, other))
	prober := newFakeProber(nil)
	r := NewResolver(store, prober, defaultURL, []string{emulator, lan}, nil)
	r.ResolveInitialURL()

	var ok bool
	assert.NotPanics(t, func() { ok = r.EstablishConnection(context.Background()) })
	assert.False(t, ok)
	assert.Equal(t, other, r.BaseURL())
	assert.Equal(t, StateDegraded, r.State())
	assert.Equal(t, []string{other, emulator, lan}, prober.Calls())

	stored, _ := store.Get(storage.KeyAPIURL)
	assert.Equal(t, other, stored)

	// Degraded is recoverable.
	prober.results = map[string]ProbeResult{lan: Reachable}
	assert.True(t, r.UpdateURL(context.Background(), lan))
	assert.Equal(t, StateConfigured, r.State())
}

func TestEstablishConnection_ResolvesWhenNoURL(t *testing.T) {
	prober := newFakeProber(map[string]ProbeResult{defaultURL: Reachable})
	r := NewResolver(storage.NewMemoryStore(), prober, defaultURL, nil, nil)

	assert.True(t, r.EstablishConnection(context.Background()))
	assert.Equal(t, defaultURL, r.BaseURL())
}

func TestEstablishConnection_CanceledStopsFallbacks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	prober := newFakeProber(nil)
	p := ProbeFunc(func(ctx context.Context, c string) ProbeResult {
		cancel()
		return prober.Probe(ctx, c)
	})
	r := NewResolver(storage.NewMemoryStore(), p, defaultURL, []string{emulator, lan}, nil)
	r.ResolveInitialURL()

	assert.False(t, r.EstablishConnection(ctx))
	assert.Equal(t, []string{defaultURL}, prober.Calls())
	assert.Equal(t, defaultURL, r.BaseURL())
}

func TestUpdateURL(t *testing.T) {
	store := storage.NewMemoryStore()
	prober := newFakeProber(map[string]ProbeResult{lan: Reachable})
	r := NewResolver(store, prober, defaultURL, nil, nil)
	r.ResolveInitialURL()

	for i := 0; i < 3; i++ {
		assert.False(t, r.UpdateURL(context.Background(), emulator))
		assert.Equal(t, defaultURL, r.BaseURL())
		_, ok := store.Get(storage.KeyAPIURL)
		assert.False(t, ok)
	}

	assert.False(t, r.UpdateURL(context.Background(), "bogus"))
	assert.NotContains(t, prober.Calls(), "bogus")

	assert.True(t, r.UpdateURL(context.Background(), lan+"/"))
	assert.Equal(t, lan, r.BaseURL())
	stored, _ := store.Get(storage.KeyAPIURL)
	assert.Equal(t, lan, stored)
}

func TestClearStoredURL_RoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyAPIURL, lan))
	r := NewResolver(store, newFakeProber(nil), defaultURL, nil, nil)
	assert.Equal(t, lan, r.ResolveInitialURL())

	require.NoError(t, r.ClearStoredURL())
	require.NoError(t, r.ClearStoredURL())
	assert.Equal(t, lan, r.BaseURL(), "current URL is kept until re-resolved")
	assert.Equal(t, defaultURL, r.ResolveInitialURL())
}

func TestNewResolver_NormalizesCandidates(t *testing.T) {
	store := storage.NewMemoryStore()
	prober := newFakeProber(map[string]ProbeResult{lan: Reachable})
	r := NewResolver(store, prober, " "+defaultURL+"/", []string{"localhost:3002", "ftp://10.0.2.2", lan + "/"}, nil)

	assert.Equal(t, defaultURL, r.ResolveInitialURL())
	require.True(t, r.EstablishConnection(context.Background()))
	assert.Equal(t, lan, r.BaseURL())
	assert.Equal(t, []string{defaultURL, lan}, prober.Calls())

	stored, ok := store.Get(storage.KeyAPIURL)
	require.True(t, ok)
	assert.Equal(t, lan, stored)
}
