package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/FinWise/internal/client/connectivity"
	"github.com/atinyakov/FinWise/internal/models"
)

// backend is a small in-memory FinWise server.
type backend struct {
	mu  sync.Mutex
	txs []models.Transaction
}

func (b *backend) handler(t *testing.T) http.Handler {
	const token = "jwt-test"
	user := &models.User{ID: "u1", Email: "ann@example.com", FullName: "Ann", Currency: "EUR", Provider: "local"}

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing or invalid token"})
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["email"] != user.Email || in["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
	})
	mux.HandleFunc("POST /api/auth/logout", authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/user/profile", authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, user)
	}))
	mux.HandleFunc("GET /api/transactions", authed(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.txs)
	}))
	mux.HandleFunc("POST /api/transactions", authed(func(w http.ResponseWriter, r *http.Request) {
		var tx models.Transaction
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&tx))
		if tx.Amount <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "amount must be positive"})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		tx.ID = fmt.Sprintf("tx-%d", len(b.txs)+1)
		if tx.Date.IsZero() {
			tx.Date = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		}
		b.txs = append(b.txs, tx)
		writeJSON(w, http.StatusCreated, tx)
	}))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type env struct {
	configPath string
}

// newEnv writes a config whose only endpoint is baseURL.
func newEnv(t *testing.T, baseURL string) *env {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`platform: test
platforms:
  test:
    default: %s
probe_timeout: 500ms
request_timeout: 2s
watch_interval: 20ms
log_level: error
`, baseURL)
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return &env{configPath: path}
}

// run executes one finwise invocation with a fresh process state.
func (e *env) run(input string, args ...string) (string, error) {
	a := newApp()
	a.getenv = func(string) string { return "" }
	a.netInfo = connectivity.AlwaysOnline

	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func deadURL(t *testing.T) string {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL
}

func TestVersion(t *testing.T) {
	e := newEnv(t, "http://127.0.0.1:1")
	out, err := e.run("", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: dev")
}

func TestConnect(t *testing.T) {
	srv := httptest.NewServer((&backend{}).handler(t))
	defer srv.Close()

	out, err := newEnv(t, srv.URL).run("", "connect")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected to "+srv.URL)
	assert.Contains(t, out, "Status: ok, database: up")
}

func TestConnect_UnreachableShowsAdvisory(t *testing.T) {
	dead := deadURL(t)

	out, err := newEnv(t, dead).run("", "connect")
	require.Error(t, err)
	var shown *shownError
	assert.ErrorAs(t, err, &shown)

	assert.Contains(t, out, "Connection problem")
	assert.Contains(t, out, "Server: "+dead)
	for _, cause := range connectivity.AdvisoryCauses {
		assert.Contains(t, out, cause)
	}
}

func TestLoginProfileAndTransactions(t *testing.T) {
	srv := httptest.NewServer((&backend{}).handler(t))
	defer srv.Close()
	e := newEnv(t, srv.URL)

	out, err := e.run("", "profile")
	require.Error(t, err)
	assert.Contains(t, out, "Session expired")
	assert.Contains(t, out, "finwise login")
	assert.NotContains(t, out, "Request failed")

	_, err = e.run("ann@example.com\nwrong\n", "login")
	assert.ErrorContains(t, err, "invalid credentials")

	out, err = e.run("ann@example.com\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ann!")
	assert.Contains(t, out, "You were on /api/user/profile")

	out, err = e.run("", "profile")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann <ann@example.com>")
	assert.Contains(t, out, "Currency: EUR")

	out, err = e.run("", "tx", "add", "--type", "expense", "--amount", "12.5", "--category", "food", "--note", "lunch")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved tx-1")

	out, err = e.run("income\n100\nsalary\n", "tx", "add")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved tx-2")

	out, err = e.run("", "tx", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "-12.50 EUR")
	assert.Contains(t, out, "+100.00 EUR")
	assert.Contains(t, out, "lunch")

	out, err = e.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	_, err = e.run("", "tx", "list")
	require.Error(t, err)
}

func TestTxAdd_Validation(t *testing.T) {
	srv := httptest.NewServer((&backend{}).handler(t))
	defer srv.Close()
	e := newEnv(t, srv.URL)

	_, err := e.run("", "tx", "add", "--type", "gift", "--amount", "1", "--category", "x")
	assert.ErrorContains(t, err, `invalid type "gift"`)

	_, err = e.run("", "tx", "list", "--from", "03/01/2026")
	assert.ErrorContains(t, err, "want YYYY-MM-DD")
}

func TestQuickLogin(t *testing.T) {
	srv := httptest.NewServer((&backend{}).handler(t))
	defer srv.Close()
	e := newEnv(t, srv.URL)

	_, err := e.run("y\n", "login", "--quick")
	assert.ErrorContains(t, err, "biometric unlock is disabled")

	out, err := e.run("ann@example.com\nsecret\n", "login", "--remember")
	require.NoError(t, err)
	assert.Contains(t, out, "Quick login enabled.")

	_, err = e.run("", "logout")
	require.NoError(t, err)

	_, err = e.run("n\n", "login", "--quick")
	assert.ErrorIs(t, err, errNotConfirmed)

	out, err = e.run("y\n", "login", "--quick")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ann!")

	out, err = e.run("", "quick-login", "disable")
	require.NoError(t, err)
	out2, err := e.run("", "quick-login", "status")
	require.NoError(t, err)
	assert.Contains(t, out+out2, "Quick login is disabled.")
}

func TestURL(t *testing.T) {
	first := httptest.NewServer((&backend{}).handler(t))
	defer first.Close()
	second := httptest.NewServer((&backend{}).handler(t))
	defer second.Close()
	e := newEnv(t, first.URL)

	out, err := e.run("", "url", "show")
	require.NoError(t, err)
	assert.Contains(t, out, first.URL)
	assert.NotContains(t, out, "(saved)")

	out, err = e.run("", "url", "set", deadURL(t))
	require.Error(t, err)
	assert.Contains(t, out, "Connection problem")

	out, err = e.run("", "url", "show")
	require.NoError(t, err)
	assert.Contains(t, out, first.URL)

	out, err = e.run("", "url", "set", second.URL+"/")
	require.NoError(t, err)
	assert.Contains(t, out, "Now using "+second.URL)

	out, err = e.run("", "url")
	require.NoError(t, err)
	assert.Contains(t, out, second.URL+" (saved)")

	out, err = e.run("", "url", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "The next start uses "+first.URL)

	out, err = e.run("", "url", "show")
	require.NoError(t, err)
	assert.Contains(t, out, first.URL)
}

func TestShell(t *testing.T) {
	srv := httptest.NewServer((&backend{}).handler(t))
	defer srv.Close()
	e := newEnv(t, srv.URL)

	input := strings.Join([]string{
		"help",
		"",
		"connect",
		"login",
		"ann@example.com",
		"secret",
		"tx add --type expense --amount 3 --category coffee",
		"tx list",
		"frobnicate",
		"shell",
		"exit",
		"profile",
	}, "\n") + "\n"

	out, err := e.run(input, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "Connected to "+srv.URL)
	assert.Contains(t, out, "Welcome, Ann!")
	assert.Contains(t, out, "-3.00 EUR")
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, "Not available in the shell.")
	assert.Contains(t, out, "Bye")
	assert.NotContains(t, out, "Ann <ann@example.com>")
}

func TestShell_EOFEndsSession(t *testing.T) {
	srv := httptest.NewServer((&backend{}).handler(t))
	defer srv.Close()

	out, err := newEnv(t, srv.URL).run("url show", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL)
}

func TestShell_WatchReportsOutage(t *testing.T) {
	srv := httptest.NewServer((&backend{}).handler(t))
	e := newEnv(t, srv.URL)

	pr, pw := io.Pipe()
	a := newApp()
	a.getenv = func(string) string { return "" }
	a.netInfo = connectivity.AlwaysOnline

	out := &lockedBuffer{}
	root := newRootCmd(a)
	root.SetIn(pr)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"--config", e.configPath, "shell"})

	errc := make(chan error, 1)
	go func() { errc <- root.ExecuteContext(context.Background()) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "finwise> ")
	}, 2*time.Second, 10*time.Millisecond)
	srv.Close()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Connection problem")
	}, 5*time.Second, 20*time.Millisecond)

	_, _ = pw.Write([]byte("exit\n"))
	require.NoError(t, <-errc)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
