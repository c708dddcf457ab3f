package main

import (
	"context"
	"crypto/cipher"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/client/api"
	"github.com/atinyakov/FinWise/internal/client/config"
	"github.com/atinyakov/FinWise/internal/client/connectivity"
	"github.com/atinyakov/FinWise/internal/client/storage"
	"github.com/atinyakov/FinWise/internal/logger"
)

// app is the state shared by all commands of one process.
type app struct {
	configPath string
	platform   string
	apiURL     string
	verbose    bool

	getenv  func(string) string
	netInfo connectivity.NetInfo

	cfg     *config.Config
	log     *zap.Logger
	store   *storage.FileStore
	aead    cipher.AEAD
	conn    *connectivity.Manager
	client  *api.Client
	prompt  *prompter
	out     io.Writer
	started bool
}

func newApp() *app {
	return &app{getenv: os.Getenv}
}

// open loads configuration and local state. It does not touch the network.
func (a *app) open(cmd *cobra.Command) error {
	if a.conn != nil {
		return nil
	}
	a.out = cmd.OutOrStdout()
	a.prompt = newPrompter(cmd.InOrStdin(), a.out)

	cfg, err := config.Load(a.configPath, a.getenv)
	if err != nil {
		return err
	}
	if a.platform != "" {
		cfg.Platform = a.platform
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	lg := logger.New()
	if err := lg.InitConsole(level); err != nil {
		return err
	}
	a.log = lg.Log

	a.store, err = storage.Open(cfg.StoragePath)
	if err != nil {
		return err
	}
	key, err := storage.LoadOrCreateDeviceKey(cfg.DeviceKeyPath)
	if err != nil {
		return err
	}
	a.aead, err = storage.NewAEAD(key)
	if err != nil {
		return err
	}

	transport, err := cfg.Transport()
	if err != nil {
		return err
	}
	netInfo := a.netInfo
	if netInfo == nil {
		netInfo = connectivity.NewInterfaceNetInfo(a.log)
	}
	def, fallbacks := cfg.Endpoints()
	a.conn = connectivity.NewManager(connectivity.Config{
		DefaultURL:     def,
		Fallbacks:      fallbacks,
		ProbeTimeout:   cfg.ProbeTimeout,
		RequestTimeout: cfg.RequestTimeout,
		Transport:      transport,
		NetInfo:        netInfo,
	}, a.store, a.log)
	a.conn.Load()
	a.client = api.New(a.conn, a.log)
	return nil
}

// connect resolves a reachable endpoint once per process. A failure is
// shown as an advisory and the last URL stays in use, so callers go on and
// let the request itself report what happens.
func (a *app) connect(ctx context.Context) {
	if a.started {
		return
	}
	a.started = true
	if err := a.conn.Reconnect(ctx); err != nil {
		a.show(err)
	}
}

// show renders err the way its presentation asks for and reports whether
// anything was printed.
func (a *app) show(err error) bool {
	s := connectivity.SurfaceFor(err)
	switch s.Presentation {
	case connectivity.PresentNothing:
		if err != nil {
			a.log.Debug("not shown", zap.Error(err))
		}
		return false
	case connectivity.PresentLoginRedirect:
		fmt.Fprintln(a.out, renderLoginHint(s))
	default:
		fmt.Fprintln(a.out, renderSurface(s, a.conn.BaseURL()))
	}
	return true
}

// fail shows err and marks it as already printed for main.
func (a *app) fail(err error) error {
	if err == nil || !a.show(err) {
		return err
	}
	return &shownError{err: err}
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// shownError wraps an error whose message was already written for the
// user.
type shownError struct{ err error }

func (e *shownError) Error() string { return e.err.Error() }
func (e *shownError) Unwrap() error { return e.err }
