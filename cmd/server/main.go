// Package main initializes and starts the FinWise API server, setting up
// configuration, logging, database connections, repositories, services,
// handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/config"
	"github.com/atinyakov/FinWise/internal/db"
	"github.com/atinyakov/FinWise/internal/denylist"
	"github.com/atinyakov/FinWise/internal/logger"
	"github.com/atinyakov/FinWise/internal/metrics"
	"github.com/atinyakov/FinWise/internal/middleware"
	"github.com/atinyakov/FinWise/internal/models"
	"github.com/atinyakov/FinWise/internal/oauth"
	"github.com/atinyakov/FinWise/internal/receipts"
	"github.com/atinyakov/FinWise/internal/repository"
	"github.com/atinyakov/FinWise/internal/server/handler/http"
	"github.com/atinyakov/FinWise/internal/service"
	"github.com/atinyakov/FinWise/internal/token"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const notificationRetention = 90 * 24 * time.Hour

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(ctx, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()
	if err := db.ApplyMigrations(postgresDB); err != nil {
		zapLogger.Fatal("cannot apply migrations", zap.Error(err))
	}

	// Expired reset codes and old read notifications are swept hourly.
	db.StartCleaner(ctx, postgresDB, time.Hour, zapLogger,
		db.ExpiredResetCodes, db.ReadNotifications(notificationRetention))

	// Token denylist: Redis when configured, otherwise process memory.
	var deny denylist.Denylist = denylist.NewMemory()
	if options.RedisAddr != "" {
		rd, err := denylist.NewRedis(ctx, options.RedisAddr)
		if err != nil {
			zapLogger.Fatal("cannot connect to redis", zap.Error(err))
		}
		defer rd.Close()
		deny = rd
	} else {
		zapLogger.Warn("redis not configured; revoked tokens are kept in memory")
	}

	// Receipt storage: GCS bucket when configured, otherwise a local dir.
	var receiptStore receipts.Store
	if options.ReceiptsBucket != "" {
		gcs, err := receipts.NewGCS(ctx, options.ReceiptsBucket)
		if err != nil {
			zapLogger.Fatal("cannot init receipt bucket", zap.Error(err))
		}
		defer gcs.Close()
		receiptStore = gcs
	} else {
		local, err := receipts.NewLocal(options.ReceiptsDir)
		if err != nil {
			zapLogger.Fatal("cannot init receipt dir", zap.Error(err))
		}
		receiptStore = local
	}

	if len(options.GoogleClientIDs) == 0 {
		zapLogger.Warn("google client IDs not configured; any audience is accepted")
	}
	verifiers := map[string]oauth.Verifier{
		models.ProviderGoogle:   &oauth.Google{ClientIDs: options.GoogleClientIDs},
		models.ProviderFacebook: &oauth.Facebook{},
	}

	// Initialize repositories.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	financeRepo := repository.NewPostgresFinanceRepository(postgresDB)

	// Initialize business-logic services.
	tokens := token.NewManager(options.JWTSecret, options.TokenTTL.Duration)
	authService := service.NewAuthService(userRepo, tokens, deny,
		service.LogMailer{Log: zapLogger}, verifiers, zapLogger)
	financeService := service.NewFinanceService(financeRepo)

	m := metrics.New()

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Router{
		Auth:        &http.AuthHandler{AuthService: authService, Metrics: m, Log: zapLogger},
		Finance:     &http.FinanceHandler{Finance: financeService, Log: zapLogger},
		Receipts:    &http.ReceiptHandler{Store: receiptStore, Log: zapLogger},
		Health:      &http.HealthHandler{DB: postgresDB, Log: zapLogger},
		Tokens:      tokens,
		Denylist:    deny,
		AuthLimiter: middleware.NewRateLimiter(options.AuthRateLimit, options.AuthBurst),
		Instrument:  m.Instrument,
		Metrics:     m.Handler(),
		Log:         zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown", zap.Error(err))
		}
	}()

	if options.TLSCert != "" && options.TLSKey != "" {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
