package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/denylist"
	"github.com/atinyakov/FinWise/internal/middleware"
)

// Router bundles everything NewRouter mounts.
type Router struct {
	Auth     *AuthHandler
	Finance  *FinanceHandler
	Receipts *ReceiptHandler
	Health   *HealthHandler

	Tokens   middleware.TokenParser
	Denylist denylist.Denylist
	// AuthLimiter throttles /api/auth. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter
	// Instrument records request metrics. Nil disables it.
	Instrument func(http.Handler) http.Handler
	// Metrics serves /metrics when set.
	Metrics http.Handler

	Log *zap.Logger
}

// NewRouter constructs the FinWise API handler.
//
// Middleware chain (applied in order):
//  1. RequestID, RealIP and Recoverer from chi
//  2. Instrument (when set)
//  3. WithRequestLogging(logger)
//  4. AllowContentType: JSON, plus multipart for receipt uploads
//
// The auth routes are additionally rate limited; everything outside the
// public set requires a bearer token.
func NewRouter(cfg Router) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	if cfg.Instrument != nil {
		r.Use(cfg.Instrument)
	}
	r.Use(middleware.WithRequestLogging(cfg.Log))
	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	bearer := middleware.BearerAuth(cfg.Tokens, cfg.Denylist, cfg.Log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.Health.Health)

		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Handler)
			}
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
			r.Post("/google", cfg.Auth.Google)
			r.Post("/facebook", cfg.Auth.Facebook)
			r.Post("/forgot-password", cfg.Auth.ForgotPassword)
			r.Post("/verify-reset-code", cfg.Auth.VerifyResetCode)
			r.Post("/reset-password", cfg.Auth.ResetPassword)
			r.With(bearer).Post("/logout", cfg.Auth.Logout)
		})

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(bearer)

			r.Get("/user/profile", cfg.Auth.Profile)
			r.Put("/user/profile", cfg.Auth.UpdateProfile)
			r.Delete("/user/profile", cfg.Auth.DeleteAccount)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", cfg.Finance.ListTransactions)
				r.Post("/", cfg.Finance.CreateTransaction)
				r.Get("/{id}", cfg.Finance.GetTransaction)
				r.Put("/{id}", cfg.Finance.UpdateTransaction)
				r.Delete("/{id}", cfg.Finance.DeleteTransaction)
			})
			r.Route("/budgets", func(r chi.Router) {
				r.Get("/", cfg.Finance.ListBudgets)
				r.Post("/", cfg.Finance.CreateBudget)
				r.Put("/{id}", cfg.Finance.UpdateBudget)
				r.Delete("/{id}", cfg.Finance.DeleteBudget)
			})
			r.Route("/savings-goals", func(r chi.Router) {
				r.Get("/", cfg.Finance.ListSavingGoals)
				r.Post("/", cfg.Finance.CreateSavingGoal)
				r.Put("/{id}", cfg.Finance.UpdateSavingGoal)
				r.Delete("/{id}", cfg.Finance.DeleteSavingGoal)
				r.Post("/{id}/contribute", cfg.Finance.Contribute)
			})
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", cfg.Finance.ListCategories)
				r.Post("/", cfg.Finance.CreateCategory)
				r.Delete("/{id}", cfg.Finance.DeleteCategory)
			})
			r.Get("/notifications", cfg.Finance.ListNotifications)
			r.Post("/notifications/{id}/read", cfg.Finance.MarkNotificationRead)

			r.Post("/receipts", cfg.Receipts.Upload)
			r.Get("/receipts/*", cfg.Receipts.Download)
		})
	})

	return r
}
