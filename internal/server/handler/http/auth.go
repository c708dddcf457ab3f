package http

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/FinWise/internal/middleware"
	"github.com/atinyakov/FinWise/internal/models"
	"github.com/atinyakov/FinWise/internal/service"
	"github.com/atinyakov/FinWise/internal/token"
)

// AuthService defines the account operations required by AuthHandler.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	OAuthLogin(ctx context.Context, provider, providerToken string) (*service.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Logout(ctx context.Context, claims *token.Claims) error
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, fullName, currency string) (*models.User, error)
	DeleteAccount(ctx context.Context, claims *token.Claims) error
}

// AuthRecorder counts authentication outcomes.
type AuthRecorder interface {
	RecordAuth(event string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(string, bool) {}

// AuthHandler serves /api/auth and /api/user.
type AuthHandler struct {
	AuthService AuthService
	Metrics     AuthRecorder
	Log         *zap.Logger
}

func (h *AuthHandler) record(event string, err error) {
	m := h.Metrics
	if m == nil {
		m = nopRecorder{}
	}
	m.RecordAuth(event, err == nil)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	// Name is accepted as an alias of FullName.
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FullName == "" {
		req.FullName = req.Name
	}
	sess, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Currency: req.Currency,
	})
	h.record("register", err)
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	h.record("login", err)
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Google handles POST /api/auth/google.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.oauth(w, r, models.ProviderGoogle, req.IDToken)
}

// Facebook handles POST /api/auth/facebook.
func (h *AuthHandler) Facebook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.oauth(w, r, models.ProviderFacebook, req.AccessToken)
}

func (h *AuthHandler) oauth(w http.ResponseWriter, r *http.Request, provider, providerToken string) {
	if strings.TrimSpace(providerToken) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	sess, err := h.AuthService.OAuthLogin(r.Context(), provider, providerToken)
	h.record(provider, err)
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// ForgotPassword handles POST /api/auth/forgot-password. The answer is the
// same whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.AuthService.ForgotPassword(r.Context(), req.Email); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the email is registered, a reset code has been sent.",
	})
}

// VerifyResetCode handles POST /api/auth/verify-reset-code.
func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		ResetCode string `json:"resetCode"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.AuthService.VerifyResetCode(r.Context(), req.Email, req.ResetCode); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reset code is valid."})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		ResetCode   string `json:"resetCode"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.AuthService.ResetPassword(r.Context(), req.Email, req.ResetCode, req.NewPassword)
	h.record("reset_password", err)
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset."})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.Logout(r.Context(), middleware.ClaimsFromContext(r.Context())); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
