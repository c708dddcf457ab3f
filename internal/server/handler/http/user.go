package http

import (
	"net/http"

	"github.com/atinyakov/FinWise/internal/middleware"
)

// Profile handles GET /api/user/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.Profile(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateProfile handles PUT /api/user/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		Currency string `json:"currency"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.AuthService.UpdateProfile(r.Context(), middleware.GetUserIDFromContext(r.Context()), req.FullName, req.Currency)
	if err != nil {
		serviceError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DeleteAccount handles DELETE /api/user/profile.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.DeleteAccount(r.Context(), middleware.ClaimsFromContext(r.Context())); err != nil {
		serviceError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
