package api

import "github.com/atinyakov/FinWise/internal/models"

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// AuthResponse is returned by every endpoint that starts a session.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Currency string `json:"currency,omitempty"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileUpdate is the body of PUT /api/user/profile. Empty fields are left
// unchanged.
type ProfileUpdate struct {
	FullName string `json:"fullName,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// ReceiptUpload is returned after a receipt is stored.
type ReceiptUpload struct {
	Key string `json:"key"`
}
