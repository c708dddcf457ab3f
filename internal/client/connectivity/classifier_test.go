package connectivity

import "testing"

func TestIsPublic(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/health", true},
		{"/api/auth/login", true},
		{"/api/auth/register", true},
		{"/api/auth/forgot-password", true},
		{"/api/auth/reset-password", true},
		{"/api/auth/verify-reset-code", true},
		{"/api/auth/google", true},
		{"/api/auth/facebook", true},
		{"/api/auth/login?next=/home", true},
		{"/api/auth/google/callback", true},
		{"/api/transactions", false},
		{"/api/user/profile", false},
		{"/api/auth/logout", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPublic(tt.path); got != tt.want {
			t.Errorf("IsPublic(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsAuthFlow(t *testing.T) {
	for _, p := range []string{"/api/auth/login", "/api/auth/register", "/api/auth/forgot-password"} {
		if !isAuthFlow(p) {
			t.Errorf("isAuthFlow(%q) = false", p)
		}
	}
	for _, p := range []string{"/api/user/profile", "/api/auth/google", "/api/health"} {
		if isAuthFlow(p) {
			t.Errorf("isAuthFlow(%q) = true", p)
		}
	}
}
