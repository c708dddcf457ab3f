package connectivity

import "strings"

// publicPaths are matched as substrings so query strings and trailing
// segments do not change the outcome.
var publicPaths = []string{
	HealthPath,
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/forgot-password",
	"/api/auth/reset-password",
	"/api/auth/verify-reset-code",
	"/api/auth/google",
	"/api/auth/facebook",
}

// authFlowPaths are the endpoints where a 401 means bad credentials rather
// than an expired session.
var authFlowPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/forgot-password",
}

// IsPublic reports whether path can be called without a bearer token.
func IsPublic(path string) bool {
	return containsAny(path, publicPaths)
}

func isAuthFlow(path string) bool {
	return containsAny(path, authFlowPaths)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
