package storage

// Keys persisted by the client between runs.
const (
	// KeyToken holds the bearer token of the current session.
	KeyToken = "token"
	// KeyAPIURL holds the base URL override chosen by the endpoint resolver.
	KeyAPIURL = "api_url"
	// KeyUser holds the cached profile of the signed-in user as JSON.
	KeyUser = "user"
	// KeyFaceIDEnabled is "true" when biometric unlock is turned on.
	KeyFaceIDEnabled = "faceIDEnabled"
	// KeyAppUnlocked is "true" once the app was unlocked in this session.
	KeyAppUnlocked = "appUnlocked"
	// KeySecuredEmail and KeySecuredPassword hold the credential cache used
	// by biometric quick login. The password is stored encrypted.
	KeySecuredEmail    = "securedEmail"
	KeySecuredPassword = "securedPassword"
	// KeyLastRequestURL is the last protected path attempted without a
	// valid session, used to redirect after login.
	KeyLastRequestURL = "lastRequestUrl"
)

// Store is the key-value persistence used by the client.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool)
	// Set stores value under key.
	Set(key, value string) error
	// Delete removes keys. Missing keys are not an error.
	Delete(keys ...string) error
}
