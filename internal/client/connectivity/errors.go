package connectivity

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrOffline is wrapped in a ConnectivityError when the device has no
	// usable network interface.
	ErrOffline = errors.New("no network connection")
	// ErrNoReachableEndpoint is wrapped in a ConnectivityError when neither
	// the current URL nor any fallback answered.
	ErrNoReachableEndpoint = errors.New("no reachable endpoint")
)

// ConnectivityError means no response was received from the backend.
type ConnectivityError struct {
	Op  string
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// AuthenticationError is a 401 from a protected or auth-flow endpoint.
type AuthenticationError struct {
	Path    string
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication required: %s", e.Path)
	}
	return fmt.Sprintf("authentication failed: %s: %s", e.Path, e.Message)
}

// ApplicationError is any other non-2xx response.
type ApplicationError struct {
	Status  int
	Path    string
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("request %s failed with status %d: %s", e.Path, e.Status, e.Message)
}

// Kind tags an error for presentation.
type Kind int

const (
	KindNone Kind = iota
	KindConnectivity
	KindAuthentication
	KindApplication
	KindCanceled
	KindUnknown
)

// Classify returns the Kind of err.
func Classify(err error) Kind {
	var (
		connErr *ConnectivityError
		authErr *AuthenticationError
		appErr  *ApplicationError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &connErr):
		return KindConnectivity
	case errors.As(err, &authErr):
		return KindAuthentication
	case errors.As(err, &appErr):
		return KindApplication
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindUnknown
	}
}
