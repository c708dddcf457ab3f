package models

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when registering an email that is taken.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidResetCode is returned for a wrong or expired reset code.
	ErrInvalidResetCode = errors.New("invalid or expired reset code")
	// ErrInvalidInput is returned when a request fails basic checks.
	ErrInvalidInput = errors.New("invalid input")
)
