package errors

import (
	"errors"
	"fmt"
)

// Common error types for the API client
var (
	// Request pipeline errors
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrSessionExpired = errors.New("session expired")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrHTTP           = errors.New("http error")
	ErrNetwork        = errors.New("network failure")

	// Token errors
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenNotFound  = errors.New("token not found")
	ErrNoSession      = errors.New("no active session")

	// Login errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrAccessDenied       = errors.New("access denied")
	ErrTokenNotInResponse = errors.New("token not found in login response")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
