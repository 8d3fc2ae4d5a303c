package errors

import (
	"errors"
	"fmt"
)

// Common error types for the marketplace client
var (
	// Session errors
	ErrSessionInvalidated = errors.New("session invalidated")
	ErrNotLoggedIn        = errors.New("not logged in")

	// Token errors
	ErrNoRefreshToken      = errors.New("no refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshRejected     = errors.New("refresh rejected by server")

	// Transport errors
	ErrNoResponse = errors.New("no response from server")
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
