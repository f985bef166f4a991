package errors

import (
	"errors"
	"fmt"
)

// Common error types for the blog client
var (
	// Authentication errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Credential errors
	ErrNoCredential      = errors.New("no credential stored")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrRefreshFailed     = errors.New("credential refresh failed")

	// Session errors
	ErrNotSignedIn = errors.New("not signed in")

	// Upload errors
	ErrUploadFailed = errors.New("upload failed")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrUnsupported  = errors.New("unsupported operation")
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

// Join returns an error that wraps the given errors, discarding nils
func Join(errs ...error) error {
	return errors.Join(errs...)
}
