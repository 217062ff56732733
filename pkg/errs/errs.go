// Package errs holds the error kinds shared by the licensing services.
// Domain errors wrap one of these with %w so callers can branch with errors.Is.
package errs

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrCapacityExceeded   = errors.New("activation limit reached")
	ErrDuplicateLocation  = errors.New("location already active")
	ErrAlreadyDeactivated = errors.New("activation is not active")
	ErrNotRenewable       = errors.New("license key does not expire")
	ErrAuthFailure        = errors.New("authentication failed")
)
