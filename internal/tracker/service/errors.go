package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a required field left empty.
	ErrInvalidInput = errors.New("invalid_input")

	// ErrDuplicateUsername reports a registration against a taken username.
	ErrDuplicateUsername = errors.New("duplicate_username")

	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrTooManyAttempts reports an exhausted login limiter for a username.
	ErrTooManyAttempts = errors.New("too_many_attempts")

	// ErrUnauthenticated reports a record operation attempted with no
	// authenticated session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden reports an operation on a record owned by someone else.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound reports a stale or unknown reference.
	ErrNotFound = errors.New("not_found")

	// ErrPersistence marks an underlying storage failure. The original
	// cause stays on the chain, so errors.Is/As still reach it.
	ErrPersistence = errors.New("persistence_failure")
)

// persistence tags a storage failure with ErrPersistence while keeping the
// cause wrapped. Storage errors propagate to the caller; they are never
// logged and swallowed.
func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
