// Package common defines shared constants and sentinel errors used across
// client and server layers of PassVault. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Credential errors. ErrInvalidCredentials covers unknown username,
	// wrong password and wrong one-time password alike: external responses
	// must not reveal which of them failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidTotp        = errors.New("invalid TOTP code")
	ErrAccountLocked      = errors.New("account locked")

	// Proof-of-work errors.
	ErrPowRequired = errors.New("proof of work required")
	ErrPowExpired  = errors.New("proof of work challenge expired")
	ErrPowInvalid  = errors.New("invalid proof of work solution")

	// Request shape / limit errors.
	ErrInvalidUsername = errors.New("username must be 3-30 characters, alphanumeric with hyphens/underscores")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrHoneypot        = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// PolicyError reports an invalid new password together with the itemized
// policy violations, so the caller can render them to the user.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("password does not meet requirements: %s", strings.Join(e.Violations, "; "))
}

// StatusCode maps a sentinel error to its HTTP-equivalent status, keeping
// the mapping in one place instead of scattered across serialization code.
// Unrecognized errors map to 500.
func StatusCode(err error) int {
	var policyErr *PolicyError
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidTotp):
		return 401
	case errors.Is(err, ErrorUnauthorized), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired):
		return 401
	case errors.Is(err, ErrAccountLocked):
		return 429
	case errors.Is(err, ErrPowRequired), errors.Is(err, ErrPowExpired), errors.Is(err, ErrPowInvalid):
		return 403
	case errors.Is(err, ErrorForbidden), errors.Is(err, ErrHoneypot):
		return 403
	case errors.Is(err, ErrorNotFound):
		return 404
	case errors.Is(err, ErrorAlreadyExists):
		return 409
	case errors.As(err, &policyErr), errors.Is(err, ErrInvalidUsername), errors.Is(err, ErrFileTooLarge):
		return 400
	default:
		return 500
	}
}
