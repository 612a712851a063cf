// Package requests defines the strongly-typed request models for every core
// operation, validated at the boundary before any store lookup or hash
// comparison. The shape/size guards are defense in depth against obviously
// malformed input, not a security boundary by themselves.
package requests

import (
	"regexp"

	"github.com/passvault/passvault/internal/common"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 30

	// MaxPasswordLength bounds credential input before it reaches bcrypt;
	// anything longer is rejected without a lookup or hash cycle.
	MaxPasswordLength = 128
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// HoneypotFields are invisible decoy form fields rendered by the login UI.
// Legitimate users never fill them; bots that blindly populate every field
// expose themselves. Embedded into login-shaped requests.
type HoneypotFields struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// Tripped reports whether any decoy field carries a value.
func (h HoneypotFields) Tripped() bool {
	return h.Email != "" || h.Phone != "" || h.Website != ""
}

// CheckHoneypot rejects a tripped request when the toggle is enabled. The
// returned error renders as a plain 403, indistinguishable from other
// forbidden responses.
func CheckHoneypot(enabled bool, h HoneypotFields) error {
	if enabled && h.Tripped() {
		return common.ErrHoneypot
	}
	return nil
}

// LoginRequest covers both user and admin login.
type LoginRequest struct {
	HoneypotFields
	Username string `json:"username"`
	Password string `json:"password"`
	TotpCode string `json:"totpCode,omitempty"`
}

// Guard applies the cheap length checks that run before any store lookup.
// Failures are reported as invalid credentials: a guard rejection must not
// be distinguishable from a wrong password.
func (r *LoginRequest) Guard() error {
	if len(r.Username) == 0 || len(r.Username) > UsernameMaxLength {
		return common.ErrInvalidCredentials
	}
	if len(r.Password) == 0 || len(r.Password) > MaxPasswordLength {
		return common.ErrInvalidCredentials
	}
	return nil
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Guard() error {
	if len(r.NewPassword) == 0 || len(r.NewPassword) > MaxPasswordLength {
		return &common.PolicyError{Violations: []string{"Password length out of bounds"}}
	}
	return nil
}

type TotpVerifyRequest struct {
	TotpCode string `json:"totpCode"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
}

// Validate enforces the username rules for account creation: 3-30
// characters from [A-Za-z0-9_-].
func (r *CreateUserRequest) Validate() error {
	if len(r.Username) < UsernameMinLength || len(r.Username) > UsernameMaxLength {
		return common.ErrInvalidUsername
	}
	if !usernamePattern.MatchString(r.Username) {
		return common.ErrInvalidUsername
	}
	return nil
}

type VaultPutRequest struct {
	EncryptedContent string `json:"encryptedContent"`
}
