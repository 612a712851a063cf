package users

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type Status string

const (
	// StatusPendingFirstLogin: the account exists but the user has only the
	// out-of-band one-time password. OneTimePasswordHash is non-nil exactly
	// in this state.
	StatusPendingFirstLogin Status = "pending_first_login"

	// StatusPendingTotpSetup: the real password is set; the second factor
	// still needs enrolling. Skipped entirely when TOTP is not required.
	StatusPendingTotpSetup Status = "pending_totp_setup"

	// StatusActive is the terminal state.
	StatusActive Status = "active"
)

// User is the identity record.
//
// EncryptionSalt is generated once at account creation and never mutated:
// the client derives the vault key from it, so changing it without
// re-encrypting the vault makes the vault unrecoverable.
type User struct {
	ID                  string
	Username            string
	Role                Role
	Status              Status
	PasswordHash        string
	OneTimePasswordHash *string
	TotpSecret          *string
	TotpEnabled         bool
	EncryptionSalt      string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	LastLoginAt         *time.Time
	CreatedBy           *string
}

// Locked reports whether the account is inside its lockout window at now.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}
