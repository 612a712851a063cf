package users

import (
	"context"
	"time"
)

// Update is a partial user update. Nil pointer fields are left untouched;
// the Clear* flags set their nullable column to NULL explicitly, which a
// nil pointer cannot express.
type Update struct {
	PasswordHash        *string
	Status              *Status
	TotpSecret          *string
	TotpEnabled         *bool
	FailedLoginAttempts *int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time

	ClearOneTimePassword bool
	ClearLockedUntil     bool
}

// Repository is the user store collaborator. Create must enforce username
// uniqueness and return common.ErrorAlreadyExists on conflict; lookups
// return common.ErrorNotFound for missing users.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, upd Update) error
	List(ctx context.Context) ([]*User, error)
}
