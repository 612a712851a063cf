// Package admin implements account provisioning: invitation of new users
// with an out-of-band one-time password, and the user overview for the
// admin dashboard.
package admin

import (
	"encoding/base64"

	"github.com/google/uuid"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/cryptox"
	"github.com/passvault/passvault/internal/hashx"
	"github.com/passvault/passvault/internal/server/users"
)

const (
	otpChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
	otpLength = 16
)

// GenerateOneTimePassword returns a random invitation password for
// out-of-band delivery. The modulo bias over a 70-character alphabet is
// negligible for this purpose.
func GenerateOneTimePassword() string {
	raw := common.GenerateRandByteArray(otpLength)
	otp := make([]byte, otpLength)
	for i, b := range raw {
		otp[i] = otpChars[int(b)%len(otpChars)]
	}
	return string(otp)
}

// NewInvitedUser builds the identity record for a fresh invitation:
// pending first login, a hashed one-time password, and the account's
// permanent encryption salt. The same construction serves regular user
// invitations and the admin bootstrap.
func NewInvitedUser(username string, role users.Role, createdBy *string) (*users.User, string, error) {
	otp := GenerateOneTimePassword()

	otpHash, err := hashx.Hash(otp)
	if err != nil {
		return nil, "", err
	}

	salt := base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(cryptox.SaltBytes))

	user := &users.User{
		ID:                  uuid.NewString(),
		Username:            username,
		Role:                role,
		Status:              users.StatusPendingFirstLogin,
		PasswordHash:        otpHash,
		OneTimePasswordHash: &otpHash,
		EncryptionSalt:      salt,
		CreatedBy:           createdBy,
	}

	return user, otp, nil
}
